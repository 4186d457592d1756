package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, role, full_name, COALESCE(email, ''), department, designation, joining_date,
	compensation, skills, certifications, status, created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	db *DB
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (id, role, full_name, email, department, designation, joining_date,
			compensation, skills, certifications, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.pool.Exec(ctx, query,
		user.ID, user.Role, user.FullName, nullIfEmpty(user.Email), user.Department, user.Designation,
		nullDate(user.JoiningDate), user.Compensation, tags(user.Skills), tags(user.Certifications),
		user.Status, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: usuario %s ya existe", domain.ErrConflict, user.ID)
		}
		return domain.StoreError("insert user", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID. (nil, nil) si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	u, err := scanUser(r.db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.StoreError("get user by id", err)
	}
	return u, nil
}

// List devuelve los usuarios en orden de creación.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
}

// ListByRole filtra por rol.
func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]*entity.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at, id`, role)
}

func (r *UserRepo) list(ctx context.Context, query string, args ...any) ([]*entity.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.StoreError("list users", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, domain.StoreError("scan user", err)
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("list users", err)
	}
	return list, nil
}

// Update reemplaza los datos del usuario (las etiquetas van por AddTag/RemoveTag).
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET role = $2, full_name = $3, email = $4, department = $5, designation = $6,
		    joining_date = $7, compensation = $8, status = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.db.pool.Exec(ctx, query,
		user.ID, user.Role, user.FullName, nullIfEmpty(user.Email), user.Department, user.Designation,
		nullDate(user.JoiningDate), user.Compensation, user.Status, user.UpdatedAt,
	)
	if err != nil {
		return domain.StoreError("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el usuario; no falla si no existe.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return domain.StoreError("delete user", err)
	}
	return nil
}

// AddTag agrega value al arreglo si no estaba, en una sola sentencia.
func (r *UserRepo) AddTag(ctx context.Context, userID string, field repository.UserTagField, value string) error {
	column, err := tagColumn(field)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE users
		SET %[1]s = CASE WHEN $2 = ANY(%[1]s) THEN %[1]s ELSE array_append(%[1]s, $2) END,
		    updated_at = $3
		WHERE id = $1`, column)
	return r.execTag(ctx, "add "+column, query, userID, value)
}

// RemoveTag quita value del arreglo.
func (r *UserRepo) RemoveTag(ctx context.Context, userID string, field repository.UserTagField, value string) error {
	column, err := tagColumn(field)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE users SET %[1]s = array_remove(%[1]s, $2), updated_at = $3 WHERE id = $1`, column)
	return r.execTag(ctx, "remove "+column, query, userID, value)
}

func (r *UserRepo) execTag(ctx context.Context, op, query, userID, value string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.pool.Exec(ctx, query, userID, value, time.Now().UTC())
	if err != nil {
		return domain.StoreError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, userID)
	}
	return nil
}

// tagColumn limita los nombres de columna interpolados en SQL a los conocidos.
func tagColumn(field repository.UserTagField) (string, error) {
	switch field {
	case repository.UserTagSkills:
		return "skills", nil
	case repository.UserTagCertifications:
		return "certifications", nil
	}
	return "", domain.Invalid("campo de etiquetas desconocido: %s", field)
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u       entity.User
		joining *time.Time
	)
	err := row.Scan(
		&u.ID, &u.Role, &u.FullName, &u.Email, &u.Department, &u.Designation, &joining,
		&u.Compensation, &u.Skills, &u.Certifications, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.JoiningDate = fromNullTime(joining)
	return &u, nil
}

func tags(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
