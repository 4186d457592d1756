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

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

const (
	projectColumns = `id, name, description, manager_id, budget, start_date, end_date, status,
	progress, progress_notes, last_progress_update, version, created_at, updated_at`
	allocationColumns = `project_id, employee_id, employee_name, allocation_percentage, role,
	start_date, end_date, allocated_at, updated_at`
	expenseColumns = `project_id, id, description, amount, category, date, created_at`
)

// ProjectRepo implementación del puerto ProjectRepository sobre PostgreSQL.
// Asignaciones y gastos se guardan en project_allocations y project_expenses.
type ProjectRepo struct {
	db *DB
}

// NewProjectRepository construye el adaptador de persistencia para proyectos.
func NewProjectRepository(db *DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// Create persiste la cabecera del proyecto junto con sus asignaciones y gastos iniciales.
func (r *ProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return domain.StoreError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO projects (id, name, description, manager_id, budget, start_date, end_date, status,
			progress, progress_notes, last_progress_update, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = tx.Exec(ctx, query,
		project.ID, project.Name, project.Description, project.ManagerID, project.Budget,
		nullDate(project.StartDate), nullDate(project.EndDate), project.Status,
		project.Progress, project.ProgressNotes, nullDate(project.LastProgressUpdate), project.Version,
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: proyecto %s ya existe", domain.ErrConflict, project.ID)
		}
		return domain.StoreError("insert project", err)
	}
	for _, a := range project.Allocations {
		if err := insertAllocation(ctx, tx, project.ID, a); err != nil {
			return err
		}
	}
	for _, e := range project.Expenses {
		if err := insertExpense(ctx, tx, project.ID, e); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.StoreError("commit transaction", err)
	}
	return nil
}

// GetByID obtiene el proyecto con asignaciones y gastos. (nil, nil) si no existe.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	list, err := r.load(ctx, `WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// List devuelve todos los proyectos en orden de creación.
func (r *ProjectRepo) List(ctx context.Context) ([]*entity.Project, error) {
	return r.load(ctx, ``)
}

// ListByManager filtra por responsable.
func (r *ProjectRepo) ListByManager(ctx context.Context, managerID string) ([]*entity.Project, error) {
	return r.load(ctx, `WHERE manager_id = $1`, managerID)
}

// load lee cabeceras y tablas hijas en la misma instantánea y las agrupa por proyecto.
func (r *ProjectRepo) load(ctx context.Context, where string, args ...any) ([]*entity.Project, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var list []*entity.Project
	err := r.db.readTx(ctx, func(q Querier) error {
		var err error
		list, err = queryProjects(ctx, q, `SELECT `+projectColumns+` FROM projects `+where+` ORDER BY created_at, id`, args...)
		if err != nil || len(list) == 0 {
			return err
		}

		byID := make(map[string]*entity.Project, len(list))
		ids := make([]string, 0, len(list))
		for _, p := range list {
			byID[p.ID] = p
			ids = append(ids, p.ID)
		}
		if err := loadAllocations(ctx, q, ids, byID); err != nil {
			return err
		}
		return loadExpenses(ctx, q, ids, byID)
	})
	if err != nil {
		return nil, domain.StoreError("load projects", err)
	}
	return list, nil
}

// Update reemplaza los metadatos si la versión coincide e incrementa project.Version.
func (r *ProjectRepo) Update(ctx context.Context, project *entity.Project) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE projects
		SET name = $3, description = $4, manager_id = $5, budget = $6, start_date = $7,
		    end_date = $8, status = $9, updated_at = $10, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version`
	var version int64
	err := r.db.pool.QueryRow(ctx, query,
		project.ID, project.Version, project.Name, project.Description, project.ManagerID, project.Budget,
		nullDate(project.StartDate), nullDate(project.EndDate), project.Status, project.UpdatedAt,
	).Scan(&version)
	if err == nil {
		project.Version = version
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.StoreError("update project", err)
	}
	exists, err := r.exists(ctx, project.ID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, project.ID)
	}
	return fmt.Errorf("%w: el proyecto %s cambió desde la versión %d", domain.ErrConflict, project.ID, project.Version)
}

// Delete elimina el proyecto; los gastos se borran en cascada. La fila del proyecto
// se bloquea primero (FOR UPDATE) para que ninguna asignación nueva se cuele entre la
// lectura de empleados y el borrado.
func (r *ProjectRepo) Delete(ctx context.Context, id string) ([]string, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var allocated []string
	err := r.db.writeTx(ctx, func(q Querier) error {
		var locked string
		err := q.QueryRow(ctx, `SELECT id FROM projects WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		rows, err := q.Query(ctx, `DELETE FROM project_allocations WHERE project_id = $1 RETURNING employee_id`, id)
		if err != nil {
			return err
		}
		allocated, err = pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		_, err = q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return nil, domain.StoreError("delete project", err)
	}
	return allocated, nil
}

// UpdateProgress reemplaza avance y notas.
func (r *ProjectRepo) UpdateProgress(ctx context.Context, projectID string, progress int, notes string, at time.Time) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE projects
		SET progress = $2, progress_notes = $3, last_progress_update = $4, updated_at = $4
		WHERE id = $1`
	tag, err := r.db.pool.Exec(ctx, query, projectID, progress, notes, at)
	if err != nil {
		return domain.StoreError("update progress", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, projectID)
	}
	return nil
}

// AppendAllocation inserta la asignación. La clave (project_id, employee_id)
// rechaza duplicados aun con escrituras concurrentes.
func (r *ProjectRepo) AppendAllocation(ctx context.Context, projectID string, allocation entity.Allocation) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()
	return insertAllocation(ctx, r.db.pool, projectID, allocation)
}

// UpdateAllocation aplica el patch sobre la fila del empleado en una sola sentencia.
func (r *ProjectRepo) UpdateAllocation(ctx context.Context, projectID, employeeID string, patch entity.AllocationPatch, at time.Time) (*entity.Allocation, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var startDate, endDate any
	if patch.StartDate != nil {
		startDate = nullDate(*patch.StartDate)
	}
	if patch.EndDate != nil {
		endDate = nullDate(*patch.EndDate)
	}
	query := `
		WITH upd AS (
			UPDATE project_allocations
			SET allocation_percentage = COALESCE($3, allocation_percentage),
			    role          = COALESCE($4, role),
			    start_date    = CASE WHEN $5 THEN $6::date ELSE start_date END,
			    end_date      = CASE WHEN $7 THEN $8::date ELSE end_date END,
			    employee_name = COALESCE($9, employee_name),
			    updated_at    = $10
			WHERE project_id = $1 AND employee_id = $2
			RETURNING ` + allocationColumns + `
		), touch AS (
			UPDATE projects SET updated_at = $10 WHERE id IN (SELECT project_id FROM upd)
		)
		SELECT ` + allocationColumns + ` FROM upd`
	_, a, err := scanAllocation(r.db.pool.QueryRow(ctx, query,
		projectID, employeeID, patch.AllocationPercentage, patch.Role,
		patch.StartDate != nil, startDate, patch.EndDate != nil, endDate,
		patch.EmployeeName, at,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: asignación de %s en el proyecto %s", domain.ErrNotFound, employeeID, projectID)
		}
		return nil, domain.StoreError("update allocation", err)
	}
	return &a, nil
}

// RemoveAllocation borra la fila del empleado. ErrNotFound solo si falta el proyecto.
func (r *ProjectRepo) RemoveAllocation(ctx context.Context, projectID, employeeID string) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		WITH p AS (
			SELECT id FROM projects WHERE id = $1
		), del AS (
			DELETE FROM project_allocations WHERE project_id = $1 AND employee_id = $2
			RETURNING employee_id
		)
		SELECT EXISTS (SELECT 1 FROM p), EXISTS (SELECT 1 FROM del)`
	var found, removed bool
	if err := r.db.pool.QueryRow(ctx, query, projectID, employeeID).Scan(&found, &removed); err != nil {
		return false, domain.StoreError("remove allocation", err)
	}
	if !found {
		return false, fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, projectID)
	}
	return removed, nil
}

// AppendExpense inserta el gasto.
func (r *ProjectRepo) AppendExpense(ctx context.Context, projectID string, expense entity.Expense) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()
	return insertExpense(ctx, r.db.pool, projectID, expense)
}

func (r *ProjectRepo) exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := r.db.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, domain.StoreError("project exists", err)
	}
	return ok, nil
}

// ── Filas hijas ──────────────────────────────────────────────────────────────

func insertAllocation(ctx context.Context, q Querier, projectID string, a entity.Allocation) error {
	query := `
		WITH ins AS (
			INSERT INTO project_allocations (` + allocationColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING project_id
		)
		UPDATE projects SET updated_at = $8 WHERE id IN (SELECT project_id FROM ins)`
	_, err := q.Exec(ctx, query,
		projectID, a.EmployeeID, a.EmployeeName, a.AllocationPercentage, a.Role,
		nullDate(a.StartDate), nullDate(a.EndDate), a.AllocatedAt, a.UpdatedAt,
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicateAllocation
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, projectID)
	}
	return domain.StoreError("insert allocation", err)
}

func insertExpense(ctx context.Context, q Querier, projectID string, e entity.Expense) error {
	query := `
		WITH ins AS (
			INSERT INTO project_expenses (` + expenseColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING project_id
		)
		UPDATE projects SET updated_at = $7 WHERE id IN (SELECT project_id FROM ins)`
	_, err := q.Exec(ctx, query,
		projectID, e.ID, e.Description, e.Amount, e.Category, nullDate(e.Date), e.CreatedAt,
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("%w: gasto %s ya existe", domain.ErrConflict, e.ID)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, projectID)
	}
	return domain.StoreError("insert expense", err)
}

func queryProjects(ctx context.Context, q Querier, query string, args ...any) ([]*entity.Project, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*entity.Project
	for rows.Next() {
		var (
			p                   entity.Project
			start, end, lastUpd *time.Time
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.ManagerID, &p.Budget, &start, &end, &p.Status,
			&p.Progress, &p.ProgressNotes, &lastUpd, &p.Version, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.StartDate = fromNullTime(start)
		p.EndDate = fromNullTime(end)
		p.LastProgressUpdate = fromNullTime(lastUpd)
		p.Allocations = []entity.Allocation{}
		p.Expenses = []entity.Expense{}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func loadAllocations(ctx context.Context, q Querier, ids []string, byID map[string]*entity.Project) error {
	rows, err := q.Query(ctx, `
		SELECT `+allocationColumns+` FROM project_allocations
		WHERE project_id = ANY($1)
		ORDER BY allocated_at, employee_id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		projectID, a, err := scanAllocation(rows)
		if err != nil {
			return err
		}
		if p := byID[projectID]; p != nil {
			p.Allocations = append(p.Allocations, a)
		}
	}
	return rows.Err()
}

func loadExpenses(ctx context.Context, q Querier, ids []string, byID map[string]*entity.Project) error {
	rows, err := q.Query(ctx, `
		SELECT `+expenseColumns+` FROM project_expenses
		WHERE project_id = ANY($1)
		ORDER BY created_at, id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			projectID string
			e         entity.Expense
			date      *time.Time
		)
		if err := rows.Scan(&projectID, &e.ID, &e.Description, &e.Amount, &e.Category, &date, &e.CreatedAt); err != nil {
			return err
		}
		e.Date = fromNullTime(date)
		if p := byID[projectID]; p != nil {
			p.Expenses = append(p.Expenses, e)
		}
	}
	return rows.Err()
}

func scanAllocation(row pgx.Row) (string, entity.Allocation, error) {
	var (
		projectID  string
		a          entity.Allocation
		start, end *time.Time
	)
	err := row.Scan(
		&projectID, &a.EmployeeID, &a.EmployeeName, &a.AllocationPercentage, &a.Role,
		&start, &end, &a.AllocatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return "", entity.Allocation{}, err
	}
	a.StartDate = fromNullTime(start)
	a.EndDate = fromNullTime(end)
	return projectID, a, nil
}
