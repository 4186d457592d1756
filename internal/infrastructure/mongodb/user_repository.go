package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre MongoDB.
type UserRepo struct {
	db   *DB
	coll *mongo.Collection
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(db *DB) *UserRepo {
	return &UserRepo{db: db, coll: db.db.Collection(usersCollection)}
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toUserDoc(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
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

	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, domain.StoreError("get user by id", err)
	}
	return doc.toEntity(), nil
}

// List devuelve los usuarios en orden de creación.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	return r.find(ctx, bson.M{})
}

// ListByRole filtra por rol.
func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]*entity.User, error) {
	return r.find(ctx, bson.M{"role": role})
}

func (r *UserRepo) find(ctx context.Context, filter bson.M) ([]*entity.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.StoreError("list users", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.StoreError("decode users", err)
	}
	list := make([]*entity.User, 0, len(docs))
	for _, d := range docs {
		list = append(list, d.toEntity())
	}
	return list, nil
}

// Update reemplaza los datos del usuario sin tocar habilidades ni certificaciones.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	doc := toUserDoc(user)
	res, err := r.coll.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
		"role":         doc.Role,
		"fullName":     doc.FullName,
		"email":        doc.Email,
		"department":   doc.Department,
		"designation":  doc.Designation,
		"joiningDate":  doc.JoiningDate,
		"compensation": doc.Compensation,
		"status":       doc.Status,
		"updatedAt":    doc.UpdatedAt,
	}})
	if err != nil {
		return domain.StoreError("update user", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el usuario; no falla si no existe.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return domain.StoreError("delete user", err)
	}
	return nil
}

// AddTag agrega value con $addToSet.
func (r *UserRepo) AddTag(ctx context.Context, userID string, field repository.UserTagField, value string) error {
	return r.updateTags(ctx, userID, "$addToSet", field, value)
}

// RemoveTag quita value con $pull.
func (r *UserRepo) RemoveTag(ctx context.Context, userID string, field repository.UserTagField, value string) error {
	return r.updateTags(ctx, userID, "$pull", field, value)
}

func (r *UserRepo) updateTags(ctx context.Context, userID, operator string, field repository.UserTagField, value string) error {
	switch field {
	case repository.UserTagSkills, repository.UserTagCertifications:
	default:
		return domain.Invalid("campo de etiquetas desconocido: %s", field)
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateByID(ctx, userID, bson.M{
		operator: bson.M{string(field): value},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return domain.StoreError(operator+" "+string(field), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, userID)
	}
	return nil
}
