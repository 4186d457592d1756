package repository

import (
	"context"

	"github.com/jhoicas/Recursos-api/internal/domain/entity"
)

// UserTagField campo de tipo conjunto dentro de User.
type UserTagField string

const (
	UserTagSkills         UserTagField = "skills"
	UserTagCertifications UserTagField = "certifications"
)

// UserRepository define el puerto de persistencia para User (DIP).
// GetByID devuelve (nil, nil) si el usuario no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	ListByRole(ctx context.Context, role string) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error
	// AddTag agrega value al conjunto si no existe (operación atómica del almacenamiento).
	AddTag(ctx context.Context, userID string, field UserTagField, value string) error
	// RemoveTag quita value del conjunto; no falla si no estaba.
	RemoveTag(ctx context.Context, userID string, field UserTagField, value string) error
}
