package memory

import (
	"context"
	"slices"
	"time"

	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación en memoria de UserRepository.
type UserRepo struct {
	s *Store
}

// NewUserRepository construye el adaptador sobre el Store.
func NewUserRepository(s *Store) *UserRepo {
	return &UserRepo{s: s}
}

// Create persiste un nuevo usuario. ErrConflict si el ID ya existe.
func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; ok {
		return domain.ErrConflict
	}
	r.s.users[user.ID] = cloneUser(user)
	r.s.userOrder = append(r.s.userOrder, user.ID)
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

// List devuelve los usuarios en orden de creación.
func (r *UserRepo) List(_ context.Context) ([]*entity.User, error) {
	return r.filter(func(*entity.User) bool { return true }), nil
}

// ListByRole filtra por rol.
func (r *UserRepo) ListByRole(_ context.Context, role string) ([]*entity.User, error) {
	return r.filter(func(u *entity.User) bool { return u.Role == role }), nil
}

func (r *UserRepo) filter(keep func(*entity.User) bool) []*entity.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.s.userOrder))
	for _, id := range r.s.userOrder {
		if u := r.s.users[id]; keep(u) {
			out = append(out, cloneUser(u))
		}
	}
	return out
}

// Update reemplaza el usuario. ErrNotFound si no existe.
func (r *UserRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

// Delete elimina el usuario; no falla si no existe.
func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; ok {
		delete(r.s.users, id)
		r.s.userOrder = removeID(r.s.userOrder, id)
	}
	return nil
}

// AddTag agrega value al conjunto indicado si no estaba.
func (r *UserRepo) AddTag(_ context.Context, userID string, field repository.UserTagField, value string) error {
	return r.mutateTags(userID, field, func(tags []string) []string {
		if slices.Contains(tags, value) {
			return tags
		}
		return append(tags, value)
	})
}

// RemoveTag quita value del conjunto indicado.
func (r *UserRepo) RemoveTag(_ context.Context, userID string, field repository.UserTagField, value string) error {
	return r.mutateTags(userID, field, func(tags []string) []string {
		return slices.DeleteFunc(tags, func(v string) bool { return v == value })
	})
}

func (r *UserRepo) mutateTags(userID string, field repository.UserTagField, fn func([]string) []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	switch field {
	case repository.UserTagSkills:
		u.Skills = fn(u.Skills)
	case repository.UserTagCertifications:
		u.Certifications = fn(u.Certifications)
	default:
		return domain.Invalid("campo de etiquetas desconocido: %s", field)
	}
	u.UpdatedAt = time.Now()
	return nil
}
