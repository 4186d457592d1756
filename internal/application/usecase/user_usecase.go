package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/domain/repository"
	"github.com/jhoicas/Recursos-api/internal/domain/resource"
)

// UserUseCase casos de uso del directorio de usuarios.
type UserUseCase struct {
	users    repository.UserRepository
	projects repository.ProjectRepository
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(users repository.UserRepository, projects repository.ProjectRepository) *UserUseCase {
	return &UserUseCase{users: users, projects: projects}
}

// Create crea un usuario.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !entity.ValidRole(in.Role) {
		return nil, domain.Invalid("role inválido: %s", in.Role)
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, domain.Invalid("full_name es obligatorio")
	}
	if in.Compensation.IsNegative() {
		return nil, domain.Invalid("compensation no puede ser negativa")
	}
	status, err := userStatus(in.Status)
	if err != nil {
		return nil, err
	}
	joining, err := dto.ParseDate("joining_date", in.JoiningDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:             uuid.New().String(),
		Role:           in.Role,
		FullName:       name,
		Email:          strings.TrimSpace(in.Email),
		Department:     in.Department,
		Designation:    in.Designation,
		JoiningDate:    joining,
		Compensation:   in.Compensation.Round(2),
		Skills:         normalizeTags(in.Skills),
		Certifications: normalizeTags(in.Certifications),
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	out := dto.FromUser(user)
	return &out, nil
}

// GetByID obtiene un usuario. ErrNotFound si no existe.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromUser(user)
	return &out, nil
}

// List lista usuarios; role vacío = todos.
func (uc *UserUseCase) List(ctx context.Context, role string) ([]dto.UserResponse, error) {
	var (
		list []*entity.User
		err  error
	)
	switch {
	case role == "":
		list, err = uc.users.List(ctx)
	case entity.ValidRole(role):
		list, err = uc.users.ListByRole(ctx, role)
	default:
		return nil, domain.Invalid("role inválido: %s", role)
	}
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, dto.FromUser(u))
	}
	return items, nil
}

// Update actualiza los datos de un usuario (sin habilidades ni certificaciones).
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Role != nil {
		if !entity.ValidRole(*in.Role) {
			return nil, domain.Invalid("role inválido: %s", *in.Role)
		}
		user.Role = *in.Role
	}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, domain.Invalid("full_name no puede quedar vacío")
		}
		user.FullName = name
	}
	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.Department != nil {
		user.Department = *in.Department
	}
	if in.Designation != nil {
		user.Designation = *in.Designation
	}
	if in.JoiningDate != nil {
		joining, err := dto.ParseDate("joining_date", *in.JoiningDate)
		if err != nil {
			return nil, err
		}
		user.JoiningDate = joining
	}
	if in.Compensation != nil {
		if in.Compensation.IsNegative() {
			return nil, domain.Invalid("compensation no puede ser negativa")
		}
		user.Compensation = in.Compensation.Round(2)
	}
	if in.Status != nil {
		status, err := userStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		user.Status = status
	}
	user.UpdatedAt = time.Now().UTC()
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	out := dto.FromUser(user)
	return &out, nil
}

// Delete elimina un usuario. Si alguna asignación lo referencia y force es
// false, no borra y devuelve ErrUserInUse junto con los proyectos afectados.
// Con force=true borra igualmente; las asignaciones quedan colgantes y se
// muestran como "Unknown".
func (uc *UserUseCase) Delete(ctx context.Context, id string, force bool) (*dto.DeleteUserResult, error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	projects, err := uc.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	refs := make([]dto.ProjectRefDTO, 0)
	for p := range resource.EmployeeAllocations(projects, id) {
		refs = append(refs, dto.ProjectRefDTO{ID: p.ID, Name: p.Name})
	}

	result := &dto.DeleteUserResult{ReferencedProjects: refs}
	if len(refs) > 0 && !force {
		return result, domain.ErrUserInUse
	}
	if err := uc.users.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	result.Deleted = true
	return result, nil
}

// AddSkill agrega una habilidad (sin duplicados).
func (uc *UserUseCase) AddSkill(ctx context.Context, userID, skill string) (*dto.UserResponse, error) {
	return uc.changeTag(ctx, userID, repository.UserTagSkills, skill, true)
}

// RemoveSkill quita una habilidad.
func (uc *UserUseCase) RemoveSkill(ctx context.Context, userID, skill string) (*dto.UserResponse, error) {
	return uc.changeTag(ctx, userID, repository.UserTagSkills, skill, false)
}

// AddCertification agrega una certificación (sin duplicados).
func (uc *UserUseCase) AddCertification(ctx context.Context, userID, cert string) (*dto.UserResponse, error) {
	return uc.changeTag(ctx, userID, repository.UserTagCertifications, cert, true)
}

// RemoveCertification quita una certificación.
func (uc *UserUseCase) RemoveCertification(ctx context.Context, userID, cert string) (*dto.UserResponse, error) {
	return uc.changeTag(ctx, userID, repository.UserTagCertifications, cert, false)
}

func (uc *UserUseCase) changeTag(ctx context.Context, userID string, field repository.UserTagField, value string, add bool) (*dto.UserResponse, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, domain.Invalid("%s: el valor es obligatorio", field)
	}
	var err error
	if add {
		err = uc.users.AddTag(ctx, userID, field, value)
	} else {
		err = uc.users.RemoveTag(ctx, userID, field, value)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return uc.GetByID(ctx, userID)
}

func (uc *UserUseCase) get(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrNotFound, id)
	}
	return user, nil
}

func userStatus(s string) (string, error) {
	switch s {
	case "":
		return entity.UserStatusActive, nil
	case entity.UserStatusActive, entity.UserStatusInactive:
		return s, nil
	}
	return "", domain.Invalid("status inválido: %s", s)
}

// normalizeTags recorta, descarta vacíos y elimina duplicados conservando el orden.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
