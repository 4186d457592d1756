package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recursos-api/internal/domain/entity"
)

// CreateUserRequest entrada para crear un usuario del directorio.
type CreateUserRequest struct {
	Role           string          `json:"role" validate:"required,oneof=admin manager employee"`
	FullName       string          `json:"full_name" validate:"required,min=1,max=200"`
	Email          string          `json:"email" validate:"omitempty,email"`
	Department     string          `json:"department" validate:"max=100"`
	Designation    string          `json:"designation" validate:"max=100"`
	JoiningDate    string          `json:"joining_date" validate:"omitempty,datetime=2006-01-02"`
	Compensation   decimal.Decimal `json:"compensation" validate:"gte=0"`
	Skills         []string        `json:"skills" validate:"dive,required,max=100"`
	Certifications []string        `json:"certifications" validate:"dive,required,max=100"`
	Status         string          `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateUserRequest cambios parciales de un usuario (solo admin).
type UpdateUserRequest struct {
	Role         *string          `json:"role" validate:"omitempty,oneof=admin manager employee"`
	FullName     *string          `json:"full_name" validate:"omitempty,min=1,max=200"`
	Email        *string          `json:"email" validate:"omitempty,email"`
	Department   *string          `json:"department" validate:"omitempty,max=100"`
	Designation  *string          `json:"designation" validate:"omitempty,max=100"`
	JoiningDate  *string          `json:"joining_date" validate:"omitempty,datetime=2006-01-02"`
	Compensation *decimal.Decimal `json:"compensation" validate:"omitempty,gte=0"`
	Status       *string          `json:"status" validate:"omitempty,oneof=active inactive"`
}

// TagRequest entrada para agregar o quitar una habilidad o certificación.
type TagRequest struct {
	Value string `json:"value" validate:"required,max=100"`
}

// UserResponse salida de un usuario.
type UserResponse struct {
	ID             string          `json:"id"`
	Role           string          `json:"role"`
	FullName       string          `json:"full_name"`
	Email          string          `json:"email"`
	Department     string          `json:"department"`
	Designation    string          `json:"designation"`
	JoiningDate    string          `json:"joining_date,omitempty"`
	Compensation   decimal.Decimal `json:"compensation"`
	Skills         []string        `json:"skills"`
	Certifications []string        `json:"certifications"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// DeleteUserResult resultado de borrar un usuario. ReferencedProjects lista los
// proyectos que aún lo asignan; con force=false el borrado no se realiza.
type DeleteUserResult struct {
	Deleted            bool            `json:"deleted"`
	ReferencedProjects []ProjectRefDTO `json:"referenced_projects"`
}

// FromUser mapea un usuario de dominio.
func FromUser(u *entity.User) UserResponse {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	certs := u.Certifications
	if certs == nil {
		certs = []string{}
	}
	return UserResponse{
		ID:             u.ID,
		Role:           u.Role,
		FullName:       u.FullName,
		Email:          u.Email,
		Department:     u.Department,
		Designation:    u.Designation,
		JoiningDate:    FormatDate(u.JoiningDate),
		Compensation:   u.Compensation,
		Skills:         skills,
		Certifications: certs,
		Status:         u.Status,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// TokenResponse token emitido para un usuario del directorio.
type TokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
