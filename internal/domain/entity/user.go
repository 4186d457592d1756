package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Estados de User.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa una persona del directorio (admin, manager o empleado).
type User struct {
	ID             string
	Role           string // admin, manager, employee
	FullName       string
	Email          string
	Department     string
	Designation    string
	JoiningDate    time.Time // cero si no se informó
	Compensation   decimal.Decimal
	Skills         []string // conjunto, sin duplicados
	Certifications []string // conjunto, sin duplicados
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidRole indica si role es uno de los roles reconocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// CanManageProjects indica si el usuario puede ser responsable de proyectos.
func (u *User) CanManageProjects() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}
