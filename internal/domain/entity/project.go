package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de Project.
const (
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on-hold"
	ProjectStatusCompleted = "completed"
)

// Project es la unidad de trabajo: agrega asignaciones y gastos.
// Cada empleado aparece como máximo una vez en Allocations.
type Project struct {
	ID                 string
	Name               string
	Description        string
	ManagerID          string // referencia débil a User
	Budget             decimal.Decimal
	StartDate          time.Time
	EndDate            time.Time
	Status             string
	Progress           int // 0..100
	ProgressNotes      string
	LastProgressUpdate time.Time // cero si nunca se reportó avance
	Allocations        []Allocation
	Expenses           []Expense
	Version            int64 // control de concurrencia optimista sobre los metadatos
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ValidProjectStatus indica si status es un estado reconocido.
func ValidProjectStatus(status string) bool {
	switch status {
	case ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted:
		return true
	}
	return false
}

// FindAllocation devuelve la asignación del empleado en el proyecto, si existe.
func (p *Project) FindAllocation(employeeID string) (Allocation, bool) {
	for _, a := range p.Allocations {
		if a.EmployeeID == employeeID {
			return a, true
		}
	}
	return Allocation{}, false
}
