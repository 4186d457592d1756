package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownEmployeeName se muestra cuando la asignación apunta a un usuario inexistente.
const UnknownEmployeeName = "Unknown"

// Allocation asigna un porcentaje de la capacidad de un empleado a un proyecto.
// EmployeeName es una copia del nombre al momento de asignar y puede quedar desactualizada.
type Allocation struct {
	EmployeeID           string
	EmployeeName         string
	AllocationPercentage decimal.Decimal // 0..100
	Role                 string
	StartDate            time.Time
	EndDate              time.Time
	AllocatedAt          time.Time
	UpdatedAt            time.Time
}

// AllocationPatch cambios parciales sobre una asignación; nil = sin cambio.
type AllocationPatch struct {
	AllocationPercentage *decimal.Decimal
	Role                 *string
	StartDate            *time.Time
	EndDate              *time.Time
	EmployeeName         *string
}

// Apply aplica el patch sobre la asignación y marca UpdatedAt.
func (a *Allocation) Apply(p AllocationPatch, at time.Time) {
	if p.AllocationPercentage != nil {
		a.AllocationPercentage = *p.AllocationPercentage
	}
	if p.Role != nil {
		a.Role = *p.Role
	}
	if p.StartDate != nil {
		a.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		a.EndDate = *p.EndDate
	}
	if p.EmployeeName != nil {
		a.EmployeeName = *p.EmployeeName
	}
	a.UpdatedAt = at
}
