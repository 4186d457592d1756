package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recursos-api/internal/domain/entity"
)

// AllocateRequest entrada para POST /api/projects/:id/allocations.
type AllocateRequest struct {
	EmployeeID           string          `json:"employee_id" validate:"required"`
	AllocationPercentage decimal.Decimal `json:"allocation_percentage" validate:"gte=0,lte=100"`
	Role                 string          `json:"role" validate:"max=100"`
	StartDate            string          `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate              string          `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateAllocationRequest cambios parciales; los campos nil no se tocan.
type UpdateAllocationRequest struct {
	AllocationPercentage *decimal.Decimal `json:"allocation_percentage" validate:"omitempty,gte=0,lte=100"`
	Role                 *string          `json:"role" validate:"omitempty,max=100"`
	StartDate            *string          `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate              *string          `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// AllocationDTO salida de una asignación. ProjectName solo se informa en las
// vistas por empleado.
type AllocationDTO struct {
	ProjectID            string          `json:"project_id"`
	ProjectName          string          `json:"project_name,omitempty"`
	EmployeeID           string          `json:"employee_id"`
	EmployeeName         string          `json:"employee_name"`
	AllocationPercentage decimal.Decimal `json:"allocation_percentage"`
	Role                 string          `json:"role"`
	StartDate            string          `json:"start_date,omitempty"`
	EndDate              string          `json:"end_date,omitempty"`
	AllocatedAt          time.Time       `json:"allocated_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	Unresolved           bool            `json:"unresolved,omitempty"` // el empleado ya no existe en el directorio
}

// OverAllocationWarning aviso (no error) cuando un empleado supera el 100 %.
type OverAllocationWarning struct {
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name"`
	TotalAllocation decimal.Decimal `json:"total_allocation"`
	Excess          decimal.Decimal `json:"excess"`
	Message         string          `json:"message"`
}

// AllocationResult respuesta de allocate/update: la asignación guardada y, si
// aplica, el aviso de sobreasignación.
type AllocationResult struct {
	Allocation AllocationDTO          `json:"allocation"`
	Warning    *OverAllocationWarning `json:"warning,omitempty"`
}

// EmployeeUtilizationDTO respuesta de GET /api/employees/:id/utilization.
type EmployeeUtilizationDTO struct {
	EmployeeID        string          `json:"employee_id"`
	TotalAllocation   decimal.Decimal `json:"total_allocation"`
	AvailableCapacity decimal.Decimal `json:"available_capacity"` // negativa = sobreasignado
	ProjectCount      int             `json:"project_count"`
	Status            string          `json:"status"` // over-allocated|highly-utilized|well-utilized|under-utilized
	Allocations       []AllocationDTO `json:"allocations"`
}

// OverAllocatedEmployeeDTO empleado que supera el 100 % dentro de un conjunto de proyectos.
type OverAllocatedEmployeeDTO struct {
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name"`
	TotalAllocation decimal.Decimal `json:"total_allocation"`
	ProjectCount    int             `json:"project_count"`
}

// FromAllocation mapea una asignación de dominio.
func FromAllocation(projectID string, a entity.Allocation) AllocationDTO {
	return AllocationDTO{
		ProjectID:            projectID,
		EmployeeID:           a.EmployeeID,
		EmployeeName:         a.EmployeeName,
		AllocationPercentage: a.AllocationPercentage,
		Role:                 a.Role,
		StartDate:            FormatDate(a.StartDate),
		EndDate:              FormatDate(a.EndDate),
		AllocatedAt:          a.AllocatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}
