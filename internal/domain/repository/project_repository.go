package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Recursos-api/internal/domain/entity"
)

// ProjectRepository define el puerto de persistencia para Project con sus
// asignaciones y gastos embebidos. GetByID devuelve (nil, nil) si no existe.
//
// Las operaciones sobre asignaciones y gastos son atómicas por clave: dos
// escrituras concurrentes sobre empleados distintos del mismo proyecto no se pisan.
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	List(ctx context.Context) ([]*entity.Project, error)
	ListByManager(ctx context.Context, managerID string) ([]*entity.Project, error)
	// Update reemplaza los metadatos si project.Version coincide con la versión
	// almacenada (ErrConflict en caso contrario) e incrementa project.Version.
	Update(ctx context.Context, project *entity.Project) error
	// Delete elimina el proyecto y devuelve los empleados que tenía asignados en
	// ese momento, leídos de forma atómica con el borrado. No falla si no existe.
	Delete(ctx context.Context, id string) (allocated []string, err error)
	UpdateProgress(ctx context.Context, projectID string, progress int, notes string, at time.Time) error

	// AppendAllocation falla con ErrDuplicateAllocation si el empleado ya está asignado.
	AppendAllocation(ctx context.Context, projectID string, allocation entity.Allocation) error
	UpdateAllocation(ctx context.Context, projectID, employeeID string, patch entity.AllocationPatch, at time.Time) (*entity.Allocation, error)
	// RemoveAllocation indica si existía la asignación; ErrNotFound solo si falta el proyecto.
	RemoveAllocation(ctx context.Context, projectID, employeeID string) (bool, error)
	AppendExpense(ctx context.Context, projectID string, expense entity.Expense) error
}
