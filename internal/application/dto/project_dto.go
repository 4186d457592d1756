package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recursos-api/internal/domain/entity"
)

// CreateProjectRequest entrada para crear un proyecto. ManagerID solo lo usa un
// admin; un manager siempre crea proyectos propios.
type CreateProjectRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	ManagerID   string          `json:"manager_id"`
	Budget      decimal.Decimal `json:"budget" validate:"gte=0"`
	StartDate   string          `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string          `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status      string          `json:"status" validate:"omitempty,oneof=active on-hold completed"`
}

// UpdateProjectRequest cambios de metadatos. Version es la leída por el cliente;
// si el proyecto cambió desde entonces la actualización falla con 409.
type UpdateProjectRequest struct {
	Version     int64            `json:"version" validate:"required,gt=0"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	ManagerID   *string          `json:"manager_id"`
	Budget      *decimal.Decimal `json:"budget" validate:"omitempty,gte=0"`
	StartDate   *string          `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string          `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status      *string          `json:"status" validate:"omitempty,oneof=active on-hold completed"`
}

// ProjectResponse salida de un proyecto con sus asignaciones y gastos.
type ProjectResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	ManagerID          string          `json:"manager_id"`
	Budget             decimal.Decimal `json:"budget"`
	StartDate          string          `json:"start_date,omitempty"`
	EndDate            string          `json:"end_date,omitempty"`
	Status             string          `json:"status"`
	Progress           int             `json:"progress"`
	ProgressNotes      string          `json:"progress_notes"`
	LastProgressUpdate *time.Time      `json:"last_progress_update,omitempty"`
	Allocations        []AllocationDTO `json:"allocations"`
	Expenses           []ExpenseDTO    `json:"expenses"`
	Version            int64           `json:"version"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ProjectRefDTO referencia corta a un proyecto.
type ProjectRefDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FromProject mapea un proyecto de dominio.
func FromProject(p *entity.Project) ProjectResponse {
	allocs := make([]AllocationDTO, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		allocs = append(allocs, FromAllocation(p.ID, a))
	}
	expenses := make([]ExpenseDTO, 0, len(p.Expenses))
	for _, e := range p.Expenses {
		expenses = append(expenses, FromExpense(p.ID, e))
	}
	return ProjectResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		ManagerID:          p.ManagerID,
		Budget:             p.Budget,
		StartDate:          FormatDate(p.StartDate),
		EndDate:            FormatDate(p.EndDate),
		Status:             p.Status,
		Progress:           p.Progress,
		ProgressNotes:      p.ProgressNotes,
		LastProgressUpdate: timePtr(p.LastProgressUpdate),
		Allocations:        allocs,
		Expenses:           expenses,
		Version:            p.Version,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}
