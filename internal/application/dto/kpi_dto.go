package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrganizationKPIDTO respuesta de GET /api/kpis/organization.
// Se recalcula en cada llamada; no es una foto consistente en un instante.
type OrganizationKPIDTO struct {
	TotalEmployees         int             `json:"total_employees"` // usuarios con rol employee
	TotalProjects          int             `json:"total_projects"`
	ActiveProjects         int             `json:"active_projects"`
	TotalBudget            decimal.Decimal `json:"total_budget"`
	TotalSpent             decimal.Decimal `json:"total_spent"`
	BudgetUtilization      decimal.Decimal `json:"budget_utilization"`       // TotalSpent / TotalBudget * 100
	AvgResourceUtilization decimal.Decimal `json:"avg_resource_utilization"` // Σ porcentajes / empleados
	OverAllocatedCount     int             `json:"over_allocated_count"`
	GeneratedAt            time.Time       `json:"generated_at"`
}

// ProjectKPIDTO proyecto con sus métricas derivadas.
type ProjectKPIDTO struct {
	ProjectResponse
	TotalSpent        decimal.Decimal `json:"total_spent"`
	BudgetUtilization decimal.Decimal `json:"budget_utilization"`
	ResourceCount     int             `json:"resource_count"`
	TotalAllocation   decimal.Decimal `json:"total_allocation"` // Σ porcentajes dentro del proyecto
	RemainingBudget   decimal.Decimal `json:"remaining_budget"` // puede ser negativo
	ProgressBand      string          `json:"progress_band"`
}

// ManagerDashboardDTO respuesta de GET /api/kpis/managers/:id.
type ManagerDashboardDTO struct {
	ManagerID              string                     `json:"manager_id"`
	Projects               []ProjectKPIDTO            `json:"projects"`
	OverAllocatedEmployees []OverAllocatedEmployeeDTO `json:"over_allocated_employees"`
	ProjectCount           int                        `json:"project_count"`
	ActiveProjects         int                        `json:"active_projects"`
	TotalBudget            decimal.Decimal            `json:"total_budget"`
	TotalSpent             decimal.Decimal            `json:"total_spent"`
	TotalResources         int                        `json:"total_resources"` // empleados distintos
	BudgetUtilization      decimal.Decimal            `json:"budget_utilization"`
	GeneratedAt            time.Time                  `json:"generated_at"`
}

// ManagerReportDTO PDF generado del dashboard de un manager.
type ManagerReportDTO struct {
	FileName   string
	Content    []byte
	ArchiveKey string // vacío si no hay archivo configurado
}
