package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de eventos de asignación.
const (
	EventAllocationCreated     = "allocation.created"
	EventAllocationUpdated     = "allocation.updated"
	EventAllocationRemoved     = "allocation.removed"
	EventEmployeeOverAllocated = "employee.over_allocated"
)

// AllocationEvent mensaje publicado tras cada cambio de asignación.
type AllocationEvent struct {
	Type                 string          `json:"type"`
	ProjectID            string          `json:"project_id,omitempty"`
	EmployeeID           string          `json:"employee_id"`
	AllocationPercentage decimal.Decimal `json:"allocation_percentage"`
	TotalAllocation      decimal.Decimal `json:"total_allocation"`
	OccurredAt           time.Time       `json:"occurred_at"`
}

// EventPublisher puerto de salida hacia el broker de mensajes.
type EventPublisher interface {
	Publish(ctx context.Context, event AllocationEvent) error
}
