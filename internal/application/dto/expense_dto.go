package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recursos-api/internal/domain/entity"
)

// AddExpenseRequest entrada para POST /api/projects/:id/expenses.
type AddExpenseRequest struct {
	Description string          `json:"description" validate:"required,max=500"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Category    string          `json:"category" validate:"omitempty,oneof=labor materials equipment other"`
	Date        string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// ExpenseDTO salida de un gasto.
type ExpenseDTO struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CategoryTotalDTO total gastado en una categoría.
type CategoryTotalDTO struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// ExpenseSummaryDTO respuesta de GET /api/projects/:id/expenses.
type ExpenseSummaryDTO struct {
	ProjectID         string             `json:"project_id"`
	Budget            decimal.Decimal    `json:"budget"`
	TotalSpent        decimal.Decimal    `json:"total_spent"`
	BudgetUtilization decimal.Decimal    `json:"budget_utilization"`
	ByCategory        []CategoryTotalDTO `json:"by_category"`
	Expenses          []ExpenseDTO       `json:"expenses"`
}

// FromExpense mapea un gasto de dominio.
func FromExpense(projectID string, e entity.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          e.ID,
		ProjectID:   projectID,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        FormatDate(e.Date),
		CreatedAt:   e.CreatedAt,
	}
}
