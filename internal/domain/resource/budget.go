package resource

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Scale decimales que conservan los almacenamientos en montos y porcentajes.
const Scale = 2

// ValidateScale rechaza valores con más de Scale decimales significativos, que el
// almacenamiento redondearía. "30.000" es válido; "33.335" no.
func ValidateScale(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(Scale)) {
		return domain.Invalid("%s admite como máximo %d decimales: %s", field, Scale, d.String())
	}
	return nil
}

// TotalExpenses Σ de los montos del proyecto; sin gastos = 0.
func TotalExpenses(p *entity.Project) decimal.Decimal {
	total := decimal.Zero
	if p == nil {
		return total
	}
	for _, e := range p.Expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// BudgetUtilization spent / budget × 100. Con presupuesto 0 (o negativo) devuelve 0.
func BudgetUtilization(spent, budget decimal.Decimal) decimal.Decimal {
	if !budget.IsPositive() {
		return decimal.Zero
	}
	return spent.Div(budget).Mul(hundred)
}

// ProjectBudgetUtilization BudgetUtilization aplicado a un proyecto.
func ProjectBudgetUtilization(p *entity.Project) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return BudgetUtilization(TotalExpenses(p), p.Budget)
}

// RemainingBudget budget - gastado; negativo cuando hay sobrecosto.
func RemainingBudget(p *entity.Project) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return p.Budget.Sub(TotalExpenses(p))
}

// ExpensesByCategory totales por categoría en el orden de entity.ExpenseCategories.
// Las categorías sin gastos aparecen con 0.
func ExpensesByCategory(p *entity.Project) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(entity.ExpenseCategories))
	for _, c := range entity.ExpenseCategories {
		out[c] = decimal.Zero
	}
	if p == nil {
		return out
	}
	for _, e := range p.Expenses {
		cat := e.Category
		if !entity.ValidExpenseCategory(cat) {
			cat = entity.ExpenseCategoryOther
		}
		out[cat] = out[cat].Add(e.Amount)
	}
	return out
}
