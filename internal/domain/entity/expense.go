package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de gasto.
const (
	ExpenseCategoryLabor     = "labor"
	ExpenseCategoryMaterials = "materials"
	ExpenseCategoryEquipment = "equipment"
	ExpenseCategoryOther     = "other"
)

// ExpenseCategories orden de presentación de las categorías.
var ExpenseCategories = []string{
	ExpenseCategoryLabor,
	ExpenseCategoryMaterials,
	ExpenseCategoryEquipment,
	ExpenseCategoryOther,
}

// Expense gasto registrado contra un proyecto. Solo se agrega, nunca se edita.
type Expense struct {
	ID          string
	Description string
	Amount      decimal.Decimal // > 0
	Category    string
	Date        time.Time
	CreatedAt   time.Time
}

// ValidExpenseCategory indica si category es una categoría reconocida.
func ValidExpenseCategory(category string) bool {
	for _, c := range ExpenseCategories {
		if c == category {
			return true
		}
	}
	return false
}
