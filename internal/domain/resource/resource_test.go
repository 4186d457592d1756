package resource_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/domain/resource"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func project(id string, budget int64, allocs map[string]int64, expenses ...int64) *entity.Project {
	p := &entity.Project{ID: id, Name: "Proyecto " + id, Budget: dec(budget)}
	for emp, pct := range allocs {
		p.Allocations = append(p.Allocations, entity.Allocation{EmployeeID: emp, EmployeeName: "Nombre " + emp, AllocationPercentage: dec(pct)})
	}
	for i, amount := range expenses {
		p.Expenses = append(p.Expenses, entity.Expense{ID: string(rune('a' + i)), Amount: dec(amount), Category: entity.ExpenseCategoryLabor})
	}
	return p
}

// ── Presupuesto ──────────────────────────────────────────────────────────────

func TestBudget_EscenarioMilConDosGastos(t *testing.T) {
	p := project("P", 1000, nil, 300, 250)

	assert.True(t, dec(550).Equal(resource.TotalExpenses(p)), "total de gastos")
	assert.True(t, dec(55).Equal(resource.ProjectBudgetUtilization(p)), "utilización de presupuesto")
	assert.True(t, dec(450).Equal(resource.RemainingBudget(p)), "presupuesto restante")
}

func TestBudgetUtilization_PresupuestoCeroDevuelveCero(t *testing.T) {
	for _, spent := range []int64{0, 1, 999999} {
		got := resource.BudgetUtilization(dec(spent), decimal.Zero)
		assert.True(t, got.IsZero(), "gasto %d con presupuesto 0 debe dar 0", spent)
	}
}

func TestRemainingBudget_PuedeSerNegativo(t *testing.T) {
	p := project("P", 100, nil, 80, 70)
	assert.True(t, dec(-50).Equal(resource.RemainingBudget(p)))
	assert.True(t, p.Budget.Sub(resource.TotalExpenses(p)).Equal(resource.RemainingBudget(p)))
}

func TestTotalExpenses_SinGastosEsCero(t *testing.T) {
	assert.True(t, resource.TotalExpenses(&entity.Project{}).IsZero())
	assert.True(t, resource.TotalExpenses(nil).IsZero())
}

func TestExpensesByCategory_IncluyeCategoriasVacias(t *testing.T) {
	p := &entity.Project{Expenses: []entity.Expense{
		{Amount: dec(10), Category: entity.ExpenseCategoryLabor},
		{Amount: dec(5), Category: entity.ExpenseCategoryLabor},
		{Amount: dec(7), Category: "desconocida"},
	}}
	got := resource.ExpensesByCategory(p)

	require.Len(t, got, len(entity.ExpenseCategories))
	assert.True(t, dec(15).Equal(got[entity.ExpenseCategoryLabor]))
	assert.True(t, dec(7).Equal(got[entity.ExpenseCategoryOther]))
	assert.True(t, got[entity.ExpenseCategoryEquipment].IsZero())
}

// ── Utilización ──────────────────────────────────────────────────────────────

func TestEmployeeUtilization_SesentaMasSetenta(t *testing.T) {
	projects := []*entity.Project{
		project("A", 0, map[string]int64{"E": 60}),
		project("B", 0, map[string]int64{"E": 70, "F": 20}),
	}
	u := resource.EmployeeUtilization(projects, "E")

	assert.True(t, dec(130).Equal(u.TotalAllocation))
	assert.True(t, dec(-30).Equal(u.AvailableCapacity))
	assert.Equal(t, 2, u.ProjectCount)
	assert.Equal(t, resource.StatusOverAllocated, resource.UtilizationStatus(u.TotalAllocation))

	over := resource.OverAllocated(projects)
	require.Len(t, over, 1)
	assert.Equal(t, "E", over[0].EmployeeID)
	assert.True(t, dec(130).Equal(over[0].TotalAllocation))
}

func TestEmployeeUtilization_SinAsignacionesEsCero(t *testing.T) {
	u := resource.EmployeeUtilization([]*entity.Project{project("A", 0, map[string]int64{"F": 50})}, "E")
	assert.True(t, u.TotalAllocation.IsZero())
	assert.True(t, dec(100).Equal(u.AvailableCapacity))
	assert.Zero(t, u.ProjectCount)
}

func TestOverAllocated_EsAcotadoAlConjunto(t *testing.T) {
	a := project("A", 0, map[string]int64{"E": 60})
	b := project("B", 0, map[string]int64{"E": 70})

	assert.Empty(t, resource.OverAllocated([]*entity.Project{a}), "solo A no sobreasigna")
	assert.Len(t, resource.OverAllocated([]*entity.Project{a, b}), 1)
}

func TestOverAllocated_OrdenPorTotalYLuegoID(t *testing.T) {
	projects := []*entity.Project{
		project("A", 0, map[string]int64{"z": 90, "y": 90, "x": 100}),
		project("B", 0, map[string]int64{"z": 20, "y": 20, "x": 50}),
	}
	over := resource.OverAllocated(projects)
	require.Len(t, over, 3)
	assert.Equal(t, []string{"x", "y", "z"}, []string{over[0].EmployeeID, over[1].EmployeeID, over[2].EmployeeID})
}

func TestOverAllocated_NombreVacioEsUnknown(t *testing.T) {
	p := &entity.Project{ID: "A", Allocations: []entity.Allocation{{EmployeeID: "E", AllocationPercentage: dec(101)}}}
	over := resource.OverAllocated([]*entity.Project{p})
	require.Len(t, over, 1)
	assert.Equal(t, entity.UnknownEmployeeName, over[0].EmployeeName)
}

func TestEmployeeAllocations_CortaAlDetener(t *testing.T) {
	projects := []*entity.Project{
		project("A", 0, map[string]int64{"E": 10}),
		project("B", 0, map[string]int64{"E": 20}),
	}
	var seen []string
	for p := range resource.EmployeeAllocations(projects, "E") {
		seen = append(seen, p.ID)
		break
	}
	assert.Equal(t, []string{"A"}, seen)
}

func TestUtilizationStatus_Bandas(t *testing.T) {
	cases := map[int64]string{
		0:   resource.StatusUnderUtilized,
		50:  resource.StatusUnderUtilized,
		51:  resource.StatusWellUtilized,
		80:  resource.StatusWellUtilized,
		81:  resource.StatusHighlyUtilized,
		100: resource.StatusHighlyUtilized,
		101: resource.StatusOverAllocated,
	}
	for total, want := range cases {
		assert.Equal(t, want, resource.UtilizationStatus(dec(total)), "total %d", total)
	}
}

func TestProjectAllocation_SumaDentroDelProyecto(t *testing.T) {
	p := project("A", 0, map[string]int64{"E": 60, "F": 70})
	assert.True(t, dec(130).Equal(resource.ProjectAllocation(p)))
}

// ── Validaciones ─────────────────────────────────────────────────────────────

func TestValidatePercentage_Rango(t *testing.T) {
	assert.NoError(t, resource.ValidatePercentage(decimal.Zero))
	assert.NoError(t, resource.ValidatePercentage(dec(100)))
	assert.ErrorIs(t, resource.ValidatePercentage(dec(-1)), domain.ErrInvalidInput)
	assert.ErrorIs(t, resource.ValidatePercentage(decimal.RequireFromString("100.01")), domain.ErrInvalidInput)
}

func TestValidatePercentage_Decimales(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"33.33", false},
		{"30.000", false},
		{"0.5", false},
		{"33.335", true},
		{"0.001", true},
	}
	for _, tc := range cases {
		err := resource.ValidatePercentage(decimal.RequireFromString(tc.in))
		if tc.wantErr {
			assert.ErrorIs(t, err, domain.ErrInvalidInput, tc.in)
		} else {
			assert.NoError(t, err, tc.in)
		}
	}
}

func TestProgress_ValidacionYBandas(t *testing.T) {
	assert.NoError(t, resource.ValidateProgress(0))
	assert.NoError(t, resource.ValidateProgress(100))
	assert.ErrorIs(t, resource.ValidateProgress(-1), domain.ErrInvalidInput)
	assert.ErrorIs(t, resource.ValidateProgress(101), domain.ErrInvalidInput)

	assert.Equal(t, resource.ProgressAtRisk, resource.ProgressBand(24))
	assert.Equal(t, resource.ProgressStarted, resource.ProgressBand(25))
	assert.Equal(t, resource.ProgressAdvancing, resource.ProgressBand(50))
	assert.Equal(t, resource.ProgressOnTrack, resource.ProgressBand(75))
}
