// Package expense contiene el libro de gastos de los proyectos.
package expense

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/application/ports"
	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/domain/repository"
	"github.com/jhoicas/Recursos-api/internal/domain/resource"
)

// UseCase libro de gastos.
type UseCase struct {
	projects repository.ProjectRepository
	metrics  ports.CommandMetrics
	ids      *idGenerator
}

// NewUseCase construye el caso de uso. metrics puede ser nil.
func NewUseCase(projects repository.ProjectRepository, metrics ports.CommandMetrics) *UseCase {
	return &UseCase{projects: projects, metrics: metrics, ids: &idGenerator{}}
}

// AddExpense registra un gasto. El ID es un token monótono derivado del reloj,
// único dentro del proceso.
func (uc *UseCase) AddExpense(ctx context.Context, projectID string, in dto.AddExpenseRequest) (_ *dto.ExpenseDTO, err error) {
	defer func() {
		if uc.metrics != nil {
			uc.metrics.ObserveCommand("add_expense", ports.CommandResult(err))
		}
	}()

	if strings.TrimSpace(projectID) == "" {
		return nil, domain.Invalid("project_id es obligatorio")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, domain.Invalid("description es obligatoria")
	}
	if !in.Amount.IsPositive() {
		return nil, domain.Invalid("amount debe ser mayor que 0: %s", in.Amount.String())
	}
	if err := resource.ValidateScale("amount", in.Amount); err != nil {
		return nil, err
	}
	category := in.Category
	if category == "" {
		category = entity.ExpenseCategoryOther
	}
	if !entity.ValidExpenseCategory(category) {
		return nil, domain.Invalid("category inválida: %s", category)
	}
	date, err := dto.ParseDate("date", in.Date)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if date.IsZero() {
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	e := entity.Expense{
		ID:          uc.ids.next(now),
		Description: desc,
		Amount:      in.Amount,
		Category:    category,
		Date:        date,
		CreatedAt:   now,
	}
	if err := uc.projects.AppendExpense(ctx, projectID, e); err != nil {
		return nil, fmt.Errorf("add expense: %w", err)
	}
	out := dto.FromExpense(projectID, e)
	return &out, nil
}

// ListExpenses devuelve los gastos del proyecto con sus totales.
func (uc *UseCase) ListExpenses(ctx context.Context, projectID string) (*dto.ExpenseSummaryDTO, error) {
	p, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, projectID)
	}
	expenses := make([]dto.ExpenseDTO, 0, len(p.Expenses))
	for _, e := range p.Expenses {
		expenses = append(expenses, dto.FromExpense(p.ID, e))
	}
	return &dto.ExpenseSummaryDTO{
		ProjectID:         p.ID,
		Budget:            p.Budget,
		TotalSpent:        TotalExpenses(p),
		BudgetUtilization: BudgetUtilization(p).Round(2),
		ByCategory:        ExpensesByCategory(p),
		Expenses:          expenses,
	}, nil
}

// TotalExpenses Σ de los gastos del proyecto.
func (uc *UseCase) TotalExpenses(p *entity.Project) decimal.Decimal { return TotalExpenses(p) }

// BudgetUtilization porcentaje del presupuesto consumido; 0 si el presupuesto es 0.
func (uc *UseCase) BudgetUtilization(p *entity.Project) decimal.Decimal { return BudgetUtilization(p) }

// TotalExpenses Σ de los gastos del proyecto; sin gastos = 0.
func TotalExpenses(p *entity.Project) decimal.Decimal {
	return resource.TotalExpenses(p)
}

// BudgetUtilization total / budget × 100 cuando budget > 0, si no 0.
func BudgetUtilization(p *entity.Project) decimal.Decimal {
	return resource.ProjectBudgetUtilization(p)
}

// ExpensesByCategory totales por categoría en orden fijo.
func ExpensesByCategory(p *entity.Project) []dto.CategoryTotalDTO {
	totals := resource.ExpensesByCategory(p)
	out := make([]dto.CategoryTotalDTO, 0, len(entity.ExpenseCategories))
	for _, c := range entity.ExpenseCategories {
		out = append(out, dto.CategoryTotalDTO{Category: c, Total: totals[c]})
	}
	return out
}

// idGenerator produce IDs "<unix-nanos>-<seq>" estrictamente crecientes aunque
// el reloj repita o retroceda.
type idGenerator struct {
	mu   sync.Mutex
	last int64
	seq  uint64
}

func (g *idGenerator) next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := now.UnixNano()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	g.seq++
	return strconv.FormatInt(n, 10) + "-" + strconv.FormatUint(g.seq, 10)
}
