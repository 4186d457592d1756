// Package analytics contiene el agregador de KPIs: resúmenes de la organización,
// de cada proyecto y del conjunto de proyectos de un manager.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Recursos-api/internal/application/allocation"
	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/application/expense"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/domain/repository"
	"github.com/jhoicas/Recursos-api/internal/domain/resource"
)

var tracer = otel.Tracer("github.com/jhoicas/Recursos-api/internal/application/analytics")

// KPIUseCase agrega métricas a partir de usuarios y proyectos.
//
// Cada llamada recorre el almacenamiento completo; no hay totales mantenidos.
// Las lecturas no son una foto consistente: es un agregado de mejor esfuerzo.
type KPIUseCase struct {
	users    repository.UserRepository
	projects repository.ProjectRepository
}

// NewKPIUseCase construye el caso de uso.
func NewKPIUseCase(users repository.UserRepository, projects repository.ProjectRepository) *KPIUseCase {
	return &KPIUseCase{users: users, projects: projects}
}

type usersResult struct {
	users []*entity.User
	err   error
}

type projectsResult struct {
	projects []*entity.Project
	err      error
}

// load lee usuarios y proyectos en paralelo. listProjects elige el conjunto.
func (uc *KPIUseCase) load(ctx context.Context, listProjects func(context.Context) ([]*entity.Project, error)) ([]*entity.User, []*entity.Project, error) {
	usersCh := make(chan usersResult, 1)
	projectsCh := make(chan projectsResult, 1)

	go func() {
		users, err := uc.users.List(ctx)
		usersCh <- usersResult{users, err}
	}()
	go func() {
		projects, err := listProjects(ctx)
		projectsCh <- projectsResult{projects, err}
	}()

	u := <-usersCh
	p := <-projectsCh

	if u.err != nil {
		return nil, nil, fmt.Errorf("kpis: usuarios: %w", u.err)
	}
	if p.err != nil {
		return nil, nil, fmt.Errorf("kpis: proyectos: %w", p.err)
	}
	return u.users, p.projects, nil
}

// OrganizationKPIs resumen de toda la organización.
func (uc *KPIUseCase) OrganizationKPIs(ctx context.Context) (*dto.OrganizationKPIDTO, error) {
	ctx, span := tracer.Start(ctx, "kpi.Organization")
	defer span.End()

	users, projects, err := uc.load(ctx, uc.projects.List)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	employees := 0
	for _, u := range users {
		if u.Role == entity.RoleEmployee {
			employees++
		}
	}

	// ── Totales de proyectos ───────────────────────────────────────────────────
	active := 0
	totalBudget := decimal.Zero
	totalSpent := decimal.Zero
	totalAllocation := decimal.Zero
	for _, p := range projects {
		if p.Status == entity.ProjectStatusActive {
			active++
		}
		totalBudget = totalBudget.Add(p.Budget)
		totalSpent = totalSpent.Add(expense.TotalExpenses(p))
		totalAllocation = totalAllocation.Add(resource.ProjectAllocation(p))
	}

	avg := decimal.Zero
	if employees > 0 {
		avg = totalAllocation.Div(decimal.NewFromInt(int64(employees)))
	}

	span.SetAttributes(attribute.Int("kpi.projects", len(projects)), attribute.Int("kpi.employees", employees))
	return &dto.OrganizationKPIDTO{
		TotalEmployees:         employees,
		TotalProjects:          len(projects),
		ActiveProjects:         active,
		TotalBudget:            totalBudget.Round(2),
		TotalSpent:             totalSpent.Round(2),
		BudgetUtilization:      resource.BudgetUtilization(totalSpent, totalBudget).Round(2),
		AvgResourceUtilization: avg.Round(2),
		OverAllocatedCount:     len(resource.OverAllocated(projects)),
		GeneratedAt:            time.Now().UTC(),
	}, nil
}

// ProjectKPIs métricas de un proyecto. Devuelve (nil, nil) si el proyecto no
// existe: el llamador filtra los ausentes.
func (uc *KPIUseCase) ProjectKPIs(ctx context.Context, projectID string) (*dto.ProjectKPIDTO, error) {
	ctx, span := tracer.Start(ctx, "kpi.Project", trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	users, projects, err := uc.load(ctx, func(ctx context.Context) ([]*entity.Project, error) {
		p, err := uc.projects.GetByID(ctx, projectID)
		if err != nil || p == nil {
			return nil, err
		}
		return []*entity.Project{p}, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(projects) == 0 {
		return nil, nil
	}
	kpi := projectKPI(projects[0], directory(users))
	return &kpi, nil
}

// ManagerDashboardKPIs métricas de los proyectos de un manager más los
// empleados sobreasignados dentro de ese conjunto.
func (uc *KPIUseCase) ManagerDashboardKPIs(ctx context.Context, managerID string) (*dto.ManagerDashboardDTO, error) {
	ctx, span := tracer.Start(ctx, "kpi.ManagerDashboard", trace.WithAttributes(attribute.String("manager.id", managerID)))
	defer span.End()

	users, projects, err := uc.load(ctx, func(ctx context.Context) ([]*entity.Project, error) {
		return uc.projects.ListByManager(ctx, managerID)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	dir := directory(users)

	out := &dto.ManagerDashboardDTO{
		ManagerID:   managerID,
		Projects:    make([]dto.ProjectKPIDTO, 0, len(projects)),
		TotalBudget: decimal.Zero,
		TotalSpent:  decimal.Zero,
		GeneratedAt: time.Now().UTC(),
	}
	resources := make(map[string]struct{})
	for _, p := range projects {
		kpi := projectKPI(p, dir)
		out.Projects = append(out.Projects, kpi)
		out.TotalBudget = out.TotalBudget.Add(p.Budget)
		out.TotalSpent = out.TotalSpent.Add(kpi.TotalSpent)
		if p.Status == entity.ProjectStatusActive {
			out.ActiveProjects++
		}
		for _, a := range p.Allocations {
			resources[a.EmployeeID] = struct{}{}
		}
	}

	over := allocation.OverAllocatedEmployees(projects)
	for i := range over {
		if _, ok := dir[over[i].EmployeeID]; !ok {
			over[i].EmployeeName = entity.UnknownEmployeeName
		}
	}

	out.OverAllocatedEmployees = over
	out.ProjectCount = len(projects)
	out.TotalResources = len(resources)
	out.BudgetUtilization = resource.BudgetUtilization(out.TotalSpent, out.TotalBudget).Round(2)
	return out, nil
}

// directory índice de usuarios por ID para resolver referencias colgantes.
func directory(users []*entity.User) map[string]*entity.User {
	dir := make(map[string]*entity.User, len(users))
	for _, u := range users {
		dir[u.ID] = u
	}
	return dir
}

// projectKPI deriva las métricas de un proyecto. Las asignaciones cuyo empleado
// ya no existe se muestran como "Unknown" y no interrumpen el cálculo.
func projectKPI(p *entity.Project, dir map[string]*entity.User) dto.ProjectKPIDTO {
	base := dto.FromProject(p)
	for i := range base.Allocations {
		if _, ok := dir[base.Allocations[i].EmployeeID]; !ok {
			base.Allocations[i].EmployeeName = entity.UnknownEmployeeName
			base.Allocations[i].Unresolved = true
		}
	}
	spent := expense.TotalExpenses(p)
	return dto.ProjectKPIDTO{
		ProjectResponse:   base,
		TotalSpent:        spent,
		BudgetUtilization: expense.BudgetUtilization(p).Round(2),
		ResourceCount:     len(p.Allocations),
		TotalAllocation:   resource.ProjectAllocation(p),
		RemainingBudget:   resource.RemainingBudget(p),
		ProgressBand:      resource.ProgressBand(p.Progress),
	}
}
