package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/application/usecase"
	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/infrastructure/memory"
)

type recordingCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) Get(context.Context, string) (*dto.EmployeeUtilizationDTO, bool, error) {
	return nil, false, nil
}

func (c *recordingCache) Generation(context.Context, string) (int64, error) {
	return 0, nil
}

func (c *recordingCache) Set(context.Context, string, int64, *dto.EmployeeUtilizationDTO) (bool, error) {
	return false, nil
}

func (c *recordingCache) Invalidate(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, ids...)
	return nil
}

type projectFixture struct {
	env
	users    *usecase.UserUseCase
	projects *usecase.ProjectUseCase
	cache    *recordingCache
	admin    *dto.UserResponse
	manager  *dto.UserResponse
	employee *dto.UserResponse
}

func newProjectFixture(t *testing.T) projectFixture {
	t.Helper()
	e := newEnv()
	f := projectFixture{env: e, cache: &recordingCache{}}
	f.users = usecase.NewUserUseCase(e.users, e.projects)
	f.projects = usecase.NewProjectUseCase(e.projects, e.users, f.cache, nil)
	f.admin = createUser(t, f.users, entity.RoleAdmin, "Admin")
	f.manager = createUser(t, f.users, entity.RoleManager, "Manager")
	f.employee = createUser(t, f.users, entity.RoleEmployee, "Empleado")
	return f
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta
// ──────────────────────────────────────────────────────────────────────────────

func TestProjectCreate_ManagerQuedaComoResponsable(t *testing.T) {
	f := newProjectFixture(t)

	p, err := f.projects.Create(context.Background(), f.manager.ID, entity.RoleManager, dto.CreateProjectRequest{
		Name:      "CRM",
		ManagerID: f.admin.ID,
		Budget:    decimal.RequireFromString("1000.456"),
		StartDate: "2025-01-01",
		EndDate:   "2025-06-30",
	})
	require.NoError(t, err)

	assert.Equal(t, f.manager.ID, p.ManagerID)
	assert.Equal(t, entity.ProjectStatusActive, p.Status)
	assert.Equal(t, int64(1), p.Version)
	assert.True(t, decimal.RequireFromString("1000.46").Equal(p.Budget))
	assert.Empty(t, p.Allocations)
	assert.Empty(t, p.Expenses)
	assert.Equal(t, 0, p.Progress)
}

func TestProjectCreate_AdminPuedeDelegar(t *testing.T) {
	f := newProjectFixture(t)

	p, err := f.projects.Create(context.Background(), f.admin.ID, entity.RoleAdmin, dto.CreateProjectRequest{
		Name:      "ERP",
		ManagerID: f.manager.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, f.manager.ID, p.ManagerID)
}

func TestProjectCreate_ResponsableNoManager(t *testing.T) {
	f := newProjectFixture(t)

	_, err := f.projects.Create(context.Background(), f.admin.ID, entity.RoleAdmin, dto.CreateProjectRequest{
		Name:      "ERP",
		ManagerID: f.employee.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProjectCreate_FechasInvertidas(t *testing.T) {
	f := newProjectFixture(t)

	_, err := f.projects.Create(context.Background(), f.manager.ID, entity.RoleManager, dto.CreateProjectRequest{
		Name:      "ERP",
		StartDate: "2025-06-01",
		EndDate:   "2025-01-01",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Actualización con versión
// ──────────────────────────────────────────────────────────────────────────────

func TestProjectUpdate_VersionObsoletaEsConflicto(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, f.manager.ID, entity.RoleManager, dto.CreateProjectRequest{Name: "CRM"})
	require.NoError(t, err)

	name := "CRM v2"
	out, err := f.projects.Update(ctx, p.ID, dto.UpdateProjectRequest{Version: p.Version, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "CRM v2", out.Name)
	assert.Equal(t, int64(2), out.Version)

	other := "CRM v3"
	_, err = f.projects.Update(ctx, p.ID, dto.UpdateProjectRequest{Version: p.Version, Name: &other})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := f.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "CRM v2", got.Name)
}

func TestProjectUpdate_EstadoInvalido(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, f.manager.ID, entity.RoleManager, dto.CreateProjectRequest{Name: "CRM"})
	require.NoError(t, err)

	status := "archivado"
	_, err = f.projects.Update(ctx, p.ID, dto.UpdateProjectRequest{Version: p.Version, Status: &status})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProjectUpdate_Inexistente(t *testing.T) {
	f := newProjectFixture(t)

	_, err := f.projects.Update(context.Background(), "nada", dto.UpdateProjectRequest{Version: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Listado, baja y acceso
// ──────────────────────────────────────────────────────────────────────────────

func TestProjectListByManager(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	_, err := f.projects.Create(ctx, f.manager.ID, entity.RoleManager, dto.CreateProjectRequest{Name: "A"})
	require.NoError(t, err)
	_, err = f.projects.Create(ctx, f.admin.ID, entity.RoleAdmin, dto.CreateProjectRequest{Name: "B"})
	require.NoError(t, err)

	all, err := f.projects.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.projects.ListByManager(ctx, f.manager.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "A", mine[0].Name)
}

func TestProjectDelete_InvalidaUtilizacionDeEmpleados(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, f.manager.ID, entity.RoleManager, dto.CreateProjectRequest{Name: "CRM"})
	require.NoError(t, err)
	require.NoError(t, f.env.projects.AppendAllocation(ctx, p.ID, entity.Allocation{
		EmployeeID:           f.employee.ID,
		AllocationPercentage: decimal.NewFromInt(40),
	}))

	require.NoError(t, f.projects.Delete(ctx, p.ID))
	assert.Equal(t, []string{f.employee.ID}, f.cache.invalidated)

	_, err = f.projects.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, f.projects.Delete(ctx, p.ID))
}

// deleteHook ejecuta before justo antes del borrado real.
type deleteHook struct {
	*memory.ProjectRepo
	before func()
}

func (r *deleteHook) Delete(ctx context.Context, id string) ([]string, error) {
	r.before()
	return r.ProjectRepo.Delete(ctx, id)
}

func TestProjectDelete_InvalidaAsignacionRecienCreada(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, f.manager.ID, entity.RoleManager, dto.CreateProjectRequest{Name: "CRM"})
	require.NoError(t, err)
	require.NoError(t, f.env.projects.AppendAllocation(ctx, p.ID, entity.Allocation{
		EmployeeID:           f.employee.ID,
		AllocationPercentage: decimal.NewFromInt(40),
	}))
	late := createUser(t, f.users, entity.RoleEmployee, "Tardío")

	repo := &deleteHook{ProjectRepo: f.env.projects, before: func() {
		require.NoError(t, f.env.projects.AppendAllocation(ctx, p.ID, entity.Allocation{
			EmployeeID:           late.ID,
			AllocationPercentage: decimal.NewFromInt(30),
		}))
	}}
	uc := usecase.NewProjectUseCase(repo, f.env.users, f.cache, nil)

	require.NoError(t, uc.Delete(ctx, p.ID))
	assert.ElementsMatch(t, []string{f.employee.ID, late.ID}, f.cache.invalidated)
}

func TestProjectAuthorize(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, f.manager.ID, entity.RoleManager, dto.CreateProjectRequest{Name: "CRM"})
	require.NoError(t, err)
	otro := createUser(t, f.users, entity.RoleManager, "Otro")

	assert.NoError(t, f.projects.Authorize(ctx, p.ID, f.admin.ID, entity.RoleAdmin))
	assert.NoError(t, f.projects.Authorize(ctx, p.ID, f.manager.ID, entity.RoleManager))
	assert.ErrorIs(t, f.projects.Authorize(ctx, p.ID, otro.ID, entity.RoleManager), domain.ErrForbidden)
	assert.ErrorIs(t, f.projects.Authorize(ctx, p.ID, f.employee.ID, entity.RoleEmployee), domain.ErrForbidden)
	assert.ErrorIs(t, f.projects.Authorize(ctx, "nada", f.admin.ID, entity.RoleAdmin), domain.ErrNotFound)
}
