package allocation_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Recursos-api/internal/application/allocation"
	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/application/ports"
	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]*dto.EmployeeUtilizationDTO
	generations map[string]int64
	invalidated []string
	failGet     bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries:     make(map[string]*dto.EmployeeUtilizationDTO),
		generations: make(map[string]int64),
	}
}

func (c *fakeCache) Get(_ context.Context, id string) (*dto.EmployeeUtilizationDTO, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, false, errors.New("redis caído")
	}
	u, ok := c.entries[id]
	return u, ok, nil
}

func (c *fakeCache) Generation(_ context.Context, id string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return 0, errors.New("redis caído")
	}
	return c.generations[id], nil
}

func (c *fakeCache) Set(_ context.Context, id string, gen int64, u *dto.EmployeeUtilizationDTO) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[id] != gen {
		return false, nil
	}
	c.entries[id] = u
	return true, nil
}

func (c *fakeCache) Invalidate(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.generations[id]++
		delete(c.entries, id)
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []ports.AllocationEvent
	fail   bool
}

func (p *fakePublisher) Publish(_ context.Context, evt ports.AllocationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker caído")
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeMetrics struct {
	mu       sync.Mutex
	commands map[string]int
	over     int
}

func (m *fakeMetrics) ObserveCommand(command, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commands == nil {
		m.commands = make(map[string]int)
	}
	m.commands[command+":"+result]++
}

func (m *fakeMetrics) ObserveOverAllocation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.over++
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc       *allocation.UseCase
	users    *memory.UserRepo
	projects *memory.ProjectRepo
	cache    *fakeCache
	events   *fakePublisher
	metrics  *fakeMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		users:    memory.NewUserRepository(store),
		projects: memory.NewProjectRepository(store),
		cache:    newFakeCache(),
		events:   &fakePublisher{},
		metrics:  &fakeMetrics{},
	}
	f.uc = allocation.NewUseCase(f.projects, f.users, f.cache, f.events, f.metrics, nil)

	ctx := context.Background()
	for _, id := range []string{"E", "F", "G"} {
		require.NoError(t, f.users.Create(ctx, &entity.User{ID: id, Role: entity.RoleEmployee, FullName: "Empleado " + id}))
	}
	require.NoError(t, f.users.Create(ctx, &entity.User{ID: "M", Role: entity.RoleManager, FullName: "Manager"}))
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, f.projects.Create(ctx, &entity.Project{ID: id, Name: "Proyecto " + id, ManagerID: "M", Version: 1}))
	}
	return f
}

func pct(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func (f *fixture) allocate(t *testing.T, projectID, employeeID string, p int64) *dto.AllocationResult {
	t.Helper()
	res, err := f.uc.Allocate(context.Background(), projectID, dto.AllocateRequest{EmployeeID: employeeID, AllocationPercentage: pct(p), Role: "dev"})
	require.NoError(t, err)
	return res
}

func countAllocations(t *testing.T, f *fixture, projectID, employeeID string) int {
	t.Helper()
	p, err := f.projects.GetByID(context.Background(), projectID)
	require.NoError(t, err)
	n := 0
	for _, a := range p.Allocations {
		if a.EmployeeID == employeeID {
			n++
		}
	}
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// Allocate
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_GuardaNombreYSinAviso(t *testing.T) {
	f := newFixture(t)
	res := f.allocate(t, "A", "E", 60)

	assert.Equal(t, "Empleado E", res.Allocation.EmployeeName)
	assert.Equal(t, "A", res.Allocation.ProjectID)
	assert.Nil(t, res.Warning, "60 % no sobreasigna")
	assert.False(t, res.Allocation.AllocatedAt.IsZero())
}

func TestAllocate_DuplicadoSeRechaza(t *testing.T) {
	f := newFixture(t)
	f.allocate(t, "A", "E", 60)

	_, err := f.uc.Allocate(context.Background(), "A", dto.AllocateRequest{EmployeeID: "E", AllocationPercentage: pct(30)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateAllocation)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, 1, countAllocations(t, f, "A", "E"))
	p, _ := f.projects.GetByID(context.Background(), "A")
	assert.True(t, pct(60).Equal(p.Allocations[0].AllocationPercentage), "el segundo intento no modifica la asignación")
	assert.Equal(t, 1, f.metrics.commands["allocate:invalid"])
}

func TestAllocate_ProyectoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Allocate(context.Background(), "X", dto.AllocateRequest{EmployeeID: "E", AllocationPercentage: pct(10)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAllocate_EmpleadoInexistenteONoEmpleado(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Allocate(context.Background(), "A", dto.AllocateRequest{EmployeeID: "nadie", AllocationPercentage: pct(10)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Allocate(context.Background(), "A", dto.AllocateRequest{EmployeeID: "M", AllocationPercentage: pct(10)})
	assert.ErrorIs(t, err, domain.ErrNotFound, "un manager no es un empleado asignable")
}

func TestAllocate_PorcentajeFueraDeRango(t *testing.T) {
	f := newFixture(t)
	for _, p := range []int64{-1, 101} {
		_, err := f.uc.Allocate(context.Background(), "A", dto.AllocateRequest{EmployeeID: "E", AllocationPercentage: pct(p)})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "porcentaje %d", p)
	}
	assert.Zero(t, countAllocations(t, f, "A", "E"))
}

func TestAllocate_FechasInvalidas(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Allocate(context.Background(), "A", dto.AllocateRequest{EmployeeID: "E", AllocationPercentage: pct(10), StartDate: "2026-05-01", EndDate: "2026-04-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Allocate(context.Background(), "A", dto.AllocateRequest{EmployeeID: "E", AllocationPercentage: pct(10), StartDate: "01/05/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario 60 % + 70 %
// ──────────────────────────────────────────────────────────────────────────────

func TestEscenario_SesentaMasSetentaSobreasigna(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.allocate(t, "A", "E", 60)
	res := f.allocate(t, "B", "E", 70)

	require.NotNil(t, res.Warning, "la segunda asignación debe devolver aviso, no error")
	assert.True(t, pct(130).Equal(res.Warning.TotalAllocation))
	assert.True(t, pct(30).Equal(res.Warning.Excess))

	u, err := f.uc.EmployeeUtilization(ctx, "E")
	require.NoError(t, err)
	assert.True(t, pct(130).Equal(u.TotalAllocation))
	assert.True(t, pct(-30).Equal(u.AvailableCapacity))
	assert.Equal(t, 2, u.ProjectCount)
	assert.Equal(t, "over-allocated", u.Status)

	a, _ := f.projects.GetByID(ctx, "A")
	b, _ := f.projects.GetByID(ctx, "B")
	c, _ := f.projects.GetByID(ctx, "C")
	over := f.uc.OverAllocatedEmployees([]*entity.Project{a, b, c})
	require.Len(t, over, 1)
	assert.Equal(t, "E", over[0].EmployeeID)
	assert.Empty(t, f.uc.OverAllocatedEmployees([]*entity.Project{a, c}), "la vista acotada solo suma el conjunto recibido")

	assert.Equal(t, 1, f.metrics.over)
	assert.Contains(t, f.events.types(), ports.EventEmployeeOverAllocated)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update / Remove
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateAllocation_MezclaCamposYRefrescaNombre(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.allocate(t, "A", "E", 40)

	u, _ := f.users.GetByID(ctx, "E")
	u.FullName = "Empleada E Renombrada"
	require.NoError(t, f.users.Update(ctx, u))

	newPct := pct(55)
	res, err := f.uc.UpdateAllocation(ctx, "A", "E", dto.UpdateAllocationRequest{AllocationPercentage: &newPct})
	require.NoError(t, err)

	assert.True(t, pct(55).Equal(res.Allocation.AllocationPercentage))
	assert.Equal(t, "dev", res.Allocation.Role, "los campos no enviados se conservan")
	assert.Equal(t, "Empleada E Renombrada", res.Allocation.EmployeeName)
	assert.Equal(t, 1, countAllocations(t, f, "A", "E"))
}

func TestUpdateAllocation_SinAsignacionEsNotFound(t *testing.T) {
	f := newFixture(t)
	role := "qa"
	_, err := f.uc.UpdateAllocation(context.Background(), "A", "E", dto.UpdateAllocationRequest{Role: &role})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.UpdateAllocation(context.Background(), "X", "E", dto.UpdateAllocationRequest{Role: &role})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateAllocation_PorcentajeInvalido(t *testing.T) {
	f := newFixture(t)
	f.allocate(t, "A", "E", 40)
	bad := pct(150)
	_, err := f.uc.UpdateAllocation(context.Background(), "A", "E", dto.UpdateAllocationRequest{AllocationPercentage: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRemoveAllocation_Idempotente(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.allocate(t, "A", "E", 40)
	f.allocate(t, "A", "F", 20)

	require.NoError(t, f.uc.RemoveAllocation(ctx, "A", "E"))
	once, _ := f.projects.GetByID(ctx, "A")

	require.NoError(t, f.uc.RemoveAllocation(ctx, "A", "E"))
	twice, _ := f.projects.GetByID(ctx, "A")

	assert.Equal(t, once.Allocations, twice.Allocations)
	assert.Len(t, twice.Allocations, 1)

	removed := 0
	for _, typ := range f.events.types() {
		if typ == ports.EventAllocationRemoved {
			removed++
		}
	}
	assert.Equal(t, 1, removed, "el segundo remove no publica nada")
}

func TestRemoveAllocation_ProyectoInexistente(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.uc.RemoveAllocation(context.Background(), "X", "E"), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

// Secuencias aleatorias de allocate/update/remove: tras cada paso hay a lo sumo
// una asignación por empleado y la utilización coincide con la suma real.
func TestPropiedad_UnicidadYSumaTrasSecuenciasAleatorias(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	employees := []string{"E", "F", "G"}
	projects := []string{"A", "B", "C"}

	for round := 0; round < 5; round++ {
		f := newFixture(t)
		for step := 0; step < 60; step++ {
			p := projects[rng.Intn(len(projects))]
			e := employees[rng.Intn(len(employees))]
			v := pct(int64(rng.Intn(101)))
			switch rng.Intn(3) {
			case 0:
				_, err := f.uc.Allocate(ctx, p, dto.AllocateRequest{EmployeeID: e, AllocationPercentage: v})
				if err != nil {
					require.ErrorIs(t, err, domain.ErrDuplicateAllocation)
				}
			case 1:
				_, err := f.uc.UpdateAllocation(ctx, p, e, dto.UpdateAllocationRequest{AllocationPercentage: &v})
				if err != nil {
					require.ErrorIs(t, err, domain.ErrNotFound)
				}
			case 2:
				require.NoError(t, f.uc.RemoveAllocation(ctx, p, e))
			}

			for _, pid := range projects {
				for _, eid := range employees {
					require.LessOrEqual(t, countAllocations(t, f, pid, eid), 1, "ronda %d paso %d", round, step)
				}
			}
		}

		all, err := f.projects.List(ctx)
		require.NoError(t, err)
		for _, eid := range employees {
			want := decimal.Zero
			for _, p := range all {
				for _, a := range p.Allocations {
					if a.EmployeeID == eid {
						want = want.Add(a.AllocationPercentage)
					}
				}
			}
			u, err := f.uc.EmployeeUtilization(ctx, eid)
			require.NoError(t, err)
			assert.True(t, want.Equal(u.TotalAllocation), "empleado %s: esperado %s, obtenido %s", eid, want, u.TotalAllocation)
		}
	}
}

func TestAllocate_ConcurrenteMismoParSoloUnoGana(t *testing.T) {
	f := newFixture(t)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.uc.Allocate(context.Background(), "A", dto.AllocateRequest{EmployeeID: "E", AllocationPercentage: pct(int64(i))})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, success)
	assert.Equal(t, 1, countAllocations(t, f, "A", "E"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas, caché y nombres
// ──────────────────────────────────────────────────────────────────────────────

func TestEmployeeUtilization_SinAsignacionesEsCero(t *testing.T) {
	f := newFixture(t)
	u, err := f.uc.EmployeeUtilization(context.Background(), "G")
	require.NoError(t, err)
	assert.True(t, u.TotalAllocation.IsZero())
	assert.True(t, pct(100).Equal(u.AvailableCapacity))
	assert.Zero(t, u.ProjectCount)
	assert.Empty(t, u.Allocations)
}

func TestEmployeeUtilization_CacheSeInvalidaEnCadaCambio(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.allocate(t, "A", "E", 30)

	first, err := f.uc.EmployeeUtilization(ctx, "E")
	require.NoError(t, err)
	assert.True(t, pct(30).Equal(first.TotalAllocation))

	f.allocate(t, "B", "E", 20)
	second, err := f.uc.EmployeeUtilization(ctx, "E")
	require.NoError(t, err)
	assert.True(t, pct(50).Equal(second.TotalAllocation), "la caché no debe devolver el total anterior")

	require.NoError(t, f.uc.RemoveAllocation(ctx, "A", "E"))
	third, err := f.uc.EmployeeUtilization(ctx, "E")
	require.NoError(t, err)
	assert.True(t, pct(20).Equal(third.TotalAllocation))

	assert.GreaterOrEqual(t, len(f.cache.invalidated), 3)
}

// listHook ejecuta after una sola vez, justo después de la primera lectura de List.
type listHook struct {
	*memory.ProjectRepo
	once  sync.Once
	after func()
}

func (r *listHook) List(ctx context.Context) ([]*entity.Project, error) {
	projects, err := r.ProjectRepo.List(ctx)
	r.once.Do(r.after)
	return projects, err
}

func TestAllocate_BajaConcurrenteNoDejaTotalViejoEnCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	var uc *allocation.UseCase
	repo := &listHook{ProjectRepo: f.projects, after: func() {
		require.NoError(t, uc.RemoveAllocation(ctx, "A", "E"))
	}}
	uc = allocation.NewUseCase(repo, f.users, f.cache, nil, nil, nil)

	_, err := uc.Allocate(ctx, "A", dto.AllocateRequest{EmployeeID: "E", AllocationPercentage: pct(30)})
	require.NoError(t, err)
	require.Zero(t, countAllocations(t, f, "A", "E"))

	_, cached, err := f.cache.Get(ctx, "E")
	require.NoError(t, err)
	assert.False(t, cached, "los comandos solo invalidan")

	u, err := uc.EmployeeUtilization(ctx, "E")
	require.NoError(t, err)
	assert.True(t, u.TotalAllocation.IsZero(), "total %s, esperado 0", u.TotalAllocation)
}

func TestEmployeeUtilization_InvalidacionDuranteElCalculoDescartaEscritura(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.allocate(t, "A", "E", 30)
	var uc *allocation.UseCase
	repo := &listHook{ProjectRepo: f.projects, after: func() {
		require.NoError(t, uc.RemoveAllocation(ctx, "A", "E"))
	}}
	uc = allocation.NewUseCase(repo, f.users, f.cache, nil, nil, nil)

	first, err := uc.EmployeeUtilization(ctx, "E")
	require.NoError(t, err)
	assert.True(t, pct(30).Equal(first.TotalAllocation))

	_, cached, err := f.cache.Get(ctx, "E")
	require.NoError(t, err)
	assert.False(t, cached)

	second, err := uc.EmployeeUtilization(ctx, "E")
	require.NoError(t, err)
	assert.True(t, second.TotalAllocation.IsZero())
}

func TestEmployeeUtilization_GuardaEnCacheSinInvalidaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.allocate(t, "A", "E", 30)

	_, err := f.uc.EmployeeUtilization(ctx, "E")
	require.NoError(t, err)

	cached, ok, err := f.cache.Get(ctx, "E")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, pct(30).Equal(cached.TotalAllocation))
}

func TestEmployeeUtilization_FalloDeCacheNoEsFatal(t *testing.T) {
	f := newFixture(t)
	f.allocate(t, "A", "E", 30)
	f.cache.failGet = true

	u, err := f.uc.EmployeeUtilization(context.Background(), "E")
	require.NoError(t, err)
	assert.True(t, pct(30).Equal(u.TotalAllocation))
}

func TestAllocate_FalloDelBrokerNoEsFatal(t *testing.T) {
	f := newFixture(t)
	f.events.fail = true
	res := f.allocate(t, "A", "E", 30)
	assert.NotNil(t, res)
}

func TestEmployeeAllocations_AnotaProyecto(t *testing.T) {
	f := newFixture(t)
	f.allocate(t, "A", "E", 30)
	f.allocate(t, "C", "E", 10)
	f.allocate(t, "B", "F", 10)

	got, err := f.uc.EmployeeAllocations(context.Background(), "E")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].ProjectID)
	assert.Equal(t, "Proyecto A", got[0].ProjectName)
	assert.Equal(t, "C", got[1].ProjectID)
}

func TestRefreshEmployeeName_UsuarioBorradoEsUnknown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.allocate(t, "A", "E", 30)
	require.NoError(t, f.users.Delete(ctx, "E"))

	got, err := f.uc.RefreshEmployeeName(ctx, "A", "E")
	require.NoError(t, err)
	assert.Equal(t, entity.UnknownEmployeeName, got.EmployeeName)
}

func TestEventos_SecuenciaDeTipos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.allocate(t, "A", "E", 30)
	role := "lead"
	_, err := f.uc.UpdateAllocation(ctx, "A", "E", dto.UpdateAllocationRequest{Role: &role})
	require.NoError(t, err)
	require.NoError(t, f.uc.RemoveAllocation(ctx, "A", "E"))

	assert.Equal(t, []string{ports.EventAllocationCreated, ports.EventAllocationUpdated, ports.EventAllocationRemoved}, f.events.types())
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallos del almacenamiento
// ──────────────────────────────────────────────────────────────────────────────

type failingProjects struct {
	*memory.ProjectRepo
}

func (failingProjects) List(context.Context) ([]*entity.Project, error) {
	return nil, domain.StoreError("list projects", fmt.Errorf("timeout"))
}

func TestEmployeeUtilization_PropagaFalloDelAlmacenamiento(t *testing.T) {
	store := memory.NewStore()
	uc := allocation.NewUseCase(failingProjects{memory.NewProjectRepository(store)}, memory.NewUserRepository(store), nil, nil, nil, nil)

	_, err := uc.EmployeeUtilization(context.Background(), "E")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = uc.EmployeeAllocations(context.Background(), "E")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
