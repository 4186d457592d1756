package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/infrastructure/memory"
)

func newProjectRepo(t *testing.T) *memory.ProjectRepo {
	t.Helper()
	repo := memory.NewProjectRepository(memory.NewStore())
	require.NoError(t, repo.Create(context.Background(), &entity.Project{ID: "P", Name: "Portal", Version: 1}))
	return repo
}

func TestAppendAllocation_ConcurrenteEmpleadosDistintosNoSePierden(t *testing.T) {
	ctx := context.Background()
	repo := newProjectRepo(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.AppendAllocation(ctx, "P", entity.Allocation{EmployeeID: fmt.Sprintf("e%02d", i), AllocationPercentage: decimal.NewFromInt(10)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	p, err := repo.GetByID(ctx, "P")
	require.NoError(t, err)
	assert.Len(t, p.Allocations, 50, "ninguna escritura concurrente debe perderse")
}

func TestAppendAllocation_ConcurrenteMismoEmpleadoSoloUnaGana(t *testing.T) {
	ctx := context.Background()
	repo := newProjectRepo(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.AppendAllocation(ctx, "P", entity.Allocation{EmployeeID: "E", AllocationPercentage: decimal.NewFromInt(10)})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrDuplicateAllocation)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	p, _ := repo.GetByID(ctx, "P")
	assert.Len(t, p.Allocations, 1)
}

func TestUpdate_VersionDesactualizadaEsConflicto(t *testing.T) {
	ctx := context.Background()
	repo := newProjectRepo(t)

	first, _ := repo.GetByID(ctx, "P")
	second, _ := repo.GetByID(ctx, "P")

	first.Name = "Portal v2"
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Name = "Otro nombre"
	assert.ErrorIs(t, repo.Update(ctx, second), domain.ErrConflict)

	stored, _ := repo.GetByID(ctx, "P")
	assert.Equal(t, "Portal v2", stored.Name)
}

func TestUpdate_NoPisaAsignaciones(t *testing.T) {
	ctx := context.Background()
	repo := newProjectRepo(t)

	snapshot, _ := repo.GetByID(ctx, "P")
	require.NoError(t, repo.AppendAllocation(ctx, "P", entity.Allocation{EmployeeID: "E", AllocationPercentage: decimal.NewFromInt(40)}))

	snapshot.Description = "nueva descripción"
	require.NoError(t, repo.Update(ctx, snapshot))

	stored, _ := repo.GetByID(ctx, "P")
	assert.Len(t, stored.Allocations, 1, "actualizar metadatos no debe reescribir las asignaciones")
}

func TestGetByID_DevuelveCopia(t *testing.T) {
	ctx := context.Background()
	repo := newProjectRepo(t)
	require.NoError(t, repo.AppendAllocation(ctx, "P", entity.Allocation{EmployeeID: "E", AllocationPercentage: decimal.NewFromInt(40)}))

	p, _ := repo.GetByID(ctx, "P")
	p.Allocations[0].AllocationPercentage = decimal.NewFromInt(99)

	again, _ := repo.GetByID(ctx, "P")
	assert.True(t, decimal.NewFromInt(40).Equal(again.Allocations[0].AllocationPercentage))
}

func TestRemoveAllocation_ProyectoInexistente(t *testing.T) {
	repo := newProjectRepo(t)
	_, err := repo.RemoveAllocation(context.Background(), "X", "E")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProgress_ReemplazaNotas(t *testing.T) {
	ctx := context.Background()
	repo := newProjectRepo(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpdateProgress(ctx, "P", 45, "halfway", at))
	require.NoError(t, repo.UpdateProgress(ctx, "P", 40, "revised", at.Add(time.Hour)))

	p, _ := repo.GetByID(ctx, "P")
	assert.Equal(t, 40, p.Progress)
	assert.Equal(t, "revised", p.ProgressNotes)
	assert.Equal(t, at.Add(time.Hour), p.LastProgressUpdate)
	assert.ErrorIs(t, repo.UpdateProgress(ctx, "X", 1, "", at), domain.ErrNotFound)
}

func TestDelete_DevuelveEmpleadosAsignados(t *testing.T) {
	ctx := context.Background()
	repo := newProjectRepo(t)
	for _, id := range []string{"e1", "e2"} {
		require.NoError(t, repo.AppendAllocation(ctx, "P", entity.Allocation{EmployeeID: id, AllocationPercentage: decimal.NewFromInt(10)}))
	}

	allocated, err := repo.Delete(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, allocated)

	p, err := repo.GetByID(ctx, "P")
	require.NoError(t, err)
	assert.Nil(t, p)

	allocated, err = repo.Delete(ctx, "P")
	require.NoError(t, err)
	assert.Empty(t, allocated)
}
