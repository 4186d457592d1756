package memory

import (
	"context"
	"slices"
	"time"

	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/domain/repository"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo implementación en memoria de ProjectRepository.
type ProjectRepo struct {
	s *Store
}

// NewProjectRepository construye el adaptador sobre el Store.
func NewProjectRepository(s *Store) *ProjectRepo {
	return &ProjectRepo{s: s}
}

// Create persiste un nuevo proyecto. ErrConflict si el ID ya existe.
func (r *ProjectRepo) Create(_ context.Context, project *entity.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[project.ID]; ok {
		return domain.ErrConflict
	}
	r.s.projects[project.ID] = cloneProject(project)
	r.s.projectOrder = append(r.s.projectOrder, project.ID)
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *ProjectRepo) GetByID(_ context.Context, id string) (*entity.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, nil
	}
	return cloneProject(p), nil
}

// List devuelve los proyectos en orden de creación.
func (r *ProjectRepo) List(_ context.Context) ([]*entity.Project, error) {
	return r.filter(func(*entity.Project) bool { return true }), nil
}

// ListByManager filtra por responsable.
func (r *ProjectRepo) ListByManager(_ context.Context, managerID string) ([]*entity.Project, error) {
	return r.filter(func(p *entity.Project) bool { return p.ManagerID == managerID }), nil
}

func (r *ProjectRepo) filter(keep func(*entity.Project) bool) []*entity.Project {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Project, 0, len(r.s.projectOrder))
	for _, id := range r.s.projectOrder {
		if p := r.s.projects[id]; keep(p) {
			out = append(out, cloneProject(p))
		}
	}
	return out
}

// Update reemplaza los metadatos si la versión coincide; no toca asignaciones,
// gastos ni avance.
func (r *ProjectRepo) Update(_ context.Context, project *entity.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.projects[project.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != project.Version {
		return domain.ErrConflict
	}
	cur.Name = project.Name
	cur.Description = project.Description
	cur.ManagerID = project.ManagerID
	cur.Budget = project.Budget
	cur.StartDate = project.StartDate
	cur.EndDate = project.EndDate
	cur.Status = project.Status
	cur.UpdatedAt = project.UpdatedAt
	cur.Version++
	project.Version = cur.Version
	return nil
}

// Delete elimina el proyecto con sus asignaciones y gastos; no falla si no existe.
func (r *ProjectRepo) Delete(_ context.Context, id string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, nil
	}
	allocated := make([]string, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		allocated = append(allocated, a.EmployeeID)
	}
	delete(r.s.projects, id)
	r.s.projectOrder = removeID(r.s.projectOrder, id)
	return allocated, nil
}

// UpdateProgress reemplaza avance y notas.
func (r *ProjectRepo) UpdateProgress(_ context.Context, projectID string, progress int, notes string, at time.Time) error {
	return r.mutate(projectID, func(p *entity.Project) error {
		p.Progress = progress
		p.ProgressNotes = notes
		p.LastProgressUpdate = at
		p.UpdatedAt = at
		return nil
	})
}

// AppendAllocation agrega la asignación si el empleado no estaba asignado.
func (r *ProjectRepo) AppendAllocation(_ context.Context, projectID string, allocation entity.Allocation) error {
	return r.mutate(projectID, func(p *entity.Project) error {
		if _, ok := p.FindAllocation(allocation.EmployeeID); ok {
			return domain.ErrDuplicateAllocation
		}
		p.Allocations = append(p.Allocations, allocation)
		p.UpdatedAt = allocation.AllocatedAt
		return nil
	})
}

// UpdateAllocation aplica el patch sobre la asignación del empleado.
func (r *ProjectRepo) UpdateAllocation(_ context.Context, projectID, employeeID string, patch entity.AllocationPatch, at time.Time) (*entity.Allocation, error) {
	var updated entity.Allocation
	err := r.mutate(projectID, func(p *entity.Project) error {
		i := slices.IndexFunc(p.Allocations, func(a entity.Allocation) bool { return a.EmployeeID == employeeID })
		if i < 0 {
			return domain.ErrNotFound
		}
		p.Allocations[i].Apply(patch, at)
		p.UpdatedAt = at
		updated = p.Allocations[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveAllocation quita la asignación del empleado si existe.
func (r *ProjectRepo) RemoveAllocation(_ context.Context, projectID, employeeID string) (bool, error) {
	removed := false
	err := r.mutate(projectID, func(p *entity.Project) error {
		before := len(p.Allocations)
		p.Allocations = slices.DeleteFunc(p.Allocations, func(a entity.Allocation) bool { return a.EmployeeID == employeeID })
		removed = len(p.Allocations) < before
		return nil
	})
	return removed, err
}

// AppendExpense agrega el gasto al final de la secuencia.
func (r *ProjectRepo) AppendExpense(_ context.Context, projectID string, expense entity.Expense) error {
	return r.mutate(projectID, func(p *entity.Project) error {
		p.Expenses = append(p.Expenses, expense)
		p.UpdatedAt = expense.CreatedAt
		return nil
	})
}

func (r *ProjectRepo) mutate(projectID string, fn func(*entity.Project) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[projectID]
	if !ok {
		return domain.ErrNotFound
	}
	return fn(p)
}
