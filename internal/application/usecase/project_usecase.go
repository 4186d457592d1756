package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/application/ports"
	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/domain/repository"
	"github.com/jhoicas/Recursos-api/pkg/logger"
)

// ProjectUseCase casos de uso de proyectos (metadatos y control de acceso).
// Asignaciones, gastos y avance viven en sus propios casos de uso.
type ProjectUseCase struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
	cache    ports.UtilizationCache
	log      *logger.Logger
}

// NewProjectUseCase construye el caso de uso. cache puede ser nil.
func NewProjectUseCase(
	projects repository.ProjectRepository,
	users repository.UserRepository,
	cache ports.UtilizationCache,
	log *logger.Logger,
) *ProjectUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProjectUseCase{projects: projects, users: users, cache: cache, log: log.Component("projects")}
}

// Create crea un proyecto activo, sin asignaciones ni gastos, en versión 1.
// Un manager siempre queda como responsable; un admin puede indicar otro.
func (uc *ProjectUseCase) Create(ctx context.Context, actorID, actorRole string, in dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name es obligatorio")
	}
	if in.Budget.IsNegative() {
		return nil, domain.Invalid("budget no puede ser negativo")
	}
	managerID := actorID
	if actorRole == entity.RoleAdmin && in.ManagerID != "" {
		managerID = in.ManagerID
	}
	if err := uc.checkManager(ctx, managerID); err != nil {
		return nil, err
	}
	start, err := dto.ParseDate("start_date", in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := dto.ParseDate("end_date", in.EndDate)
	if err != nil {
		return nil, err
	}
	if err := dto.ValidateDateRange(start, end); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = entity.ProjectStatusActive
	}
	if !entity.ValidProjectStatus(status) {
		return nil, domain.Invalid("status inválido: %s", status)
	}

	now := time.Now().UTC()
	project := &entity.Project{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		ManagerID:   managerID,
		Budget:      in.Budget.Round(2),
		StartDate:   start,
		EndDate:     end,
		Status:      status,
		Allocations: []entity.Allocation{},
		Expenses:    []entity.Expense{},
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	out := dto.FromProject(project)
	return &out, nil
}

// GetByID obtiene un proyecto. ErrNotFound si no existe.
func (uc *ProjectUseCase) GetByID(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	project, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromProject(project)
	return &out, nil
}

// List lista todos los proyectos.
func (uc *ProjectUseCase) List(ctx context.Context) ([]dto.ProjectResponse, error) {
	list, err := uc.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return toProjectResponses(list), nil
}

// ListByManager lista los proyectos de un manager.
func (uc *ProjectUseCase) ListByManager(ctx context.Context, managerID string) ([]dto.ProjectResponse, error) {
	list, err := uc.projects.ListByManager(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("list projects by manager: %w", err)
	}
	return toProjectResponses(list), nil
}

// Update actualiza metadatos. in.Version debe coincidir con la almacenada;
// si otro escritor se adelantó devuelve ErrConflict.
func (uc *ProjectUseCase) Update(ctx context.Context, id string, in dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	project, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Version != in.Version {
		return nil, fmt.Errorf("%w: versión %d, actual %d", domain.ErrConflict, in.Version, project.Version)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name no puede quedar vacío")
		}
		project.Name = name
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.ManagerID != nil && *in.ManagerID != project.ManagerID {
		if err := uc.checkManager(ctx, *in.ManagerID); err != nil {
			return nil, err
		}
		project.ManagerID = *in.ManagerID
	}
	if in.Budget != nil {
		if in.Budget.IsNegative() {
			return nil, domain.Invalid("budget no puede ser negativo")
		}
		project.Budget = in.Budget.Round(2)
	}
	if in.StartDate != nil {
		if project.StartDate, err = dto.ParseDate("start_date", *in.StartDate); err != nil {
			return nil, err
		}
	}
	if in.EndDate != nil {
		if project.EndDate, err = dto.ParseDate("end_date", *in.EndDate); err != nil {
			return nil, err
		}
	}
	if err := dto.ValidateDateRange(project.StartDate, project.EndDate); err != nil {
		return nil, err
	}
	if in.Status != nil {
		if !entity.ValidProjectStatus(*in.Status) {
			return nil, domain.Invalid("status inválido: %s", *in.Status)
		}
		project.Status = *in.Status
	}
	project.UpdatedAt = time.Now().UTC()

	if err := uc.projects.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	out := dto.FromProject(project)
	return &out, nil
}

// Delete elimina un proyecto e invalida la utilización en caché de sus empleados.
// Borrar un proyecto inexistente no es error.
func (uc *ProjectUseCase) Delete(ctx context.Context, id string) error {
	allocated, err := uc.projects.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if uc.cache == nil || len(allocated) == 0 {
		return nil
	}
	if err := uc.cache.Invalidate(ctx, allocated...); err != nil {
		uc.log.Warn().Err(err).Str("project_id", id).Msg("no se pudo invalidar la utilización en caché")
	}
	return nil
}

// Authorize verifica que el actor pueda modificar el proyecto: un admin puede
// con todos, un manager solo con los suyos. ErrNotFound si el proyecto no existe.
func (uc *ProjectUseCase) Authorize(ctx context.Context, projectID, actorID, actorRole string) error {
	project, err := uc.get(ctx, projectID)
	if err != nil {
		return err
	}
	switch actorRole {
	case entity.RoleAdmin:
		return nil
	case entity.RoleManager:
		if project.ManagerID == actorID {
			return nil
		}
	}
	return fmt.Errorf("%w: el proyecto %s pertenece a otro responsable", domain.ErrForbidden, projectID)
}

func (uc *ProjectUseCase) get(ctx context.Context, id string) (*entity.Project, error) {
	project, err := uc.projects.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, id)
	}
	return project, nil
}

// checkManager exige que el responsable exista y tenga rol admin o manager.
func (uc *ProjectUseCase) checkManager(ctx context.Context, managerID string) error {
	if managerID == "" {
		return domain.Invalid("manager_id es obligatorio")
	}
	manager, err := uc.users.GetByID(ctx, managerID)
	if err != nil {
		return fmt.Errorf("get manager: %w", err)
	}
	if manager == nil || !manager.CanManageProjects() {
		return domain.Invalid("manager_id %s no corresponde a un manager", managerID)
	}
	return nil
}

func toProjectResponses(list []*entity.Project) []dto.ProjectResponse {
	items := make([]dto.ProjectResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.FromProject(p))
	}
	return items
}
