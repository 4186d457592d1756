// Package allocation contiene el libro de asignaciones: altas, ediciones y bajas
// de la dedicación de un empleado a un proyecto, y la utilización derivada.
package allocation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/application/ports"
	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/domain/repository"
	"github.com/jhoicas/Recursos-api/internal/domain/resource"
	"github.com/jhoicas/Recursos-api/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/Recursos-api/internal/application/allocation")

// UseCase libro de asignaciones.
//
// La caché, el publicador de eventos y las métricas son opcionales (nil = deshabilitado).
// Sus fallos se registran como Warn y nunca hacen fallar el comando.
type UseCase struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
	cache    ports.UtilizationCache
	events   ports.EventPublisher
	metrics  ports.CommandMetrics
	log      *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	projects repository.ProjectRepository,
	users repository.UserRepository,
	cache ports.UtilizationCache,
	events ports.EventPublisher,
	metrics ports.CommandMetrics,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		projects: projects,
		users:    users,
		cache:    cache,
		events:   events,
		metrics:  metrics,
		log:      log.Component("allocation"),
	}
}

// ── Comandos ─────────────────────────────────────────────────────────────────

// Allocate asigna un empleado a un proyecto.
// Rechaza con ErrDuplicateAllocation si el empleado ya está en el proyecto:
// las ediciones posteriores van por UpdateAllocation.
func (uc *UseCase) Allocate(ctx context.Context, projectID string, in dto.AllocateRequest) (_ *dto.AllocationResult, err error) {
	ctx, span := tracer.Start(ctx, "allocation.Allocate", trace.WithAttributes(
		attribute.String("project.id", projectID),
		attribute.String("employee.id", in.EmployeeID),
	))
	defer func() { uc.finish(span, "allocate", err) }()

	if strings.TrimSpace(projectID) == "" || strings.TrimSpace(in.EmployeeID) == "" {
		return nil, domain.Invalid("project_id y employee_id son obligatorios")
	}
	if err := resource.ValidatePercentage(in.AllocationPercentage); err != nil {
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

	employee, err := uc.users.GetByID(ctx, in.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("allocate: %w", err)
	}
	if employee == nil || employee.Role != entity.RoleEmployee {
		return nil, fmt.Errorf("%w: empleado %s", domain.ErrNotFound, in.EmployeeID)
	}

	now := time.Now().UTC()
	a := entity.Allocation{
		EmployeeID:           employee.ID,
		EmployeeName:         employee.FullName,
		AllocationPercentage: in.AllocationPercentage,
		Role:                 strings.TrimSpace(in.Role),
		StartDate:            start,
		EndDate:              end,
		AllocatedAt:          now,
		UpdatedAt:            now,
	}
	if err := uc.projects.AppendAllocation(ctx, projectID, a); err != nil {
		return nil, fmt.Errorf("allocate: %w", err)
	}

	warning := uc.afterChange(ctx, ports.EventAllocationCreated, projectID, a)
	return &dto.AllocationResult{Allocation: dto.FromAllocation(projectID, a), Warning: warning}, nil
}

// UpdateAllocation aplica cambios parciales a la asignación del empleado y
// refresca el nombre cacheado desde el directorio.
func (uc *UseCase) UpdateAllocation(ctx context.Context, projectID, employeeID string, in dto.UpdateAllocationRequest) (_ *dto.AllocationResult, err error) {
	ctx, span := tracer.Start(ctx, "allocation.UpdateAllocation", trace.WithAttributes(
		attribute.String("project.id", projectID),
		attribute.String("employee.id", employeeID),
	))
	defer func() { uc.finish(span, "update_allocation", err) }()

	if strings.TrimSpace(projectID) == "" || strings.TrimSpace(employeeID) == "" {
		return nil, domain.Invalid("project_id y employee_id son obligatorios")
	}
	patch, err := buildPatch(in)
	if err != nil {
		return nil, err
	}
	name, err := uc.displayName(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("update allocation: %w", err)
	}
	patch.EmployeeName = &name

	updated, err := uc.projects.UpdateAllocation(ctx, projectID, employeeID, patch, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update allocation: %w", err)
	}

	warning := uc.afterChange(ctx, ports.EventAllocationUpdated, projectID, *updated)
	return &dto.AllocationResult{Allocation: dto.FromAllocation(projectID, *updated), Warning: warning}, nil
}

// RemoveAllocation quita la asignación. Es idempotente: si no existía no hace nada.
// Solo falla con ErrNotFound si el proyecto no existe.
func (uc *UseCase) RemoveAllocation(ctx context.Context, projectID, employeeID string) (err error) {
	ctx, span := tracer.Start(ctx, "allocation.RemoveAllocation", trace.WithAttributes(
		attribute.String("project.id", projectID),
		attribute.String("employee.id", employeeID),
	))
	defer func() { uc.finish(span, "remove_allocation", err) }()

	if strings.TrimSpace(projectID) == "" || strings.TrimSpace(employeeID) == "" {
		return domain.Invalid("project_id y employee_id son obligatorios")
	}
	removed, err := uc.projects.RemoveAllocation(ctx, projectID, employeeID)
	if err != nil {
		return fmt.Errorf("remove allocation: %w", err)
	}
	if !removed {
		return nil
	}

	uc.invalidate(ctx, employeeID)
	uc.publish(ctx, ports.AllocationEvent{
		Type:                 ports.EventAllocationRemoved,
		ProjectID:            projectID,
		EmployeeID:           employeeID,
		AllocationPercentage: decimal.Zero,
		OccurredAt:           time.Now().UTC(),
	})
	return nil
}

// RefreshEmployeeName vuelve a resolver el nombre del empleado en la asignación.
// Si el usuario ya no existe, queda "Unknown".
func (uc *UseCase) RefreshEmployeeName(ctx context.Context, projectID, employeeID string) (*dto.AllocationDTO, error) {
	name, err := uc.displayName(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("refresh employee name: %w", err)
	}
	updated, err := uc.projects.UpdateAllocation(ctx, projectID, employeeID, entity.AllocationPatch{EmployeeName: &name}, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("refresh employee name: %w", err)
	}
	uc.invalidate(ctx, employeeID)
	out := dto.FromAllocation(projectID, *updated)
	return &out, nil
}

// ── Consultas ────────────────────────────────────────────────────────────────

// EmployeeAllocations recorre todos los proyectos y devuelve las asignaciones del
// empleado anotadas con el proyecto, en el orden del recorrido.
func (uc *UseCase) EmployeeAllocations(ctx context.Context, employeeID string) ([]dto.AllocationDTO, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, domain.Invalid("employee_id es obligatorio")
	}
	projects, err := uc.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("employee allocations: %w", err)
	}
	return employeeAllocations(projects, employeeID), nil
}

// EmployeeUtilization utilización del empleado en toda la organización.
// Sirve desde la caché si hay una entrada vigente.
func (uc *UseCase) EmployeeUtilization(ctx context.Context, employeeID string) (*dto.EmployeeUtilizationDTO, error) {
	ctx, span := tracer.Start(ctx, "allocation.EmployeeUtilization", trace.WithAttributes(attribute.String("employee.id", employeeID)))
	defer span.End()

	if strings.TrimSpace(employeeID) == "" {
		return nil, domain.Invalid("employee_id es obligatorio")
	}
	if uc.cache != nil {
		cached, ok, err := uc.cache.Get(ctx, employeeID)
		switch {
		case err != nil:
			uc.log.Warn().Err(err).Str("employee_id", employeeID).Msg("caché de utilización no disponible")
		case ok:
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
	}

	gen, cacheable := uc.generation(ctx, employeeID)
	u, err := uc.computeUtilization(ctx, employeeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if cacheable {
		uc.storeInCache(ctx, employeeID, gen, u)
	}
	return u, nil
}

// OverAllocatedEmployees ver la función del paquete.
func (uc *UseCase) OverAllocatedEmployees(projects []*entity.Project) []dto.OverAllocatedEmployeeDTO {
	return OverAllocatedEmployees(projects)
}

// OverAllocatedEmployees empleados que superan el 100 % sumando solo dentro de
// projects (por ejemplo, los de un manager). No confundir con EmployeeUtilization,
// que suma sobre toda la organización.
func OverAllocatedEmployees(projects []*entity.Project) []dto.OverAllocatedEmployeeDTO {
	loads := resource.OverAllocated(projects)
	out := make([]dto.OverAllocatedEmployeeDTO, 0, len(loads))
	for _, l := range loads {
		out = append(out, dto.OverAllocatedEmployeeDTO{
			EmployeeID:      l.EmployeeID,
			EmployeeName:    l.EmployeeName,
			TotalAllocation: l.TotalAllocation,
			ProjectCount:    l.ProjectCount,
		})
	}
	return out
}

// ── Internos ─────────────────────────────────────────────────────────────────

func employeeAllocations(projects []*entity.Project, employeeID string) []dto.AllocationDTO {
	out := make([]dto.AllocationDTO, 0)
	for p, a := range resource.EmployeeAllocations(projects, employeeID) {
		item := dto.FromAllocation(p.ID, a)
		item.ProjectName = p.Name
		out = append(out, item)
	}
	return out
}

func (uc *UseCase) computeUtilization(ctx context.Context, employeeID string) (*dto.EmployeeUtilizationDTO, error) {
	projects, err := uc.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("employee utilization: %w", err)
	}
	u := resource.EmployeeUtilization(projects, employeeID)
	return &dto.EmployeeUtilizationDTO{
		EmployeeID:        employeeID,
		TotalAllocation:   u.TotalAllocation,
		AvailableCapacity: u.AvailableCapacity,
		ProjectCount:      u.ProjectCount,
		Status:            resource.UtilizationStatus(u.TotalAllocation),
		Allocations:       employeeAllocations(projects, employeeID),
	}, nil
}

// afterChange invalida la caché, recalcula la utilización del empleado y publica
// los eventos. Devuelve el aviso de sobreasignación si corresponde.
// No escribe en la caché: solo EmployeeUtilization la rellena.
func (uc *UseCase) afterChange(ctx context.Context, eventType, projectID string, a entity.Allocation) *dto.OverAllocationWarning {
	uc.invalidate(ctx, a.EmployeeID)
	now := time.Now().UTC()

	u, err := uc.computeUtilization(ctx, a.EmployeeID)
	if err != nil {
		uc.log.Warn().Err(err).Str("employee_id", a.EmployeeID).Msg("no se pudo recalcular la utilización tras el cambio")
		uc.publish(ctx, ports.AllocationEvent{Type: eventType, ProjectID: projectID, EmployeeID: a.EmployeeID, AllocationPercentage: a.AllocationPercentage, OccurredAt: now})
		return nil
	}
	uc.publish(ctx, ports.AllocationEvent{
		Type:                 eventType,
		ProjectID:            projectID,
		EmployeeID:           a.EmployeeID,
		AllocationPercentage: a.AllocationPercentage,
		TotalAllocation:      u.TotalAllocation,
		OccurredAt:           now,
	})

	if !u.TotalAllocation.GreaterThan(resource.FullCapacity) {
		return nil
	}
	excess := u.TotalAllocation.Sub(resource.FullCapacity)
	uc.log.Info().
		Str("employee_id", a.EmployeeID).
		Str("total_allocation", u.TotalAllocation.String()).
		Msg("empleado sobreasignado")
	if uc.metrics != nil {
		uc.metrics.ObserveOverAllocation()
	}
	uc.publish(ctx, ports.AllocationEvent{
		Type:            ports.EventEmployeeOverAllocated,
		EmployeeID:      a.EmployeeID,
		TotalAllocation: u.TotalAllocation,
		OccurredAt:      now,
	})
	return &dto.OverAllocationWarning{
		EmployeeID:      a.EmployeeID,
		EmployeeName:    a.EmployeeName,
		TotalAllocation: u.TotalAllocation,
		Excess:          excess,
		Message:         fmt.Sprintf("%s queda asignado al %s%% (excede en %s%%)", a.EmployeeName, u.TotalAllocation.String(), excess.String()),
	}
}

// displayName nombre canónico del empleado o "Unknown" si ya no existe.
func (uc *UseCase) displayName(ctx context.Context, employeeID string) (string, error) {
	u, err := uc.users.GetByID(ctx, employeeID)
	if err != nil {
		return "", err
	}
	if u == nil || u.FullName == "" {
		return entity.UnknownEmployeeName, nil
	}
	return u.FullName, nil
}

func (uc *UseCase) invalidate(ctx context.Context, employeeIDs ...string) {
	if uc.cache == nil || len(employeeIDs) == 0 {
		return
	}
	if err := uc.cache.Invalidate(ctx, employeeIDs...); err != nil {
		uc.log.Warn().Err(err).Strs("employee_ids", employeeIDs).Msg("no se pudo invalidar la caché de utilización")
	}
}

// generation lee la generación del empleado antes de calcular. false si no hay
// caché o no respondió: en ese caso el resultado no se guarda.
func (uc *UseCase) generation(ctx context.Context, employeeID string) (int64, bool) {
	if uc.cache == nil {
		return 0, false
	}
	gen, err := uc.cache.Generation(ctx, employeeID)
	if err != nil {
		uc.log.Warn().Err(err).Str("employee_id", employeeID).Msg("no se pudo leer la generación de la caché")
		return 0, false
	}
	return gen, true
}

func (uc *UseCase) storeInCache(ctx context.Context, employeeID string, gen int64, u *dto.EmployeeUtilizationDTO) {
	stored, err := uc.cache.Set(ctx, employeeID, gen, u)
	if err != nil {
		uc.log.Warn().Err(err).Str("employee_id", employeeID).Msg("no se pudo guardar la utilización en caché")
		return
	}
	if !stored {
		uc.log.Debug().Str("employee_id", employeeID).Msg("utilización descartada: la caché se invalidó durante el cálculo")
	}
}

func (uc *UseCase) publish(ctx context.Context, evt ports.AllocationEvent) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, evt); err != nil {
		uc.log.Warn().Err(err).Str("event", evt.Type).Str("employee_id", evt.EmployeeID).Msg("no se pudo publicar el evento")
	}
}

func (uc *UseCase) finish(span trace.Span, command string, err error) {
	if uc.metrics != nil {
		uc.metrics.ObserveCommand(command, ports.CommandResult(err))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func buildPatch(in dto.UpdateAllocationRequest) (entity.AllocationPatch, error) {
	var patch entity.AllocationPatch
	if in.AllocationPercentage != nil {
		if err := resource.ValidatePercentage(*in.AllocationPercentage); err != nil {
			return patch, err
		}
		p := *in.AllocationPercentage
		patch.AllocationPercentage = &p
	}
	if in.Role != nil {
		role := strings.TrimSpace(*in.Role)
		patch.Role = &role
	}
	if in.StartDate != nil {
		start, err := dto.ParseDate("start_date", *in.StartDate)
		if err != nil {
			return patch, err
		}
		patch.StartDate = &start
	}
	if in.EndDate != nil {
		end, err := dto.ParseDate("end_date", *in.EndDate)
		if err != nil {
			return patch, err
		}
		patch.EndDate = &end
	}
	if patch.StartDate != nil && patch.EndDate != nil {
		if err := dto.ValidateDateRange(*patch.StartDate, *patch.EndDate); err != nil {
			return patch, err
		}
	}
	return patch, nil
}
