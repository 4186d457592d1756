// Package progress registra el avance de los proyectos.
package progress

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/application/ports"
	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/repository"
	"github.com/jhoicas/Recursos-api/internal/domain/resource"
)

// UseCase seguimiento de avance. El avance es un único escalar: cada
// actualización reemplaza porcentaje y notas, sin historial. Se permite retroceder.
type UseCase struct {
	projects repository.ProjectRepository
	metrics  ports.CommandMetrics
}

// NewUseCase construye el caso de uso. metrics puede ser nil.
func NewUseCase(projects repository.ProjectRepository, metrics ports.CommandMetrics) *UseCase {
	return &UseCase{projects: projects, metrics: metrics}
}

// UpdateProgress fija el avance (0..100) y las notas del proyecto.
func (uc *UseCase) UpdateProgress(ctx context.Context, projectID string, percentage int, notes string) (_ *dto.ProgressDTO, err error) {
	defer func() {
		if uc.metrics != nil {
			uc.metrics.ObserveCommand("update_progress", ports.CommandResult(err))
		}
	}()

	if strings.TrimSpace(projectID) == "" {
		return nil, domain.Invalid("project_id es obligatorio")
	}
	if err := resource.ValidateProgress(percentage); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := uc.projects.UpdateProgress(ctx, projectID, percentage, notes, now); err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}
	return &dto.ProgressDTO{
		ProjectID:          projectID,
		Progress:           percentage,
		ProgressNotes:      notes,
		LastProgressUpdate: now,
		Band:               resource.ProgressBand(percentage),
	}, nil
}

// ProgressBand clasificación del avance para reportes.
func (uc *UseCase) ProgressBand(progress int) string {
	return resource.ProgressBand(progress)
}
