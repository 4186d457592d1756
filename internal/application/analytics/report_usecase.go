package analytics

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/application/ports"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/domain/repository"
	"github.com/jhoicas/Recursos-api/pkg/logger"
)

// ReportUseCase genera el PDF del dashboard de un manager y, si hay archivo
// configurado, lo guarda.
type ReportUseCase struct {
	kpis      *KPIUseCase
	users     repository.UserRepository
	generator ports.ReportGenerator
	archive   ports.ReportArchive // nil = no se archiva
	prefix    string
	log       *logger.Logger
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	kpis *KPIUseCase,
	users repository.UserRepository,
	generator ports.ReportGenerator,
	archive ports.ReportArchive,
	prefix string,
	log *logger.Logger,
) *ReportUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReportUseCase{
		kpis:      kpis,
		users:     users,
		generator: generator,
		archive:   archive,
		prefix:    prefix,
		log:       log.Component("reports"),
	}
}

// ManagerReport renderiza el dashboard del manager. Un fallo al archivar se
// registra y no impide devolver el PDF.
func (uc *ReportUseCase) ManagerReport(ctx context.Context, managerID string) (*dto.ManagerReportDTO, error) {
	ctx, span := tracer.Start(ctx, "report.Manager")
	defer span.End()

	dashboard, err := uc.kpis.ManagerDashboardKPIs(ctx, managerID)
	if err != nil {
		return nil, err
	}
	manager, err := uc.users.GetByID(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("manager report: %w", err)
	}
	name := entity.UnknownEmployeeName
	if manager != nil {
		name = manager.FullName
	}

	content, err := uc.generator.GenerateManagerReport(ctx, name, dashboard)
	if err != nil {
		return nil, fmt.Errorf("manager report: generar pdf: %w", err)
	}

	now := time.Now().UTC()
	out := &dto.ManagerReportDTO{
		FileName: fmt.Sprintf("dashboard-%s-%s.pdf", managerID, now.Format("20060102")),
		Content:  content,
	}
	if uc.archive == nil {
		return out, nil
	}

	key := path.Join(uc.prefix, "managers", managerID, now.Format("20060102T150405Z")+".pdf")
	stored, err := uc.archive.Store(ctx, key, content, "application/pdf")
	if err != nil {
		uc.log.Warn().Err(err).Str("manager_id", managerID).Str("key", key).Msg("no se pudo archivar el reporte")
		return out, nil
	}
	out.ArchiveKey = stored
	return out, nil
}
