package ports

import (
	"context"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
)

// ReportGenerator renderiza el dashboard de un manager a PDF.
type ReportGenerator interface {
	GenerateManagerReport(ctx context.Context, managerName string, dashboard *dto.ManagerDashboardDTO) ([]byte, error)
}

// ReportArchive almacena reportes generados y devuelve la clave del objeto.
type ReportArchive interface {
	Store(ctx context.Context, key string, content []byte, contentType string) (string, error)
}
