package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Recursos-api/internal/application/analytics"
)

// KPIHandler expone los KPIs de la organización, de proyectos y de managers (protegido).
type KPIHandler struct {
	kpis    *analytics.KPIUseCase
	reports *analytics.ReportUseCase
}

// NewKPIHandler construye el handler.
func NewKPIHandler(kpis *analytics.KPIUseCase, reports *analytics.ReportUseCase) *KPIHandler {
	return &KPIHandler{kpis: kpis, reports: reports}
}

// Organization godoc
// @Summary      KPIs de la organización
// @Tags         kpis
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.OrganizationKPIDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/kpis/organization [get]
func (h *KPIHandler) Organization(c *fiber.Ctx) error {
	out, err := h.kpis.OrganizationKPIs(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Project godoc
// @Summary      KPIs de un proyecto
// @Tags         kpis
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del proyecto"
// @Success      200  {object}  dto.ProjectKPIDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/kpis/projects/{id} [get]
func (h *KPIHandler) Project(c *fiber.Ctx) error {
	out, err := h.kpis.ProjectKPIs(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(errorBody("NOT_FOUND", "proyecto no encontrado"))
	}
	return c.JSON(out)
}

// ManagerDashboard godoc
// @Summary      Dashboard de un manager
// @Tags         kpis
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del manager"
// @Success      200  {object}  dto.ManagerDashboardDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/kpis/managers/{id} [get]
func (h *KPIHandler) ManagerDashboard(c *fiber.Ctx) error {
	out, err := h.kpis.ManagerDashboardKPIs(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ManagerReport godoc
// @Summary      Dashboard de un manager en PDF
// @Description  Si hay archivo configurado, la clave del objeto viaja en X-Report-Key.
// @Tags         kpis
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del manager"
// @Success      200  {file}  binary
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/kpis/managers/{id}/report.pdf [get]
func (h *KPIHandler) ManagerReport(c *fiber.Ctx) error {
	out, err := h.reports.ManagerReport(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if out.ArchiveKey != "" {
		c.Set("X-Report-Key", out.ArchiveKey)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+out.FileName+`"`)
	return c.Send(out.Content)
}
