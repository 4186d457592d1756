package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/application/usecase"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
)

// ProjectHandler maneja las peticiones HTTP para Project (protegido).
type ProjectHandler struct {
	uc *usecase.ProjectUseCase
	v  *Validator
}

// NewProjectHandler construye el handler.
func NewProjectHandler(uc *usecase.ProjectUseCase, v *Validator) *ProjectHandler {
	return &ProjectHandler{uc: uc, v: v}
}

// Create godoc
// @Summary      Crear proyecto
// @Description  Un manager crea proyectos propios; un admin puede indicar manager_id.
// @Tags         projects
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProjectRequest  true  "Datos del proyecto"
// @Success      201   {object}  dto.ProjectResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/projects [post]
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProjectRequest
	if ok, err := h.v.bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), GetRole(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener proyecto por ID
// @Tags         projects
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del proyecto"
// @Success      200  {object}  dto.ProjectResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id} [get]
func (h *ProjectHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar proyectos
// @Description  Un manager solo ve sus proyectos; un admin ve todos o filtra con manager_id.
// @Tags         projects
// @Security     Bearer
// @Produce      json
// @Param        manager_id  query  string  false  "Filtrar por manager (solo admin)"
// @Success      200         {array}  dto.ProjectResponse
// @Router       /api/projects [get]
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	managerID := c.Query("manager_id")
	if GetRole(c) != entity.RoleAdmin {
		managerID = GetUserID(c)
	}
	var (
		out []dto.ProjectResponse
		err error
	)
	if managerID != "" {
		out, err = h.uc.ListByManager(c.UserContext(), managerID)
	} else {
		out, err = h.uc.List(c.UserContext())
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar proyecto
// @Description  version debe ser la leída por el cliente; si el proyecto cambió responde 409.
// @Tags         projects
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del proyecto"
// @Param        body  body  dto.UpdateProjectRequest  true  "Cambios"
// @Success      200   {object}  dto.ProjectResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/projects/{id} [put]
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProjectRequest
	if ok, err := h.v.bind(c, &in); !ok {
		return err
	}
	// Solo un admin reasigna el proyecto a otro manager.
	if in.ManagerID != nil && GetRole(c) != entity.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(errorBody("FORBIDDEN", "solo un admin puede cambiar el manager"))
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar proyecto
// @Tags         projects
// @Security     Bearer
// @Param        id   path  string  true  "ID del proyecto"
// @Success      204
// @Router       /api/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
