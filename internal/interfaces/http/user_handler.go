package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/application/usecase"
	"github.com/jhoicas/Recursos-api/internal/domain"
)

// UserHandler maneja el directorio de usuarios (protegido).
type UserHandler struct {
	uc *usecase.UserUseCase
	v  *Validator
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase, v *Validator) *UserHandler {
	return &UserHandler{uc: uc, v: v}
}

// userInUseResponse cuerpo del 409 al borrar un usuario todavía asignado.
type userInUseResponse struct {
	dto.ErrorResponse
	ReferencedProjects []dto.ProjectRefDTO `json:"referenced_projects"`
}

// Create godoc
// @Summary      Crear usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "Datos del usuario"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if ok, err := h.v.bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener usuario por ID
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        role  query  string  false  "admin | manager | employee"
// @Success      200   {array}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.Query("role"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "Cambios"
// @Success      200   {object}  dto.UserResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateUserRequest
	if ok, err := h.v.bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar usuario
// @Description  Si el usuario sigue asignado a proyectos responde 409 con la lista,
// @Description  salvo que se envíe force=true.
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del usuario"
// @Param        force  query  bool    false  "Borrar aunque tenga asignaciones"
// @Success      200    {object}  dto.DeleteUserResult
// @Failure      409    {object}  dto.ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	out, err := h.uc.Delete(c.UserContext(), c.Params("id"), c.QueryBool("force"))
	if errors.Is(err, domain.ErrUserInUse) && out != nil {
		return c.Status(fiber.StatusConflict).JSON(userInUseResponse{
			ErrorResponse:      errorBody("USER_IN_USE", err.Error()),
			ReferencedProjects: out.ReferencedProjects,
		})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AddSkill godoc
// @Summary      Agregar habilidad
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "ID del usuario"
// @Param        body  body  dto.TagRequest  true  "Habilidad"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/users/{id}/skills [post]
func (h *UserHandler) AddSkill(c *fiber.Ctx) error {
	return h.changeTag(c, h.uc.AddSkill)
}

// RemoveSkill godoc
// @Summary      Quitar habilidad
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "ID del usuario"
// @Param        body  body  dto.TagRequest  true  "Habilidad"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/users/{id}/skills [delete]
func (h *UserHandler) RemoveSkill(c *fiber.Ctx) error {
	return h.changeTag(c, h.uc.RemoveSkill)
}

// AddCertification godoc
// @Summary      Agregar certificación
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "ID del usuario"
// @Param        body  body  dto.TagRequest  true  "Certificación"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/users/{id}/certifications [post]
func (h *UserHandler) AddCertification(c *fiber.Ctx) error {
	return h.changeTag(c, h.uc.AddCertification)
}

// RemoveCertification godoc
// @Summary      Quitar certificación
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "ID del usuario"
// @Param        body  body  dto.TagRequest  true  "Certificación"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/users/{id}/certifications [delete]
func (h *UserHandler) RemoveCertification(c *fiber.Ctx) error {
	return h.changeTag(c, h.uc.RemoveCertification)
}

func (h *UserHandler) changeTag(c *fiber.Ctx, apply func(ctx context.Context, userID, value string) (*dto.UserResponse, error)) error {
	var in dto.TagRequest
	if ok, err := h.v.bind(c, &in); !ok {
		return err
	}
	out, err := apply(c.UserContext(), c.Params("id"), in.Value)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
