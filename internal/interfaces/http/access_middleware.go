package http

import (
	"context"
	"errors"
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/domain"
)

// projectAuthorizer es el contrato mínimo que necesita el middleware para verificar
// la propiedad de un proyecto. Lo implementa *usecase.ProjectUseCase.
type projectAuthorizer interface {
	Authorize(ctx context.Context, projectID, actorID, actorRole string) error
}

// ProjectAccess verifica que el actor pueda modificar el proyecto del parámetro :id.
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 404 Not Found → el proyecto no existe.
//   - 403 Forbidden → un manager intenta modificar un proyecto ajeno.
//   - 503 Service Unavailable → fallo del almacenamiento al consultar el proyecto.
func ProjectAccess(authorizer projectAuthorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := authorizer.Authorize(c.UserContext(), c.Params("id"), GetUserID(c), GetRole(c))
		switch {
		case err == nil:
			return c.Next()
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "proyecto no encontrado"})
		case errors.Is(err, domain.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo el manager del proyecto puede modificarlo"})
		default:
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "ACCESS_CHECK_FAILED",
				Message: "no se pudo verificar el acceso, intente más tarde",
			})
		}
	}
}

// SelfOrRoles deja pasar si el parámetro de ruta coincide con el usuario del token
// o si su rol está entre los indicados.
func SelfOrRoles(param string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUserID(c) != "" && c.Params(param) == GetUserID(c) {
			return c.Next()
		}
		if slices.Contains(roles, GetRole(c)) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo puede consultar sus propios datos"})
	}
}
