package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/domain"
)

func errorBody(code, message string) dto.ErrorResponse {
	return dto.ErrorResponse{Code: code, Message: message}
}

// writeError traduce un error de dominio a su respuesta HTTP.
//
//	ErrDuplicateAllocation → 400 DUPLICATE_ALLOCATION
//	ErrInvalidInput        → 400 VALIDATION
//	ErrNotFound            → 404 NOT_FOUND
//	ErrUserInUse           → 409 USER_IN_USE
//	ErrConflict            → 409 CONFLICT
//	ErrForbidden           → 403 FORBIDDEN
//	ErrUnauthorized        → 401 UNAUTHORIZED
//	ErrStoreUnavailable    → 503 STORE_UNAVAILABLE
//	otro                   → 500 INTERNAL
func writeError(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	return c.Status(status).JSON(errorBody(code, err.Error()))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrDuplicateAllocation):
		return fiber.StatusBadRequest, "DUPLICATE_ALLOCATION"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUserInUse):
		return fiber.StatusConflict, "USER_IN_USE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}
