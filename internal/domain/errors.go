package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrStoreUnavailable = errors.New("almacenamiento no disponible")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrForbidden        = errors.New("acceso denegado")
)

// Variantes específicas. errors.Is sigue reconociendo el error base.
var (
	ErrDuplicateAllocation = fmt.Errorf("%w: el empleado ya está asignado al proyecto", ErrInvalidInput)
	ErrUserInUse           = fmt.Errorf("%w: el usuario tiene asignaciones en proyectos", ErrConflict)
)

// Invalid construye un ErrInvalidInput con detalle legible.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// StoreError clasifica un fallo de infraestructura como ErrStoreUnavailable conservando la causa.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
