package ports

import (
	"errors"

	"github.com/jhoicas/Recursos-api/internal/domain"
)

// CommandMetrics contadores de los comandos del motor.
type CommandMetrics interface {
	// ObserveCommand registra un comando con su resultado (ok, invalid, not_found, conflict, error).
	ObserveCommand(command, result string)
	ObserveOverAllocation()
}

// CommandResult clasifica el error de un comando para las métricas.
func CommandResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
