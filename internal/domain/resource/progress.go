package resource

import "github.com/jhoicas/Recursos-api/internal/domain"

// Bandas de avance de un proyecto.
const (
	ProgressOnTrack   = "on-track"
	ProgressAdvancing = "advancing"
	ProgressStarted   = "started"
	ProgressAtRisk    = "at-risk"
)

// ValidateProgress comprueba que el avance esté en [0,100].
func ValidateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return domain.Invalid("progress debe estar entre 0 y 100: %d", progress)
	}
	return nil
}

// ProgressBand clasifica el avance para reportes.
func ProgressBand(progress int) string {
	switch {
	case progress >= 75:
		return ProgressOnTrack
	case progress >= 50:
		return ProgressAdvancing
	case progress >= 25:
		return ProgressStarted
	default:
		return ProgressAtRisk
	}
}
