package dto

import (
	"time"

	"github.com/jhoicas/Recursos-api/internal/domain"
)

// DateLayout formato de fechas de calendario en la API (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseDate convierte "YYYY-MM-DD" a time.Time (UTC). "" devuelve el tiempo cero.
func ParseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.Invalid("%s debe tener formato YYYY-MM-DD", field)
	}
	return t, nil
}

// FormatDate formatea una fecha de calendario; el tiempo cero se serializa como "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ValidateDateRange exige start <= end cuando ambas fechas están informadas.
func ValidateDateRange(start, end time.Time) error {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return domain.Invalid("end_date no puede ser anterior a start_date")
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
