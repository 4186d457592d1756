package dto

import "time"

// UpdateProgressRequest entrada para PUT /api/projects/:id/progress.
// Progress es puntero para distinguir 0 de "no enviado".
type UpdateProgressRequest struct {
	Progress *int   `json:"progress" validate:"required,min=0,max=100"`
	Notes    string `json:"notes" validate:"max=2000"`
}

// ProgressDTO estado de avance tras la actualización.
type ProgressDTO struct {
	ProjectID          string    `json:"project_id"`
	Progress           int       `json:"progress"`
	ProgressNotes      string    `json:"progress_notes"`
	LastProgressUpdate time.Time `json:"last_progress_update"`
	Band               string    `json:"band"` // on-track|advancing|started|at-risk
}
