package dto

import (
	"time"

	"github.com/guttosm/dipwatch/internal/domain/models"
)

// RunResponse represents the JSON structure returned by POST /api/v1/runs.
//
// Fields match the API contract and may differ from internal job results.
type RunResponse struct {
	RunID       string             `json:"run_id" example:"0b7f0c52-7a55-4b79-9c1e-1e3f7d1c8e2a"`
	Date        string             `json:"date" example:"2025-03-14"`
	Threshold   float64            `json:"threshold" example:"10"`
	Dips        []models.DipRecord `json:"dips"`
	Notified    bool               `json:"notified"`
	NotifyError string             `json:"notify_error,omitempty"`
	Archived    []string           `json:"archived,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	DurationMs  int64              `json:"duration_ms"`
}

// DipsResponse represents the JSON structure returned by GET /api/v1/dips.
type DipsResponse struct {
	Date      string             `json:"date" example:"2025-03-14"`
	Threshold float64            `json:"threshold" example:"10"`
	Dips      []models.DipRecord `json:"dips"`
}
