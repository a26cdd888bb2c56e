package models

import "time"

// AnalysisRun is one audit record per analysis request. The history store
// exists for observability; the data plane never reads it back.
type AnalysisRun struct {
	ID          string    `json:"id"`
	Endpoint    string    `json:"endpoint"`
	Filename    string    `json:"filename"`
	RowsKept    int       `json:"rows_kept"`
	RowsDropped int       `json:"rows_dropped"`
	DurationMS  int64     `json:"duration_ms"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
