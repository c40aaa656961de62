package model

import "time"

// RunStatus represents the lifecycle state of a search run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	// RunStatusPartial means the run finished but one or more records
	// failed to persist.
	RunStatusPartial RunStatus = "partial"
	RunStatusFailed  RunStatus = "failed"
)

// RunCounts tallies per-record outcomes within a search run.
type RunCounts struct {
	// Results is the number of records normalized, scored, and persisted.
	Results int `json:"results"`
	// Qualified is the subset of Results that passed the qualification gate.
	Qualified int `json:"qualified"`
	// Dropped is the number of malformed records skipped.
	Dropped int `json:"dropped"`
	// Failed is the number of records whose persistence failed.
	Failed int `json:"failed"`
}

// SearchRun records one execution of the pipeline for a (category, location)
// pair. Created before the source is queried so partial runs stay auditable.
type SearchRun struct {
	ID             string     `json:"id"`
	Category       string     `json:"category"`
	Location       string     `json:"location"`
	RequestedLimit int        `json:"requested_limit"`
	Status         RunStatus  `json:"status"`
	Counts         RunCounts  `json:"counts"`
	Error          string     `json:"error,omitempty"`
	ExecutedAt     time.Time  `json:"executed_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}
