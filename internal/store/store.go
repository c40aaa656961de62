// Package store provides persistence for businesses, search runs, score
// history, demos, and outreach on SQLite or Postgres backends.
package store

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
)

// ErrNotFound is returned (wrapped in a StoreError) when a lookup by ID
// matches no row.
var ErrNotFound = eris.New("not found")

// StoreError wraps a persistence failure with the operation that produced it,
// so callers can distinguish storage faults from source or validation faults.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// RunFilter specifies criteria for listing search runs.
type RunFilter struct {
	Status   model.RunStatus `json:"status,omitempty"`
	Category string          `json:"category,omitempty"`
	Location string          `json:"location,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// LeadFilter specifies criteria for listing leads. Results are always
// ordered by lead score descending, most recently seen first on ties.
type LeadFilter struct {
	Category    string            `json:"category,omitempty"`
	Location    string            `json:"location,omitempty"`
	MinScore    int               `json:"min_score,omitempty"`
	Qualified   *bool             `json:"qualified,omitempty"`
	WebPresence model.WebPresence `json:"web_presence,omitempty"`
	Limit       int               `json:"limit,omitempty"`
	Offset      int               `json:"offset,omitempty"`
}

// OutreachFilter specifies criteria for listing outreach attempts.
type OutreachFilter struct {
	BusinessID string               `json:"business_id,omitempty"`
	Status     model.OutreachStatus `json:"status,omitempty"`
	Method     model.OutreachMethod `json:"method,omitempty"`
	Limit      int                  `json:"limit,omitempty"`
}

// Stats is an aggregate snapshot of the lead database.
type Stats struct {
	RunsByStatus    map[string]int `json:"runs_by_status"`
	TotalBusinesses int            `json:"total_businesses"`
	QualifiedLeads  int            `json:"qualified_leads"`
	ByWebPresence   map[string]int `json:"by_web_presence"`
	AverageScore    float64        `json:"average_score"`
	OutreachTotal   int            `json:"outreach_total"`
	OutreachReplied int            `json:"outreach_replied"`
	DemosGenerated  int            `json:"demos_generated"`
}

// Store defines the persistence interface for the lead pipeline.
type Store interface {
	// Search runs
	CreateSearchRun(ctx context.Context, category, location string, requestedLimit int) (*model.SearchRun, error)
	FinishSearchRun(ctx context.Context, runID string, status model.RunStatus, counts model.RunCounts, runErr string) error
	GetSearchRun(ctx context.Context, runID string) (*model.SearchRun, error)
	ListSearchRuns(ctx context.Context, filter RunFilter) ([]model.SearchRun, error)

	// Businesses. GetByIdentity returns (nil, nil) when the identity key is
	// unknown. UpsertBusiness atomically inserts or updates the row keyed by
	// identity_key and appends a score history entry in the same transaction,
	// returning the canonical business ID.
	GetByIdentity(ctx context.Context, identityKey string) (*model.Business, error)
	UpsertBusiness(ctx context.Context, b *model.Business) (string, error)
	GetBusiness(ctx context.Context, id string) (*model.Business, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Business, error)
	ScoreHistory(ctx context.Context, businessID string) ([]model.ScoreEntry, error)

	// Demo sites
	RecordDemo(ctx context.Context, d *model.Demo) error
	ListDemos(ctx context.Context, businessID string) ([]model.Demo, error)

	// Outreach
	LogOutreach(ctx context.Context, o *model.Outreach) error
	UpdateOutreachResponse(ctx context.Context, outreachID string, status model.OutreachStatus, notes string) error
	ListOutreach(ctx context.Context, filter OutreachFilter) ([]model.Outreach, error)

	// Reporting
	Stats(ctx context.Context) (*Stats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
