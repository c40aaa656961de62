// Package monitoring collects health metrics for the lead pipeline and
// raises webhook alerts when thresholds are breached.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of pipeline health.
type MetricsSnapshot struct {
	// Search run metrics (within lookback window).
	RunsTotal     int     `json:"runs_total"`
	RunsCompleted int     `json:"runs_completed"`
	RunsPartial   int     `json:"runs_partial"`
	RunsFailed    int     `json:"runs_failed"`
	RunsRunning   int     `json:"runs_running"`
	RunFailRate   float64 `json:"run_fail_rate"`

	// Record-level tallies across the window's runs.
	RecordsPersisted int `json:"records_persisted"`
	RecordsDropped   int `json:"records_dropped"`
	RecordsFailed    int `json:"records_failed"`

	// Lead database totals (all time).
	TotalBusinesses int            `json:"total_businesses"`
	QualifiedLeads  int            `json:"qualified_leads"`
	ByWebPresence   map[string]int `json:"by_web_presence"`
	AverageScore    float64        `json:"average_score"`

	// Outreach funnel (all time).
	OutreachTotal   int     `json:"outreach_total"`
	OutreachReplied int     `json:"outreach_replied"`
	ResponseRate    float64 `json:"response_rate"`
	DemosGenerated  int     `json:"demos_generated"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the store.
type Collector struct {
	store store.Store
}

// NewCollector creates a new metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot over the given lookback window. Run metrics are
// windowed; lead and outreach totals cover the whole database.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	runs, err := c.store.ListSearchRuns(ctx, store.RunFilter{Limit: 10000})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	for _, r := range runs {
		if r.ExecutedAt.Before(cutoff) {
			continue
		}
		snap.RunsTotal++
		switch r.Status {
		case model.RunStatusCompleted:
			snap.RunsCompleted++
		case model.RunStatusPartial:
			snap.RunsPartial++
		case model.RunStatusFailed:
			snap.RunsFailed++
		case model.RunStatusRunning:
			snap.RunsRunning++
		}
		snap.RecordsPersisted += r.Counts.Results
		snap.RecordsDropped += r.Counts.Dropped
		snap.RecordsFailed += r.Counts.Failed
	}

	finished := snap.RunsCompleted + snap.RunsPartial + snap.RunsFailed
	if finished > 0 {
		snap.RunFailRate = float64(snap.RunsFailed) / float64(finished)
	}

	stats, err := c.store.Stats(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: stats")
	}
	snap.TotalBusinesses = stats.TotalBusinesses
	snap.QualifiedLeads = stats.QualifiedLeads
	snap.ByWebPresence = stats.ByWebPresence
	snap.AverageScore = stats.AverageScore
	snap.OutreachTotal = stats.OutreachTotal
	snap.OutreachReplied = stats.OutreachReplied
	snap.DemosGenerated = stats.DemosGenerated
	if stats.OutreachTotal > 0 {
		snap.ResponseRate = float64(stats.OutreachReplied) / float64(stats.OutreachTotal)
	}

	return snap, nil
}
