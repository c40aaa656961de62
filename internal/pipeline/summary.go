package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospect-cli/internal/model"
)

// RunSummary is the outcome of one search run.
type RunSummary struct {
	RunID    string          `json:"run_id"`
	Category string          `json:"category"`
	Location string          `json:"location"`
	Status   model.RunStatus `json:"status"`
	Counts   model.RunCounts `json:"counts"`
	Error    string          `json:"error,omitempty"`
	Duration time.Duration   `json:"duration"`
}

// QueryPair is one (category, location) combination in a batch.
type QueryPair struct {
	Category string `json:"category"`
	Location string `json:"location"`
}

// BatchSummary aggregates the outcomes of a batch of runs.
type BatchSummary struct {
	Runs      []RunSummary `json:"runs"`
	Completed int          `json:"completed"`
	Partial   int          `json:"partial"`
	Failed    int          `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// RunAll executes one run per pair with bounded concurrency. A failed pair
// does not cancel the rest; its failure lands in the batch summary. The
// returned error reports only store-level faults.
func (p *Pipeline) RunAll(ctx context.Context, pairs []QueryPair, limit int) (*BatchSummary, error) {
	started := time.Now()

	summaries := make([]RunSummary, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	maxRuns := p.maxConcurrentRuns
	if maxRuns <= 0 {
		maxRuns = 4
	}
	g.SetLimit(maxRuns)

	for i, pair := range pairs {
		g.Go(func() error {
			summary, err := p.Run(gctx, pair.Category, pair.Location, limit)
			if err != nil {
				return err
			}
			summaries[i] = *summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &BatchSummary{
		Runs:     summaries,
		Duration: time.Since(started),
	}
	for _, s := range summaries {
		switch s.Status {
		case model.RunStatusCompleted:
			batch.Completed++
		case model.RunStatusPartial:
			batch.Partial++
		case model.RunStatusFailed:
			batch.Failed++
		}
	}
	return batch, nil
}
