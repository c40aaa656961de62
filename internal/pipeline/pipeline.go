// Package pipeline orchestrates discovery, normalization, scoring,
// deduplication, and persistence for lead search runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/dedupe"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/normalize"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/internal/scoring"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/serpapi"
)

// SourceError marks a failure to obtain results from the search provider
// after retries were exhausted.
type SourceError struct {
	Query string
	Err   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source: query %q: %v", e.Query, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Pipeline runs lead searches end to end: one provider query per
// (category, location) pair, then per-record normalize, score, dedupe,
// and persist.
type Pipeline struct {
	store    store.Store
	source   serpapi.Client
	norm     *normalize.Normalizer
	scorer   *scoring.Scorer
	resolver *dedupe.Resolver

	limiter *rate.Limiter
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	timeout time.Duration

	maxConcurrentRuns int
}

// New wires a Pipeline from configuration. The scorer is passed in so a
// rules-file override applies to every run the pipeline executes.
func New(cfg *config.Config, st store.Store, source serpapi.Client, scorer *scoring.Scorer) *Pipeline {
	retry := resilience.FromRetryConfig(
		cfg.SerpAPI.MaxRetries,
		cfg.SerpAPI.InitialBackoffMs,
		cfg.SerpAPI.MaxBackoffMs,
	)
	retry.ShouldRetry = isRetryable
	retry.OnRetry = resilience.RetryLogger("serpapi", "search_maps")

	rps := cfg.SerpAPI.RateLimit
	if rps <= 0 {
		rps = 2
	}

	timeout := time.Duration(cfg.SerpAPI.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Pipeline{
		store:    st,
		source:   source,
		norm:     normalize.New(cfg.Normalize.SocialPatterns),
		scorer:   scorer,
		resolver: dedupe.NewResolver(st),
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		}),
		retry:             retry,
		timeout:           timeout,
		maxConcurrentRuns: cfg.Batch.MaxConcurrentRuns,
	}
}

// isRetryable treats provider 408/429/5xx and transport-level transient
// failures as retryable. API-level errors in a 200 body are not.
func isRetryable(err error) bool {
	var apiErr *serpapi.APIError
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}

// Run executes one search run. The run record is created before the provider
// is queried, so a source failure still leaves an auditable failed run. A
// source failure is reported in the returned summary, not as an error;
// errors are reserved for store-level faults.
func (p *Pipeline) Run(ctx context.Context, category, location string, limit int) (*RunSummary, error) {
	started := time.Now()

	run, err := p.store.CreateSearchRun(ctx, category, location, limit)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("run_id", run.ID),
		zap.String("category", category),
		zap.String("location", location),
	)
	log.Info("search run started", zap.Int("limit", limit))

	results, err := p.fetch(ctx, category, location, limit)
	if err != nil {
		srcErr := &SourceError{Query: category + " in " + location, Err: err}
		log.Error("search run failed", zap.Error(srcErr))

		if finishErr := p.store.FinishSearchRun(ctx, run.ID, model.RunStatusFailed, model.RunCounts{}, srcErr.Error()); finishErr != nil {
			return nil, finishErr
		}
		return &RunSummary{
			RunID:    run.ID,
			Category: category,
			Location: location,
			Status:   model.RunStatusFailed,
			Error:    srcErr.Error(),
			Duration: time.Since(started),
		}, nil
	}

	counts := p.processResults(ctx, log, *run, results)

	status := model.RunStatusCompleted
	if counts.Failed > 0 {
		status = model.RunStatusPartial
	}
	if err := p.store.FinishSearchRun(ctx, run.ID, status, counts, ""); err != nil {
		return nil, err
	}

	log.Info("search run finished",
		zap.String("status", string(status)),
		zap.Int("results", counts.Results),
		zap.Int("qualified", counts.Qualified),
		zap.Int("dropped", counts.Dropped),
		zap.Int("failed", counts.Failed),
	)

	return &RunSummary{
		RunID:    run.ID,
		Category: category,
		Location: location,
		Status:   status,
		Counts:   counts,
		Duration: time.Since(started),
	}, nil
}

// fetch queries the provider under the rate limiter, circuit breaker, and
// retry policy, with a per-request timeout.
func (p *Pipeline) fetch(ctx context.Context, category, location string, limit int) ([]serpapi.LocalResult, error) {
	query := category + " in " + location

	return resilience.DoVal(ctx, p.retry, func(ctx context.Context) ([]serpapi.LocalResult, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var results []serpapi.LocalResult
		err := p.breaker.Execute(ctx, func(ctx context.Context) error {
			reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()

			var searchErr error
			results, searchErr = p.source.SearchMaps(reqCtx, query, limit)
			return searchErr
		})
		return results, err
	})
}

// processResults runs the per-record path. Malformed records are dropped and
// counted; persistence failures are counted without aborting the run.
func (p *Pipeline) processResults(ctx context.Context, log *zap.Logger, run model.SearchRun, results []serpapi.LocalResult) model.RunCounts {
	var counts model.RunCounts

	for _, rec := range results {
		b, err := p.norm.Normalize(rec, run)
		if err != nil {
			var malformed *normalize.MalformedRecordError
			if errors.As(err, &malformed) {
				counts.Dropped++
				log.Debug("dropped malformed record", zap.String("reason", malformed.Reason))
				continue
			}
			counts.Failed++
			log.Warn("record normalization failed", zap.Error(err))
			continue
		}

		p.scorer.Apply(&b)

		resolved, isNew, err := p.resolver.Resolve(ctx, b)
		if err != nil {
			counts.Failed++
			log.Warn("identity resolution failed", zap.String("identity_key", b.IdentityKey), zap.Error(err))
			continue
		}

		// Rescore the merged record: merged fields can change the outcome.
		if !isNew {
			p.scorer.Apply(&resolved)
		}

		if _, err := p.store.UpsertBusiness(ctx, &resolved); err != nil {
			counts.Failed++
			log.Warn("persist failed", zap.String("identity_key", resolved.IdentityKey), zap.Error(err))
			continue
		}

		counts.Results++
		if resolved.Qualified {
			counts.Qualified++
		}
	}

	return counts
}
