package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/scoring"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/serpapi"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leads.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore initializes and migrates the configured store.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// initScorer builds a scorer from config, with optional rules-file overrides.
func initScorer(rulesPath string) (*scoring.Scorer, error) {
	scoringCfg := cfg.Scoring
	if rulesPath != "" {
		var err error
		scoringCfg, err = scoring.LoadOverrides(rulesPath, scoringCfg)
		if err != nil {
			return nil, err
		}
	} else if err := scoring.ValidateConfig(scoringCfg); err != nil {
		return nil, err
	}
	return scoring.New(scoringCfg), nil
}

// initPipeline wires a pipeline against the configured store and provider.
func initPipeline(ctx context.Context, rulesPath string) (*pipeline.Pipeline, store.Store, error) {
	if cfg.SerpAPI.Key == "" {
		return nil, nil, eris.New("serpapi key is required (PROSPECT_SERPAPI_KEY)")
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	scorer, err := initScorer(rulesPath)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, nil, err
	}

	source := newSource(cfg)
	return pipeline.New(cfg, st, source, scorer), st, nil
}

func newSource(cfg *config.Config) serpapi.Client {
	opts := []serpapi.Option{}
	if cfg.SerpAPI.BaseURL != "" {
		opts = append(opts, serpapi.WithBaseURL(cfg.SerpAPI.BaseURL))
	}
	return serpapi.NewClient(cfg.SerpAPI.Key, opts...)
}
