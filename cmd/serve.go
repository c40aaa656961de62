package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/monitoring"
	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, st, err := initPipeline(ctx, "")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if cfg.Monitoring.WebhookURL != "" {
			checker := monitoring.NewChecker(
				monitoring.NewCollector(st),
				monitoring.NewAlerter(cfg.Monitoring),
				cfg.Monitoring,
			)
			go checker.Run(ctx)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      newRouter(p, st),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(p *pipeline.Pipeline, st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/leads", handleListLeads(st))
		r.Get("/runs", handleListRuns(st))
		r.Get("/stats", handleStats(st))
		r.Post("/search", handleSearch(p))
	})

	return r
}

func handleListLeads(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := store.LeadFilter{
			Category:    q.Get("category"),
			Location:    q.Get("location"),
			WebPresence: model.WebPresence(q.Get("presence")),
			Limit:       queryInt(q.Get("limit"), 100),
			MinScore:    queryInt(q.Get("min_score"), 0),
		}
		if q.Get("all") != "true" {
			qualified := true
			filter.Qualified = &qualified
		}

		leads, err := st.ListLeads(r.Context(), filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if leads == nil {
			leads = []model.Business{}
		}
		writeJSON(w, http.StatusOK, leads)
	}
}

func handleListRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		runs, err := st.ListSearchRuns(r.Context(), store.RunFilter{
			Status:   model.RunStatus(q.Get("status")),
			Category: q.Get("category"),
			Location: q.Get("location"),
			Limit:    queryInt(q.Get("limit"), 50),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if runs == nil {
			runs = []model.SearchRun{}
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func handleStats(st store.Store) http.HandlerFunc {
	collector := monitoring.NewCollector(st)
	return func(w http.ResponseWriter, r *http.Request) {
		lookback := queryInt(r.URL.Query().Get("lookback_hours"), cfg.Monitoring.LookbackWindowHours)

		snap, err := collector.Collect(r.Context(), lookback)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// handleSearch accepts a search request and runs it in the background.
// The response carries only an acknowledgement; progress is visible
// through /api/runs.
func handleSearch(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Category string `json:"category"`
			Location string `json:"location"`
			Limit    int    `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
			return
		}
		if req.Category == "" || req.Location == "" {
			writeError(w, http.StatusBadRequest, eris.New("category and location are required"))
			return
		}
		if req.Limit <= 0 {
			req.Limit = 20
		}

		go func() {
			summary, err := p.Run(context.Background(), req.Category, req.Location, req.Limit)
			if err != nil {
				zap.L().Error("background search failed",
					zap.String("category", req.Category),
					zap.String("location", req.Location),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("background search complete",
				zap.String("run_id", summary.RunID),
				zap.String("status", string(summary.Status)),
				zap.Int("results", summary.Counts.Results),
			)
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":   "accepted",
			"category": req.Category,
			"location": req.Location,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
