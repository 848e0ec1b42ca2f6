// Package api exposes the HTTP interface for the product discovery service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/anshultibby/moleAI-sub001/internal/config"
	"github.com/anshultibby/moleAI-sub001/internal/crawler"
	"github.com/anshultibby/moleAI-sub001/internal/metrics"
	"github.com/anshultibby/moleAI-sub001/internal/product"
	"github.com/anshultibby/moleAI-sub001/internal/storage"
)

// CrawlRunner executes one crawl run to completion.
type CrawlRunner interface {
	Crawl(ctx context.Context, cfg crawler.Config) (product.CrawlResult, error)
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Clock returns the current time (injectable for tests).
type Clock interface {
	Now() time.Time
}

// Server wires HTTP handlers to the crawl runner and the result store.
type Server struct {
	router   chi.Router
	runner   CrawlRunner
	store    storage.ResultStore
	idGen    IDGenerator
	clock    Clock
	cfg      config.Config
	logger   *zap.Logger
	runLimit time.Duration
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	runner CrawlRunner,
	store storage.ResultStore,
	idGen IDGenerator,
	clock Clock,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		runner:   runner,
		store:    store,
		idGen:    idGen,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
		runLimit: 10 * time.Minute,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware(idGen))
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/crawls", func(r chi.Router) {
			r.Post("/", s.submitCrawl)
			r.Get("/{run_id}", s.getCrawl)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type crawlRequest struct {
	SeedURL  string `json:"seed_url"`
	MaxDepth *int   `json:"max_depth"`
	MaxLinks *int   `json:"max_links"`
	MaxPages *int   `json:"max_pages"`
}

func (s *Server) submitCrawl(w http.ResponseWriter, r *http.Request) {
	var req crawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	seed := strings.TrimSpace(req.SeedURL)
	if seed == "" {
		s.writeError(w, http.StatusBadRequest, "seed_url required")
		return
	}
	if u, err := url.Parse(seed); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		s.writeError(w, http.StatusBadRequest, "seed_url must be an absolute http(s) URL")
		return
	}

	runCfg := s.toCrawlConfig(seed, req)
	runID, err := s.idGen.NewID()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "generate run id failed")
		return
	}
	run := storage.CrawlRun{
		ID:        runID,
		SeedURL:   seed,
		Status:    storage.RunStatusQueued,
		Submitted: s.clock.Now(),
	}
	if err := s.store.CreateRun(r.Context(), run); err != nil {
		s.writeError(w, http.StatusInternalServerError, "create run failed")
		return
	}

	go s.executeRun(runID, runCfg)

	s.writeJSON(w, http.StatusAccepted, map[string]string{"run_id": runID, "status": string(run.Status)})
}

// executeRun drives one crawl in the background and records its outcome. The
// run outlives the HTTP request, so it gets its own bounded context.
func (s *Server) executeRun(runID string, runCfg crawler.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), s.runLimit)
	defer cancel()

	if err := s.store.UpdateRun(ctx, runID, storage.RunStatusRunning, "", nil); err != nil {
		s.logger.Error("mark run running failed", zap.String("run_id", runID), zap.Error(err))
		return
	}

	result, err := s.runner.Crawl(ctx, runCfg)
	if err != nil {
		metrics.ObserveRun("failed")
		if uerr := s.store.UpdateRun(ctx, runID, storage.RunStatusFailed, err.Error(), &result); uerr != nil {
			s.logger.Error("mark run failed failed", zap.String("run_id", runID), zap.Error(uerr))
		}
		s.logger.Warn("crawl run failed", zap.String("run_id", runID), zap.Error(err))
		return
	}

	metrics.ObserveRun("succeeded")
	if err := s.store.UpdateRun(ctx, runID, storage.RunStatusSucceeded, "", &result); err != nil {
		s.logger.Error("mark run succeeded failed", zap.String("run_id", runID), zap.Error(err))
		return
	}
	s.logger.Info("crawl run finished",
		zap.String("run_id", runID),
		zap.Int("products", len(result.Products)),
		zap.Int("pages_visited", result.PagesVisited),
	)
}

func (s *Server) getCrawl(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "run_id")
	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			s.writeError(w, http.StatusNotFound, "run not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "fetch run failed")
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) toCrawlConfig(seed string, req crawlRequest) crawler.Config {
	cfg := crawler.Config{
		SeedURL:     seed,
		MaxDepth:    valueOrDefault(req.MaxDepth, s.cfg.Crawler.MaxDepth),
		MaxLinks:    valueOrDefault(req.MaxLinks, s.cfg.Crawler.MaxLinks),
		MaxPages:    valueOrDefault(req.MaxPages, s.cfg.Crawler.MaxPages),
		Concurrency: s.cfg.Crawler.Concurrency,
		Timeout:     s.cfg.Crawler.Timeout(),
		UserAgent:   s.cfg.Crawler.UserAgent,
	}
	cfg.ApplyDefaults()
	return cfg
}

func valueOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
