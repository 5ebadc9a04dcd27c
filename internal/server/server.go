// Package server provides the HTTP REST API for the opportunity tracker.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/opportunity-tracker/internal/assessment"
	"github.com/jonathan/opportunity-tracker/internal/db"
	"github.com/jonathan/opportunity-tracker/internal/fetch"
	"github.com/jonathan/opportunity-tracker/internal/llm"
	"github.com/jonathan/opportunity-tracker/internal/parsing"
	"github.com/jonathan/opportunity-tracker/internal/profile"
	"github.com/jonathan/opportunity-tracker/internal/server/ratelimit"
	"github.com/jonathan/opportunity-tracker/internal/types"
)

// store is the persistence surface the handlers touch. *db.DB satisfies it.
type store interface {
	CreateOpportunity(ctx context.Context, input *types.OpportunityCreate) (*types.Opportunity, error)
	GetOpportunityByID(ctx context.Context, id int64) (*types.Opportunity, error)
	ListOpportunities(ctx context.Context) ([]*types.Opportunity, error)
	UpdateOpportunityStatus(ctx context.Context, id int64, status string) (*types.Opportunity, error)
	DeleteOpportunity(ctx context.Context, id int64) error

	GetProfileEntries(ctx context.Context) ([]types.ProfileEntry, error)
	CreateProfileEntry(ctx context.Context, entry types.ProfileEntry) (*types.ProfileEntry, error)
	UpdateProfileEntry(ctx context.Context, id string, entry types.ProfileEntry) (*types.ProfileEntry, error)
	DeleteProfileEntry(ctx context.Context, id string) error
	DeleteAllProfileEntries(ctx context.Context) error
	GetOrCreateDefaultProfile(ctx context.Context) (*types.Profile, error)
	ReplaceAllEntries(ctx context.Context, entries []types.ProfileEntry) error
}

// assessor drives the async assessment job state machine.
type assessor interface {
	Request(ctx context.Context, opportunityID int64, kind string) (*types.Assessment, error)
	Find(ctx context.Context, opportunityID int64, kind string) (*types.Assessment, error)
}

// fitScorer generates and serves the scored assessment.
type fitScorer interface {
	Assess(ctx context.Context, opportunityID int64) (*types.JobAssessment, error)
	Get(ctx context.Context, opportunityID int64) (*types.JobAssessment, error)
}

// parseLinkFunc extracts an opportunity from a posting URL.
type parseLinkFunc func(ctx context.Context, client llm.Client, fetchFn parsing.FetchFunc, link string) (*types.OpportunityCreate, error)

// regenerateFunc rebuilds the whole profile from collected sources.
type regenerateFunc func(ctx context.Context, client llm.Client, store profile.Store, logger *zap.Logger, sources []profile.Source) (*profile.Outcome, error)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	database    *db.DB
	store       store
	assessor    assessor
	scorer      fitScorer
	client      llm.Client
	logger      *zap.Logger
	rateLimiter *ratelimit.Limiter

	parseLink  parseLinkFunc
	regenerate regenerateFunc
	fetchFn    parsing.FetchFunc
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
	APIKey      string
	// DisableBrowser keeps all page fetches on the direct HTTP tier.
	DisableBrowser bool
}

// New creates a new server instance
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	s := &Server{
		database:   database,
		store:      database,
		assessor:   assessment.NewController(database, client, logger),
		scorer:     assessment.NewScorer(database, client, logger),
		client:     client,
		logger:     logger,
		parseLink:  parsing.ParseOpportunityFromLink,
		regenerate: profile.Regenerate,
		fetchFn:    fetchFunc(cfg.DisableBrowser),
	}
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // opportunity parsing can wait on a headless render
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// fetchFunc builds the page fetcher shared by link ingestion and profile
// generation. Nil means the packages' default two-tier fetcher.
func fetchFunc(disableBrowser bool) parsing.FetchFunc {
	if !disableBrowser {
		return nil
	}
	opts := fetch.DefaultOptions()
	opts.DirectOnly = true
	return func(ctx context.Context, url string) (*fetch.Result, error) {
		return fetch.Fetch(ctx, url, opts)
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /opportunities", s.handleCreateOpportunity)
	mux.HandleFunc("POST /opportunities/from-link", s.handleCreateOpportunityFromLink)
	mux.HandleFunc("GET /opportunities", s.handleListOpportunities)
	mux.HandleFunc("GET /opportunities/{id}", s.handleGetOpportunity)
	mux.HandleFunc("PATCH /opportunities/{id}/status", s.handleUpdateOpportunityStatus)
	mux.HandleFunc("DELETE /opportunities/{id}", s.handleDeleteOpportunity)

	mux.HandleFunc("GET /opportunities/{id}/assessment", s.handleGetAssessment)
	mux.HandleFunc("POST /opportunities/{id}/assessment", s.handleRequestAssessment)
	mux.HandleFunc("GET /opportunities/{id}/fit", s.handleGetFit)
	mux.HandleFunc("POST /opportunities/{id}/fit", s.handleGenerateFit)

	mux.HandleFunc("GET /profile/entries", s.handleListProfileEntries)
	mux.HandleFunc("POST /profile/entries", s.handleCreateProfileEntry)
	mux.HandleFunc("PUT /profile/entries/{id}", s.handleUpdateProfileEntry)
	mux.HandleFunc("DELETE /profile/entries/{id}", s.handleDeleteProfileEntry)
	mux.HandleFunc("DELETE /profile/entries", s.handleDeleteAllProfileEntries)
	mux.HandleFunc("POST /profile/generate", s.handleGenerateProfile)

	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.database != nil {
		s.database.Close()
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request. For MVP
// this is the IP from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.logger.Warn("rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Int("remaining", info.Remaining))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
