package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	contestregistry "inkwell/contexts/contest-judging/contest-registry"
	judgeregistry "inkwell/contexts/contest-judging/judge-registry"
	submissionmanager "inkwell/contexts/contest-judging/submission-manager"
	votingengine "inkwell/contexts/contest-judging/voting-engine"
	"inkwell/internal/platform/db"
	"inkwell/internal/platform/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "inkwell/internal/platform/httpserver/docs"
)

const (
	maxBodyBytes    = 1 << 20
	passwordHeader  = "X-Contest-Password"
	shutdownTimeout = 10 * time.Second
)

type Options struct {
	Registry    contestregistry.Module
	Submissions submissionmanager.Module
	Judges      judgeregistry.Module
	Voting      votingengine.Module
	Auth        Authenticator
	Metrics     *observability.Metrics
	// Gatherer enables /metrics when set.
	Gatherer prometheus.Gatherer
	Health   func(ctx context.Context) error
	Logger   *slog.Logger
	Addr     string
}

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	addr        string
	auth        Authenticator
	metrics     *observability.Metrics
	health      func(ctx context.Context) error
	registry    contestregistry.Module
	submissions submissionmanager.Module
	judges      judgeregistry.Module
	voting      votingengine.Module
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		addr:        addr,
		auth:        opts.Auth,
		metrics:     opts.Metrics,
		health:      opts.Health,
		registry:    opts.Registry,
		submissions: opts.Submissions,
		judges:      opts.Judges,
		voting:      opts.Voting,
	}
	s.registerRoutes(opts.Gatherer)
	return s
}

// Handler is the mux wrapped with request metrics.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.mux.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveHTTP(r.Method, route, rec.status, time.Since(started))
	})
}

// Start serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("http server stopping",
			"event", "http_server_stopping",
			"module", "internal/platform/httpserver",
			"layer", "platform",
		)
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes(gatherer prometheus.Gatherer) {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	s.mux.HandleFunc("POST /contests", s.handleCreateContest)
	s.mux.HandleFunc("GET /contests", s.handleListContests)
	s.mux.HandleFunc("GET /contests/{contest_id}", s.handleGetContest)
	s.mux.HandleFunc("PATCH /contests/{contest_id}", s.handleUpdateContest)
	s.mux.HandleFunc("DELETE /contests/{contest_id}", s.handleDeleteContest)
	s.mux.HandleFunc("POST /contests/{contest_id}/transitions", s.handleTransition)
	s.mux.HandleFunc("GET /contests/{contest_id}/history", s.handleContestHistory)

	s.mux.HandleFunc("POST /contests/{contest_id}/submissions", s.handleSubmit)
	s.mux.HandleFunc("GET /contests/{contest_id}/submissions", s.handleListSubmissions)
	s.mux.HandleFunc("DELETE /contests/{contest_id}/submissions/{submission_id}", s.handleWithdraw)

	s.mux.HandleFunc("POST /contests/{contest_id}/judges", s.handleAssignJudge)
	s.mux.HandleFunc("GET /contests/{contest_id}/judges", s.handleListJudges)
	s.mux.HandleFunc("DELETE /contests/{contest_id}/judges/{judge_key}", s.handleUnassignJudge)

	s.mux.HandleFunc("POST /contests/{contest_id}/votes", s.handleCastVoteSet)
	s.mux.HandleFunc("GET /contests/{contest_id}/votes", s.handleGetVoteSet)
	s.mux.HandleFunc("GET /contests/{contest_id}/ranking", s.handleGetRanking)
	s.mux.HandleFunc("POST /contests/{contest_id}/closure", s.handleEvaluateClosure)

	s.mux.HandleFunc("POST /internal/texts/{text_id}/deleted", s.handleTextDeleted)
	s.mux.HandleFunc("POST /internal/contests/sweep", s.handleSweep)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Warn("health check failed",
				"event", "http_health_check_failed",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"error", err.Error(),
			)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// optionalIdentity allows anonymous callers but rejects bad tokens.
func (s *Server) optionalIdentity(w http.ResponseWriter, r *http.Request) (Identity, bool) {
	identity, err := s.auth.FromRequest(r)
	switch {
	case err == nil:
		return identity, true
	case errors.Is(err, ErrMissingToken):
		return Identity{}, true
	default:
		writeError(w, http.StatusUnauthorized, "invalid_token", "bearer token is invalid or expired")
		return Identity{}, false
	}
}

func (s *Server) requireIdentity(w http.ResponseWriter, r *http.Request) (Identity, bool) {
	identity, err := s.auth.FromRequest(r)
	switch {
	case err == nil:
		return identity, true
	case errors.Is(err, ErrMissingToken):
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is required")
	default:
		writeError(w, http.StatusUnauthorized, "invalid_token", "bearer token is invalid or expired")
	}
	return Identity{}, false
}

func (s *Server) requireOperator(w http.ResponseWriter, r *http.Request) bool {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return false
	}
	if !identity.Privileged {
		writeError(w, http.StatusForbidden, "forbidden", "operator token required")
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	value, err := strconv.ParseInt(strings.TrimSpace(r.PathValue(name)), 10, 64)
	if err != nil || value <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a positive integer")
		return 0, false
	}
	return value, true
}

// writeInfraError covers failures no component claims: lock contention is
// transient, anything else is hidden behind a 500.
func (s *Server) writeInfraError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, db.ErrTransactionConflict) {
		writeError(w, http.StatusServiceUnavailable, "transaction_conflict", "concurrent update, retry later")
		return
	}
	s.logger.Error("request failed",
		"event", "http_request_failed",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err.Error(),
	)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
