// Package api exposes the ticket rewriter over REST.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/storyline-io/storyline/internal/history"
	"github.com/storyline-io/storyline/internal/logbuf"
	"github.com/storyline-io/storyline/pkg/story"
)

// TicketSource reads projects and issues from the tracker.
type TicketSource interface {
	ListProjects(ctx context.Context) ([]story.Project, error)
	ListIssues(ctx context.Context, projectKey string) ([]story.Ticket, error)
}

// RewriteService turns tickets into user stories.
type RewriteService interface {
	RewriteBatch(ctx context.Context, tickets []story.Ticket) ([]story.RewrittenTicket, error)
}

// UpdateService pushes rewritten tickets back to the tracker.
type UpdateService interface {
	UpdateAll(ctx context.Context, tickets []story.RewrittenTicket) story.UpdateResult
}

// HistoryQuerier reads the rewrite audit trail. May be absent.
type HistoryQuerier interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// LogQuerier abstracts log entry querying to avoid coupling to logbuf
// directly.
type LogQuerier interface {
	Query(since time.Time, minLevel slog.Level, limit int) []logbuf.Entry
}

// Config holds API server configuration.
type Config struct {
	Host string
	Port int
	Key  string // API key for Bearer auth
}

// Server is the storyline REST API server.
type Server struct {
	source   TicketSource
	rewriter RewriteService
	updater  UpdateService
	hist     HistoryQuerier
	logs     LogQuerier
	cfg      Config
	logger   *slog.Logger
	srv      *http.Server
}

// NewServer creates the API server. logger, hist and logs may be nil.
func NewServer(source TicketSource, rewriter RewriteService, updater UpdateService, cfg Config, logger *slog.Logger, hist HistoryQuerier, logs LogQuerier) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		source:   source,
		rewriter: rewriter,
		updater:  updater,
		hist:     hist,
		logs:     logs,
		cfg:      cfg,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/projects", s.requireAuth(s.handleListProjects))
	mux.HandleFunc("GET /api/projects/{key}/issues", s.requireAuth(s.handleListIssues))
	mux.HandleFunc("POST /api/rewrite-tickets", s.requireAuth(s.handleRewriteTickets))
	mux.HandleFunc("PUT /api/update-tickets", s.requireAuth(s.handleUpdateTickets))
	mux.HandleFunc("GET /api/history", s.requireAuth(s.handleGetHistory))
	mux.HandleFunc("GET /api/logs", s.requireAuth(s.handleGetLogs))

	s.srv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.corsMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins listening. Blocks until context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutCtx)
	}()

	s.logger.Info("api server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// --- Middleware ---

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Key == "" {
			next(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.cfg.Key {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.source.ListProjects(r.Context())
	if err != nil {
		s.logger.Error("failed to fetch projects", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch projects"})
		return
	}
	if projects == nil {
		projects = []story.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	tickets, err := s.source.ListIssues(r.Context(), key)
	if err != nil {
		s.logger.Error("failed to fetch issues", "project", key, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch issues"})
		return
	}
	if tickets == nil {
		tickets = []story.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (s *Server) handleRewriteTickets(w http.ResponseWriter, r *http.Request) {
	var tickets []story.Ticket
	if err := json.NewDecoder(r.Body).Decode(&tickets); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	rewritten, err := s.rewriter.RewriteBatch(r.Context(), tickets)
	if err != nil {
		s.logger.Error("rewrite batch failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to generate any user stories"})
		return
	}
	writeJSON(w, http.StatusOK, rewritten)
}

type updateTicketsRequest struct {
	Tickets []story.RewrittenTicket `json:"tickets"`
}

func (s *Server) handleUpdateTickets(w http.ResponseWriter, r *http.Request) {
	var req updateTicketsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	// Per-ticket failures are part of the payload, not an HTTP error.
	result := s.updater.UpdateAll(r.Context(), req.Tickets)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		writeJSON(w, http.StatusOK, []history.Entry{})
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.hist.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to query history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to query history"})
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	if s.logs == nil {
		writeJSON(w, http.StatusOK, []logbuf.Entry{})
		return
	}

	limit := 200
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	minLevel := slog.LevelDebug
	switch strings.ToLower(r.URL.Query().Get("level")) {
	case "info":
		minLevel = slog.LevelInfo
	case "warn":
		minLevel = slog.LevelWarn
	case "error":
		minLevel = slog.LevelError
	}

	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			since = time.UnixMilli(ms)
		}
	}

	entries := s.logs.Query(since, minLevel, limit)
	if entries == nil {
		entries = []logbuf.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
