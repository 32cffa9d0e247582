package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"weekendplan/internal/capture"
	"weekendplan/internal/catalog"
	"weekendplan/internal/config"
	appLog "weekendplan/internal/log"
	"weekendplan/internal/planstore"
	"weekendplan/internal/timeutil"
)

// maxBodyBytes bounds request bodies, calendar uploads included.
const maxBodyBytes = 1 << 20

// Server exposes the plan store over a JSON API plus a printable page.
type Server struct {
	cfg      *config.Config
	store    *planstore.Store
	catalog  *catalog.Catalog
	capturer capture.Capturer
	loc      *time.Location
	now      func() time.Time
	mux      *http.ServeMux

	// captureToken lets the headless browser load /print without the
	// basic auth credentials.
	captureToken string

	// Last rendered PNG, keyed by plan id and update time, so repeated
	// exports of an unchanged plan skip the browser.
	pngMu    sync.RWMutex
	pngCache *pngCache
}

// Options wires a Server. Capturer may be nil, which disables PNG export.
type Options struct {
	Config   *config.Config
	Store    *planstore.Store
	Catalog  *catalog.Catalog
	Capturer capture.Capturer
	Now      func() time.Time
}

type pngCache struct {
	key string
	png []byte
}

// NewServer constructs a new Server.
func NewServer(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		cfg:          cfg,
		store:        opts.Store,
		catalog:      opts.Catalog,
		capturer:     opts.Capturer,
		loc:          cfg.Location(),
		now:          opts.Now,
		mux:          http.NewServeMux(),
		captureToken: uuid.NewString(),
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		h = s.basicAuthMiddleware(h)
	}
	return logRequests(h)
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password disables auth.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
// /print is also open to requests carrying the capture token.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		if r.URL.Path == "/print" && secureCompare(r.URL.Query().Get("capture"), s.captureToken) {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="WeekendPlan", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		appLog.Debug("http request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "elapsed", time.Since(start).String())
	})
}

// Run serves on cfg.Listen until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/themes", s.handleThemes)
	s.mux.HandleFunc("PUT /api/theme", s.handleSetTheme)
	s.mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	s.mux.HandleFunc("POST /api/catalog/custom", s.handleAddCustom)
	s.mux.HandleFunc("DELETE /api/catalog/custom/{id}", s.handleRemoveCustom)

	s.mux.HandleFunc("GET /api/plan", s.handleCurrentPlan)
	s.mux.HandleFunc("POST /api/plan", s.handleCreatePlan)
	s.mux.HandleFunc("DELETE /api/plan", s.handleClearPlan)
	s.mux.HandleFunc("POST /api/plan/save", s.handleSavePlan)
	s.mux.HandleFunc("POST /api/plan/activities", s.handleAddActivity)
	s.mux.HandleFunc("DELETE /api/plan/activities/{day}/{id}", s.handleRemoveActivity)
	s.mux.HandleFunc("PUT /api/plan/activities/{day}/{id}", s.handleUpdateTime)
	s.mux.HandleFunc("POST /api/plan/reorder", s.handleReorder)
	s.mux.HandleFunc("POST /api/plan/move", s.handleMove)
	s.mux.HandleFunc("GET /api/plan/export", s.handleExport)
	s.mux.HandleFunc("GET /api/plan/overview", s.handleOverview)

	s.mux.HandleFunc("GET /api/plans", s.handleSavedPlans)
	s.mux.HandleFunc("POST /api/plans/import", s.handleImportJSON)
	s.mux.HandleFunc("POST /api/plans/import/ics", s.handleImportICS)
	s.mux.HandleFunc("POST /api/plans/shared", s.handleImportShared)
	s.mux.HandleFunc("POST /api/plans/{id}/load", s.handleLoadPlan)
	s.mux.HandleFunc("DELETE /api/plans/{id}", s.handleDeletePlan)
	s.mux.HandleFunc("POST /api/plans/{id}/duplicate", s.handleDuplicatePlan)
	s.mux.HandleFunc("PUT /api/plans/{id}/name", s.handleRenamePlan)
	s.mux.HandleFunc("POST /api/plans/{id}/mood", s.handleRecordMood)
	s.mux.HandleFunc("GET /api/plans/{id}/mood", s.handleMoodStats)
	s.mux.HandleFunc("PUT /api/plans/{id}/colors", s.handleThemeColors)

	s.mux.HandleFunc("GET /api/weekends", s.handleWeekends)
	s.mux.HandleFunc("GET /print", s.handlePrint)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// printURL is where the headless browser finds the printable page.
func (s *Server) printURL(planID string) string {
	host, port, err := net.SplitHostPort(s.cfg.Listen)
	if err != nil {
		host, port = "127.0.0.1", "8080"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	u := "http://" + net.JoinHostPort(host, port) + "/print?capture=" + s.captureToken
	if planID != "" {
		u += "&id=" + planID
	}
	return u
}

// errEmptyBody is returned by decodeJSON for a request without a body.
var errEmptyBody = errors.New("request body is empty")

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// writeStoreError maps errors coming out of the store: malformed times are
// the client's fault, anything else is ours.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, timeutil.ErrInvalidTimeFormat) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	appLog.Error("store operation failed", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
