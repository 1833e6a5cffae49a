package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"schedcal/internal/config"
	"schedcal/internal/gcal"
	icsrender "schedcal/internal/ics"
	appLog "schedcal/internal/log"
	"schedcal/internal/model"
	"schedcal/internal/schedule"
)

// Syncer performs the remote calendar sync. *gcal.Synchronizer satisfies it;
// tests substitute a fake.
type Syncer interface {
	Sync(ctx context.Context, accessToken string, req model.ExportRequest, items []schedule.Materialized) (*gcal.SyncResult, error)
}

// Server provides the thin HTTP orchestration around the materialization
// engine: ICS export and remote sync. All schedule logic lives below in
// internal/schedule, internal/ics and internal/gcal; handlers only decode,
// delegate and encode.
type Server struct {
	cfg    *config.Config
	syncer Syncer
	mux    *http.ServeMux

	// now is the clock used for anchor resolution; overridable in tests.
	now func() time.Time
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, syncer Syncer) *Server {
	s := &Server{
		cfg:    cfg,
		syncer: syncer,
		mux:    http.NewServeMux(),
		now:    time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// StartServer starts an HTTP server bound to cfg.Listen. Graceful shutdown
// wrapping (http.Server + ctx) is left to main.
func StartServer(_ context.Context, cfg *config.Config, syncer Syncer) error {
	s := NewServer(cfg, syncer)
	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
	return http.ListenAndServe(cfg.Listen, s.Handler())
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/ical", s.handleICal)
	s.mux.HandleFunc("/api/sync", s.handleSync)
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password counts as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays reachable without credentials.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="schedcal", charset="UTF-8"`)
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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// exportPayload is the request body shared by /api/ical and /api/sync:
// the extracted events plus optional per-request overrides of the config
// defaults.
type exportPayload struct {
	Events          []model.ScheduleEvent `json:"events"`
	CalendarName    string                `json:"calendarName,omitempty"`
	RepeatWeeks     int                   `json:"repeatWeeks,omitempty"`
	Timezone        string                `json:"timezone,omitempty"`
	SemesterEndDate string                `json:"semesterEndDate,omitempty"`
}

// buildRequest merges config defaults with per-request overrides.
func (s *Server) buildRequest(p exportPayload) (model.ExportRequest, error) {
	req := s.cfg.ExportRequest(p.Events)
	if p.CalendarName != "" {
		req.CalendarName = p.CalendarName
	}
	if p.RepeatWeeks > 0 {
		req.RepeatWeeks = p.RepeatWeeks
	}
	if p.Timezone != "" {
		req.Timezone = p.Timezone
	}
	if p.SemesterEndDate != "" {
		end, err := time.Parse("2006-01-02", p.SemesterEndDate)
		if err != nil {
			return model.ExportRequest{}, errors.New("semesterEndDate must be YYYY-MM-DD")
		}
		req.SemesterEndDate = end
	}
	return req, nil
}

// handleICal renders the events into an ICS document and returns it as a
// downloadable attachment.
func (s *Server) handleICal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var payload exportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(payload.Events) == 0 {
		writeError(w, http.StatusBadRequest, "events must not be empty")
		return
	}

	req, err := s.buildRequest(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := s.now()
	items, err := schedule.MaterializeRequest(req, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := icsrender.Render(req, items, now)

	w.Header().Set("Content-Type", icsrender.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+icsrender.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// handleSync replays the events against Google Calendar using the caller's
// bearer token and returns the created calendar's id and URL.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var payload exportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(payload.Events) == 0 {
		writeError(w, http.StatusBadRequest, "events must not be empty")
		return
	}

	req, err := s.buildRequest(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.CalendarName == "" {
		req.CalendarName = gcal.DefaultCalendarName
	}

	items, err := schedule.MaterializeRequest(req, s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.syncer.Sync(r.Context(), token, req, items)
	if err != nil {
		switch {
		case errors.Is(err, gcal.ErrInsufficientScope):
			writeError(w, http.StatusForbidden,
				"Google Calendar permission not granted; reconnect your Google account with calendar access")
		default:
			appLog.Error("calendar sync failed", err)
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, prefix))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to encode JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
