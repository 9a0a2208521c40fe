package dashboard

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/netsentry/netsentry/internal/alerts"
	"github.com/netsentry/netsentry/internal/analytics"
	"github.com/netsentry/netsentry/internal/chat"
	"github.com/netsentry/netsentry/internal/config"
	"github.com/netsentry/netsentry/internal/identity"
	"github.com/netsentry/netsentry/internal/metrics"
	"github.com/netsentry/netsentry/internal/records"
	"github.com/netsentry/netsentry/internal/upload"
)

// Server serves the netsentry dashboard UI and its JSON API.
type Server struct {
	auth      *Auth
	cfg       *config.Config
	pipeline  *chat.Pipeline
	viewer    *records.Viewer
	intake    *upload.Intake
	alerts    *alerts.Store
	analytics analytics.Source
	idp       identity.Provider
	logger    *slog.Logger
	mux       *http.ServeMux

	reloadMu sync.RWMutex // guards tabular (hot-reloadable)
	tabular  config.TabularConfig
}

// Deps bundles the subsystems the dashboard serves.
type Deps struct {
	Config    *config.Config
	Pipeline  *chat.Pipeline
	Viewer    *records.Viewer
	Intake    *upload.Intake
	Alerts    *alerts.Store
	Analytics analytics.Source
	Identity  identity.Provider
	Logger    *slog.Logger
}

// NewServer creates a dashboard server with access-code authentication.
func NewServer(d Deps) *Server {
	s := &Server{
		auth:      NewAuth(),
		cfg:       d.Config,
		pipeline:  d.Pipeline,
		viewer:    d.Viewer,
		intake:    d.Intake,
		alerts:    d.Alerts,
		analytics: d.Analytics,
		idp:       d.Identity,
		logger:    d.Logger,
		mux:       http.NewServeMux(),
		tabular:   d.Config.Tabular,
	}
	s.routes()
	return s
}

// ApplyConfig installs the reloadable sections of a freshly loaded
// config. Only the tabular data source lives here; the webhook endpoint
// is owned by the chat pipeline.
func (s *Server) ApplyConfig(next *config.Config) {
	s.reloadMu.Lock()
	s.tabular = next.Tabular
	s.reloadMu.Unlock()
}

func (s *Server) tabularConfig() config.TabularConfig {
	s.reloadMu.RLock()
	defer s.reloadMu.RUnlock()
	return s.tabular
}

// AccessCode returns the one-time access code displayed in the terminal.
func (s *Server) AccessCode() string {
	return s.auth.AccessCode()
}

// Handler returns the dashboard HTTP handler with the middleware chain
// applied.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.auth.Middleware(h)
	h = recovery(s.logger)(h)
	h = logging(s.logger)(h)
	h = requestID(h)
	h = securityHeaders(h)
	return h
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /dashboard/login", s.handleLoginPage)
	s.mux.HandleFunc("POST /dashboard/login", s.handleLoginSubmit)
	s.mux.HandleFunc("POST /dashboard/logout", s.handleLogout)

	s.mux.HandleFunc("GET /dashboard", s.handleOverview)
	s.mux.HandleFunc("GET /dashboard/results", s.handleResults)
	s.mux.HandleFunc("GET /dashboard/employees", s.handleEmployees)
	s.mux.HandleFunc("GET /dashboard/alerts", s.handleAlertsPage)
	s.mux.HandleFunc("GET /dashboard/analytics", s.handleAnalyticsPage)
	s.mux.HandleFunc("GET /dashboard/upload", s.handleUploadPage)
	s.mux.HandleFunc("GET /", s.handleRoot)

	// Chat
	s.mux.HandleFunc("POST /api/chat/message", s.handleChatMessage)
	s.mux.HandleFunc("GET /api/chat/history", s.handleChatHistory)
	s.mux.HandleFunc("POST /api/chat/reset", s.handleChatReset)

	// Records (tabular-data viewer)
	s.mux.HandleFunc("GET /api/records", s.handleRecords)

	// Uploads
	s.mux.HandleFunc("POST /api/uploads", s.handleUploadSubmit)
	s.mux.HandleFunc("GET /api/uploads", s.handleUploadList)
	s.mux.HandleFunc("DELETE /api/uploads/{id}", s.handleUploadRemove)

	// Alerts
	s.mux.HandleFunc("GET /api/alerts", s.handleAlertList)
	s.mux.HandleFunc("POST /api/alerts/{id}/ack", s.handleAlertAck)
	s.mux.HandleFunc("GET /api/alerts/settings", s.handleAlertSettingsGet)
	s.mux.HandleFunc("PUT /api/alerts/settings", s.handleAlertSettingsPut)

	// Analytics
	s.mux.HandleFunc("GET /api/analytics/threats", s.handleThreats)
	s.mux.HandleFunc("GET /api/analytics/employees", s.handleEmployeeList)
	s.mux.HandleFunc("GET /api/analytics/employees/{email}", s.handleEmployeeDetail)

	// Account (delegated to the identity service)
	s.mux.HandleFunc("POST /api/account/signup", s.handleSignUp)
	s.mux.HandleFunc("POST /api/account/signin", s.handleSignIn)
	s.mux.HandleFunc("POST /api/account/signout", s.handleSignOut)
	s.mux.HandleFunc("PUT /api/account/display-name", s.handleDisplayName)

	s.mux.HandleFunc("GET /health", s.handleHealth)
	if s.cfg.Metrics.Enabled {
		s.mux.Handle("GET /metrics", metrics.Handler())
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
