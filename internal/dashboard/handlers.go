package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/netsentry/netsentry/internal/alerts"
	"github.com/netsentry/netsentry/internal/chat"
	"github.com/netsentry/netsentry/internal/identity"
	"github.com/netsentry/netsentry/internal/records"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---- pages ----

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = loginTmpl.Execute(w, nil)
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	allowed, retryAfter := s.auth.CheckRateLimit(ip)
	if !allowed {
		s.logger.Warn("login rate-limited",
			"ip", ip,
			"retry_after", retryAfter.Round(time.Second).String(),
		)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		msg := fmt.Sprintf("Too many failed attempts. Try again in %d minutes.", int(retryAfter.Minutes())+1)
		_ = loginTmpl.Execute(w, map[string]any{"Error": msg})
		return
	}

	code := r.FormValue("code")
	if !s.auth.ValidateCode(code) {
		lockout := s.auth.RecordFailure(ip)
		if lockout > 0 {
			s.logger.Warn("login lockout triggered", "ip", ip, "lockout_duration", lockout.String())
		} else {
			s.logger.Info("login failed", "ip", ip)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = loginTmpl.Execute(w, map[string]any{"Error": "Invalid access code. Check your terminal."})
		return
	}

	s.auth.RecordSuccess(ip)
	s.logger.Info("login success", "ip", ip)

	token := s.auth.CreateSession()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   false, // localhost only
	})
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil {
		s.auth.InvalidateSession(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	s.logger.Info("logout", "ip", clientIP(r))
	http.Redirect(w, r, "/dashboard/login", http.StatusFound)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := s.alerts.Stats()
	if err != nil {
		s.logger.Error("alert stats failed", "error", err)
	}
	threats, err := s.analytics.Threats(r.Context())
	if err != nil {
		s.logger.Error("threat summary failed", "error", err)
	}

	data := map[string]any{
		"Active":     "overview",
		"Stats":      stats,
		"Threats":    threats,
		"Transcript": s.pipeline.Transcript().Messages(),
		"WebhookSet": s.pipeline.WebhookConfigured(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = overviewTmpl.Execute(w, data)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	tab := s.tabularConfig()
	data := map[string]any{
		"Active": "results",
		"BaseID": tab.BaseID,
		"Table":  tab.Table,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = resultsTmpl.Execute(w, data)
}

func (s *Server) handleEmployees(w http.ResponseWriter, r *http.Request) {
	emps, err := s.analytics.Employees(r.Context())
	if err != nil {
		http.Error(w, "analytics unavailable", http.StatusInternalServerError)
		return
	}
	type employeeRow struct {
		Name, Email, Department string
		Avatar                  template.HTML
		RiskPct                 int
		LastActive              time.Time
	}
	rows := make([]employeeRow, 0, len(emps))
	for _, e := range emps {
		rows = append(rows, employeeRow{
			Name:       e.Name,
			Email:      e.Email,
			Department: e.Department,
			Avatar:     employeeAvatar(e.Name, e.Email, 20),
			RiskPct:    int(e.RiskScore * 100),
			LastActive: e.LastActive,
		})
	}
	data := map[string]any{
		"Active":    "employees",
		"Employees": rows,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = employeesTmpl.Execute(w, data)
}

func (s *Server) handleAlertsPage(w http.ResponseWriter, r *http.Request) {
	list, err := s.alerts.Query(alerts.QueryOpts{Limit: 100})
	if err != nil {
		http.Error(w, "alert store unavailable", http.StatusInternalServerError)
		return
	}
	settings, err := s.alerts.EmailSettings()
	if err != nil {
		s.logger.Error("reading email settings", "error", err)
	}
	data := map[string]any{
		"Active":        "alerts",
		"Alerts":        list,
		"Settings":      settings,
		"DigestMatches": digestEligible(list, settings.MinSeverity),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = alertsTmpl.Execute(w, data)
}

// digestEligible counts open alerts at or above the email threshold.
func digestEligible(list []alerts.Alert, min string) int {
	n := 0
	for _, a := range list {
		if a.Acknowledged == 0 && alerts.SeverityAtLeast(a.Severity, min) {
			n++
		}
	}
	return n
}

func (s *Server) handleAnalyticsPage(w http.ResponseWriter, r *http.Request) {
	threats, err := s.analytics.Threats(r.Context())
	if err != nil {
		http.Error(w, "analytics unavailable", http.StatusInternalServerError)
		return
	}
	data := map[string]any{
		"Active":  "analytics",
		"Threats": threats,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = analyticsTmpl.Execute(w, data)
}

func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Active":  "upload",
		"Files":   s.intake.List(),
		"MaxMB":   s.cfg.Uploads.MaxSizeMB,
		"Allowed": s.cfg.Uploads.AllowedExt,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = uploadTmpl.Execute(w, data)
}

// ---- chat API ----

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.pipeline.Send(r.Context(), req.Message)
	if errors.Is(err, chat.ErrBusy) {
		writeError(w, http.StatusTooManyRequests, "a message is already being processed")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := map[string]any{
		"outcome":  res.Outcome,
		"messages": res.Appended,
	}
	if res.Err != nil {
		resp["detail"] = res.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": s.pipeline.Transcript().Messages(),
	})
}

func (s *Server) handleChatReset(w http.ResponseWriter, r *http.Request) {
	s.pipeline.Transcript().Reset()
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": s.pipeline.Transcript().Messages(),
	})
}

// ---- records API ----

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	tab := s.tabularConfig()
	if tab.BaseID == "" || tab.Table == "" {
		writeError(w, http.StatusServiceUnavailable, "tabular data source is not configured")
		return
	}

	fetch := s.viewer.Fetch
	if r.URL.Query().Get("refresh") == "1" {
		fetch = s.viewer.Refresh
	}

	recs, started, err := fetch(r.Context(), tab.BaseID, tab.Table)
	if !started {
		writeJSON(w, http.StatusAccepted, map[string]any{"status": "fetch in progress"})
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	fields := records.FieldNames(recs)
	rows := make([]map[string]string, 0, len(recs))
	for _, rec := range recs {
		row := map[string]string{"_id": rec.ID}
		for _, f := range fields {
			row[f] = records.FormatFieldValue(rec.Fields[f])
		}
		rows = append(rows, row)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fields":  fields,
		"records": rows,
		"count":   len(rows),
	})
}

// ---- uploads API ----

func (s *Server) handleUploadSubmit(w http.ResponseWriter, r *http.Request) {
	// The size ceiling applies per file; one extra MiB covers multipart
	// framing.
	limit := int64(s.cfg.Uploads.MaxSizeMB+1) << 20
	if err := r.ParseMultipartForm(limit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	form := r.MultipartForm
	defer func() { _ = form.RemoveAll() }()

	var accepted []any
	var rejected []any
	for _, hdr := range form.File["files"] {
		src, err := hdr.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file part")
			return
		}
		f, rej, err := s.intake.Accept(hdr.Filename, hdr.Size, src)
		_ = src.Close()
		if err != nil {
			s.logger.Error("upload intake failed", "name", hdr.Filename, "error", err)
			writeError(w, http.StatusInternalServerError, "storing upload failed")
			return
		}
		if rej != nil {
			rejected = append(rejected, rej)
			continue
		}
		accepted = append(accepted, f)
		go s.intake.Process(f.ID)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accepted": accepted,
		"rejected": rejected,
	})
}

func (s *Server) handleUploadList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"files": s.intake.List()})
}

func (s *Server) handleUploadRemove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.intake.Remove(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- alerts API ----

func (s *Server) handleAlertList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := alerts.QueryOpts{
		Severity: q.Get("severity"),
		Employee: q.Get("employee"),
		Since:    q.Get("since"),
		OpenOnly: q.Get("open") == "1",
	}
	if opts.Severity != "" && !alerts.ValidSeverity(opts.Severity) {
		writeError(w, http.StatusBadRequest, "unknown severity")
		return
	}
	list, err := s.alerts.Query(opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": list})
}

func (s *Server) handleAlertAck(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.alerts.Acknowledge(id)
	if errors.Is(err, alerts.ErrNotFound) {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAlertSettingsGet(w http.ResponseWriter, r *http.Request) {
	settings, err := s.alerts.EmailSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleAlertSettingsPut(w http.ResponseWriter, r *http.Request) {
	var settings alerts.EmailSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.alerts.SaveEmailSettings(settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Info("email alert settings updated",
		"enabled", settings.Enabled,
		"min_severity", settings.MinSeverity,
		"recipients", len(settings.Recipients),
	)
	writeJSON(w, http.StatusOK, settings)
}

// ---- analytics API ----

func (s *Server) handleThreats(w http.ResponseWriter, r *http.Request) {
	threats, err := s.analytics.Threats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"threats": threats})
}

func (s *Server) handleEmployeeList(w http.ResponseWriter, r *http.Request) {
	emps, err := s.analytics.Employees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": emps})
}

func (s *Server) handleEmployeeDetail(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	emp, ok, err := s.analytics.Employee(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "employee not found")
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// ---- account API ----

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if s.idp == nil {
		writeError(w, http.StatusServiceUnavailable, "identity service is not configured")
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.idp.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, identityStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if s.idp == nil {
		writeError(w, http.StatusServiceUnavailable, "identity service is not configured")
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := s.idp.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, identityStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":          sess.User,
		"access_token":  sess.AccessToken,
		"refresh_token": sess.RefreshToken,
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if s.idp == nil {
		writeError(w, http.StatusServiceUnavailable, "identity service is not configured")
		return
	}
	if err := s.idp.SignOut(r.Context(), bearerToken(r)); err != nil {
		writeError(w, identityStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type displayNameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleDisplayName(w http.ResponseWriter, r *http.Request) {
	if s.idp == nil {
		writeError(w, http.StatusServiceUnavailable, "identity service is not configured")
		return
	}
	var req displayNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	user, err := s.idp.UpdateDisplayName(r.Context(), bearerToken(r), req.Name)
	if err != nil {
		writeError(w, identityStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

func identityStatus(err error) int {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, identity.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, identity.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, identity.ErrWeakPassword):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
