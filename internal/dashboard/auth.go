package dashboard

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	sessionCookieName = "netsentry_session"
	sessionDuration   = 24 * time.Hour

	maxLoginFailures = 5
	lockoutDuration  = 15 * time.Minute
)

type session struct {
	token     string
	createdAt time.Time
}

type failureRecord struct {
	count       int
	lockedUntil time.Time
}

// Auth manages access-code authentication, session tokens, and
// per-client login rate limiting for the dashboard.
type Auth struct {
	accessCode string
	mu         sync.RWMutex
	sessions   map[string]session
	failures   map[string]*failureRecord
}

// NewAuth generates a random 8-digit access code and returns a new Auth instance.
func NewAuth() *Auth {
	return &Auth{
		accessCode: generateAccessCode(),
		sessions:   make(map[string]session),
		failures:   make(map[string]*failureRecord),
	}
}

// AccessCode returns the code the user must enter to authenticate.
func (a *Auth) AccessCode() string {
	return a.accessCode
}

// ValidateCode checks if the provided code matches the access code.
func (a *Auth) ValidateCode(code string) bool {
	return code == a.accessCode
}

// CreateSession generates a session token and stores it.
func (a *Auth) CreateSession() string {
	token := generateSessionToken()
	a.mu.Lock()
	a.sessions[token] = session{token: token, createdAt: time.Now()}
	a.mu.Unlock()
	return token
}

// ValidateSession checks if a session token is valid and not expired.
func (a *Auth) ValidateSession(token string) bool {
	a.mu.RLock()
	s, ok := a.sessions[token]
	a.mu.RUnlock()
	if !ok {
		return false
	}
	return time.Since(s.createdAt) < sessionDuration
}

// InvalidateSession removes a session token.
func (a *Auth) InvalidateSession(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// CheckRateLimit reports whether the client may attempt a login. When
// locked out, the remaining lockout duration is returned.
func (a *Auth) CheckRateLimit(ip string) (bool, time.Duration) {
	a.mu.RLock()
	rec, ok := a.failures[ip]
	a.mu.RUnlock()
	if !ok {
		return true, 0
	}
	if remaining := time.Until(rec.lockedUntil); remaining > 0 {
		return false, remaining
	}
	return true, 0
}

// RecordFailure counts a failed attempt. When the failure threshold is
// reached the client is locked out and the lockout duration returned.
func (a *Auth) RecordFailure(ip string) time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, ok := a.failures[ip]
	if !ok {
		rec = &failureRecord{}
		a.failures[ip] = rec
	}
	rec.count++
	if rec.count >= maxLoginFailures {
		rec.lockedUntil = time.Now().Add(lockoutDuration)
		rec.count = 0
		return lockoutDuration
	}
	return 0
}

// RecordSuccess clears the failure state for a client.
func (a *Auth) RecordSuccess(ip string) {
	a.mu.Lock()
	delete(a.failures, ip)
	a.mu.Unlock()
}

// Middleware protects dashboard and API routes. Unauthenticated page
// requests are redirected to login; API requests get a JSON 401.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || !a.ValidateSession(cookie.Value) {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"authentication required"}`))
				return
			}
			http.Redirect(w, r, "/dashboard/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isPublicPath(path string) bool {
	switch path {
	case "/dashboard/login", "/health", "/metrics":
		return true
	}
	// Account endpoints delegate auth to the identity service.
	return strings.HasPrefix(path, "/api/account/")
}

// generateAccessCode returns a random 8-digit numeric code.
func generateAccessCode() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(100_000_000))
	return fmt.Sprintf("%08d", n.Int64())
}

// generateSessionToken returns a cryptographically random hex string.
func generateSessionToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x", b)
}
