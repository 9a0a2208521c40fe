// Package identity delegates authentication to the external identity
// service. Accounts, sessions, and token refresh are owned by that
// service; this package only maps its operations and errors into
// typed results.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/netsentry/netsentry/internal/config"
)

// Coded errors surfaced to callers. Anything else from the service is
// wrapped and passed through.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrWeakPassword       = errors.New("password does not meet requirements")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// User is the subset of the identity service's user object the
// dashboard cares about.
type User struct {
	ID          string
	Email       string
	DisplayName string
}

// Session is an authenticated session with its bearer tokens.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
}

// Provider is the authentication surface consumed by the dashboard.
// The underlying SDK manages its own request timeouts; ctx is accepted
// for interface stability and future transports.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*User, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	UpdateDisplayName(ctx context.Context, accessToken, name string) (*User, error)
}

type gotrueProvider struct {
	client gotrue.Client
}

// NewProvider builds a provider against the configured identity
// service endpoint.
func NewProvider(cfg config.IdentityConfig) (Provider, error) {
	if cfg.URL == "" {
		return nil, errors.New("identity URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("identity API key is required")
	}
	client := gotrue.New("netsentry", cfg.APIKey).WithCustomGoTrueURL(cfg.URL)
	return &gotrueProvider{client: client}, nil
}

func (p *gotrueProvider) SignUp(ctx context.Context, email, password string) (*User, error) {
	resp, err := p.client.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, mapError("sign up", err)
	}
	u := fromServiceUser(resp.User)
	return &u, nil
}

func (p *gotrueProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	resp, err := p.client.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, mapError("sign in", err)
	}
	return &Session{
		User:         fromServiceUser(resp.User),
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

func (p *gotrueProvider) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return ErrNotAuthenticated
	}
	if err := p.client.WithToken(accessToken).Logout(); err != nil {
		return mapError("sign out", err)
	}
	return nil
}

func (p *gotrueProvider) UpdateDisplayName(ctx context.Context, accessToken, name string) (*User, error) {
	if accessToken == "" {
		return nil, ErrNotAuthenticated
	}
	resp, err := p.client.WithToken(accessToken).UpdateUser(types.UpdateUserRequest{
		Data: map[string]interface{}{"display_name": name},
	})
	if err != nil {
		return nil, mapError("update display name", err)
	}
	u := fromServiceUser(resp.User)
	u.DisplayName = name
	return &u, nil
}

func fromServiceUser(su types.User) User {
	u := User{
		ID:    su.ID.String(),
		Email: su.Email,
	}
	if dn, ok := su.UserMetadata["display_name"].(string); ok {
		u.DisplayName = dn
	}
	return u
}

// mapError converts the service's loosely-typed errors into the coded
// set above. The service reports failures as message strings, so the
// mapping is by recognizable phrases.
func mapError(op string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid login credentials"),
		strings.Contains(msg, "invalid_credentials"),
		strings.Contains(msg, "invalid grant"):
		return ErrInvalidCredentials
	case strings.Contains(msg, "already registered"),
		strings.Contains(msg, "already been registered"),
		strings.Contains(msg, "email_exists"):
		return ErrEmailTaken
	case strings.Contains(msg, "password should be"),
		strings.Contains(msg, "weak_password"):
		return ErrWeakPassword
	case strings.Contains(msg, "invalid jwt"),
		strings.Contains(msg, "401"):
		return ErrNotAuthenticated
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
