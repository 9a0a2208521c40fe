package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/netsentry/netsentry/internal/config"
)

func TestNewProviderValidation(t *testing.T) {
	if _, err := NewProvider(config.IdentityConfig{APIKey: "k"}); err == nil {
		t.Error("missing URL should be rejected")
	}
	if _, err := NewProvider(config.IdentityConfig{URL: "https://id.example.com"}); err == nil {
		t.Error("missing API key should be rejected")
	}
	p, err := NewProvider(config.IdentityConfig{URL: "https://id.example.com", APIKey: "k"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p == nil {
		t.Fatal("nil provider")
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"bad credentials", "response status code 400: Invalid login credentials", ErrInvalidCredentials},
		{"grant refused", "invalid grant: unknown user", ErrInvalidCredentials},
		{"duplicate email", "response status code 422: User already registered", ErrEmailTaken},
		{"weak password", "Password should be at least 6 characters", ErrWeakPassword},
		{"expired token", "response status code 401: unauthorized", ErrNotAuthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError("sign in", errors.New(tt.in))
			if !errors.Is(got, tt.want) {
				t.Errorf("mapError(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapErrorPassthrough(t *testing.T) {
	orig := errors.New("connection refused")
	got := mapError("sign in", orig)
	if !errors.Is(got, orig) {
		t.Error("unrecognized errors should wrap the original")
	}
	for _, coded := range []error{ErrInvalidCredentials, ErrEmailTaken, ErrWeakPassword, ErrNotAuthenticated} {
		if errors.Is(got, coded) {
			t.Errorf("passthrough error should not match %v", coded)
		}
	}
}

func TestSignOutRequiresToken(t *testing.T) {
	p, err := NewProvider(config.IdentityConfig{URL: "https://id.example.com", APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SignOut(context.Background(), ""); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("SignOut with empty token = %v, want ErrNotAuthenticated", err)
	}
	if _, err := p.UpdateDisplayName(context.Background(), "", "Alice"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("UpdateDisplayName with empty token = %v, want ErrNotAuthenticated", err)
	}
}
