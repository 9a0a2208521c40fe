package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/netsentry/netsentry/internal/config"
)

// SessionProvider hands out the opaque session identifier that correlates a
// user's messages for the external processor. The id is created lazily on
// first use and reused afterwards; it is never explicitly destroyed.
type SessionProvider interface {
	// GetOrCreate returns the cached session id, creating one if absent.
	GetOrCreate(ctx context.Context) (string, error)
}

// NewSessionID generates a fresh session identifier.
func NewSessionID() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 9)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), string(b))
}

// NewSessionProvider builds a provider from config.
func NewSessionProvider(cfg config.SessionConfig) (SessionProvider, error) {
	switch cfg.Store {
	case "memory":
		return &memorySession{}, nil
	case "file":
		return &fileSession{path: cfg.Path}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
		})
		return &redisSession{
			client: client,
			ttl:    time.Duration(cfg.TTLHours) * time.Hour,
		}, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}

// memorySession keeps the id for the process lifetime only.
type memorySession struct {
	mu sync.Mutex
	id string
}

func (m *memorySession) GetOrCreate(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.id == "" {
		m.id = NewSessionID()
	}
	return m.id, nil
}

// fileSession persists the id to a small JSON file so it survives restarts,
// the way the original cached it in client-local storage.
type fileSession struct {
	mu   sync.Mutex
	path string
}

type sessionFile struct {
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at"`
}

func (f *fileSession) GetOrCreate(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err == nil {
		var sf sessionFile
		if jerr := json.Unmarshal(data, &sf); jerr == nil && sf.SessionID != "" {
			return sf.SessionID, nil
		}
		// Corrupt file: fall through and rewrite.
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("reading session file: %w", err)
	}

	sf := sessionFile{
		SessionID: NewSessionID(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	out, err := json.Marshal(sf)
	if err != nil {
		return "", fmt.Errorf("encoding session file: %w", err)
	}
	if err := os.WriteFile(f.path, out, 0o600); err != nil {
		return "", fmt.Errorf("writing session file: %w", err)
	}
	return sf.SessionID, nil
}

// redisSession shares the id across instances with a TTL.
type redisSession struct {
	client *redis.Client
	ttl    time.Duration
}

const redisSessionKey = "netsentry:chat:session_id"

func (r *redisSession) GetOrCreate(ctx context.Context) (string, error) {
	id, err := r.client.Get(ctx, redisSessionKey).Result()
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("reading session id: %w", err)
	}

	fresh := NewSessionID()
	// SetNX so a concurrent creator wins exactly once.
	ok, err := r.client.SetNX(ctx, redisSessionKey, fresh, r.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("storing session id: %w", err)
	}
	if ok {
		return fresh, nil
	}
	id, err = r.client.Get(ctx, redisSessionKey).Result()
	if err != nil {
		return "", fmt.Errorf("re-reading session id: %w", err)
	}
	return id, nil
}
