package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level netsentry configuration.
type Config struct {
	Version  string         `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Tabular  TabularConfig  `yaml:"tabular"`
	Identity IdentityConfig `yaml:"identity,omitempty"`
	Session  SessionConfig  `yaml:"session"`
	Uploads  UploadConfig   `yaml:"uploads"`
	Alerts   AlertConfig    `yaml:"alerts"`
	Metrics  MetricsConfig  `yaml:"metrics,omitempty"`
	Tracing  TracingConfig  `yaml:"tracing,omitempty"`
}

// ServerConfig holds dashboard server settings.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	Bind     string `yaml:"bind"` // Address to bind (default: 127.0.0.1)
	LogLevel string `yaml:"log_level"`
}

// WebhookConfig points at the external automation endpoint that processes
// chat submissions (classification, email dispatch). Its internals are
// externally owned.
type WebhookConfig struct {
	URL      string `yaml:"url"`
	TimeoutS int    `yaml:"timeout_s"`
}

// TabularConfig configures the third-party tabular-data API used by the
// results page. The token can also come from NETSENTRY_TABULAR_TOKEN.
type TabularConfig struct {
	BaseURL string `yaml:"base_url"`
	BaseID  string `yaml:"base_id"`
	Table   string `yaml:"table"`
	Token   string `yaml:"token,omitempty"`
}

// IdentityConfig configures the delegated identity provider.
type IdentityConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// SessionConfig selects where chat session identifiers are persisted.
type SessionConfig struct {
	Store         string `yaml:"store"` // memory, file, redis
	Path          string `yaml:"path,omitempty"`
	RedisAddr     string `yaml:"redis_addr,omitempty"`
	RedisDB       int    `yaml:"redis_db,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty"`
	TTLHours      int    `yaml:"ttl_hours,omitempty"`
}

// UploadConfig bounds the upload intake validator.
type UploadConfig struct {
	Dir          string   `yaml:"dir"`
	MaxSizeMB    int      `yaml:"max_size_mb"`
	AllowedExt   []string `yaml:"allowed_ext,omitempty"`
	PreviewBytes int      `yaml:"preview_bytes,omitempty"`
}

// AlertConfig holds the alert store location and email-alert defaults.
type AlertConfig struct {
	DBPath string        `yaml:"db_path"`
	Email  EmailDefaults `yaml:"email,omitempty"`
}

// EmailDefaults seeds the persisted email-alert settings on first run.
type EmailDefaults struct {
	Enabled     bool     `yaml:"enabled"`
	Recipients  []string `yaml:"recipients,omitempty"`
	MinSeverity string   `yaml:"min_severity,omitempty"`
	DigestHour  int      `yaml:"digest_hour,omitempty"`
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TracingConfig toggles OpenTelemetry span export.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads and parses a netsentry config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply zero-value defaults after unmarshal
	if cfg.Webhook.TimeoutS == 0 {
		cfg.Webhook.TimeoutS = 30
	}
	if cfg.Uploads.MaxSizeMB == 0 {
		cfg.Uploads.MaxSizeMB = 50
	}
	if cfg.Uploads.PreviewBytes == 0 {
		cfg.Uploads.PreviewBytes = 500
	}
	if len(cfg.Uploads.AllowedExt) == 0 {
		cfg.Uploads.AllowedExt = []string{".log", ".txt", ".csv", ".json"}
	}
	if cfg.Session.TTLHours == 0 {
		cfg.Session.TTLHours = 720
	}
	if tok := os.Getenv("NETSENTRY_TABULAR_TOKEN"); tok != "" {
		cfg.Tabular.Token = tok
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			Port:     8080,
			LogLevel: "info",
		},
		Webhook: WebhookConfig{
			TimeoutS: 30,
		},
		Tabular: TabularConfig{
			BaseURL: "https://api.airtable.com/v0",
		},
		Session: SessionConfig{
			Store:    "file",
			Path:     "netsentry-session.json",
			TTLHours: 720,
		},
		Uploads: UploadConfig{
			Dir:          "uploads",
			MaxSizeMB:    50,
			AllowedExt:   []string{".log", ".txt", ".csv", ".json"},
			PreviewBytes: 500,
		},
		Alerts: AlertConfig{
			DBPath: "netsentry.db",
			Email: EmailDefaults{
				MinSeverity: "high",
				DigestHour:  9,
			},
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Save writes the config to a YAML file at the given path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks that the config is consistent.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	switch c.Session.Store {
	case "memory", "file", "redis":
		// valid
	default:
		return fmt.Errorf("invalid session store %q (want memory, file, or redis)", c.Session.Store)
	}
	if c.Session.Store == "file" && c.Session.Path == "" {
		return fmt.Errorf("session.path is required for the file store")
	}
	if c.Session.Store == "redis" && c.Session.RedisAddr == "" {
		return fmt.Errorf("session.redis_addr is required for the redis store")
	}
	if c.Webhook.URL != "" && !strings.HasPrefix(c.Webhook.URL, "http://") && !strings.HasPrefix(c.Webhook.URL, "https://") {
		return fmt.Errorf("webhook.url must be http or https")
	}
	if c.Uploads.MaxSizeMB < 1 {
		return fmt.Errorf("uploads.max_size_mb must be positive")
	}
	for _, ext := range c.Uploads.AllowedExt {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("uploads.allowed_ext entry %q must start with a dot", ext)
		}
	}
	switch c.Alerts.Email.MinSeverity {
	case "", "low", "medium", "high", "critical":
		// valid
	default:
		return fmt.Errorf("alerts.email.min_severity %q is not a known severity", c.Alerts.Email.MinSeverity)
	}
	return nil
}
