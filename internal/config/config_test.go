package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	content := `
version: "1"
server:
  port: 9090
  log_level: debug
webhook:
  url: https://hooks.example.com/chat
  timeout_s: 5
tabular:
  base_id: appXYZ
  table: results
session:
  store: memory
`
	dir := t.TempDir()
	path := filepath.Join(dir, "netsentry.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Webhook.URL != "https://hooks.example.com/chat" {
		t.Errorf("webhook url = %q", cfg.Webhook.URL)
	}
	if cfg.Webhook.TimeoutS != 5 {
		t.Errorf("timeout_s = %d, want 5", cfg.Webhook.TimeoutS)
	}
	if cfg.Tabular.BaseID != "appXYZ" {
		t.Errorf("base_id = %q", cfg.Tabular.BaseID)
	}
	if cfg.Session.Store != "memory" {
		t.Errorf("session store = %q, want memory", cfg.Session.Store)
	}
	// untouched sections keep their defaults
	if cfg.Uploads.MaxSizeMB != 50 {
		t.Errorf("max_size_mb = %d, want 50", cfg.Uploads.MaxSizeMB)
	}
}

func TestLoadTokenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netsentry.yaml")
	if err := os.WriteFile(path, []byte("tabular:\n  token: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NETSENTRY_TABULAR_TOKEN", "from-env")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tabular.Token != "from-env" {
		t.Errorf("token = %q, want env override", cfg.Tabular.Token)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Webhook.TimeoutS != 30 {
		t.Errorf("default webhook timeout = %d, want 30", cfg.Webhook.TimeoutS)
	}
	if got := len(cfg.Uploads.AllowedExt); got != 4 {
		t.Errorf("default allowed_ext count = %d, want 4", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, false},
		{"bad session store", func(c *Config) { c.Session.Store = "dynamo" }, false},
		{"redis without addr", func(c *Config) { c.Session.Store = "redis" }, false},
		{"redis with addr", func(c *Config) {
			c.Session.Store = "redis"
			c.Session.RedisAddr = "localhost:6379"
		}, true},
		{"bad webhook scheme", func(c *Config) { c.Webhook.URL = "ftp://x" }, false},
		{"bad extension", func(c *Config) { c.Uploads.AllowedExt = []string{"log"} }, false},
		{"bad severity", func(c *Config) { c.Alerts.Email.MinSeverity = "whatever" }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantOK && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.wantOK && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netsentry.yaml")

	cfg := Defaults()
	cfg.Webhook.URL = "https://hooks.example.com/chat"
	cfg.Alerts.Email.Recipients = []string{"soc@example.com"}
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Webhook.URL != cfg.Webhook.URL {
		t.Errorf("webhook url = %q, want %q", loaded.Webhook.URL, cfg.Webhook.URL)
	}
	if len(loaded.Alerts.Email.Recipients) != 1 {
		t.Errorf("recipients = %v", loaded.Alerts.Email.Recipients)
	}
}
