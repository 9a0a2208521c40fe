package alerts

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/netsentry/netsentry/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := NewStore(dbPath, logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func ts(offset time.Duration) string {
	return time.Now().Add(offset).UTC().Format(time.RFC3339)
}

func seedAlerts(t *testing.T, store *Store) {
	t.Helper()
	seed := []Alert{
		{ID: "a1", Timestamp: ts(-3 * time.Hour), Employee: "Dana Webb", Email: "dana.webb@corp.io", Category: "job_hunting", Severity: "high", Message: "resume uploads to job boards", RiskScore: 0.82},
		{ID: "a2", Timestamp: ts(-2 * time.Hour), Employee: "Raj Patel", Email: "raj.patel@corp.io", Category: "entertainment", Severity: "low", Message: "streaming during work hours", RiskScore: 0.21},
		{ID: "a3", Timestamp: ts(-1 * time.Hour), Employee: "Dana Webb", Email: "dana.webb@corp.io", Category: "data_exfil", Severity: "critical", Message: "large outbound transfer", RiskScore: 0.95},
		{ID: "a4", Timestamp: ts(-30 * time.Minute), Employee: "Mia Chen", Email: "mia.chen@corp.io", Category: "policy_violation", Severity: "medium", Message: "blocked domain access", RiskScore: 0.44},
	}
	for _, a := range seed {
		store.Record(a)
	}
	store.Flush()
}

func TestQueryFilters(t *testing.T) {
	store := newTestStore(t)
	seedAlerts(t, store)

	all, err := store.Query(QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d alerts, want 4", len(all))
	}
	// Newest first.
	if all[0].ID != "a4" {
		t.Errorf("first alert = %s, want a4", all[0].ID)
	}

	high, err := store.Query(QueryOpts{Severity: "high"})
	if err != nil {
		t.Fatal(err)
	}
	if len(high) != 1 || high[0].ID != "a1" {
		t.Errorf("severity filter returned %+v", high)
	}

	dana, err := store.Query(QueryOpts{Employee: "dana.webb@corp.io"})
	if err != nil {
		t.Fatal(err)
	}
	if len(dana) != 2 {
		t.Errorf("got %d alerts for dana, want 2", len(dana))
	}

	recent, err := store.Query(QueryOpts{Since: ts(-90 * time.Minute)})
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Errorf("got %d recent alerts, want 2", len(recent))
	}

	limited, err := store.Query(QueryOpts{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d with limit 1", len(limited))
	}
}

func TestAcknowledge(t *testing.T) {
	store := newTestStore(t)
	seedAlerts(t, store)

	if err := store.Acknowledge("a2"); err != nil {
		t.Fatal(err)
	}

	open, err := store.Query(QueryOpts{OpenOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 3 {
		t.Errorf("got %d open alerts, want 3", len(open))
	}
	for _, a := range open {
		if a.ID == "a2" {
			t.Error("a2 should be excluded after acknowledge")
		}
	}

	if err := store.Acknowledge("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Acknowledge(missing) = %v, want ErrNotFound", err)
	}
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	seedAlerts(t, store)

	if err := store.Acknowledge("a1"); err != nil {
		t.Fatal(err)
	}

	st, err := store.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 4 {
		t.Errorf("Total = %d, want 4", st.Total)
	}
	if st.Low != 1 || st.Medium != 1 || st.High != 1 || st.Critical != 1 {
		t.Errorf("severity counts = %+v", st)
	}
	if st.Open != 3 {
		t.Errorf("Open = %d, want 3", st.Open)
	}
}

func TestEmailSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)

	// Defaults before any save.
	def, err := store.EmailSettings()
	if err != nil {
		t.Fatal(err)
	}
	if def.MinSeverity != "high" || def.DigestHour != 9 || def.Enabled {
		t.Errorf("unexpected defaults %+v", def)
	}

	want := EmailSettings{
		Enabled:     true,
		Recipients:  []string{"secops@corp.io", "it-lead@corp.io"},
		MinSeverity: "medium",
		DigestHour:  7,
	}
	if err := store.SaveEmailSettings(want); err != nil {
		t.Fatal(err)
	}

	got, err := store.EmailSettings()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Enabled || got.MinSeverity != "medium" || got.DigestHour != 7 || len(got.Recipients) != 2 {
		t.Errorf("got %+v, want %+v", got, want)
	}

	// Saving again overwrites.
	want.DigestHour = 18
	if err := store.SaveEmailSettings(want); err != nil {
		t.Fatal(err)
	}
	got, _ = store.EmailSettings()
	if got.DigestHour != 18 {
		t.Errorf("DigestHour = %d after overwrite, want 18", got.DigestHour)
	}
}

func TestSaveEmailSettingsValidates(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveEmailSettings(EmailSettings{MinSeverity: "urgent", DigestHour: 8}); err == nil {
		t.Error("unknown severity should be rejected")
	}
	if err := store.SaveEmailSettings(EmailSettings{MinSeverity: "low", DigestHour: 24}); err == nil {
		t.Error("out-of-range digest hour should be rejected")
	}
}

func TestSeedEmailSettings(t *testing.T) {
	store := newTestStore(t)

	seed := EmailSettings{
		Enabled:     true,
		Recipients:  []string{"secops@corp.io"},
		MinSeverity: "medium",
		DigestHour:  7,
	}
	if err := store.SeedEmailSettings(seed); err != nil {
		t.Fatal(err)
	}

	got, err := store.EmailSettings()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Enabled || got.MinSeverity != "medium" || got.DigestHour != 7 {
		t.Errorf("seeded settings = %+v, want %+v", got, seed)
	}

	// A second seed never overwrites.
	seed.DigestHour = 22
	if err := store.SeedEmailSettings(seed); err != nil {
		t.Fatal(err)
	}
	got, _ = store.EmailSettings()
	if got.DigestHour != 7 {
		t.Errorf("DigestHour = %d after reseed, want 7", got.DigestHour)
	}

	// Neither does a seed after a dashboard save.
	saved := EmailSettings{MinSeverity: "critical", DigestHour: 6}
	if err := store.SaveEmailSettings(saved); err != nil {
		t.Fatal(err)
	}
	if err := store.SeedEmailSettings(seed); err != nil {
		t.Fatal(err)
	}
	got, _ = store.EmailSettings()
	if got.MinSeverity != "critical" || got.DigestHour != 6 {
		t.Errorf("seed overwrote a saved configuration: %+v", got)
	}
}

func TestEmailSettingsDefaultMatchesConfig(t *testing.T) {
	store := newTestStore(t)

	def, err := store.EmailSettings()
	if err != nil {
		t.Fatal(err)
	}
	want := config.Defaults().Alerts.Email
	if def.MinSeverity != want.MinSeverity || def.DigestHour != want.DigestHour {
		t.Errorf("store fallback %+v disagrees with config defaults %+v", def, want)
	}
}

func TestSeedAlertsOnlyWhenEmpty(t *testing.T) {
	store := newTestStore(t)

	demo := DemoAlerts(time.Now())
	if len(demo) == 0 {
		t.Fatal("DemoAlerts returned nothing")
	}
	if err := store.SeedAlerts(demo); err != nil {
		t.Fatal(err)
	}

	all, err := store.Query(QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(demo) {
		t.Fatalf("got %d alerts after seed, want %d", len(all), len(demo))
	}

	// Seeding a populated store is a no-op.
	if err := store.SeedAlerts(DemoAlerts(time.Now())); err != nil {
		t.Fatal(err)
	}
	all, _ = store.Query(QueryOpts{})
	if len(all) != len(demo) {
		t.Errorf("got %d alerts after reseed, want %d", len(all), len(demo))
	}
}

func TestSeverityAtLeast(t *testing.T) {
	tests := []struct {
		s, min string
		want   bool
	}{
		{"critical", "high", true},
		{"high", "high", true},
		{"medium", "high", false},
		{"low", "low", true},
		{"bogus", "low", false},
		{"high", "bogus", false},
	}
	for _, tt := range tests {
		if got := SeverityAtLeast(tt.s, tt.min); got != tt.want {
			t.Errorf("SeverityAtLeast(%q, %q) = %v, want %v", tt.s, tt.min, got, tt.want)
		}
	}
}
