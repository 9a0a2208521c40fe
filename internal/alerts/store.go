// Package alerts persists behavior alerts and the email-alert
// configuration in a local SQLite database.
package alerts

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS alerts (
	id TEXT PRIMARY KEY,
	timestamp TEXT NOT NULL,
	employee TEXT NOT NULL,
	email TEXT NOT NULL,
	category TEXT NOT NULL,
	severity TEXT NOT NULL,
	message TEXT NOT NULL,
	risk_score REAL,
	acknowledged INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_alerts_severity ON alerts(severity);
CREATE INDEX IF NOT EXISTS idx_alerts_employee ON alerts(employee);
CREATE INDEX IF NOT EXISTS idx_alerts_timestamp ON alerts(timestamp);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const emailSettingsKey = "email_alerts"

// ErrNotFound is returned when an alert id does not exist.
var ErrNotFound = errors.New("alert not found")

// Store manages the SQLite alert database. Inserts go through a
// buffered channel and a single writer goroutine; reads hit the
// database directly.
type Store struct {
	db     *sql.DB
	writes chan Alert
	flush  chan chan struct{}
	done   chan struct{}
	logger *slog.Logger
}

// NewStore opens (or creates) the SQLite alert database.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening alerts db: %w", err)
	}

	// WAL keeps dashboard reads from blocking behind the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("setting WAL mode: %w (also: close: %v)", err, cerr)
		}
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("creating schema: %w (also: close: %v)", err, cerr)
		}
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &Store{
		db:     db,
		writes: make(chan Alert, 256),
		flush:  make(chan chan struct{}),
		done:   make(chan struct{}),
		logger: logger,
	}

	go s.writeLoop()
	return s, nil
}

// Record enqueues an alert for async writing.
func (s *Store) Record(a Alert) {
	select {
	case s.writes <- a:
	default:
		s.logger.Warn("alert write buffer full, dropping alert", "id", a.ID)
	}
}

// QueryOpts holds filters for alert queries.
type QueryOpts struct {
	Severity string
	Employee string
	Since    string
	OpenOnly bool
	Limit    int
}

// Query returns alerts matching the given filters, newest first.
func (s *Store) Query(opts QueryOpts) ([]Alert, error) {
	query := "SELECT id, timestamp, employee, email, category, severity, message, risk_score, acknowledged FROM alerts WHERE 1=1"
	var args []any

	if opts.Severity != "" {
		query += " AND severity = ?"
		args = append(args, opts.Severity)
	}
	if opts.Employee != "" {
		query += " AND (employee = ? OR email = ?)"
		args = append(args, opts.Employee, opts.Employee)
	}
	if opts.Since != "" {
		query += " AND timestamp >= ?"
		args = append(args, opts.Since)
	}
	if opts.OpenOnly {
		query += " AND acknowledged = 0"
	}

	query += " ORDER BY timestamp DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	} else {
		query += " LIMIT 50"
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Alert
	for rows.Next() {
		var a Alert
		var score sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.Timestamp, &a.Employee, &a.Email, &a.Category,
			&a.Severity, &a.Message, &score, &a.Acknowledged); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		a.RiskScore = score.Float64
		out = append(out, a)
	}
	return out, rows.Err()
}

// Acknowledge marks one alert as handled.
func (s *Store) Acknowledge(id string) error {
	res, err := s.db.Exec("UPDATE alerts SET acknowledged = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("acknowledging alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("acknowledging alert: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats returns alert counts grouped by severity.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	rows, err := s.db.Query("SELECT severity, COUNT(*), SUM(CASE WHEN acknowledged = 0 THEN 1 ELSE 0 END) FROM alerts GROUP BY severity")
	if err != nil {
		return st, fmt.Errorf("querying alert stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var severity string
		var count, open int
		if err := rows.Scan(&severity, &count, &open); err != nil {
			return st, fmt.Errorf("scanning stats row: %w", err)
		}
		switch severity {
		case "low":
			st.Low = count
		case "medium":
			st.Medium = count
		case "high":
			st.High = count
		case "critical":
			st.Critical = count
		}
		st.Total += count
		st.Open += open
	}
	return st, rows.Err()
}

// EmailSettings returns the persisted email-alert configuration, or
// defaults when none has been saved yet. The fallback matches the
// config package's alerts.email defaults.
func (s *Store) EmailSettings() (EmailSettings, error) {
	def := EmailSettings{MinSeverity: "high", DigestHour: 9}

	var raw string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", emailSettingsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("reading email settings: %w", err)
	}

	var es EmailSettings
	if err := json.Unmarshal([]byte(raw), &es); err != nil {
		return def, fmt.Errorf("decoding email settings: %w", err)
	}
	return es, nil
}

// SaveEmailSettings validates and persists the email-alert
// configuration.
func (s *Store) SaveEmailSettings(es EmailSettings) error {
	if !ValidSeverity(es.MinSeverity) {
		return fmt.Errorf("unknown severity %q", es.MinSeverity)
	}
	if es.DigestHour < 0 || es.DigestHour > 23 {
		return fmt.Errorf("digest hour %d out of range", es.DigestHour)
	}

	raw, err := json.Marshal(es)
	if err != nil {
		return fmt.Errorf("encoding email settings: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		emailSettingsKey, string(raw),
	)
	if err != nil {
		return fmt.Errorf("saving email settings: %w", err)
	}
	return nil
}

// SeedEmailSettings persists the configured email-alert defaults on
// first run. A configuration already saved through the dashboard is
// left untouched.
func (s *Store) SeedEmailSettings(es EmailSettings) error {
	if es.MinSeverity == "" {
		es.MinSeverity = "high"
	}
	if !ValidSeverity(es.MinSeverity) {
		return fmt.Errorf("unknown severity %q", es.MinSeverity)
	}
	if es.DigestHour < 0 || es.DigestHour > 23 {
		return fmt.Errorf("digest hour %d out of range", es.DigestHour)
	}

	raw, err := json.Marshal(es)
	if err != nil {
		return fmt.Errorf("encoding email settings: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING",
		emailSettingsKey, string(raw),
	)
	if err != nil {
		return fmt.Errorf("seeding email settings: %w", err)
	}
	return nil
}

// SeedAlerts installs starter alerts when the store is empty, going
// through the regular async writer. A store that already holds alerts
// is left as is.
func (s *Store) SeedAlerts(list []Alert) error {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM alerts").Scan(&n); err != nil {
		return fmt.Errorf("counting alerts: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, a := range list {
		s.Record(a)
	}
	s.Flush()
	return nil
}

// Close flushes pending writes and closes the database.
func (s *Store) Close() error {
	close(s.writes)
	<-s.done
	return s.db.Close()
}

// Flush blocks until every alert enqueued before the call is written.
func (s *Store) Flush() {
	ack := make(chan struct{})
	s.flush <- ack
	<-ack
}

func (s *Store) writeLoop() {
	defer close(s.done)
	for {
		select {
		case a, ok := <-s.writes:
			if !ok {
				return
			}
			s.insert(a)
		case ack := <-s.flush:
			s.drain()
			close(ack)
		}
	}
}

// drain applies all buffered writes without blocking for new ones.
func (s *Store) drain() {
	for {
		select {
		case a, ok := <-s.writes:
			if !ok {
				return
			}
			s.insert(a)
		default:
			return
		}
	}
}

func (s *Store) insert(a Alert) {
	_, err := s.db.Exec(
		`INSERT INTO alerts (id, timestamp, employee, email, category, severity, message, risk_score, acknowledged) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Timestamp, a.Employee, a.Email, a.Category, a.Severity, a.Message, a.RiskScore, a.Acknowledged,
	)
	if err != nil {
		s.logger.Error("alert write failed", "id", a.ID, "error", err)
	}
}
