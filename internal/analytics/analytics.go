// Package analytics supplies the behavior summaries rendered on the
// dashboard. The data comes from a pluggable Source so the serving
// layer does not care whether it is backed by the demo fixtures or a
// real aggregation service.
package analytics

import (
	"context"
	"sort"
	"time"
)

// EmployeeSummary is one employee's aggregated behavior profile.
type EmployeeSummary struct {
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Department string             `json:"department"`
	RiskScore  float64            `json:"risk_score"` // 0.0 - 1.0
	Behaviors  map[string]float64 `json:"behaviors"`  // behavior -> share of activity
	LastActive time.Time          `json:"last_active"`
}

// ThreatCategory is one aggregated threat bucket.
type ThreatCategory struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Severity string `json:"severity"`
	Trend    string `json:"trend"` // up, down, flat
}

// Source provides the analytics views. Implementations must return
// results sorted by descending risk (employees) and descending count
// (threats).
type Source interface {
	Employees(ctx context.Context) ([]EmployeeSummary, error)
	Threats(ctx context.Context) ([]ThreatCategory, error)
	// Employee returns a single summary by email.
	Employee(ctx context.Context, email string) (*EmployeeSummary, bool, error)
}

// staticSource serves a fixed demo dataset. It stands in for the real
// aggregation backend during evaluation installs.
type staticSource struct {
	employees []EmployeeSummary
	threats   []ThreatCategory
}

// NewStaticSource returns a Source backed by the built-in demo data.
func NewStaticSource() Source {
	now := time.Now().UTC()
	s := &staticSource{
		employees: []EmployeeSummary{
			{
				Name: "Dana Webb", Email: "dana.webb@corp.io", Department: "Engineering",
				RiskScore: 0.82,
				Behaviors: map[string]float64{"work": 0.41, "job_hunting": 0.38, "entertainment": 0.21},
				LastActive: now.Add(-25 * time.Minute),
			},
			{
				Name: "Raj Patel", Email: "raj.patel@corp.io", Department: "Finance",
				RiskScore: 0.34,
				Behaviors: map[string]float64{"work": 0.72, "entertainment": 0.28},
				LastActive: now.Add(-2 * time.Hour),
			},
			{
				Name: "Mia Chen", Email: "mia.chen@corp.io", Department: "Marketing",
				RiskScore: 0.57,
				Behaviors: map[string]float64{"work": 0.55, "productivity_loss": 0.30, "entertainment": 0.15},
				LastActive: now.Add(-10 * time.Minute),
			},
			{
				Name: "Tom Iversen", Email: "tom.iversen@corp.io", Department: "Engineering",
				RiskScore: 0.12,
				Behaviors: map[string]float64{"work": 0.93, "entertainment": 0.07},
				LastActive: now.Add(-5 * time.Minute),
			},
			{
				Name: "Priya Nair", Email: "priya.nair@corp.io", Department: "Support",
				RiskScore: 0.66,
				Behaviors: map[string]float64{"work": 0.48, "job_hunting": 0.22, "entertainment": 0.30},
				LastActive: now.Add(-55 * time.Minute),
			},
		},
		threats: []ThreatCategory{
			{Name: "Job hunting on company time", Count: 17, Severity: "high", Trend: "up"},
			{Name: "Entertainment streaming", Count: 42, Severity: "low", Trend: "flat"},
			{Name: "Large outbound transfers", Count: 3, Severity: "critical", Trend: "up"},
			{Name: "Blocked domain access", Count: 11, Severity: "medium", Trend: "down"},
		},
	}
	sort.Slice(s.employees, func(i, j int) bool {
		return s.employees[i].RiskScore > s.employees[j].RiskScore
	})
	sort.Slice(s.threats, func(i, j int) bool {
		return s.threats[i].Count > s.threats[j].Count
	})
	return s
}

func (s *staticSource) Employees(ctx context.Context) ([]EmployeeSummary, error) {
	out := make([]EmployeeSummary, len(s.employees))
	copy(out, s.employees)
	return out, nil
}

func (s *staticSource) Threats(ctx context.Context) ([]ThreatCategory, error) {
	out := make([]ThreatCategory, len(s.threats))
	copy(out, s.threats)
	return out, nil
}

func (s *staticSource) Employee(ctx context.Context, email string) (*EmployeeSummary, bool, error) {
	for i := range s.employees {
		if s.employees[i].Email == email {
			cp := s.employees[i]
			return &cp, true, nil
		}
	}
	return nil, false, nil
}
