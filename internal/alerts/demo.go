package alerts

import (
	"time"

	"github.com/google/uuid"
)

// DemoAlerts returns the starter alert history installed on an empty
// store, timestamped relative to now. The employees match the static
// analytics source.
func DemoAlerts(now time.Time) []Alert {
	ts := func(age time.Duration) string {
		return now.Add(-age).UTC().Format(time.RFC3339)
	}
	return []Alert{
		{
			ID:        uuid.NewString(),
			Timestamp: ts(2 * time.Hour),
			Employee:  "Dana Webb",
			Email:     "dana.webb@corp.io",
			Category:  "data_exfil",
			Severity:  "critical",
			Message:   "Large archive uploaded to a personal cloud drive during off-hours.",
			RiskScore: 0.91,
		},
		{
			ID:        uuid.NewString(),
			Timestamp: ts(5 * time.Hour),
			Employee:  "Dana Webb",
			Email:     "dana.webb@corp.io",
			Category:  "job_hunting",
			Severity:  "high",
			Message:   "Repeated visits to job boards and recruiter messaging.",
			RiskScore: 0.82,
		},
		{
			ID:        uuid.NewString(),
			Timestamp: ts(9 * time.Hour),
			Employee:  "Priya Nair",
			Email:     "priya.nair@corp.io",
			Category:  "policy_violation",
			Severity:  "high",
			Message:   "Unapproved browser extension posting page contents to an external host.",
			RiskScore: 0.66,
		},
		{
			ID:        uuid.NewString(),
			Timestamp: ts(26 * time.Hour),
			Employee:  "Mia Chen",
			Email:     "mia.chen@corp.io",
			Category:  "policy_violation",
			Severity:  "medium",
			Message:   "Peer-to-peer file sharing client detected on a managed laptop.",
			RiskScore: 0.57,
		},
		{
			ID:        uuid.NewString(),
			Timestamp: ts(50 * time.Hour),
			Employee:  "Raj Patel",
			Email:     "raj.patel@corp.io",
			Category:  "entertainment",
			Severity:  "low",
			Message:   "Streaming video for extended periods during work hours.",
			RiskScore: 0.34,
		},
	}
}
