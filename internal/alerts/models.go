package alerts

// Alert represents one recorded behavior alert.
type Alert struct {
	ID           string  `json:"id"`
	Timestamp    string  `json:"timestamp"`
	Employee     string  `json:"employee"`
	Email        string  `json:"email"`
	Category     string  `json:"category"` // job_hunting, entertainment, data_exfil, policy_violation
	Severity     string  `json:"severity"` // low, medium, high, critical
	Message      string  `json:"message"`
	RiskScore    float64 `json:"risk_score"`
	Acknowledged int     `json:"acknowledged"` // 1=acknowledged, 0=open
}

// Stats holds alert counts grouped by severity.
type Stats struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
	Open     int `json:"open"`
	Total    int `json:"total"`
}

// EmailSettings is the persisted email-alert configuration.
type EmailSettings struct {
	Enabled     bool     `json:"enabled"`
	Recipients  []string `json:"recipients"`
	MinSeverity string   `json:"min_severity"`
	DigestHour  int      `json:"digest_hour"` // 0-23, local time
}

// severityRank orders severities for threshold comparisons.
var severityRank = map[string]int{
	"low":      0,
	"medium":   1,
	"high":     2,
	"critical": 3,
}

// SeverityAtLeast reports whether severity s meets the min threshold.
// Unknown severities never match.
func SeverityAtLeast(s, min string) bool {
	sr, ok := severityRank[s]
	if !ok {
		return false
	}
	mr, ok := severityRank[min]
	if !ok {
		return false
	}
	return sr >= mr
}

// ValidSeverity reports whether s is a known severity name.
func ValidSeverity(s string) bool {
	_, ok := severityRank[s]
	return ok
}
