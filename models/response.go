package models

// Check statuses.
const (
	StatusInvalid           = "invalid"
	StatusValid             = "valid"
	StatusValidIntrospected = "valid_introspected"
)

// CheckResponse is the response for POST /api/v1/check.
type CheckResponse struct {
	// Success indicates whether the check ran to completion. An invalid
	// credential is still a successful check; Success is false only when
	// the check itself failed (timeout, browser crash).
	Success bool `json:"success"`

	// Status is the verdict: "invalid", "valid" (plain path) or
	// "valid_introspected" (browser path).
	Status string `json:"status,omitempty"`

	// Name echoes the caller-supplied item label on batch results.
	Name string `json:"name,omitempty"`

	// Reason explains an "invalid" verdict (parse failure, missing
	// identifiers, login redirect, no service code observed).
	Reason *ErrorDetail `json:"reason,omitempty"`

	// FinalURL is the URL the plain validation resolved to after redirects.
	FinalURL string `json:"final_url,omitempty"`

	// Account holds the extracted account fields (plain path, valid only).
	Account *AccountInfo `json:"account,omitempty"`

	// Introspection holds the browser-introspection outcome (browser path).
	Introspection *IntrospectionResult `json:"introspection,omitempty"`

	// Report is the ordered human-readable summary of the verdict.
	Report []string `json:"report,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// ValidationMs is the time spent on plain HTTP validation.
	ValidationMs int64 `json:"validation_ms,omitempty"`

	// IntrospectionMs is the time spent driving the browser session.
	IntrospectionMs int64 `json:"introspection_ms,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status       string       `json:"status"` // "healthy" or "degraded"
	Uptime       string       `json:"uptime"`
	BrowserStats BrowserStats `json:"browser_stats"`
	Version      string       `json:"version"`
}

// BrowserStats reports the state of the shared browser.
type BrowserStats struct {
	MaxSessions    int `json:"max_sessions"`
	ActiveSessions int `json:"active_sessions"`
}
