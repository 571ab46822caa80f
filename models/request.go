package models

// Check modes.
const (
	// ModePlain validates the credential with two plain HTTP GETs and
	// extracts account fields from the final body.
	ModePlain = "plain"

	// ModeBrowser drives a headless browser session to capture the service
	// code and enumerate viewer profiles. Authoritative: a credential that
	// passed a plain check is still reported invalid when the browser flow
	// never observes a service code.
	ModeBrowser = "browser"
)

// CheckRequest is the payload for POST /api/v1/check.
type CheckRequest struct {
	// Content is the raw credential blob in any supported encoding
	// (JSON cookie array, Netscape cookie file, pipe- or
	// semicolon-delimited pairs, or freeform text). Required.
	Content string `json:"content" binding:"required"`

	// FormatHint is the declared format of Content, typically the source
	// file extension ("json", "txt"). Optional; parsing strategies are
	// tried in order regardless.
	FormatHint string `json:"format_hint,omitempty"`

	// Mode selects the validation path. Default: "plain".
	Mode string `json:"mode,omitempty" binding:"omitempty,oneof=plain browser"`
}

// Defaults applies default values to unset fields.
func (r *CheckRequest) Defaults() {
	if r.Mode == "" {
		r.Mode = ModePlain
	}
}
