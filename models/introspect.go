package models

import "fmt"

// ProfileSummary describes one viewer profile discovered during browser
// introspection. Activity holds epoch-millisecond timestamps collected from
// the profile's viewing-history responses.
type ProfileSummary struct {
	ProfileID   string  `json:"profile_id"`
	DisplayName string  `json:"display_name,omitempty"`
	Activity    []int64 `json:"activity,omitempty"`
}

// IntrospectionResult is the merged outcome of a browser introspection run.
type IntrospectionResult struct {
	// ServiceCode is the 6-digit code rendered as two 3-digit groups
	// ("123-456").
	ServiceCode string `json:"service_code"`

	// Profiles are deduplicated by ProfileID. DisplayName falls back to the
	// raw ProfileID when no name could be extracted.
	Profiles []ProfileSummary `json:"profiles"`

	// LatestActivity is the maximum activity timestamp across all profiles,
	// rendered as a date. Empty when no timestamps were collected.
	LatestActivity string `json:"latest_activity,omitempty"`
}

// Report renders the introspection outcome as human-readable lines.
func (r *IntrospectionResult) Report() []string {
	lines := []string{"Service code: " + r.ServiceCode}
	for i, p := range r.Profiles {
		lines = append(lines, fmt.Sprintf("Profile %d: %s", i+1, p.DisplayName))
	}
	if r.LatestActivity != "" {
		lines = append(lines, "Last activity: "+r.LatestActivity)
	}
	return lines
}
