package introspect

import (
	"time"

	"github.com/use-agent/sessionprobe/models"
)

// Aggregate merges per-profile results into the final outcome: profiles
// deduplicated by GUID, display names falling back to the raw GUID, and
// the latest activity timestamp across all profiles resolved to a date.
func Aggregate(code string, profiles []models.ProfileSummary) *models.IntrospectionResult {
	out := &models.IntrospectionResult{ServiceCode: formatServiceCode(code)}

	seen := make(map[string]struct{}, len(profiles))
	var latest int64
	for _, p := range profiles {
		if _, dup := seen[p.ProfileID]; dup {
			continue
		}
		seen[p.ProfileID] = struct{}{}

		if p.DisplayName == "" {
			p.DisplayName = p.ProfileID
		}
		for _, ms := range p.Activity {
			if ms > latest {
				latest = ms
			}
		}
		out.Profiles = append(out.Profiles, p)
	}

	if latest > 0 {
		out.LatestActivity = time.UnixMilli(latest).UTC().Format("January 02, 2006")
	}
	return out
}

// formatServiceCode renders a 6-digit code as two 3-digit groups.
func formatServiceCode(code string) string {
	if len(code) == 6 {
		return code[:3] + "-" + code[3:]
	}
	return code
}
