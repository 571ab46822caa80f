package introspect

import (
	"context"
	"log/slog"

	"github.com/use-agent/sessionprobe/models"
	"golang.org/x/sync/errgroup"
)

// profileFetchFunc resolves one profile GUID to its summary.
type profileFetchFunc func(ctx context.Context, guid string) (models.ProfileSummary, error)

// collectProfiles fans out one sub-fetch per GUID with at most limit
// running at once, then joins. Failure containment per sub-fetch:
//
//   - a fetch error degrades to a GUID-only summary
//   - a panic is recovered and that profile is excluded
//
// Neither aborts or affects any other sub-fetch.
func collectProfiles(ctx context.Context, guids []string, limit int, fetch profileFetchFunc) []models.ProfileSummary {
	if len(guids) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 1
	}

	results := make([]*models.ProfileSummary, len(guids))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, guid := range guids {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("profile sub-fetch panicked",
						"guid", guid,
						"panic", r,
					)
				}
			}()

			summary, err := fetch(ctx, guid)
			if err != nil {
				slog.Warn("profile sub-fetch failed",
					"guid", guid,
					"error", err,
				)
				summary = models.ProfileSummary{ProfileID: guid}
			}
			results[i] = &summary
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.ProfileSummary, 0, len(guids))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
