package introspect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/sessionprobe/models"
)

func TestCollectProfilesConcurrencyBound(t *testing.T) {
	const limit = 5

	guids := make([]string, 12)
	for i := range guids {
		guids[i] = fmt.Sprintf("GUID-%02d", i)
	}

	var running, peak atomic.Int32
	fetch := func(ctx context.Context, guid string) (models.ProfileSummary, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		running.Add(-1)
		return models.ProfileSummary{ProfileID: guid, DisplayName: "p-" + guid}, nil
	}

	got := collectProfiles(context.Background(), guids, limit, fetch)

	if len(got) != 12 {
		t.Fatalf("got %d profiles, want 12", len(got))
	}
	if p := peak.Load(); p > limit {
		t.Errorf("observed %d simultaneous fetches, limit is %d", p, limit)
	}
}

func TestCollectProfilesFailureIsolation(t *testing.T) {
	guids := []string{"A", "B", "C"}

	fetch := func(ctx context.Context, guid string) (models.ProfileSummary, error) {
		if guid == "B" {
			return models.ProfileSummary{}, errors.New("navigation failed")
		}
		return models.ProfileSummary{ProfileID: guid, DisplayName: "name-" + guid}, nil
	}

	got := collectProfiles(context.Background(), guids, 2, fetch)
	if len(got) != 3 {
		t.Fatalf("got %d profiles, want all 3 despite one failure", len(got))
	}

	byID := make(map[string]models.ProfileSummary)
	for _, p := range got {
		byID[p.ProfileID] = p
	}
	if byID["B"].DisplayName != "" {
		t.Errorf("failed profile should carry no name before aggregation, got %q", byID["B"].DisplayName)
	}
	if byID["A"].DisplayName != "name-A" || byID["C"].DisplayName != "name-C" {
		t.Errorf("healthy profiles affected by failing sibling: %v", got)
	}

	// The aggregator resolves the failed profile's name to its GUID.
	agg := Aggregate("123456", got)
	for _, p := range agg.Profiles {
		if p.ProfileID == "B" && p.DisplayName != "B" {
			t.Errorf("failed profile name = %q, want GUID fallback %q", p.DisplayName, "B")
		}
	}
}

func TestCollectProfilesPanicExcluded(t *testing.T) {
	guids := []string{"A", "B", "C"}

	fetch := func(ctx context.Context, guid string) (models.ProfileSummary, error) {
		if guid == "B" {
			panic("page crashed")
		}
		return models.ProfileSummary{ProfileID: guid}, nil
	}

	got := collectProfiles(context.Background(), guids, 3, fetch)
	if len(got) != 2 {
		t.Fatalf("got %d profiles, want panicking fetch excluded", len(got))
	}
	for _, p := range got {
		if p.ProfileID == "B" {
			t.Error("panicking profile should be excluded from results")
		}
	}
}

func TestCollectProfilesOrderIndependent(t *testing.T) {
	// Completion order is scrambled; the join must still yield one entry
	// per GUID.
	guids := []string{"A", "B", "C", "D"}

	var mu sync.Mutex
	delays := map[string]time.Duration{"A": 30, "B": 0, "C": 20, "D": 10}

	fetch := func(ctx context.Context, guid string) (models.ProfileSummary, error) {
		mu.Lock()
		d := delays[guid]
		mu.Unlock()
		time.Sleep(d * time.Millisecond)
		return models.ProfileSummary{ProfileID: guid}, nil
	}

	got := collectProfiles(context.Background(), guids, 4, fetch)
	if len(got) != 4 {
		t.Fatalf("got %d profiles, want 4", len(got))
	}
	seen := make(map[string]bool)
	for _, p := range got {
		seen[p.ProfileID] = true
	}
	for _, g := range guids {
		if !seen[g] {
			t.Errorf("missing profile %s", g)
		}
	}
}

func TestCollectProfilesEmpty(t *testing.T) {
	got := collectProfiles(context.Background(), nil, 5, nil)
	if got != nil {
		t.Errorf("expected nil for no GUIDs, got %v", got)
	}
}
