package checker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/use-agent/sessionprobe/config"
	"github.com/use-agent/sessionprobe/models"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Checker: config.CheckerConfig{
			HTTPTimeout:        5 * time.Second,
			NavigationTimeout:  5 * time.Second,
			ProfileNavTimeout:  5 * time.Second,
			CodeSettle:         time.Second,
			ProfileSettle:      time.Second,
			ProfileConcurrency: 5,
		},
		Target: config.TargetConfig{
			BaseURL:         baseURL,
			AccountPath:     "/account",
			RequiredCookies: []string{"NetflixId", "SecureNetflixId"},
		},
	}
}

type fakeIntrospector struct {
	result *models.IntrospectionResult
	err    error
}

func (f *fakeIntrospector) Introspect(ctx context.Context, cookies models.CookieSet) (*models.IntrospectionResult, error) {
	return f.result, f.err
}

func TestCheckParseFailure(t *testing.T) {
	c := New(testConfig("http://unused.invalid"), nil)

	resp, err := c.Check(context.Background(), &models.CheckRequest{Content: "   "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || resp.Status != models.StatusInvalid {
		t.Fatalf("status = %q (success=%v), want invalid verdict", resp.Status, resp.Success)
	}
	if resp.Reason == nil || resp.Reason.Code != models.ErrCodeParseFailure {
		t.Errorf("reason = %v, want %s", resp.Reason, models.ErrCodeParseFailure)
	}
}

func TestCheckMissingIdentifiers(t *testing.T) {
	c := New(testConfig("http://unused.invalid"), nil)

	resp, err := c.Check(context.Background(), &models.CheckRequest{
		Content: "SessionId=abc; Other=def",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Reason == nil || resp.Reason.Code != models.ErrCodeMissingIdentifiers {
		t.Errorf("reason = %v, want %s", resp.Reason, models.ErrCodeMissingIdentifiers)
	}
}

func TestCheckPlainValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/account" {
			// Only the required identifiers may travel outward.
			if _, err := r.Cookie("tracker"); err == nil {
				t.Error("unrelated cookie forwarded to target site")
			}
			w.Write([]byte(`{"membershipStatus":"CURRENT_MEMBER"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	resp, err := c.Check(context.Background(), &models.CheckRequest{
		Content: "NetflixId=a; SecureNetflixId=b; tracker=c",
		Mode:    models.ModePlain,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != models.StatusValid {
		t.Fatalf("status = %q, want %q", resp.Status, models.StatusValid)
	}
	if got, _ := resp.Account.Get(models.FieldMembership); got != "Current Member" {
		t.Errorf("membership = %q, want extracted field", got)
	}
	if len(resp.Report) == 0 {
		t.Error("expected report lines for a valid account")
	}
}

func TestCheckPlainInvalidRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/account" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	resp, err := c.Check(context.Background(), &models.CheckRequest{
		Content: "NetflixId=a; SecureNetflixId=b",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != models.StatusInvalid {
		t.Fatalf("status = %q, want invalid", resp.Status)
	}
	if resp.Reason.Code != models.ErrCodeInvalidCredential {
		t.Errorf("reason code = %q, want %s", resp.Reason.Code, models.ErrCodeInvalidCredential)
	}
}

func TestCheckBrowserValid(t *testing.T) {
	c := New(testConfig("http://unused.invalid"), nil)
	c.orch = &fakeIntrospector{
		result: &models.IntrospectionResult{
			ServiceCode: "123-456",
			Profiles:    []models.ProfileSummary{{ProfileID: "A", DisplayName: "Main"}},
		},
	}

	resp, err := c.Check(context.Background(), &models.CheckRequest{
		Content: "NetflixId=a; SecureNetflixId=b",
		Mode:    models.ModeBrowser,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != models.StatusValidIntrospected {
		t.Fatalf("status = %q, want %q", resp.Status, models.StatusValidIntrospected)
	}
	if resp.Introspection.ServiceCode != "123-456" {
		t.Errorf("service code = %q", resp.Introspection.ServiceCode)
	}
}

func TestCheckBrowserNoServiceCodeIsInvalid(t *testing.T) {
	// Browser verification is authoritative: no observed service code is an
	// invalid credential, not a hard failure.
	c := New(testConfig("http://unused.invalid"), nil)
	c.orch = &fakeIntrospector{
		err: models.NewCheckError(models.ErrCodeInvalidCredential,
			"no service code observed during introspection", nil),
	}

	resp, err := c.Check(context.Background(), &models.CheckRequest{
		Content: "NetflixId=a; SecureNetflixId=b",
		Mode:    models.ModeBrowser,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != models.StatusInvalid {
		t.Fatalf("status = %q, want invalid", resp.Status)
	}
	if resp.Reason.Code != models.ErrCodeInvalidCredential {
		t.Errorf("reason code = %q", resp.Reason.Code)
	}
}

func TestCheckBrowserTimeoutPropagates(t *testing.T) {
	c := New(testConfig("http://unused.invalid"), nil)
	c.orch = &fakeIntrospector{
		err: models.NewCheckError(models.ErrCodeTimeout, "account page navigation failed", context.DeadlineExceeded),
	}

	_, err := c.Check(context.Background(), &models.CheckRequest{
		Content: "NetflixId=a; SecureNetflixId=b",
		Mode:    models.ModeBrowser,
	})
	var checkErr *models.CheckError
	if !errors.As(err, &checkErr) || checkErr.Code != models.ErrCodeTimeout {
		t.Fatalf("err = %v, want %s", err, models.ErrCodeTimeout)
	}
}

func TestCheckBrowserUnavailable(t *testing.T) {
	c := New(testConfig("http://unused.invalid"), nil)

	_, err := c.Check(context.Background(), &models.CheckRequest{
		Content: "NetflixId=a; SecureNetflixId=b",
		Mode:    models.ModeBrowser,
	})
	var checkErr *models.CheckError
	if !errors.As(err, &checkErr) || checkErr.Code != models.ErrCodeScrape {
		t.Fatalf("err = %v, want %s when no browser is wired", err, models.ErrCodeScrape)
	}
}
