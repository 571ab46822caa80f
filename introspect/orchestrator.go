package introspect

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
	"github.com/use-agent/sessionprobe/config"
	"github.com/use-agent/sessionprobe/models"
)

// Orchestrator drives one browser introspection per call: inject cookies,
// capture the service code from intercepted responses, then fan out
// bounded-concurrency profile sub-fetches. Safe for concurrent use; each
// call owns its own incognito context.
type Orchestrator struct {
	browser *Browser
	target  config.TargetConfig
	cfg     config.CheckerConfig

	// fetchProfile overrides the browser-backed profile sub-fetch in tests.
	fetchProfile profileFetchFunc
}

// NewOrchestrator creates an Orchestrator on the shared browser.
func NewOrchestrator(b *Browser, target config.TargetConfig, cfg config.CheckerConfig) *Orchestrator {
	return &Orchestrator{browser: b, target: target, cfg: cfg}
}

// Introspect verifies the credential through a browser session and returns
// the merged introspection outcome.
//
// Lifecycle:
//
//  1. Open an isolated incognito context (disposed on every exit path)
//  2. Drive the account page: inject cookies, observe responses, trigger
//     the service-code reveal control
//  3. Fan out per-profile sub-fetches, at most ProfileConcurrency at once
//  4. Join, then decide: no observed service code means the credential is
//     invalid, regardless of any earlier plain-HTTP verdict
func (o *Orchestrator) Introspect(ctx context.Context, cookies models.CookieSet) (*models.IntrospectionResult, error) {
	inc, cleanup, err := o.browser.Session()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	obs := newAccountObserver()
	if err := o.captureAccount(ctx, inc, cookies, obs); err != nil {
		return nil, err
	}
	code, guids := obs.snapshot()
	slog.Debug("account capture finished",
		"codeObserved", code != "",
		"profiles", len(guids),
	)

	fetch := o.fetchProfile
	if fetch == nil {
		fetch = func(ctx context.Context, guid string) (models.ProfileSummary, error) {
			return o.captureProfile(ctx, inc, guid)
		}
	}
	profiles := collectProfiles(ctx, guids, o.cfg.ProfileConcurrency, fetch)

	if code == "" {
		return nil, models.NewCheckError(
			models.ErrCodeInvalidCredential,
			"no service code observed during introspection",
			nil,
		)
	}
	return Aggregate(code, profiles), nil
}

// captureAccount opens the account page with the session cookies injected
// and keeps the observer attached until the code settle window passes.
func (o *Orchestrator) captureAccount(ctx context.Context, inc *rod.Browser, cookies models.CookieSet, obs *accountObserver) error {
	page, err := inc.Page(proto.TargetCreateTarget{})
	if err != nil {
		return models.NewCheckError(
			models.ErrCodeBrowserCrash,
			"failed to open account page",
			err,
		)
	}
	defer func() { _ = page.Close() }()

	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth",
			"error", evalErr,
		)
	}
	setExtraHeaders(page)
	o.setCookies(page, cookies)

	navCtx, cancel := context.WithTimeout(ctx, o.cfg.NavigationTimeout)
	defer cancel()
	p := page.Context(navCtx)

	// The observer must be attached before Navigate or early responses
	// carrying GUIDs would be missed.
	obs.attach(p)

	if navErr := p.Navigate(o.target.AccountURL()); navErr != nil {
		return categorizeError(navErr, "account page navigation failed")
	}
	if loadErr := p.WaitLoad(); loadErr != nil {
		return categorizeError(loadErr, "account page load failed")
	}

	// The service code only travels in the response triggered by the
	// reveal control. Wait for that response directly instead of a blind
	// sleep; CodeSettle bounds the wait.
	if el, elErr := p.Timeout(2 * time.Second).Element(o.target.RevealSelector); elErr == nil {
		if clickErr := el.Click(proto.InputMouseButtonLeft, 1); clickErr != nil {
			slog.Debug("service code reveal click failed", "error", clickErr)
		}
	}
	obs.waitForCode(navCtx, o.cfg.CodeSettle)

	return nil
}

// captureProfile opens a fresh page on the profile's viewing-history URL
// and collects its display name and activity timestamps. The page is
// closed unconditionally.
func (o *Orchestrator) captureProfile(ctx context.Context, inc *rod.Browser, guid string) (models.ProfileSummary, error) {
	page, err := inc.Page(proto.TargetCreateTarget{})
	if err != nil {
		return models.ProfileSummary{}, err
	}
	defer func() { _ = page.Close() }()

	setExtraHeaders(page)
	obs := newProfileObserver()
	navCtx, cancel := context.WithTimeout(ctx, o.cfg.ProfileNavTimeout)
	defer cancel()
	p := page.Context(navCtx)
	obs.attach(p)

	if navErr := p.Navigate(o.target.HistoryURL(guid)); navErr != nil {
		return models.ProfileSummary{}, navErr
	}
	if loadErr := p.WaitLoad(); loadErr != nil {
		return models.ProfileSummary{}, loadErr
	}

	// History entries stream in after load; give them a short window.
	sleepWithContext(navCtx, o.cfg.ProfileSettle)

	name, dates := obs.snapshot()
	return models.ProfileSummary{ProfileID: guid, DisplayName: name, Activity: dates}, nil
}

// extraHeaders are sent on every introspection page. Pinning the language
// keeps the intercepted payloads in the locale the extraction patterns and
// date formats assume.
var extraHeaders = map[string]string{
	"Accept-Language": "en-US,en;q=0.9",
}

// setExtraHeaders applies extraHeaders to the page for all its requests.
func setExtraHeaders(page *rod.Page) {
	if err := (proto.NetworkSetExtraHTTPHeaders{
		Headers: headerMap(extraHeaders),
	}).Call(page); err != nil {
		slog.Debug("failed to set extra headers", "error", err)
	}
}

// headerMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func headerMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// setCookies injects the session cookies against the target cookie domain.
func (o *Orchestrator) setCookies(page *rod.Page, cookies models.CookieSet) {
	for _, name := range cookies.Names() {
		_, err := proto.NetworkSetCookie{
			Name:   name,
			Value:  cookies[name],
			Domain: o.target.CookieDomain,
			Path:   "/",
		}.Call(page)
		if err != nil {
			slog.Warn("failed to set cookie", "name", name, "error", err)
		}
	}
}

// waitForCode blocks until the service code has been observed, the settle
// window elapses, or the context expires.
func (o *accountObserver) waitForCode(ctx context.Context, settle time.Duration) bool {
	select {
	case <-o.codeSeen:
		return true
	case <-ctx.Done():
		return false
	case <-time.After(settle):
		return false
	}
}

// sleepWithContext sleeps for d unless the context expires first.
func sleepWithContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// categorizeError wraps raw browser errors into typed CheckErrors so the
// API layer can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.CheckError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewCheckError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewCheckError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewCheckError(models.ErrCodeScrape, msg, err)
	}
}
