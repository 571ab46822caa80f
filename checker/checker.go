// Package checker is the single entry point the API layer consumes: parse
// a raw credential blob, then validate it over plain HTTP or through the
// browser, and shape the verdict.
package checker

import (
	"context"
	"errors"
	"time"

	"github.com/use-agent/sessionprobe/account"
	"github.com/use-agent/sessionprobe/config"
	"github.com/use-agent/sessionprobe/credential"
	"github.com/use-agent/sessionprobe/introspect"
	"github.com/use-agent/sessionprobe/models"
	"github.com/use-agent/sessionprobe/validator"
)

// introspector abstracts the browser orchestrator so checks can be tested
// without a running browser.
type introspector interface {
	Introspect(ctx context.Context, cookies models.CookieSet) (*models.IntrospectionResult, error)
}

// Checker runs one credential check per call. Safe for concurrent use;
// every check owns its cookie set and session exclusively.
type Checker struct {
	parser    *credential.Parser
	validator *validator.Validator
	orch      introspector
	required  []string
}

// New wires a Checker from configuration and the shared browser. browser
// may be nil, in which case browser-mode checks fail with SCRAPE_ERROR.
func New(cfg *config.Config, browser *introspect.Browser) *Checker {
	c := &Checker{
		parser:    credential.NewParser(cfg.Target.RequiredCookies),
		validator: validator.New(cfg.Target, cfg.Checker.HTTPTimeout),
		required:  cfg.Target.RequiredCookies,
	}
	if browser != nil {
		c.orch = introspect.NewOrchestrator(browser, cfg.Target, cfg.Checker)
	}
	return c
}

// Check processes one credential blob. Invalid credentials are successful
// checks with Status "invalid"; the error return is reserved for hard
// failures of the check itself (SCRAPE_TIMEOUT, SCRAPE_ERROR,
// BROWSER_CRASH).
func (c *Checker) Check(ctx context.Context, req *models.CheckRequest) (*models.CheckResponse, error) {
	totalStart := time.Now()

	cookies := c.parser.Parse(req.Content, req.FormatHint)
	if len(cookies) == 0 {
		return invalidResponse(models.ErrCodeParseFailure,
			"no parsing strategy produced a cookie map", totalStart), nil
	}
	if !cookies.HasAll(c.required) {
		return invalidResponse(models.ErrCodeMissingIdentifiers,
			"cookie map lacks the required session identifiers", totalStart), nil
	}

	// Only the required identifiers travel outward; unrelated stored
	// cookies would risk false positives.
	session := cookies.Restrict(c.required)

	if req.Mode == models.ModeBrowser {
		return c.checkBrowser(ctx, session, totalStart)
	}
	return c.checkPlain(ctx, session, totalStart), nil
}

// checkPlain is the fast path: two HTTP GETs plus field extraction.
func (c *Checker) checkPlain(ctx context.Context, session models.CookieSet, totalStart time.Time) *models.CheckResponse {
	valStart := time.Now()
	res := c.validator.Validate(ctx, session)
	validationMs := time.Since(valStart).Milliseconds()

	timing := models.TimingInfo{
		TotalMs:      time.Since(totalStart).Milliseconds(),
		ValidationMs: validationMs,
	}

	if !res.Valid {
		resp := invalidResponse(models.ErrCodeInvalidCredential, res.Reason, totalStart)
		resp.FinalURL = res.FinalURL
		resp.Timing.ValidationMs = validationMs
		return resp
	}

	info := account.Extract(res.Body)
	timing.TotalMs = time.Since(totalStart).Milliseconds()

	return &models.CheckResponse{
		Success:  true,
		Status:   models.StatusValid,
		FinalURL: res.FinalURL,
		Account:  info,
		Report:   info.Report(),
		Timing:   timing,
	}
}

// checkBrowser is the authoritative path: service-code capture and profile
// enumeration through the headless browser.
func (c *Checker) checkBrowser(ctx context.Context, session models.CookieSet, totalStart time.Time) (*models.CheckResponse, error) {
	if c.orch == nil {
		return nil, models.NewCheckError(models.ErrCodeScrape,
			"browser introspection is not available", nil)
	}

	introStart := time.Now()
	result, err := c.orch.Introspect(ctx, session)
	introspectionMs := time.Since(introStart).Milliseconds()

	if err != nil {
		var checkErr *models.CheckError
		if errors.As(err, &checkErr) && checkErr.Code == models.ErrCodeInvalidCredential {
			resp := invalidResponse(checkErr.Code, checkErr.Message, totalStart)
			resp.Timing.IntrospectionMs = introspectionMs
			return resp, nil
		}
		return nil, err
	}

	return &models.CheckResponse{
		Success:       true,
		Status:        models.StatusValidIntrospected,
		Introspection: result,
		Report:        result.Report(),
		Timing: models.TimingInfo{
			TotalMs:         time.Since(totalStart).Milliseconds(),
			IntrospectionMs: introspectionMs,
		},
	}, nil
}

// invalidResponse shapes an "invalid" verdict with its reason.
func invalidResponse(code, message string, totalStart time.Time) *models.CheckResponse {
	return &models.CheckResponse{
		Success: true,
		Status:  models.StatusInvalid,
		Reason:  &models.ErrorDetail{Code: code, Message: message},
		Timing: models.TimingInfo{
			TotalMs: time.Since(totalStart).Milliseconds(),
		},
	}
}
