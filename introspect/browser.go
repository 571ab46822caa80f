// Package introspect drives headless browser sessions that verify a
// credential by capturing the account service code and enumerating viewer
// profiles from intercepted network responses.
package introspect

import (
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/sessionprobe/config"
	"github.com/use-agent/sessionprobe/models"
)

// Browser manages the shared browser process. Each introspection runs in
// its own incognito context so no cookies or storage leak between checks.
// Safe for concurrent use.
type Browser struct {
	browser        *rod.Browser
	cfg            config.BrowserConfig
	activeSessions atomic.Int32
}

// Launch starts a headless browser and connects to it.
func Launch(cfg config.BrowserConfig) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewCheckError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewCheckError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	return &Browser{browser: browser, cfg: cfg}, nil
}

// Session opens an isolated incognito context. The returned cleanup must be
// called on every exit path; it disposes the context and everything in it.
func (b *Browser) Session() (*rod.Browser, func(), error) {
	inc, err := b.browser.Incognito()
	if err != nil {
		return nil, nil, models.NewCheckError(
			models.ErrCodeBrowserCrash,
			"failed to create incognito context",
			err,
		)
	}
	b.activeSessions.Add(1)

	cleanup := func() {
		b.activeSessions.Add(-1)
		disposeErr := proto.TargetDisposeBrowserContext{
			BrowserContextID: inc.BrowserContextID,
		}.Call(b.browser)
		if disposeErr != nil {
			slog.Warn("failed to dispose browser context", "error", disposeErr)
		}
	}
	return inc, cleanup, nil
}

// Stats returns a snapshot of session utilisation.
func (b *Browser) Stats() models.BrowserStats {
	return models.BrowserStats{
		MaxSessions:    b.cfg.MaxSessions,
		ActiveSessions: int(b.activeSessions.Load()),
	}
}

// Close kills the browser process. Call this on graceful shutdown to
// prevent zombie Chrome processes.
func (b *Browser) Close() {
	slog.Info("browser shutting down")
	b.browser.MustClose()
	slog.Info("browser shutdown complete")
}
