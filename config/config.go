package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Checker   CheckerConfig
	Target    TargetConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Outbound  OutboundConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxSessions caps concurrent isolated browser sessions
	// (one incognito context per introspection).
	MaxSessions int // default: 5

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// CheckerConfig controls timeouts and concurrency of a single check.
type CheckerConfig struct {
	// HTTPTimeout bounds each plain-HTTP validation request.
	HTTPTimeout time.Duration // default: 10s

	// NavigationTimeout bounds the primary account-page navigation.
	NavigationTimeout time.Duration // default: 30s

	// ProfileNavTimeout bounds each per-profile sub-fetch navigation.
	ProfileNavTimeout time.Duration // default: 20s

	// CodeSettle is how long to wait for the service-code response after
	// activating the reveal control, unless the code arrives earlier.
	CodeSettle time.Duration // default: 3s

	// ProfileSettle is the grace period for async viewing-history
	// responses after a profile page reports loaded.
	ProfileSettle time.Duration // default: 2s

	// ProfileConcurrency caps simultaneous profile sub-fetches.
	ProfileConcurrency int // default: 5
}

// TargetConfig fixes the target-site contract: base domain, account path and
// per-profile viewing-history path. Configuration, not hardcoded literals,
// so the contract can change without touching extraction logic.
type TargetConfig struct {
	// BaseURL is the site origin, no trailing slash.
	BaseURL string // default: "https://www.netflix.com"

	// AccountPath is the account-scoped path used both for plain
	// validation and for field extraction.
	AccountPath string // default: "/account"

	// HistoryPathPrefix is the per-profile viewing-history path prefix;
	// the profile GUID is appended.
	HistoryPathPrefix string // default: "/settings/viewed/"

	// CookieDomain is the domain the session cookies are injected against.
	CookieDomain string // default: ".netflix.com"

	// RequiredCookies are the session-identifier cookie names a parsed
	// credential must carry.
	RequiredCookies []string // default: ["NetflixId", "SecureNetflixId"]

	// RevealSelector is the CSS selector of the control that triggers the
	// service-code response on the account page.
	RevealSelector string
}

// AccountURL returns the absolute account page URL.
func (t TargetConfig) AccountURL() string {
	return t.BaseURL + t.AccountPath
}

// HistoryURL returns the absolute viewing-history URL for a profile GUID.
func (t TargetConfig) HistoryURL(guid string) string {
	return t.BaseURL + t.HistoryPathPrefix + guid
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// OutboundConfig controls webhook delivery toward the caller's endpoint.
type OutboundConfig struct {
	// WebhookSecret signs delivered events with HMAC-SHA256 when non-empty.
	WebhookSecret string

	// MaxConcurrent caps simultaneous outbound deliveries process-wide.
	MaxConcurrent int // default: 20
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PROBE_HOST", "0.0.0.0"),
			Port: envIntOr("PROBE_PORT", 8080),
			Mode: envOr("PROBE_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:    envBoolOr("PROBE_HEADLESS", true),
			MaxSessions: envIntOr("PROBE_MAX_SESSIONS", 5),
			NoSandbox:   envBoolOr("PROBE_NO_SANDBOX", false),
			BrowserBin:  os.Getenv("PROBE_BROWSER_BIN"),
		},
		Checker: CheckerConfig{
			HTTPTimeout:        envDurationOr("PROBE_HTTP_TIMEOUT", 10*time.Second),
			NavigationTimeout:  envDurationOr("PROBE_NAV_TIMEOUT", 30*time.Second),
			ProfileNavTimeout:  envDurationOr("PROBE_PROFILE_NAV_TIMEOUT", 20*time.Second),
			CodeSettle:         envDurationOr("PROBE_CODE_SETTLE", 3*time.Second),
			ProfileSettle:      envDurationOr("PROBE_PROFILE_SETTLE", 2*time.Second),
			ProfileConcurrency: envIntOr("PROBE_PROFILE_CONCURRENCY", 5),
		},
		Target: TargetConfig{
			BaseURL:           envOr("PROBE_TARGET_BASE_URL", "https://www.netflix.com"),
			AccountPath:       envOr("PROBE_TARGET_ACCOUNT_PATH", "/account"),
			HistoryPathPrefix: envOr("PROBE_TARGET_HISTORY_PREFIX", "/settings/viewed/"),
			CookieDomain:      envOr("PROBE_TARGET_COOKIE_DOMAIN", ".netflix.com"),
			RequiredCookies: envSliceOr("PROBE_REQUIRED_COOKIES", []string{
				"NetflixId", "SecureNetflixId",
			}),
			RevealSelector: envOr("PROBE_REVEAL_SELECTOR",
				`button[data-uia="account+footer+service-code-button"]`),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PROBE_AUTH_ENABLED", true),
			APIKeys: envSliceOr("PROBE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PROBE_RATE_RPS", 5.0),
			Burst:             envIntOr("PROBE_RATE_BURST", 10),
		},
		Outbound: OutboundConfig{
			WebhookSecret: os.Getenv("PROBE_WEBHOOK_SECRET"),
			MaxConcurrent: envIntOr("PROBE_OUTBOUND_CONCURRENCY", 20),
		},
		Log: LogConfig{
			Level:  envOr("PROBE_LOG_LEVEL", "info"),
			Format: envOr("PROBE_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
