// Package validator replays a normalized session against the target site
// over plain HTTP and decides validity from the final resolved URL.
package validator

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	tls2 "github.com/refraction-networking/utls"
	"github.com/use-agent/sessionprobe/config"
	"github.com/use-agent/sessionprobe/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBodyBytes caps how much of the account page body is retained for
// field extraction.
const maxBodyBytes = 10 * 1024 * 1024

// Result is the transient outcome of one validation. Not persisted.
type Result struct {
	// Valid is true when the final resolved URL has the account path as
	// an exact prefix.
	Valid bool

	// FinalURL is the URL after following all redirects.
	FinalURL string

	// Body is the account page body, populated only on a valid session.
	Body string

	// Reason explains an invalid verdict (login redirect, transport
	// failure). Empty when Valid.
	Reason string
}

// Validator performs plain-HTTP session validation with a Chrome TLS
// fingerprint (utls). Safe for concurrent use; each call builds its own
// client and cookie jar so no session state leaks across checks.
type Validator struct {
	target  config.TargetConfig
	timeout time.Duration
}

// New creates a Validator bound to the target-site contract.
func New(target config.TargetConfig, timeout time.Duration) *Validator {
	return &Validator{target: target, timeout: timeout}
}

// Validate issues two sequential GETs — site root first to let the session
// establish, then the account path — and decides validity solely from the
// final resolved URL. Transport failures map to an invalid result, never
// to an error: a credential we cannot verify is a credential that does not
// currently grant access.
func (v *Validator) Validate(ctx context.Context, cookies models.CookieSet) Result {
	client := v.newClient()
	defer client.CloseIdleConnections()

	if _, _, err := v.get(ctx, client, v.target.BaseURL+"/", cookies); err != nil {
		return Result{Reason: "transport failure: " + err.Error()}
	}

	finalURL, body, err := v.get(ctx, client, v.target.AccountURL(), cookies)
	if err != nil {
		return Result{Reason: "transport failure: " + err.Error()}
	}

	if !strings.HasPrefix(finalURL, v.target.AccountURL()) {
		return Result{
			FinalURL: finalURL,
			Reason:   diagnoseRedirect(body, finalURL),
		}
	}

	return Result{Valid: true, FinalURL: finalURL, Body: body}
}

// get performs one redirect-following GET with the session cookies attached
// and returns the final URL plus the (capped) body.
func (v *Validator) get(ctx context.Context, client *http.Client, url string, cookies models.CookieSet) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	for _, name := range cookies.Names() {
		req.AddCookie(&http.Cookie{Name: name, Value: cookies[name]})
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", "", err
	}

	return resp.Request.URL.String(), string(body), nil
}

// newClient builds an HTTP client with a Chrome TLS fingerprint and a
// fresh cookie jar so server-set cookies survive the root→account hop.
func (v *Validator) newClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Jar: jar,
		Transport: &http.Transport{
			DialTLSContext: dialTLSChrome,
		},
	}
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint
// via utls.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName:         host,
		InsecureSkipVerify: false,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
