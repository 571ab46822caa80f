package validator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/sessionprobe/config"
	"github.com/use-agent/sessionprobe/models"
)

func testTarget(baseURL string) config.TargetConfig {
	return config.TargetConfig{
		BaseURL:         baseURL,
		AccountPath:     "/account",
		RequiredCookies: []string{"NetflixId", "SecureNetflixId"},
	}
}

func TestValidateAccountURL(t *testing.T) {
	const accountBody = `<html><body>{"membershipStatus":"CURRENT_MEMBER"}</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.WriteHeader(http.StatusOK)
		case "/account":
			if c, err := r.Cookie("NetflixId"); err != nil || c.Value == "" {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			w.Write([]byte(accountBody))
		case "/login":
			w.Write([]byte(`<html><head><title>Sign In</title></head>` +
				`<body><form action="/login"><input type="password"></form></body></html>`))
		}
	}))
	defer srv.Close()

	v := New(testTarget(srv.URL), 5*time.Second)

	t.Run("valid session resolves to account URL", func(t *testing.T) {
		res := v.Validate(context.Background(), models.CookieSet{
			"NetflixId":       "abc",
			"SecureNetflixId": "def",
		})
		if !res.Valid {
			t.Fatalf("expected valid, got reason %q", res.Reason)
		}
		if res.FinalURL != srv.URL+"/account" {
			t.Errorf("FinalURL = %q, want %q", res.FinalURL, srv.URL+"/account")
		}
		if res.Body != accountBody {
			t.Errorf("Body = %q, want account body", res.Body)
		}
	})

	t.Run("login redirect is invalid", func(t *testing.T) {
		res := v.Validate(context.Background(), models.CookieSet{})
		if res.Valid {
			t.Fatal("expected invalid for redirected session")
		}
		if res.Reason == "" {
			t.Error("expected a reason for the invalid verdict")
		}
	})
}

func TestValidateFinalURLPrefix(t *testing.T) {
	// A final URL that merely contains the account path elsewhere must not
	// count; only an exact prefix does.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/account" {
			http.Redirect(w, r, "/browse?from=/account", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := New(testTarget(srv.URL), 5*time.Second)
	res := v.Validate(context.Background(), models.CookieSet{"NetflixId": "x", "SecureNetflixId": "y"})
	if res.Valid {
		t.Errorf("expected invalid for final URL %q", res.FinalURL)
	}
}

func TestValidateAccountSubpathIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/account" {
			http.Redirect(w, r, "/account/overview", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := New(testTarget(srv.URL), 5*time.Second)
	res := v.Validate(context.Background(), models.CookieSet{"NetflixId": "x", "SecureNetflixId": "y"})
	if !res.Valid {
		t.Errorf("expected valid for account sub-path, got reason %q", res.Reason)
	}
}

func TestValidateTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	v := New(testTarget(srv.URL), 2*time.Second)
	res := v.Validate(context.Background(), models.CookieSet{"NetflixId": "x"})
	if res.Valid {
		t.Fatal("expected invalid on transport failure")
	}
	if res.Reason == "" {
		t.Error("expected transport failure reason")
	}
}

func TestDiagnoseRedirect(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "login form detected",
			body: `<form action="/login"><input name="userLoginId"></form>`,
			want: "login page",
		},
		{
			name: "title fallback",
			body: `<html><head><title>Not Found</title></head></html>`,
			want: `"Not Found"`,
		},
		{
			name: "bare url fallback",
			body: ``,
			want: "redirected to",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diagnoseRedirect(tt.body, "http://example.com/x")
			if !strings.Contains(got, tt.want) {
				t.Errorf("diagnoseRedirect = %q, want substring %q", got, tt.want)
			}
		})
	}
}
