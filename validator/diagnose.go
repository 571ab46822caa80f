package validator

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// loginSelectors are markers of a sign-in page in the redirect target.
var loginSelectors = []string{
	`input[name="userLoginId"]`,
	`form[action*="login"]`,
	`input[type="password"]`,
}

// diagnoseRedirect inspects the body a non-account redirect landed on and
// produces a short human-readable reason.
func diagnoseRedirect(body, finalURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err == nil {
		for _, sel := range loginSelectors {
			if doc.Find(sel).Length() > 0 {
				return fmt.Sprintf("redirected to login page (%s)", finalURL)
			}
		}
	}

	if title := extractTitle([]byte(body)); title != "" {
		return fmt.Sprintf("redirected to %q (%s)", title, finalURL)
	}
	return "redirected to " + finalURL
}

// extractTitle extracts the <title> content from raw HTML bytes.
func extractTitle(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				if tokenizer.Next() == html.TextToken {
					return strings.TrimSpace(string(tokenizer.Text()))
				}
				return ""
			}
		}
	}
}
