package introspect

import (
	"regexp"
	"strconv"
	"strings"
)

// Patterns matched against intercepted response bodies.
var (
	// reServiceCode matches the 6-digit authorization code embedded in the
	// account settings response.
	reServiceCode = regexp.MustCompile(`"authCode"\s*:\s*"(\d{6})"`)

	// reProfileGUID matches profile identifiers wherever they surface.
	reProfileGUID = regexp.MustCompile(`"guid"\s*:\s*"([^"]+)"`)

	// reProfileName matches a profile's display name in viewing-history
	// responses.
	reProfileName = regexp.MustCompile(`"profileName"\s*:\s*"([^"]+)"`)

	// reActivityDate matches epoch-millisecond viewing timestamps.
	reActivityDate = regexp.MustCompile(`"date"\s*:\s*(\d+)`)
)

// decodeProfileName resolves backslash-escaped unicode sequences that
// appear literally in the response body.
func decodeProfileName(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	unquoted, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return s
	}
	return unquoted
}

func parseMillis(s string) (int64, bool) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}
