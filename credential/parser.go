// Package credential recovers a normalized cookie set from a raw
// credential blob in any of several incompatible input encodings.
package credential

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/use-agent/sessionprobe/models"
)

// httpOnlyPrefix marks Netscape-format rows whose cookie carries the
// HttpOnly flag. The prefix is stripped and the rest of the row re-parsed.
const httpOnlyPrefix = "#HttpOnly_"

// Parser turns raw text blobs into normalized cookie sets using an ordered
// chain of parsing strategies. The first strategy producing a non-empty,
// sufficient result wins; a strategy that fails falls through to the next.
type Parser struct {
	required   []string
	idPatterns []*regexp.Regexp
}

// NewParser builds a parser around the required session-identifier cookie
// names (the direct-scan and pipe strategies key off them).
func NewParser(required []string) *Parser {
	patterns := make([]*regexp.Regexp, len(required))
	for i, name := range required {
		patterns[i] = regexp.MustCompile(regexp.QuoteMeta(name) + `=([^\s;]+)`)
	}
	return &Parser{required: required, idPatterns: patterns}
}

// Parse extracts a cookie map from text. hint is the declared input format
// (typically a file extension such as "json"); it nudges strategy selection
// but never restricts it. Malformed input yields an empty map, never an
// error.
func (p *Parser) Parse(text, hint string) models.CookieSet {
	strategies := []struct {
		name  string
		parse func(text, hint string) models.CookieSet
	}{
		{"identifier-scan", p.scanIdentifiers},
		{"json-array", parseJSONArray},
		{"pipe-pairs", p.parsePipes},
		{"netscape", parseNetscape},
		{"semicolon-pairs", parseSemicolons},
	}

	for _, s := range strategies {
		set := s.parse(text, hint)
		if len(set) > 0 {
			slog.Debug("credential parsed",
				"strategy", s.name,
				"cookies", len(set),
			)
			return set
		}
	}
	return models.CookieSet{}
}

// scanIdentifiers searches the raw text anywhere for the required
// identifier assignments, ignoring surrounding structure. Succeeds only
// when every required identifier is found.
func (p *Parser) scanIdentifiers(text, _ string) models.CookieSet {
	set := make(models.CookieSet, len(p.required))
	for i, re := range p.idPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return nil
		}
		set[p.required[i]] = m[1]
	}
	return set
}

// parseJSONArray parses a JSON array of {name, value} objects. Entries
// without a name are skipped; malformed JSON means the strategy failed.
func parseJSONArray(text, hint string) models.CookieSet {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "[") && hint != "json" {
		return nil
	}

	var entries []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
		return nil
	}

	set := make(models.CookieSet, len(entries))
	for _, e := range entries {
		if e.Name != "" {
			set[e.Name] = e.Value
		}
	}
	return set
}

// parsePipes splits on "|" and parses each segment as name=value. The
// result is accepted only when both required identifiers came out of it.
func (p *Parser) parsePipes(text, _ string) models.CookieSet {
	if !strings.Contains(text, "|") {
		return nil
	}

	set := models.CookieSet{}
	for _, segment := range strings.Split(text, "|") {
		name, value, ok := strings.Cut(strings.TrimSpace(segment), "=")
		if !ok || name == "" {
			continue
		}
		set[name] = value
	}
	if !set.HasAll(p.required) {
		return nil
	}
	return set
}

// parseNetscape parses line-oriented tabular cookie rows: 7 tab-delimited
// fields (whitespace-delimited as a fallback), name in field 6, value in
// field 7. Comment lines are skipped unless they carry the HttpOnly
// prefix, which is stripped before re-parsing the row.
func parseNetscape(text, _ string) models.CookieSet {
	set := models.CookieSet{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if !strings.HasPrefix(line, httpOnlyPrefix) {
				continue
			}
			line = strings.TrimPrefix(line, httpOnlyPrefix)
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			fields = strings.Fields(line)
		}
		if len(fields) < 7 {
			continue
		}
		if name := fields[5]; name != "" {
			set[name] = fields[6]
		}
	}
	return set
}

// parseSemicolons is the last-resort split on ";", each segment parsed as
// name=value (the Cookie-header form).
func parseSemicolons(text, _ string) models.CookieSet {
	set := models.CookieSet{}
	for _, segment := range strings.Split(text, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(segment), "=")
		if !ok || name == "" {
			continue
		}
		set[name] = value
	}
	return set
}
