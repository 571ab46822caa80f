package models

import (
	"encoding/json"
	"sort"
)

// CookieSet is a normalized name→value cookie map produced by the credential
// parser. Keys are unique; it is owned exclusively by the request that
// produced it and is never shared across requests.
type CookieSet map[string]string

// HasAll reports whether every named cookie is present with a non-empty value.
func (c CookieSet) HasAll(names []string) bool {
	for _, name := range names {
		if c[name] == "" {
			return false
		}
	}
	return true
}

// Restrict returns a new set containing only the named cookies.
// Names absent from the set are skipped.
func (c CookieSet) Restrict(names []string) CookieSet {
	out := make(CookieSet, len(names))
	for _, name := range names {
		if v, ok := c[name]; ok {
			out[name] = v
		}
	}
	return out
}

// Names returns the cookie names in sorted order.
func (c CookieSet) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JSONArray serializes the set as a JSON array of {name, value} objects,
// sorted by name. The output re-parses to an identical set.
func (c CookieSet) JSONArray() ([]byte, error) {
	type entry struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	entries := make([]entry, 0, len(c))
	for _, name := range c.Names() {
		entries = append(entries, entry{Name: name, Value: c[name]})
	}
	return json.Marshal(entries)
}
