package account

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// countryDisplay resolves a two-letter ISO country code to
// "(CC) Display Name". Unresolvable codes pass through as-is.
func countryDisplay(code string) string {
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	name := display.English.Regions().Name(region)
	if name == "" {
		return code
	}
	return "(" + code + ") " + name
}

// languageDisplay resolves a BCP 47 language code to its English display
// name.
func languageDisplay(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

// titleCase renders UPPER_SNAKE-derived phrases as title case
// ("CURRENT MEMBER" → "Current Member").
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
