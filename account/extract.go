// Package account extracts structured account attributes from the
// semi-structured markup of a validated account page. Every field is an
// independent pattern search; a missing or reformatted field is simply
// omitted and never fails the others.
package account

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/sessionprobe/models"
)

// Field patterns over the embedded account state. The markup nests most
// values as {"fieldType": ..., "value": ...} objects.
var (
	reThirdParty = regexp.MustCompile(`"thirdPartyBillingPartner"\s*:\s*\{[^}]*"value"\s*:\s*(true|false)`)
	rePayMethod  = regexp.MustCompile(`"paymentMethod"\s*:\s*\{[^}]*"value"\s*:\s*"([^"]+)"`)
	rePayList    = regexp.MustCompile(`(?s)"paymentMethods"\s*:\s*\{.*?"paymentMethod"\s*:\s*\{[^}]*?"value"\s*:\s*"([^"]+)".*?"displayText"\s*:\s*\{[^}]*?"value"\s*:\s*"([^"]+)"`)
	reCardType   = regexp.MustCompile(`"type"\s*:\s*\{[^}]*?"value"\s*:\s*"([^"]+)"`)
	reCanChange  = regexp.MustCompile(`"canChangePlan"\s*:\s*\{[^}]*"value"\s*:\s*(true|false)`)
	reOnHold     = regexp.MustCompile(`"isUserOnHold"\s*:\s*(true|false)`)
	rePlanName   = regexp.MustCompile(`"localizedPlanName"\s*:\s*\{[^}]*"value"\s*:\s*"([^"]+)"`)
	reMembership = regexp.MustCompile(`"membershipStatus"\s*:\s*"([^"]+)"`)
	reCountry    = regexp.MustCompile(`"countryOfSignup"\s*:\s*"([A-Z]{2})"`)
	reFirstName  = regexp.MustCompile(`"firstName"\s*:\s*"(.*?)"`)
	reEmail      = regexp.MustCompile(`"emailAddress"\s*:\s*"(.*?)"`)
	rePhone      = regexp.MustCompile(`"phoneNumber"\s*:\s*"(.*?)"`)
	reSince      = regexp.MustCompile(`"memberSince"\s*:\s*\{[^}]*"value"\s*:\s*(\d+)`)
	reNextBill   = regexp.MustCompile(`"nextBillingDate"\s*:\s*\{[^}]*"value"\s*:\s*"([^"]+)"`)
	reExtra      = regexp.MustCompile(`"showExtraMemberSection"\s*:\s*\{[^}]*"value"\s*:\s*(true|false)`)
	reLanguage   = regexp.MustCompile(`"language"\s*:\s*"([a-z]{2}(?:-[A-Z]{2})?)"`)
)

// Extract pulls the fixed set of optional fields out of an account page
// body. Pure function, no I/O.
func Extract(body string) *models.AccountInfo {
	info := &models.AccountInfo{}

	extractBilling(body, info)

	if m := reCountry.FindStringSubmatch(body); m != nil {
		info.Set(models.FieldCountry, countryDisplay(m[1]))
	}
	if m := reMembership.FindStringSubmatch(body); m != nil {
		info.Set(models.FieldMembership, titleCase(strings.ReplaceAll(m[1], "_", " ")))
	}
	if m := reOnHold.FindStringSubmatch(body); m != nil {
		if m[1] == "true" {
			info.Set(models.FieldPlanStatus, "On hold")
		} else {
			info.Set(models.FieldPlanStatus, "Active")
		}
	}
	if m := rePlanName.FindStringSubmatch(body); m != nil {
		info.Set(models.FieldPlanName, decodeEscapes(m[1]))
	}
	if m := reCanChange.FindStringSubmatch(body); m != nil {
		info.Set(models.FieldCanChangePlan, yesNo(m[1]))
	}
	if m := reNextBill.FindStringSubmatch(body); m != nil {
		info.Set(models.FieldNextPayment, decodeEscapes(m[1]))
	}
	if m := reSince.FindStringSubmatch(body); m != nil {
		if ms, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			info.Set(models.FieldSignupDate, formatTimestamp(ms))
		}
	}
	if m := reExtra.FindStringSubmatch(body); m != nil {
		info.Set(models.FieldExtraSlots, yesNo(m[1]))
	}
	if m := reEmail.FindStringSubmatch(body); m != nil {
		info.Set(models.FieldEmail, decodeEscapes(m[1]))
	}
	if m := rePhone.FindStringSubmatch(body); m != nil {
		info.Set(models.FieldPhone, decodeEscapes(m[1]))
	}
	if m := reFirstName.FindStringSubmatch(body); m != nil {
		info.Set(models.FieldName, decodeEscapes(m[1]))
	}
	if m := reLanguage.FindStringSubmatch(body); m != nil {
		info.Set(models.FieldLanguage, languageDisplay(m[1]))
	}

	return info
}

// extractBilling resolves the billing relationship. A true third-party
// flag wins; otherwise the payment-methods array provides the method and
// a masked display string.
func extractBilling(body string, info *models.AccountInfo) {
	if m := reThirdParty.FindStringSubmatch(body); m != nil && m[1] == "true" {
		info.Set(models.FieldBilledBy, "Third party")
		if pm := rePayMethod.FindStringSubmatch(body); pm != nil {
			info.Set(models.FieldPaymentMethod, prettyMethod(pm[1]))
		}
		return
	}

	m := rePayList.FindStringSubmatch(body)
	if m == nil {
		return
	}
	info.Set(models.FieldBilledBy, prettyMethod(m[1]))

	display := maskBullets(decodeEscapes(m[2]))
	if ct := reCardType.FindStringSubmatch(body); ct != nil {
		display = strings.ToUpper(ct[1]) + " " + display
	}
	info.Set(models.FieldPaymentMethod, display)
}

func prettyMethod(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "_", " "))
}

// maskBullets normalizes masking asterisks to a bullet glyph.
func maskBullets(s string) string {
	return strings.ReplaceAll(s, "*", "•")
}

func yesNo(v string) string {
	if v == "true" {
		return "Yes"
	}
	return "No"
}

// decodeEscapes turns backslash-escaped sequences, as they appear literally
// in the markup, back into plain text. Inputs without escapes pass through
// untouched, as do inputs the decoder cannot make sense of.
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\u`) && !strings.Contains(s, `\x`) {
		return s
	}
	unquoted, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return s
	}
	return unquoted
}

// formatTimestamp renders an epoch-millisecond value as a human date/time.
func formatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("Jan 2, 2006 at 15:04:05 UTC")
}
