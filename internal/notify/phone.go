package notify

import "strings"

// Israeli numbering: a local number with a leading zero becomes
// country-code prefixed before it is used as a gateway address.
const countryCode = "972"

// recipientSuffix is the gateway's fixed address suffix.
const recipientSuffix = "@c.us"

// NormalizePhone converts a raw phone string to international digits.
// Returns "" when nothing usable is left.
func NormalizePhone(raw string) string {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	p := digits.String()
	switch {
	case p == "":
		return ""
	case strings.HasPrefix(p, "0"):
		return countryCode + p[1:]
	default:
		return p
	}
}

// RecipientAddress builds the gateway recipient address for a phone
// number, or "" when the number does not normalize.
func RecipientAddress(phone string) string {
	p := NormalizePhone(phone)
	if p == "" {
		return ""
	}
	return p + recipientSuffix
}
