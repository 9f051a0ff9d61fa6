// Package email derives display names from addresses for provisioned
// accounts that arrive without one.
package email

import (
	"strings"
	"unicode"
)

// DeriveDisplayName builds a human-readable name from the address's local
// part: "gareth.price@example.org" becomes "Gareth Price". Falls back to
// "User" when nothing usable remains.
func DeriveDisplayName(address string) string {
	localPart := address
	if at := strings.IndexByte(address, '@'); at > 0 {
		localPart = address[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "User"
	}

	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
