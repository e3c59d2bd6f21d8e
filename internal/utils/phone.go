package utils

import (
	"regexp"
	"strings"
)

// Benin Mobile Money numbers: +229 followed by 10 digits (the 01 prefix
// plus the 8-digit subscriber number).
var phoneBJ = regexp.MustCompile(`^\+229\d{10}$`)

// ValidPhoneBJ reports whether s is a valid Benin Mobile Money number.
func ValidPhoneBJ(s string) bool {
	return phoneBJ.MatchString(strings.TrimSpace(s))
}
