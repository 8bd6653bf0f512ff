package sanitizer

import (
	"regexp"
	"strings"
)

// maxEmailLength is the RFC 5321 bound on a complete address.
const maxEmailLength = 254

var (
	// Conservative shape check: non-whitespace local part, @, non-whitespace
	// domain with at least one dot. Deliverability is the mail server's
	// problem, not ours.
	emailShapeRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	phoneCharsRe = regexp.MustCompile(`^[0-9+\s\-()]+$`)

	urlForbiddenRe = regexp.MustCompile("[\\s<>{}`]")
)

// IsValidEmail reports whether s looks like a deliverable email address.
// The input is trimmed and lower-cased before matching; anything longer than
// 254 characters is rejected outright.
func IsValidEmail(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > maxEmailLength {
		return false
	}
	return emailShapeRe.MatchString(s)
}

// IsValidPhone reports whether s is a plausible phone number: the original
// string may contain only digits, +, spaces, hyphens, and parentheses, and
// after stripping separators it must carry between 10 and 15 digits.
func IsValidPhone(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || !phoneCharsRe.MatchString(s) {
		return false
	}

	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 10 && digits <= 15
}

// maxURLLength bounds URLs to what browsers and email clients reliably
// handle.
const maxURLLength = 2048

// IsValidURL reports whether s is an http(s) URL safe to embed in an email:
// it must carry an explicit scheme, stay within length bounds, and contain
// no whitespace, angle brackets, braces, or backticks.
func IsValidURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxURLLength {
		return false
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	return !urlForbiddenRe.MatchString(s)
}

// NormalizeEmail lowercases and trims an address for storage and
// deduplication.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
