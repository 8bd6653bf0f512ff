package sanitizer

import "regexp"

// Per-field length policies. These bound what the email templates will
// interpolate, not what the database stores.
const (
	maxNameLength         = 100
	maxSubjectLength      = 200
	maxMessageBodyLength  = 5000
	maxOTPLength          = 10
	maxMembershipIDLength = 50
	maxAmountLength       = 20
)

// Name sanitizes a person's display name for email interpolation: single
// line, bounded, escaped.
func Name(s string) string {
	return ForEmail(s, Options{MaxLength: maxNameLength, StripNewlines: true})
}

// Subject sanitizes an email subject line.
func Subject(s string) string {
	return ForEmail(s, Options{MaxLength: maxSubjectLength, StripNewlines: true})
}

// MessageBody sanitizes multi-line message content, converting newlines to
// <br> markup so the text renders as written.
func MessageBody(s string) string {
	return ForEmail(s, Options{MaxLength: maxMessageBodyLength, PreserveNewlines: true})
}

var (
	nonDigitRe        = regexp.MustCompile(`[^0-9]`)
	nonMembershipIDRe = regexp.MustCompile(`[^A-Za-z0-9-]`)
	nonAmountRe       = regexp.MustCompile(`[^0-9.,]`)
)

// OTP reduces a one-time passcode to digits only. Allowlisting instead of
// escaping keeps the value byte-exact for programmatic comparison.
func OTP(s string) string {
	s = nonDigitRe.ReplaceAllString(s, "")
	if len(s) > maxOTPLength {
		s = s[:maxOTPLength]
	}
	return s
}

// MembershipID reduces a membership identifier to its alphanumeric-plus-
// hyphen form so it round-trips exactly between emails and lookups.
func MembershipID(s string) string {
	s = nonMembershipIDRe.ReplaceAllString(s, "")
	if len(s) > maxMembershipIDLength {
		s = s[:maxMembershipIDLength]
	}
	return s
}

// Amount keeps only the digit, comma, and period characters of a currency
// amount.
func Amount(s string) string {
	s = nonAmountRe.ReplaceAllString(s, "")
	if len(s) > maxAmountLength {
		s = s[:maxAmountLength]
	}
	return s
}
