package sanitizer

import (
	"regexp"
	"strings"
)

// Options controls the ForEmail pipeline. The zero value trims whitespace,
// applies no length bound, and HTML-escapes the result.
type Options struct {
	// MaxLength truncates the trimmed input to at most this many runes.
	// Zero disables truncation.
	MaxLength int

	// AllowHTML skips the final HTML-escaping step. Dangerous-content
	// stripping still runs.
	AllowHTML bool

	// StripNewlines collapses line breaks to single spaces.
	StripNewlines bool

	// PreserveNewlines escapes the text and then converts newlines to <br>
	// markup. When both newline options are set, PreserveNewlines wins.
	PreserveNewlines bool

	// SkipTrim disables the leading/trailing whitespace trim.
	SkipTrim bool
}

var newlineRe = regexp.MustCompile(`\r\n|\r|\n`)

// ForEmail runs the composite sanitization pipeline used for every free-text
// field that ends up inside an outgoing email: trim, truncate, strip
// dangerous content, then apply exactly one newline/escape policy.
//
// The ordering is deliberate. Truncation happens on the raw (trimmed) input
// so field length policies are predictable, and stripping always precedes
// escaping so attribute-style payloads cannot survive inside escaped text.
func ForEmail(s string, opts Options) string {
	if s == "" {
		return ""
	}

	if !opts.SkipTrim {
		s = strings.TrimSpace(s)
	}

	if opts.MaxLength > 0 {
		if runes := []rune(s); len(runes) > opts.MaxLength {
			s = string(runes[:opts.MaxLength])
		}
	}

	s = StripDangerousContent(s)

	// PreserveNewlines returns immediately: the text is already escaped and
	// the inserted <br> markup must not be escaped afterwards.
	if opts.PreserveNewlines {
		return newlineRe.ReplaceAllString(EscapeHTML(s), "<br>")
	}

	if opts.StripNewlines {
		s = newlineRe.ReplaceAllString(s, " ")
	}

	if !opts.AllowHTML {
		s = EscapeHTML(s)
	}

	return s
}

// Preheader length default matches the longest preview common email clients
// render before falling back to body text.
const DefaultPreheaderLength = 150

// Invisible padding pair: zero-width non-joiner followed by a non-breaking
// space. Email clients treat the sequence as blank, which stops them from
// pulling trailing body text into the inbox preview.
const preheaderPad = "‌ "

// Preheader sanitizes the given text and pads it with invisible characters
// up to maxLength runes, so clients generating previews show only the
// intended preheader. A maxLength of zero or less uses
// DefaultPreheaderLength.
func Preheader(s string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultPreheaderLength
	}

	s = ForEmail(s, Options{MaxLength: maxLength, StripNewlines: true})

	if pad := maxLength - len([]rune(s)); pad > 0 {
		s += strings.Repeat(preheaderPad, (pad+1)/2)
	}
	return s
}
