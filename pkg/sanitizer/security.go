package sanitizer

import (
	"regexp"
	"strings"
)

// htmlEscaper covers the full set of characters that can break out of an
// HTML attribute or text context, not just the five the standard library
// escapes. Backtick and equals matter for unquoted attribute injection.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
	"`", "&#x60;",
	"=", "&#x3D;",
)

// EscapeHTML replaces HTML special characters with their entities.
// It is a total function: any input, including the empty string, yields a
// string, and re-escaping the output never reintroduces unescaped
// characters from the first pass.
func EscapeHTML(s string) string {
	if s == "" {
		return ""
	}
	return htmlEscaper.Replace(s)
}

var (
	scriptBlockRe  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	iframeBlockRe  = regexp.MustCompile(`(?is)<iframe\b[^>]*>.*?</iframe>`)
	uriSchemeRe    = regexp.MustCompile(`(?i)(?:javascript|vbscript|data)\s*:`)
	eventHandlerRe = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// StripDangerousContent removes, rather than escapes, a fixed denylist of
// patterns: <script> and <iframe> blocks, javascript:/vbscript:/data: URI
// schemes, and on<event>= handler attribute syntax. Matching is
// case-insensitive across the whole string.
//
// Known limitation: this is a denylist, not a parser. It removes the listed
// patterns wherever they appear but makes no guarantee about vectors outside
// the list. It must run before escaping, otherwise attribute-style payloads
// would hide inside already-escaped text.
func StripDangerousContent(s string) string {
	if s == "" {
		return ""
	}
	s = scriptBlockRe.ReplaceAllString(s, "")
	s = iframeBlockRe.ReplaceAllString(s, "")
	s = uriSchemeRe.ReplaceAllString(s, "")
	s = eventHandlerRe.ReplaceAllString(s, "")
	return s
}
