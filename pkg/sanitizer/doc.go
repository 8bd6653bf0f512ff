// Package sanitizer produces email-safe, length-bounded strings from
// untrusted user input and validates structured fields (email addresses,
// phone numbers, URLs) before they are trusted downstream.
//
// The package is pure and stateless: every function takes a string and
// returns a string or a boolean, with no side effects. The one exception is
// TemplateData, which returns an error naming the offending field when a
// required template value is missing or malformed, because template
// rendering downstream assumes well-typed data.
//
// Dangerous-content removal is denylist based. It removes known-bad
// patterns (script/iframe blocks, javascript:/vbscript:/data: schemes,
// inline event handlers) but does not parse HTML and therefore cannot
// guarantee removal of every possible injection vector. Callers rendering
// untrusted input into HTML contexts must still escape it; ForEmail does
// both in the correct order.
package sanitizer
