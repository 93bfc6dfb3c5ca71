package sanitize

import "strings"

// Escaper escapes the body of a string literal. The result is not quoted.
type Escaper interface {
	Escape(s string) string
}

// BackslashEscaper escapes the way mysql_real_escape_string does for a
// server running without NO_BACKSLASH_ESCAPES.
type BackslashEscaper struct{}

var backslashReplacer = strings.NewReplacer(
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
	`'`, `\'`,
	`"`, `\"`,
	`\`, `\\`,
)

// Escape implements Escaper.
func (BackslashEscaper) Escape(s string) string {
	return backslashReplacer.Replace(s)
}

// QuoteEscaper escapes for a server in NO_BACKSLASH_ESCAPES mode, where a
// single quote inside a literal is written twice and backslashes are plain.
type QuoteEscaper struct{}

// Escape implements Escaper.
func (QuoteEscaper) Escape(s string) string {
	return strings.ReplaceAll(s, `'`, `''`)
}

// EscaperForSQLMode picks the escaper matching a server sql_mode value.
func EscaperForSQLMode(sqlMode string) Escaper {
	for _, mode := range strings.Split(sqlMode, ",") {
		if strings.EqualFold(strings.TrimSpace(mode), "NO_BACKSLASH_ESCAPES") {
			return QuoteEscaper{}
		}
	}
	return BackslashEscaper{}
}
