package sanitize

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Sanitizer renders Values as SQL literal text using an Escaper.
type Sanitizer struct {
	esc Escaper
}

// New returns a Sanitizer. A nil Escaper means BackslashEscaper.
func New(esc Escaper) *Sanitizer {
	if esc == nil {
		esc = BackslashEscaper{}
	}
	return &Sanitizer{esc: esc}
}

// Escaper returns the escaper in use.
func (s *Sanitizer) Escaper() Escaper {
	return s.esc
}

// Sanitize renders v as a SQL literal. Strings are escaped and quoted.
func (s *Sanitizer) Sanitize(v Value) string {
	return s.render(v, true)
}

// SanitizeUnquoted renders v like Sanitize but leaves strings unquoted.
// It is meant for lists of column definitions, not for data values.
func (s *Sanitizer) SanitizeUnquoted(v Value) string {
	return s.render(v, false)
}

func (s *Sanitizer) render(v Value, quoted bool) string {
	switch v.kind {
	case KindNull, KindObject:
		return ""
	case KindBool:
		if v.b {
			return "1"
		}
		return "0"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindUint:
		return strconv.FormatUint(v.u, 10)
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return s.literal(strconv.FormatFloat(v.f, 'g', -1, 64), quoted)
		}
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return s.literal(v.s, quoted)
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = s.render(e, quoted)
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func (s *Sanitizer) literal(str string, quoted bool) string {
	if !quoted {
		return s.esc.Escape(str)
	}
	return "'" + s.esc.Escape(str) + "'"
}

// Build substitutes every :key: token in template with the sanitized value
// bound to key.
//
// All values are sanitized before any substitution and replacement is a
// single left-to-right pass, so substituted text is never rescanned.
// Tokens without a binding stay verbatim and unused bindings are ignored;
// use Check to detect either.
func (s *Sanitizer) Build(template string, b *Bindings) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	if b.Len() == 0 {
		return template, nil
	}

	oldnew := make([]string, 0, 2*b.Len())
	for _, k := range b.keys {
		oldnew = append(oldnew, token(k), s.Sanitize(b.values[k]))
	}
	return strings.NewReplacer(oldnew...).Replace(template), nil
}

func token(key string) string {
	return ":" + key + ":"
}

var tokenPattern = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*):`)

// Tokens returns the distinct token names in template, in order of first
// appearance. A token name starts with a letter or underscore, so time
// literals such as '10:30:00' are not taken for tokens.
func Tokens(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for i := 0; i < len(template); {
		loc := tokenPattern.FindStringSubmatchIndex(template[i:])
		if loc == nil {
			break
		}
		name := template[i+loc[2] : i+loc[3]]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		// The closing colon may open the next token.
		i += loc[1] - 1
	}
	return names
}

// Check reports template tokens with no binding and bindings whose token
// is absent from template.
func Check(template string, b *Bindings) error {
	if err := b.Validate(); err != nil {
		return err
	}

	var errs []error
	for _, name := range Tokens(template) {
		if _, ok := b.values[name]; !ok {
			errs = append(errs, fmt.Errorf("%w :%s:", ErrUnmatchedToken, name))
		}
	}
	for _, k := range b.keys {
		if !strings.Contains(template, token(k)) {
			errs = append(errs, fmt.Errorf("%w %q", ErrUnusedBinding, k))
		}
	}
	return errors.Join(errs...)
}

// QuoteIdentifier wraps a table or database name in backticks. Wrapping
// backticks already present are trimmed and inner backticks doubled.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(strings.Trim(name, "`"), "`", "``") + "`"
}

// QuoteIdentifiers quotes each name and joins them with ", ".
func QuoteIdentifiers(names ...string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = QuoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}
