// Package sanitize normalizes and escapes free-text payload fields
// before they are embedded in report markup. It is the single
// security/encoding boundary of the pipeline: the compositor trusts
// its output and never re-escapes.
package sanitize

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Result is the outcome of sanitizing one value. Degraded is set when
// normalization failed and the text was reduced to the ASCII
// allow-list instead.
type Result struct {
	Text     string
	Degraded bool
}

// Clean coerces, normalizes and escapes v. It never returns an error:
// the worst case is a degraded but safe string.
func Clean(v any) Result {
	s := coerce(v)
	if s == "" {
		return Result{}
	}

	s = stripControl(s)

	normalized, ok := normalizeNFC(s)
	if !ok {
		return Result{Text: escape(asciiFallback(s)), Degraded: true}
	}

	return Result{Text: escape(normalized)}
}

// Text is the convenience form of Clean for callers that do not care
// about the degradation flag.
func Text(v any) string {
	return Clean(v).Text
}

func coerce(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// stripControl removes ASCII control characters except newline and tab.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// normalizeNFC applies canonical composition so precomposed and
// decomposed accents render identically in the browser. The norm
// package can panic on pathological inputs, so the recover path
// reports failure instead of taking the pipeline down.
func normalizeNFC(s string) (out string, ok bool) {
	defer func() {
		if recover() != nil {
			out, ok = "", false
		}
	}()
	return norm.NFC.String(strings.ToValidUTF8(s, "")), true
}

// asciiFallback keeps letters, digits and common punctuation only.
// Availability over fidelity: a report with mangled accents still
// beats no report.
func asciiFallback(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune(" .,;:!?()-_/%+\n\t", r):
			return r
		default:
			return -1
		}
	}, s)
}

var entities = []string{"amp;", "lt;", "gt;", "quot;", "#39;"}

// escape runs after normalization, never before: escaping first would
// split multi-byte sequences the normalizer needs to see whole. An
// ampersand that already begins one of our five entities is left
// untouched, which makes Clean idempotent.
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch r {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#39;")
		case '&':
			if startsEntity(s[i+1:]) {
				b.WriteByte('&')
			} else {
				b.WriteString("&amp;")
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func startsEntity(rest string) bool {
	for _, e := range entities {
		if strings.HasPrefix(rest, e) {
			return true
		}
	}
	return false
}
