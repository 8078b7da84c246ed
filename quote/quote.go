// Package quote holds the MySQL quoting rules shared by every compiler:
// identifier detection and quoting, literal escaping, and the Fragment type
// that pairs display SQL with placeholder SQL.
package quote

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	// Placeholder 是预处理语句中的参数占位符
	Placeholder = "?"
	// Tick 是MySQL的标识符定界符
	Tick = "`"
)

// IsIdentifier reports whether s looks like a bare column or table name:
// a letter (CJK ideographs included) followed by letters, digits or '_'.
// Anything else is treated by the compilers as a trusted SQL expression.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// Identifier wraps s in back-ticks. Existing back-ticks are trimmed first,
// so quoting an already quoted name is a no-op.
func Identifier(s string) string {
	return Tick + strings.Trim(strings.TrimSpace(s), Tick) + Tick
}

// Field quotes s when it is a bare identifier and returns expressions
// (functions, qualified names, arithmetic) untouched.
func Field(s string) string {
	s = strings.TrimSpace(s)
	if IsIdentifier(strings.Trim(s, Tick)) {
		return Identifier(s)
	}
	return s
}

var escaper = strings.NewReplacer(
	"\\", "\\\\",
	"\x00", "\\0",
	"\n", "\\n",
	"\r", "\\r",
	"'", "\\'",
	"\"", "\\\"",
	"\x1a", "\\Z",
)

// Escape backslash-escapes the characters MySQL treats specially inside a
// string literal. It only serves display SQL; the prepared form is what runs.
func Escape(s string) string {
	return escaper.Replace(s)
}

// String returns s as a quoted and escaped literal.
func String(s string) string {
	return "'" + Escape(s) + "'"
}

// Literal renders v the way it appears in display SQL. Numbers are written
// bare, everything else becomes a quoted string.
func Literal(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if x {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", x)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return String(x)
	case []byte:
		return String(string(x))
	case time.Time:
		return String(x.Format("2006-01-02 15:04:05"))
	case fmt.Stringer:
		return String(x.String())
	}
	return String(fmt.Sprint(v))
}

// Interpolate substitutes params into the placeholders of prepared, giving
// the text a reader would see in a log. Question marks inside quoted
// literals or identifiers are left alone. Extra placeholders stay as "?".
func Interpolate(prepared string, params []interface{}) string {
	var sb strings.Builder
	var quote rune
	escaped := false
	n := 0
	for _, r := range prepared {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if r == '\\' && quote != '`' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '?' && n < len(params):
			sb.WriteString(Literal(params[n]))
			n++
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
