package condition

import (
	"strings"
	"unicode"
)

// Connective joins the children of one tree level.
type Connective string

const (
	AND Connective = "AND"
	OR  Connective = "OR"
)

// Flip returns the connective used one nesting level down.
func (c Connective) Flip() Connective {
	if c == OR {
		return AND
	}
	return OR
}

type Op int

const (
	EQ Op = iota
	NE
	LT
	LE
	GT
	GE
	LIKE
	REGEXP
	SPACESHIP
	IN
	NOTIN
	BETWEEN
	NOTBETWEEN
	ISNULL
	ISNOTNULL
)

var opTokens = map[Op]string{
	EQ:         "=",
	NE:         "<>",
	LT:         "<",
	LE:         "<=",
	GT:         ">",
	GE:         ">=",
	LIKE:       "LIKE",
	REGEXP:     "REGEXP",
	SPACESHIP:  "<=>",
	IN:         "IN",
	NOTIN:      "NOT IN",
	BETWEEN:    "BETWEEN",
	NOTBETWEEN: "NOT BETWEEN",
	ISNULL:     "IS NULL",
	ISNOTNULL:  "IS NOT NULL",
}

func (op Op) String() string {
	return opTokens[op]
}

// operators is tried in order against the tail of a condition key, so a
// longer operator must come before any operator it ends with.
var operators = []struct {
	token string
	op    Op
}{
	{"IS NOT NULL", ISNOTNULL},
	{"IS NULL", ISNULL},
	{"REGEXP", REGEXP},
	{"LIKE", LIKE},
	{"<=>", SPACESHIP},
	{"<>", NE},
	{"!=", NE},
	{"NOT IN", NOTIN},
	{"IN", IN},
	{"NOT BETWEEN", NOTBETWEEN},
	{"BETWEEN", BETWEEN},
	{">=", GE},
	{"<=", LE},
	{"=", EQ},
	{">", GT},
	{"<", LT},
}

// splitOperator finds the operator at the end of key. It returns the
// remaining field text, the operator and the spelling the caller used.
func splitOperator(key string) (field string, op Op, token string, ok bool) {
	for _, o := range operators {
		if rest, found := cutOperator(key, o.token); found {
			return rest, o.op, o.token, true
		}
	}
	return key, EQ, "", false
}

// cutOperator removes the words of tok from the end of key, case-insensitively
// and allowing any whitespace between words. Keyword operators must be
// separated from the field by whitespace; symbols need not be.
func cutOperator(key, tok string) (string, bool) {
	keyword := unicode.IsLetter(rune(tok[0]))
	rest := strings.TrimRightFunc(key, unicode.IsSpace)
	words := strings.Fields(tok)
	for i := len(words) - 1; i >= 0; i-- {
		w := words[i]
		if len(rest) < len(w) || !strings.EqualFold(rest[len(rest)-len(w):], w) {
			return "", false
		}
		rest = rest[:len(rest)-len(w)]
		if keyword {
			trimmed := strings.TrimRightFunc(rest, unicode.IsSpace)
			if len(trimmed) == len(rest) {
				return "", false
			}
			rest = trimmed
		}
	}
	return strings.TrimSpace(rest), true
}
