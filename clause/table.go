package clause

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"geemysql/quote"
)

var (
	ErrInvalidTable = errors.New("invalid table name")
	ErrInvalidField = errors.New("invalid field list")
)

// 表名中禁止出现的字符
const forbidden = `/\$@'"[](),`

// TableName validates a table name and returns it without whitespace or
// back-ticks. Only letters, digits, '_', '-' and a single '.'
// between a schema and a table name are accepted.
func TableName(name string) (string, error) {
	name = strings.Trim(name, " \t\n\r\x00\x0B`")
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidTable)
	}
	if strings.ContainsAny(name, forbidden) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTable, name)
	}
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTable, name)
	}
	for i, p := range parts {
		parts[i] = strings.Trim(p, "`")
		if !isName(parts[i]) {
			return "", fmt.Errorf("%w: %q", ErrInvalidTable, name)
		}
	}
	return strings.Join(parts, "."), nil
}

// Table validates name and returns it quoted, schema-qualified names
// quoted part by part.
func Table(name string) (string, error) {
	name, err := TableName(name)
	if err != nil {
		return "", err
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quote.Identifier(p)
	}
	return strings.Join(parts, "."), nil
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return false
		}
	}
	return true
}
