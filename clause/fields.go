package clause

import (
	"fmt"
	"strings"

	"geemysql/quote"
	"geemysql/value"
)

// Fields renders a select list. fields may be
//
//	nil / ""                        *
//	"id, name, COUNT(*) AS cnt"     comma separated
//	[]string{"id", "name AS n"}
//	{"name": "n", "COUNT(*)": "c"}  field -> alias
//
// Bare identifiers are quoted, expressions pass through untouched.
func Fields(fields interface{}) (string, error) {
	v, err := value.From(fields)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	if v.Falsy() {
		return "*", nil
	}

	var ret []string
	switch v.Kind() {
	case value.Text:
		for _, item := range strings.Split(v.Text(), ",") {
			if f := field(item); f != "" {
				ret = append(ret, f)
			}
		}
	case value.List:
		for _, item := range v.Items() {
			if item.Kind() != value.Text {
				return "", fmt.Errorf("%w: field name must be a string: %s", ErrInvalidField, item)
			}
			if f := field(item.Text()); f != "" {
				ret = append(ret, f)
			}
		}
	case value.Map:
		for _, p := range v.Pairs() {
			key := strings.TrimSpace(p.Key)
			if key == "" || p.Value.Kind() != value.Text {
				return "", fmt.Errorf("%w: alias of %q must be a string: %s", ErrInvalidField, p.Key, p.Value)
			}
			ret = append(ret, alias(key, p.Value.Text()))
		}
	default:
		return "", fmt.Errorf("%w: fields must be a string, list or map: %s", ErrInvalidField, v)
	}
	if len(ret) == 0 {
		return "*", nil
	}
	return strings.Join(ret, ","), nil
}

// field renders one select item, splitting a trailing "AS alias".
func field(item string) string {
	words := strings.Fields(item)
	if n := len(words); n >= 3 && strings.EqualFold(words[n-2], "AS") {
		return alias(strings.Join(words[:n-2], " "), words[n-1])
	}
	return quote.Field(strings.TrimSpace(item))
}

func alias(key, as string) string {
	return quote.Field(key) + " AS " + quote.Identifier(as)
}
