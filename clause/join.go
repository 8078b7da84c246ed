package clause

import (
	"errors"
	"fmt"
	"strings"

	"geemysql/quote"
	"geemysql/value"
)

var ErrInvalidJoin = errors.New("invalid join")

var joinKeywords = map[string]string{
	"left":  "LEFT JOIN",
	"right": "RIGHT JOIN",
	"inner": "INNER JOIN",
	"outer": "OUTER JOIN",
}

// Join builds "<DIR> JOIN <table> [AS <alias>] ON <a> = <b>".
//
// target is "table", "table AS alias" or {table: alias}. relation is
// "a=b", {a: b}, [a, b], or a single field joined against `id`.
func Join(direction string, target, relation interface{}) (string, error) {
	keyword, ok := joinKeywords[strings.ToLower(strings.TrimSpace(direction))]
	if !ok {
		return "", fmt.Errorf("%w: unknown direction %q", ErrInvalidJoin, direction)
	}
	table, err := joinTarget(target)
	if err != nil {
		return "", err
	}
	left, right, err := joinRelation(relation)
	if err != nil {
		return "", err
	}
	return keyword + " " + table + " ON " + quote.Field(left) + " = " + quote.Field(right), nil
}

func joinTarget(target interface{}) (string, error) {
	v, err := value.From(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidJoin, err)
	}
	switch v.Kind() {
	case value.Text:
		words := strings.Fields(v.Text())
		if n := len(words); n == 3 && strings.EqualFold(words[1], "AS") {
			return tableAs(words[0], words[2])
		}
		return Table(v.Text())
	case value.List:
		if v.Len() == 1 && v.Items()[0].Kind() == value.Text {
			return Table(v.Items()[0].Text())
		}
	case value.Map:
		if v.Len() == 1 && v.Pairs()[0].Value.Kind() == value.Text {
			return tableAs(v.Pairs()[0].Key, v.Pairs()[0].Value.Text())
		}
	}
	return "", fmt.Errorf("%w: join one table, got %s", ErrInvalidJoin, v)
}

func tableAs(name, as string) (string, error) {
	table, err := Table(name)
	if err != nil {
		return "", err
	}
	alias, err := Table(as)
	if err != nil {
		return "", err
	}
	return table + " AS " + alias, nil
}

// 如果只指明了一个字段,默认后一个字段为id(表的主键)
func joinRelation(relation interface{}) (string, string, error) {
	v, err := value.From(relation)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidJoin, err)
	}
	var parts []string
	switch v.Kind() {
	case value.Text:
		parts = strings.Split(v.Text(), "=")
	case value.List:
		for _, item := range v.Items() {
			if item.Kind() != value.Text {
				return "", "", fmt.Errorf("%w: relation field must be a string: %s", ErrInvalidJoin, item)
			}
			parts = append(parts, item.Text())
		}
	case value.Map:
		if v.Len() == 1 && v.Pairs()[0].Value.Kind() == value.Text {
			parts = []string{v.Pairs()[0].Key, v.Pairs()[0].Value.Text()}
		}
	}
	if len(parts) == 1 {
		parts = append(parts, "id")
	}
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("%w: relation must name two fields: %s", ErrInvalidJoin, v)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
