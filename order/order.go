// Package order normalizes ORDER BY and GROUP BY specifications.
package order

import (
	"errors"
	"fmt"
	"strings"

	"geemysql/quote"
	"geemysql/value"
)

const (
	OrderBy = "ORDER BY"
	GroupBy = "GROUP BY"
)

const (
	ASC  = "ASC"
	DESC = "DESC"
)

var ErrInvalidSort = errors.New("invalid sort")

// Item is one normalized sort key.
type Item struct {
	Field     string
	Direction string
}

func (i Item) String() string {
	return quote.Field(i.Field) + " " + i.Direction
}

// Compile normalizes spec and prepends prefix ("ORDER BY" / "GROUP BY").
// It returns "" when no sorting is requested. spec may be
//
//	"name, age desc"             optionally starting with the prefix
//	[]string{"name", "age DESC"}
//	[]string{"age", "DESC"}      a single field/direction pair
//	{"name": "asc", "age": "desc"}
func Compile(spec interface{}, prefix string) (string, error) {
	items, err := Parse(spec, prefix)
	if err != nil || len(items) == 0 {
		return "", err
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return prefix + " " + strings.Join(parts, ","), nil
}

// Parse returns the sort items of spec without rendering them.
func Parse(spec interface{}, prefix string) ([]Item, error) {
	v, err := value.From(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSort, err)
	}
	if v.Falsy() {
		return nil, nil
	}

	var raw []string
	switch v.Kind() {
	case value.Text:
		s := strings.TrimSpace(v.Text())
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			s = s[len(prefix):]
		}
		raw = strings.Split(s, ",")
	case value.List:
		items := v.Items()
		for _, item := range items {
			if item.Kind() != value.Text {
				return nil, fmt.Errorf("%w: sort item must be a string: %s", ErrInvalidSort, item)
			}
		}
		// 第二项是ASC/DESC
		if len(items) == 2 && isDirection(items[1].Text()) {
			raw = []string{items[0].Text() + " " + items[1].Text()}
			break
		}
		for _, item := range items {
			raw = append(raw, item.Text())
		}
	case value.Map:
		var result []Item
		for _, p := range v.Pairs() {
			if p.Value.Kind() != value.Text {
				return nil, fmt.Errorf("%w: direction of %q must be a string: %s", ErrInvalidSort, p.Key, p.Value)
			}
			item, err := pair(strings.TrimSpace(p.Key), strings.TrimSpace(p.Value.Text()))
			if err != nil {
				return nil, err
			}
			result = append(result, item)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("%w: sort must be a string, list or map: %s", ErrInvalidSort, v)
	}

	var result []Item
	for _, s := range raw {
		if strings.TrimSpace(s) == "" {
			continue
		}
		item, err := parseItem(s)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

func parseItem(s string) (Item, error) {
	words := strings.Fields(s)
	switch len(words) {
	case 1:
		return Item{Field: words[0], Direction: ASC}, nil
	case 2:
		return pair(words[0], words[1])
	}
	return Item{}, fmt.Errorf("%w: expected \"field [ASC|DESC]\": %q", ErrInvalidSort, strings.TrimSpace(s))
}

// pair checks a field/direction pair, accepting it written in either order.
func pair(field, direction string) (Item, error) {
	if isDirection(field) && !isDirection(direction) {
		field, direction = direction, field
	}
	if direction == "" {
		direction = ASC
	}
	if !isDirection(direction) {
		return Item{}, fmt.Errorf("%w: direction must be ASC or DESC: %q", ErrInvalidSort, direction)
	}
	if field == "" {
		return Item{}, fmt.Errorf("%w: missing field", ErrInvalidSort)
	}
	return Item{Field: field, Direction: strings.ToUpper(direction)}, nil
}

func isDirection(s string) bool {
	s = strings.TrimSpace(s)
	return strings.EqualFold(s, ASC) || strings.EqualFold(s, DESC)
}
