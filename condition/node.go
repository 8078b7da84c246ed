package condition

import (
	"errors"
	"fmt"
	"strings"

	"geemysql/quote"
	"geemysql/value"
)

// ErrInvalidCondition reports a condition whose shape cannot be compiled.
// It always signals a programming mistake in the caller.
var ErrInvalidCondition = errors.New("invalid condition")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidCondition, fmt.Sprintf(format, args...))
}

// Node is one element of a parsed condition tree. Parsing validates the
// input; rendering a Node into a fragment cannot fail.
type Node interface {
	Fragment() quote.Fragment
}

// Tree is one AND/OR level. Nested trees are rendered in parentheses.
type Tree struct {
	Operator Connective
	Children []Node
}

// Raw is caller-certified SQL passed through verbatim.
type Raw string

// PrimaryKey is the implicit `id = n` condition of a bare number.
type PrimaryKey int64

// Comparison is one field compared with one, two or many values.
type Comparison struct {
	Field  string
	Op     Op
	Values []value.Value
	// Token is the operator as the caller spelled it ("!=" or "<>").
	Token string
	// Compact renders "field=value" without spaces, used for implied
	// equality where the key carried no operator.
	Compact bool
}

// Parse classifies v into a condition tree whose top level uses op.
// A nil Node with a nil error means "no condition".
func Parse(v value.Value, op Connective) (Node, error) {
	// "0" is no condition, the same as the number 0
	if v.Falsy() || (v.Kind() == value.Text && strings.TrimSpace(v.Text()) == "0") {
		return nil, nil
	}
	switch v.Kind() {
	case value.Number:
		n, _ := v.Int64()
		return PrimaryKey(n), nil
	case value.Text:
		return Raw(strings.TrimSpace(v.Text())), nil
	case value.List, value.Map:
		return parseTree(v, op)
	}
	return nil, invalid("condition must be a number, string, list or map: %s", v)
}

func parseTree(v value.Value, op Connective) (*Tree, error) {
	t := &Tree{Operator: op}
	if v.Kind() == value.Map {
		for _, p := range v.Pairs() {
			if err := t.addEntry(p.Key, p.Value); err != nil {
				return nil, err
			}
		}
		return t, nil
	}
	for _, item := range v.Items() {
		// a mapping inside a list contributes its keyed entries to this level
		if item.Kind() == value.Map {
			for _, p := range item.Pairs() {
				if err := t.addEntry(p.Key, p.Value); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := t.addItem(item); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// addItem handles an entry without a usable key.
func (t *Tree) addItem(item value.Value) error {
	switch item.Kind() {
	case value.Empty:
		return nil
	case value.List, value.Map:
		sub, err := parseTree(item, t.Operator.Flip())
		if err != nil {
			return err
		}
		if len(sub.Children) > 0 {
			t.Children = append(t.Children, sub)
		}
		return nil
	case value.Text:
		if s := strings.TrimSpace(item.Text()); s != "" {
			t.Children = append(t.Children, Raw(s))
		}
		return nil
	}
	return invalid("entry without a key must be a list or a string: %s", item)
}

func (t *Tree) addEntry(key string, val value.Value) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return t.addItem(val)
	}
	c, err := parseComparison(key, val)
	if err != nil {
		return err
	}
	t.Children = append(t.Children, c)
	return nil
}

func parseComparison(key string, val value.Value) (*Comparison, error) {
	if val.Kind() == value.Map {
		return nil, invalid("value of %q must be a scalar or a list: %s", key, val)
	}

	// 键是字段名,那么只能是等于条件或IN
	if quote.IsIdentifier(key) {
		switch val.Kind() {
		case value.List:
			values, err := inValues(key, val)
			if err != nil {
				return nil, err
			}
			return &Comparison{Field: key, Op: IN, Token: IN.String(), Values: values}, nil
		case value.Number, value.Text:
			return &Comparison{Field: key, Op: EQ, Token: EQ.String(), Values: []value.Value{trimmed(val)}, Compact: true}, nil
		}
		return nil, invalid("value of %q must be a scalar or a list: %s", key, val)
	}

	field, op, token, ok := splitOperator(key)
	if !ok {
		// an expression such as "t.name" compared for equality
		if !val.IsScalar() {
			return nil, invalid("value of %q must be a scalar: %s", key, val)
		}
		return &Comparison{Field: key, Op: EQ, Token: EQ.String(), Values: []value.Value{trimmed(val)}, Compact: true}, nil
	}
	if field == "" {
		return nil, invalid("missing field before operator in %q", key)
	}

	c := &Comparison{Field: field, Op: op, Token: token}
	switch op {
	case BETWEEN, NOTBETWEEN:
		values, err := betweenValues(key, val)
		if err != nil {
			return nil, err
		}
		c.Values = values
	case IN, NOTIN:
		values, err := inValues(key, val)
		if err != nil {
			return nil, err
		}
		c.Values = values
	case ISNULL, ISNOTNULL:
	default:
		if !val.IsScalar() {
			return nil, invalid("value of %q must be a scalar: %s", key, val)
		}
		c.Values = []value.Value{trimmed(val)}
	}
	return c, nil
}

func trimmed(v value.Value) value.Value {
	if v.Kind() == value.Text {
		return value.Str(strings.TrimSpace(v.Text()))
	}
	return v
}

// inValues normalizes the value of an IN / NOT IN entry into a list:
// a list as is, text split on commas, else on whitespace, else one item.
func inValues(key string, val value.Value) ([]value.Value, error) {
	switch val.Kind() {
	case value.Empty:
		return nil, nil
	case value.Number:
		return []value.Value{val}, nil
	case value.Text:
		s := strings.TrimSpace(val.Text())
		if s == "" {
			return nil, nil
		}
		return texts(splitList(s)), nil
	case value.List:
		values := make([]value.Value, 0, val.Len())
		for _, item := range val.Items() {
			if !item.IsScalar() {
				return nil, invalid("values of %q must be scalars: %s", key, val)
			}
			values = append(values, trimmed(item))
		}
		return values, nil
	}
	return nil, invalid("value of %q must be a list or a string: %s", key, val)
}

// betweenValues normalizes a BETWEEN value into exactly two bounds.
func betweenValues(key string, val value.Value) ([]value.Value, error) {
	switch val.Kind() {
	case value.List:
		if val.Len() != 2 || !val.Items()[0].IsScalar() || !val.Items()[1].IsScalar() {
			return nil, invalid("between value of %q must have two scalars: %s", key, val)
		}
		return []value.Value{trimmed(val.Items()[0]), trimmed(val.Items()[1])}, nil
	case value.Text:
		if lo, hi, ok := splitBetween(strings.TrimSpace(val.Text())); ok {
			return []value.Value{value.Str(lo), value.Str(hi)}, nil
		}
	}
	return nil, invalid("between value of %q must have two parts: %s", key, val)
}

func splitList(s string) []string {
	if parts := strings.Split(s, ","); len(parts) > 1 {
		return trimAll(parts)
	}
	if parts := strings.Fields(s); len(parts) > 1 {
		return parts
	}
	return []string{s}
}

// splitBetween tries a comma, then whitespace, then the word AND.
func splitBetween(s string) (string, string, bool) {
	if parts := strings.Split(s, ","); len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
	}
	words := strings.Fields(s)
	if len(words) == 2 {
		return words[0], words[1], true
	}
	for i := 1; i < len(words)-1; i++ {
		if strings.EqualFold(words[i], "AND") {
			return strings.Join(words[:i], " "), strings.Join(words[i+1:], " "), true
		}
	}
	return "", "", false
}

func trimAll(parts []string) []string {
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func texts(parts []string) []value.Value {
	values := make([]value.Value, len(parts))
	for i, p := range parts {
		values[i] = value.Str(p)
	}
	return values
}
