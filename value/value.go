// Package value classifies the loosely structured input accepted by the
// compilers (numbers, strings, ordered lists, key-value mappings) into one
// tagged variant, once, at the API boundary.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	Empty Kind = iota
	Number
	Text
	List
	Map
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Number:
		return "number"
	case Text:
		return "text"
	case List:
		return "list"
	case Map:
		return "map"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one of Empty, Number, Text, List or Map. The zero Value is Empty.
type Value struct {
	kind  Kind
	num   interface{} // int64 or float64
	text  string
	items []Value
	pairs []Pair
}

// Pair is one keyed entry of a Map. Order is significant.
type Pair struct {
	Key   string
	Value Value
}

func Nil() Value { return Value{} }

func Int(n int64) Value { return Value{kind: Number, num: n} }

func Float(f float64) Value { return Value{kind: Number, num: f} }

func Str(s string) Value { return Value{kind: Text, text: s} }

// Of builds a List.
func Of(items ...Value) Value {
	return Value{kind: List, items: items}
}

// Pairs builds a Map keeping the given order.
func Pairs(pairs ...Pair) Value {
	return Value{kind: Map, pairs: pairs}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsScalar() bool { return v.kind == Number || v.kind == Text }

// Falsy reports whether v means "nothing requested": Empty, zero, blank
// text or an empty collection.
func (v Value) Falsy() bool {
	switch v.kind {
	case Number:
		switch n := v.num.(type) {
		case int64:
			return n == 0
		case float64:
			return n == 0
		}
	case Text:
		return strings.TrimSpace(v.text) == ""
	case List:
		return len(v.items) == 0
	case Map:
		return len(v.pairs) == 0
	}
	return true
}

// Scalar returns the Go value bound as a statement parameter: int64,
// float64, string, or nil for anything that is not a scalar.
func (v Value) Scalar() interface{} {
	switch v.kind {
	case Number:
		return v.num
	case Text:
		return v.text
	}
	return nil
}

// Text returns the text of a Text value and the decimal form of a Number.
func (v Value) Text() string {
	switch v.kind {
	case Text:
		return v.text
	case Number:
		switch n := v.num.(type) {
		case int64:
			return strconv.FormatInt(n, 10)
		case float64:
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	return ""
}

// Int64 returns a Number as an integer, rounding floats half away from zero.
func (v Value) Int64() (int64, bool) {
	if v.kind != Number {
		return 0, false
	}
	switch n := v.num.(type) {
	case int64:
		return n, true
	case float64:
		if n < 0 {
			return int64(n - 0.5), true
		}
		return int64(n + 0.5), true
	}
	return 0, false
}

func (v Value) Items() []Value { return v.items }

func (v Value) Pairs() []Pair { return v.pairs }

// Len is the number of items of a List or pairs of a Map.
func (v Value) Len() int {
	switch v.kind {
	case List:
		return len(v.items)
	case Map:
		return len(v.pairs)
	}
	return 0
}

// String renders v in a compact JSON-like form for error messages.
func (v Value) String() string {
	switch v.kind {
	case Number:
		return v.Text()
	case Text:
		return strconv.Quote(v.text)
	case List:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case Map:
		parts := make([]string, len(v.pairs))
		for i, p := range v.pairs {
			parts[i] = fmt.Sprintf("%q:%s", p.Key, p.Value.String())
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	return "null"
}
