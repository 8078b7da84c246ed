package value

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"
)

// ErrUnsupported is returned for Go values that have no Value form.
var ErrUnsupported = errors.New("unsupported value")

// TagName is the struct tag read when a struct is converted into a Map.
// `geemysql:"col"` renames a field, `geemysql:"-"` skips it.
const TagName = "geemysql"

var timeType = reflect.TypeOf(time.Time{})

// From converts a Go value into a Value.
//
// Plain Go maps carry no order, so their keys are sorted; use Pairs, KV
// or a struct when the order of entries matters.
func From(v interface{}) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Nil(), nil
	case Value:
		return x, nil
	case Pair:
		return Pairs(x), nil
	case []Pair:
		return Pairs(x...), nil
	case string:
		return Str(x), nil
	case []byte:
		return Str(string(x)), nil
	case bool:
		if x {
			return Int(1), nil
		}
		return Int(0), nil
	case time.Time:
		return Str(x.Format("2006-01-02 15:04:05")), nil
	case fmt.Stringer:
		if reflect.ValueOf(v).Kind() != reflect.Ptr || !reflect.ValueOf(v).IsNil() {
			return Str(x.String()), nil
		}
	}
	return fromReflect(reflect.ValueOf(v))
}

// MustFrom is like From but panics on error. It is meant for literals
// written in code.
func MustFrom(v interface{}) Value {
	val, err := From(v)
	if err != nil {
		panic(err)
	}
	return val
}

// KV builds an ordered Map from alternating keys and values:
// KV("status", 1, "age >=", 18).
func KV(kv ...interface{}) (Value, error) {
	if len(kv)%2 != 0 {
		return Nil(), fmt.Errorf("%w: odd number of key/value arguments (%d)", ErrUnsupported, len(kv))
	}
	pairs := make([]Pair, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return Nil(), fmt.Errorf("%w: key %v is not a string", ErrUnsupported, kv[i])
		}
		val, err := From(kv[i+1])
		if err != nil {
			return Nil(), err
		}
		pairs = append(pairs, Pair{Key: key, Value: val})
	}
	return Pairs(pairs...), nil
}

// MustKV is like KV but panics on error.
func MustKV(kv ...interface{}) Value {
	val, err := KV(kv...)
	if err != nil {
		panic(err)
	}
	return val
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return Nil(), nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Nil(), nil
		}
		return From(rv.Elem().Interface())
	case reflect.Bool:
		return From(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Nil(), fmt.Errorf("%w: %d overflows int64", ErrUnsupported, u)
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return Str(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Of(), nil
		}
		items := make([]Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := From(rv.Index(i).Interface())
			if err != nil {
				return Nil(), err
			}
			items = append(items, item)
		}
		return Of(items...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Nil(), fmt.Errorf("%w: map key type %s", ErrUnsupported, rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		pairs := make([]Pair, 0, len(keys))
		for _, k := range keys {
			val, err := From(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return Nil(), err
			}
			pairs = append(pairs, Pair{Key: k, Value: val})
		}
		return Pairs(pairs...), nil
	case reflect.Struct:
		return fromStruct(rv)
	}
	return Nil(), fmt.Errorf("%w: %s", ErrUnsupported, rv.Type())
}

// fromStruct maps exported fields to pairs in declaration order, the way a
// record becomes a row of column values.
func fromStruct(rv reflect.Value) (Value, error) {
	if rv.Type() == timeType {
		return From(rv.Interface())
	}
	typ := rv.Type()
	pairs := make([]Pair, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.Anonymous || field.PkgPath != "" {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup(TagName); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		val, err := From(rv.Field(i).Interface())
		if err != nil {
			return Nil(), fmt.Errorf("field %s: %w", field.Name, err)
		}
		pairs = append(pairs, Pair{Key: name, Value: val})
	}
	return Pairs(pairs...), nil
}
