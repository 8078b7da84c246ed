package clause

import (
	"errors"
	"fmt"
	"strings"

	"geemysql/quote"
	"geemysql/value"
)

var (
	// ErrMissingData is returned when a write carries no row data at all.
	ErrMissingData = errors.New("missing data")
	ErrInvalidData = errors.New("invalid data")
)

// Row is one record to write: column names and their values, in order.
type Row struct {
	Fields []string
	Values []interface{}
}

// NewRow converts a struct, a map or value.KV pairs into a Row. A nil value
// is stored as an empty string; lists and maps are rejected.
func NewRow(data interface{}) (Row, error) {
	v, err := value.From(data)
	if err != nil {
		return Row{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if v.Kind() == value.Empty || (v.Kind() == value.Map && v.Len() == 0) {
		return Row{}, ErrMissingData
	}
	if v.Kind() != value.Map {
		return Row{}, fmt.Errorf("%w: row must be a mapping of field to value: %s", ErrInvalidData, v)
	}
	var row Row
	for _, p := range v.Pairs() {
		name := strings.TrimSpace(p.Key)
		if !quote.IsIdentifier(strings.Trim(name, quote.Tick)) {
			return Row{}, fmt.Errorf("%w: field name %q", ErrInvalidData, p.Key)
		}
		switch p.Value.Kind() {
		case value.Empty:
			row.Values = append(row.Values, "")
		case value.Number, value.Text:
			row.Values = append(row.Values, p.Value.Scalar())
		default:
			return Row{}, fmt.Errorf("%w: value of %q must be a string or a number: %s", ErrInvalidData, p.Key, p.Value)
		}
		row.Fields = append(row.Fields, strings.Trim(name, quote.Tick))
	}
	return row, nil
}

// Columns is the quoted, comma separated field list.
func (r Row) Columns() string {
	cols := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		cols[i] = quote.Identifier(f)
	}
	return strings.Join(cols, ",")
}

// Tuple renders the values as "(v1,v2)" / "(?,?)".
func (r Row) Tuple() quote.Fragment {
	lits := make([]string, len(r.Values))
	marks := make([]string, len(r.Values))
	for i, v := range r.Values {
		lits[i] = quote.Literal(v)
		marks[i] = quote.Placeholder
	}
	return quote.Fragment{
		SQL:      "(" + strings.Join(lits, ",") + ")",
		Prepared: "(" + strings.Join(marks, ",") + ")",
		Params:   append([]interface{}{}, r.Values...),
	}
}

// Assignments renders one "`field` = ?" fragment per column.
func (r Row) Assignments() ([]quote.Fragment, error) {
	set := make([]quote.Fragment, len(r.Fields))
	for i := range r.Fields {
		f, err := Set(r.Fields[i], r.Values[i])
		if err != nil {
			return nil, err
		}
		set[i] = f
	}
	return set, nil
}

func (r Row) sameShape(o Row) bool {
	if len(r.Fields) != len(o.Fields) {
		return false
	}
	for i := range r.Fields {
		if r.Fields[i] != o.Fields[i] {
			return false
		}
	}
	return true
}

// assignable quotes a field that is about to be written to. Only plain
// identifiers are accepted, an expression here could leave the quotes.
func assignable(field string) (string, error) {
	name := strings.Trim(strings.TrimSpace(field), quote.Tick)
	if !quote.IsIdentifier(name) {
		return "", fmt.Errorf("%w: field name %q", ErrInvalidData, field)
	}
	return quote.Identifier(name), nil
}

// Set is the assignment "`field` = value".
func Set(field string, v interface{}) (quote.Fragment, error) {
	f, err := assignable(field)
	if err != nil {
		return quote.Fragment{}, err
	}
	return quote.Fragment{
		SQL:      f + " = " + quote.Literal(v),
		Prepared: f + " = " + quote.Placeholder,
		Params:   []interface{}{v},
	}, nil
}

// Crease is the assignment "`field` = `field` + diff"; any op other
// than "-" is treated as "+".
func Crease(field, op string, diff interface{}) (quote.Fragment, error) {
	if op != "-" {
		op = "+"
	}
	f, err := assignable(field)
	if err != nil {
		return quote.Fragment{}, err
	}
	return quote.Fragment{
		SQL:      f + " = " + f + " " + op + " " + quote.Literal(diff),
		Prepared: f + " = " + f + " " + op + " " + quote.Placeholder,
		Params:   []interface{}{diff},
	}, nil
}
