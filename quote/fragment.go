package quote

import "strings"

// Fragment is one compiled piece of SQL in two renderings: SQL carries the
// escaped literal values for logs and inspection, Prepared carries "?"
// placeholders bound to Params in order. Both share the same shape.
type Fragment struct {
	SQL      string
	Prepared string
	Params   []interface{}
}

// Raw wraps caller-certified SQL that carries no parameters.
func Raw(s string) Fragment {
	return Fragment{SQL: s, Prepared: s}
}

func (f Fragment) IsEmpty() bool {
	return f.SQL == "" && f.Prepared == ""
}

// Wrap surrounds both renderings with the given text.
func (f Fragment) Wrap(before, after string) Fragment {
	if f.IsEmpty() {
		return f
	}
	return Fragment{
		SQL:      before + f.SQL + after,
		Prepared: before + f.Prepared + after,
		Params:   f.Params,
	}
}

// Interpolated is Prepared with its params substituted.
func (f Fragment) Interpolated() string {
	return Interpolate(f.Prepared, f.Params)
}

// Join concatenates the non-empty fragments with sep. Params are appended
// in the same left-to-right order so placeholder positions stay aligned.
func Join(sep string, frags ...Fragment) Fragment {
	var sqls, prepared []string
	params := make([]interface{}, 0)
	for _, f := range frags {
		if f.IsEmpty() {
			continue
		}
		sqls = append(sqls, f.SQL)
		prepared = append(prepared, f.Prepared)
		params = append(params, f.Params...)
	}
	return Fragment{
		SQL:      strings.Join(sqls, sep),
		Prepared: strings.Join(prepared, sep),
		Params:   params,
	}
}
