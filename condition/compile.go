package condition

import (
	"strings"

	"geemysql/quote"
	"geemysql/value"
)

// Compile turns a loosely structured condition into a fragment joined with
// AND at the top level. Accepted shapes:
//
//	nil, "", 0, empty list/map   no condition
//	42                           id = 42
//	"a > 1 OR b < 2"             verbatim SQL, no params
//	{"status": [1,2], "age >=": 18, ...}
//	[{"a": 1}, [{"b": 2}, {"c": 3}]]   `a`=1 AND (`b`=2 OR `c`=3)
//
// A nested list switches between AND and OR at each level.
func Compile(cond interface{}) (quote.Fragment, error) {
	return CompileWith(cond, AND)
}

// CompileWith is Compile with an explicit top-level connective.
func CompileWith(cond interface{}, op Connective) (quote.Fragment, error) {
	v, err := value.From(cond)
	if err != nil {
		return quote.Fragment{}, invalid("%v", err)
	}
	node, err := Parse(v, op)
	if err != nil || node == nil {
		return quote.Fragment{}, err
	}
	return node.Fragment(), nil
}

// Where compiles cond into a clause starting with WHERE, or an empty
// fragment when there is no condition.
func Where(cond interface{}) (quote.Fragment, error) {
	return prefixed("WHERE", cond)
}

// Having is Where for the HAVING clause.
func Having(cond interface{}) (quote.Fragment, error) {
	return prefixed("HAVING", cond)
}

func prefixed(keyword string, cond interface{}) (quote.Fragment, error) {
	f, err := Compile(cond)
	if err != nil || f.IsEmpty() {
		return quote.Fragment{}, err
	}
	f.SQL = strings.TrimSpace(f.SQL)
	f.Prepared = strings.TrimSpace(f.Prepared)
	if hasKeyword(f.SQL, keyword) {
		return f, nil
	}
	return f.Wrap(keyword+" ", ""), nil
}

func hasKeyword(s, keyword string) bool {
	if len(s) < len(keyword) || !strings.EqualFold(s[:len(keyword)], keyword) {
		return false
	}
	return len(s) == len(keyword) || s[len(keyword)] == ' ' || s[len(keyword)] == '\t' || s[len(keyword)] == '\n'
}

func (t *Tree) Fragment() quote.Fragment {
	frags := make([]quote.Fragment, 0, len(t.Children))
	for _, c := range t.Children {
		f := c.Fragment()
		if _, nested := c.(*Tree); nested {
			f = f.Wrap("(", ")")
		}
		frags = append(frags, f)
	}
	return quote.Join(" "+string(t.Operator)+" ", frags...)
}

func (t *Tree) String() string {
	return t.Fragment().SQL
}

func (r Raw) Fragment() quote.Fragment {
	return quote.Raw(string(r))
}

func (id PrimaryKey) Fragment() quote.Fragment {
	return quote.Fragment{
		SQL:      "id = " + quote.Literal(int64(id)),
		Prepared: "id = " + quote.Placeholder,
		Params:   []interface{}{int64(id)},
	}
}

func (c *Comparison) Fragment() quote.Fragment {
	field := quote.Field(c.Field)
	switch c.Op {
	case IN, NOTIN:
		// IN () is not valid SQL; an empty set is constant
		if len(c.Values) == 0 {
			if c.Op == IN {
				return quote.Raw("FALSE")
			}
			return quote.Raw("TRUE")
		}
		lits, marks, params := bind(c.Values)
		return quote.Fragment{
			SQL:      field + " " + c.Token + " (" + strings.Join(lits, ",") + ")",
			Prepared: field + " " + c.Token + " (" + strings.Join(marks, ",") + ")",
			Params:   params,
		}
	case BETWEEN, NOTBETWEEN:
		lits, marks, params := bind(c.Values)
		return quote.Fragment{
			SQL:      field + " " + c.Token + " " + lits[0] + " AND " + lits[1],
			Prepared: field + " " + c.Token + " " + marks[0] + " AND " + marks[1],
			Params:   params,
		}
	case ISNULL, ISNOTNULL:
		return quote.Raw(field + " " + c.Token)
	}
	lits, marks, params := bind(c.Values[:1])
	sep := " " + c.Token + " "
	if c.Compact {
		sep = c.Token
	}
	return quote.Fragment{
		SQL:      field + sep + lits[0],
		Prepared: field + sep + marks[0],
		Params:   params,
	}
}

func bind(values []value.Value) (lits, marks []string, params []interface{}) {
	for _, v := range values {
		p := v.Scalar()
		lits = append(lits, quote.Literal(p))
		marks = append(marks, quote.Placeholder)
		params = append(params, p)
	}
	return lits, marks, params
}
