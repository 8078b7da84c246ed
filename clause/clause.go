package clause

/*
先分别生成各个子句，最后按顺序拼接成完整的语句。
每个子句同时保存展示用的SQL和带占位符的SQL以及参数。
*/

import (
	"errors"
	"fmt"

	"geemysql/condition"
	"geemysql/order"
	"geemysql/quote"
)

var ErrInvalidClause = errors.New("invalid clause arguments")

type Type int

const (
	INSERT Type = iota
	VALUES
	SELECT
	DISTINCT
	COUNT
	UPDATE
	DELETE
	WHERE
	GROUPBY
	HAVING
	ORDERBY
	LIMIT
)

var typeNames = [...]string{"INSERT", "VALUES", "SELECT", "DISTINCT", "COUNT", "UPDATE", "DELETE", "WHERE", "GROUPBY", "HAVING", "ORDERBY", "LIMIT"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Clause collects the compiled sub clauses of one statement. Setting a
// type twice replaces the earlier fragment.
type Clause struct {
	frags map[Type]quote.Fragment
}

// Set compiles vars with the generator of typ. Nothing is stored when
// compilation fails.
func (c *Clause) Set(typ Type, vars ...interface{}) error {
	gen, ok := generators[typ]
	if !ok {
		return fmt.Errorf("%w: unknown clause %s", ErrInvalidClause, typ)
	}
	frag, err := gen(vars...)
	if err != nil {
		return err
	}
	if c.frags == nil {
		c.frags = make(map[Type]quote.Fragment)
	}
	c.frags[typ] = frag
	return nil
}

// Has reports whether typ has been set.
func (c *Clause) Has(typ Type) bool {
	_, ok := c.frags[typ]
	return ok
}

// Build joins the fragments of typs in the given order with single
// spaces; unset and empty ones are skipped.
func (c *Clause) Build(typs ...Type) Statement {
	frags := make([]quote.Fragment, 0, len(typs))
	for _, typ := range typs {
		if frag, ok := c.frags[typ]; ok {
			frags = append(frags, frag)
		}
	}
	return statement(frags...)
}

type generator func(vars ...interface{}) (quote.Fragment, error)

var generators map[Type]generator

func init() {
	generators = map[Type]generator{
		INSERT:   genInsert,
		VALUES:   genValues,
		SELECT:   genSelect("SELECT "),
		DISTINCT: genSelect("SELECT DISTINCT "),
		COUNT:    genCount,
		UPDATE:   genUpdate,
		DELETE:   genDelete,
		WHERE:    genWhere,
		GROUPBY:  genSort(order.GroupBy),
		HAVING:   genHaving,
		ORDERBY:  genSort(order.OrderBy),
		LIMIT:    genLimit,
	}
}

func arity(typ Type, vars []interface{}, n int) error {
	if len(vars) != n {
		return fmt.Errorf("%w: %s takes %d arguments, got %d", ErrInvalidClause, typ, n, len(vars))
	}
	return nil
}

func text(typ Type, v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidClause, typ, v)
	}
	return s, nil
}

// INSERT table, Row
func genInsert(vars ...interface{}) (quote.Fragment, error) {
	if err := arity(INSERT, vars, 2); err != nil {
		return quote.Fragment{}, err
	}
	table, err := text(INSERT, vars[0])
	if err != nil {
		return quote.Fragment{}, err
	}
	row, ok := vars[1].(Row)
	if !ok {
		return quote.Fragment{}, fmt.Errorf("%w: INSERT expects a Row, got %T", ErrInvalidClause, vars[1])
	}
	return quote.Raw("INSERT INTO " + table + "(" + row.Columns() + ")"), nil
}

// VALUES Row, Row...
func genValues(vars ...interface{}) (quote.Fragment, error) {
	if len(vars) == 0 {
		return quote.Fragment{}, ErrMissingData
	}
	tuples := make([]quote.Fragment, len(vars))
	var first Row
	for i, v := range vars {
		row, ok := v.(Row)
		if !ok {
			return quote.Fragment{}, fmt.Errorf("%w: VALUES expects Rows, got %T", ErrInvalidClause, v)
		}
		if i == 0 {
			first = row
		} else if !row.sameShape(first) {
			return quote.Fragment{}, fmt.Errorf("%w: row %d fields %v differ from %v", ErrInvalidData, i, row.Fields, first.Fields)
		}
		tuples[i] = row.Tuple()
	}
	return quote.Join(", ", tuples...).Wrap("VALUES", ""), nil
}

// SELECT table, fields
func genSelect(verb string) generator {
	return func(vars ...interface{}) (quote.Fragment, error) {
		if err := arity(SELECT, vars, 2); err != nil {
			return quote.Fragment{}, err
		}
		table, err := text(SELECT, vars[0])
		if err != nil {
			return quote.Fragment{}, err
		}
		fields, err := Fields(vars[1])
		if err != nil {
			return quote.Fragment{}, err
		}
		return quote.Raw(verb + fields + " FROM " + table), nil
	}
}

// COUNT table
func genCount(vars ...interface{}) (quote.Fragment, error) {
	if err := arity(COUNT, vars, 1); err != nil {
		return quote.Fragment{}, err
	}
	table, err := text(COUNT, vars[0])
	if err != nil {
		return quote.Fragment{}, err
	}
	return quote.Raw("SELECT COUNT(*) AS cnt FROM " + table), nil
}

// UPDATE table, assignment fragments...
func genUpdate(vars ...interface{}) (quote.Fragment, error) {
	if len(vars) < 1 {
		return quote.Fragment{}, fmt.Errorf("%w: UPDATE needs a table", ErrInvalidClause)
	}
	table, err := text(UPDATE, vars[0])
	if err != nil {
		return quote.Fragment{}, err
	}
	set := make([]quote.Fragment, 0, len(vars)-1)
	for _, v := range vars[1:] {
		f, ok := v.(quote.Fragment)
		if !ok {
			return quote.Fragment{}, fmt.Errorf("%w: UPDATE expects assignments, got %T", ErrInvalidClause, v)
		}
		set = append(set, f)
	}
	assignments := quote.Join(",", set...)
	if assignments.IsEmpty() {
		return quote.Fragment{}, ErrMissingData
	}
	return assignments.Wrap("UPDATE "+table+" SET ", ""), nil
}

// DELETE table
func genDelete(vars ...interface{}) (quote.Fragment, error) {
	if err := arity(DELETE, vars, 1); err != nil {
		return quote.Fragment{}, err
	}
	table, err := text(DELETE, vars[0])
	if err != nil {
		return quote.Fragment{}, err
	}
	return quote.Raw("DELETE FROM " + table), nil
}

func genWhere(vars ...interface{}) (quote.Fragment, error) {
	if err := arity(WHERE, vars, 1); err != nil {
		return quote.Fragment{}, err
	}
	return condition.Where(vars[0])
}

func genHaving(vars ...interface{}) (quote.Fragment, error) {
	if err := arity(HAVING, vars, 1); err != nil {
		return quote.Fragment{}, err
	}
	return condition.Having(vars[0])
}

func genSort(prefix string) generator {
	return func(vars ...interface{}) (quote.Fragment, error) {
		if len(vars) != 1 {
			return quote.Fragment{}, fmt.Errorf("%w: %s takes 1 argument, got %d", ErrInvalidClause, prefix, len(vars))
		}
		s, err := order.Compile(vars[0], prefix)
		if err != nil {
			return quote.Fragment{}, err
		}
		return quote.Raw(s), nil
	}
}

func genLimit(vars ...interface{}) (quote.Fragment, error) {
	if err := arity(LIMIT, vars, 1); err != nil {
		return quote.Fragment{}, err
	}
	if l, ok := vars[0].(Limit); ok {
		return l.Fragment(), nil
	}
	l, err := ParseLimit(vars[0])
	if err != nil {
		return quote.Fragment{}, err
	}
	return l.Fragment(), nil
}
