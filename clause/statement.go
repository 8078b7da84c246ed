package clause

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"geemysql/quote"
)

var ErrInvalidLock = errors.New("invalid lock level")

// Statement is a complete SQL statement: SQL for logs, Prepared plus
// Params for execution.
type Statement struct {
	quote.Fragment
}

func statement(parts ...quote.Fragment) Statement {
	return Statement{quote.Join(" ", parts...)}
}

func (s Statement) String() string {
	return s.SQL
}

// Proto encodes the statement as a protobuf Struct so it can be handed to
// an executor in another process. Integer params travel as numbers.
func (s Statement) Proto() (*structpb.Struct, error) {
	params := make([]interface{}, len(s.Params))
	copy(params, s.Params)
	return structpb.NewStruct(map[string]interface{}{
		"sql":      s.SQL,
		"prepared": s.Prepared,
		"params":   params,
	})
}

func (s Statement) MarshalBinary() ([]byte, error) {
	pb, err := s.Proto()
	if err != nil {
		return nil, err
	}
	return proto.Marshal(pb)
}

// UnmarshalStatement decodes MarshalBinary output. Whole numbers come back
// as int64, other numbers as float64.
func UnmarshalStatement(data []byte) (Statement, error) {
	pb := &structpb.Struct{}
	if err := proto.Unmarshal(data, pb); err != nil {
		return Statement{}, err
	}
	fields := pb.GetFields()
	s := Statement{quote.Fragment{
		SQL:      fields["sql"].GetStringValue(),
		Prepared: fields["prepared"].GetStringValue(),
	}}
	for _, p := range fields["params"].GetListValue().GetValues() {
		switch k := p.GetKind().(type) {
		case *structpb.Value_NumberValue:
			if k.NumberValue == math.Trunc(k.NumberValue) && math.Abs(k.NumberValue) < 1<<53 {
				s.Params = append(s.Params, int64(k.NumberValue))
			} else {
				s.Params = append(s.Params, k.NumberValue)
			}
		case *structpb.Value_NullValue:
			s.Params = append(s.Params, nil)
		default:
			s.Params = append(s.Params, p.AsInterface())
		}
	}
	return s, nil
}

// Select builds
// SELECT <fields> FROM <table> <where> <groupBy> <having> <orderBy> [LIMIT off,count].
// table may already carry JOIN clauses.
func Select(table, fields string, where quote.Fragment, groupBy string, having quote.Fragment, orderBy string, limit Limit) Statement {
	return selectStatement("SELECT ", table, fields, where, groupBy, having, orderBy, limit)
}

// Distinct is Select with SELECT DISTINCT.
func Distinct(table, fields string, where quote.Fragment, groupBy string, having quote.Fragment, orderBy string, limit Limit) Statement {
	return selectStatement("SELECT DISTINCT ", table, fields, where, groupBy, having, orderBy, limit)
}

func selectStatement(verb, table, fields string, where quote.Fragment, groupBy string, having quote.Fragment, orderBy string, limit Limit) Statement {
	if fields == "" {
		fields = "*"
	}
	return statement(
		quote.Raw(verb+fields+" FROM "+table),
		where,
		quote.Raw(groupBy),
		having,
		quote.Raw(orderBy),
		limit.Fragment(),
	)
}

// Insert builds INSERT INTO <table>(<fields>) VALUES(<values>).
func Insert(table string, row Row) Statement {
	return insert("INSERT INTO ", table, row)
}

// InsertIgnore skips rows that violate a unique constraint.
func InsertIgnore(table string, row Row) Statement {
	return insert("INSERT IGNORE INTO ", table, row)
}

// Replace replaces rows that violate a unique constraint.
func Replace(table string, row Row) Statement {
	return insert("REPLACE INTO ", table, row)
}

func insert(verb, table string, row Row) Statement {
	return Statement{row.Tuple().Wrap(verb+table+"("+row.Columns()+") VALUES", "")}
}

// InsertRows builds a multi-row INSERT. Every row must list the same
// fields in the same order.
func InsertRows(table string, rows []Row) (Statement, error) {
	if len(rows) == 0 {
		return Statement{}, ErrMissingData
	}
	tuples := make([]quote.Fragment, len(rows))
	for i, row := range rows {
		if !row.sameShape(rows[0]) {
			return Statement{}, fmt.Errorf("%w: row %d fields %v differ from %v", ErrInvalidData, i, row.Fields, rows[0].Fields)
		}
		tuples[i] = row.Tuple()
	}
	values := quote.Join(", ", tuples...)
	return Statement{values.Wrap("INSERT INTO "+table+"("+rows[0].Columns()+") VALUES", "")}, nil
}

// Update builds UPDATE <table> SET <assignments> <where>.
func Update(table string, set []quote.Fragment, where quote.Fragment) (Statement, error) {
	assignments := quote.Join(",", set...)
	if assignments.IsEmpty() {
		return Statement{}, ErrMissingData
	}
	return statement(assignments.Wrap("UPDATE "+table+" SET ", ""), where), nil
}

// Delete builds DELETE FROM <table> <where>.
func Delete(table string, where quote.Fragment) Statement {
	return statement(quote.Raw("DELETE FROM "+table), where)
}

// Exists wraps a query so it returns a single cnt column of 1 or 0.
func Exists(sub quote.Fragment) Statement {
	return Statement{sub.Wrap("SELECT IF(EXISTS(", "),1,0) AS cnt FROM DUAL")}
}

// Count wraps a query so it returns the number of rows as cnt.
func Count(sub quote.Fragment) Statement {
	return Statement{sub.Wrap("SELECT COUNT(*) AS cnt FROM (", ") AS t")}
}

// Describe lists the columns of a table in the current database.
func Describe(table string) (Statement, error) {
	name, err := TableName(table)
	if err != nil {
		return Statement{}, err
	}
	const q = "SELECT * FROM information_schema.columns WHERE table_name = %s AND table_schema = DATABASE()"
	return Statement{quote.Fragment{
		SQL:      fmt.Sprintf(q, quote.String(name)),
		Prepared: fmt.Sprintf(q, quote.Placeholder),
		Params:   []interface{}{name},
	}}, nil
}

func ShowIndex(table string) (Statement, error) {
	t, err := Table(table)
	if err != nil {
		return Statement{}, err
	}
	return Statement{quote.Raw("SHOW INDEX FROM " + t)}, nil
}

func ShowCreateTable(table string) (Statement, error) {
	t, err := Table(table)
	if err != nil {
		return Statement{}, err
	}
	return Statement{quote.Raw("SHOW CREATE TABLE " + t)}, nil
}

// ShowTables lists the base tables of the current database.
func ShowTables() Statement {
	return Statement{quote.Raw("SHOW FULL TABLES WHERE Table_type = 'BASE TABLE'")}
}

// DatabaseInfo lists table names and comments of a database.
func DatabaseInfo(database string) Statement {
	const q = "SELECT table_name, table_comment FROM information_schema.tables WHERE table_schema = %s"
	return Statement{quote.Fragment{
		SQL:      fmt.Sprintf(q, quote.String(database)),
		Prepared: fmt.Sprintf(q, quote.Placeholder),
		Params:   []interface{}{database},
	}}
}

func TableStatus(database string) Statement {
	return Statement{quote.Raw("SHOW TABLE STATUS FROM " + quote.Identifier(database))}
}

// Lock builds LOCK TABLES <table> READ|WRITE. An empty level means WRITE.
func Lock(table, level string) (Statement, error) {
	t, err := Table(table)
	if err != nil {
		return Statement{}, err
	}
	level = strings.ToUpper(strings.TrimSpace(level))
	switch level {
	case "":
		level = "WRITE"
	case "READ", "WRITE", "READ LOCAL", "LOW_PRIORITY WRITE":
	default:
		return Statement{}, fmt.Errorf("%w: %q", ErrInvalidLock, level)
	}
	return Statement{quote.Raw("LOCK TABLES " + t + " " + level)}, nil
}

func Unlock() Statement {
	return Statement{quote.Raw("UNLOCK TABLES")}
}
