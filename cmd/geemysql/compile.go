package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"geemysql/clause"
	"geemysql/config"
	"geemysql/log"
	"geemysql/value"
)

var errInvalidDocument = errors.New("invalid query document")

// 查询文档支持的字段
var documentKeys = map[string]bool{
	"table": true, "fields": true, "distinct": true, "join": true,
	"where": true, "group": true, "having": true, "order": true, "limit": true,
}

type compileOptions struct {
	*rootOptions
	File string
	As   string
}

func newCompileCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &compileOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a query document into a SELECT statement",
		Long: `Compile a YAML or JSON query document into display SQL, prepared SQL
and the parameter list. The document is a mapping of

  table, fields, distinct, join, where, group, having, order, limit

where join is a list of {type, table, on}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "-", "query document, - for stdin")
	cmd.Flags().StringVar(&opts.As, "as", "select", "statement to build (select|count|exists)")
	return cmd
}

func runCompile(opts *compileOptions, cmd *cobra.Command) error {
	var data []byte
	var err error
	if opts.File == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = afero.ReadFile(config.AppFs, opts.File)
	}
	if err != nil {
		return err
	}
	doc, err := value.ParseYAML(data)
	if err != nil {
		return err
	}
	log.Debugf("document %s", doc)
	stmt, err := buildStatement(doc, opts.As)
	if err != nil {
		return err
	}
	return writeStatement(cmd.OutOrStdout(), opts.Format, stmt)
}

func buildStatement(doc value.Value, as string) (clause.Statement, error) {
	if doc.Kind() != value.Map {
		return clause.Statement{}, fmt.Errorf("%w: expected a mapping, got %s", errInvalidDocument, doc)
	}
	parts := make(map[string]value.Value, doc.Len())
	for _, p := range doc.Pairs() {
		key := strings.ToLower(strings.TrimSpace(p.Key))
		if !documentKeys[key] {
			return clause.Statement{}, fmt.Errorf("%w: unknown key %q, expected one of %s", errInvalidDocument, p.Key, knownKeys())
		}
		parts[key] = p.Value
	}

	if parts["table"].Kind() != value.Text {
		return clause.Statement{}, fmt.Errorf("%w: table must be a string", errInvalidDocument)
	}
	from, err := clause.Table(parts["table"].Text())
	if err != nil {
		return clause.Statement{}, err
	}
	joins, err := compileJoins(parts["join"])
	if err != nil {
		return clause.Statement{}, err
	}
	for _, j := range joins {
		from += " " + j
	}

	typ := clause.SELECT
	if !parts["distinct"].Falsy() {
		typ = clause.DISTINCT
	}
	var c clause.Clause
	for _, set := range []struct {
		typ  clause.Type
		vars []interface{}
	}{
		{typ, []interface{}{from, parts["fields"]}},
		{clause.WHERE, []interface{}{parts["where"]}},
		{clause.GROUPBY, []interface{}{parts["group"]}},
		{clause.HAVING, []interface{}{parts["having"]}},
		{clause.ORDERBY, []interface{}{parts["order"]}},
		{clause.LIMIT, []interface{}{parts["limit"]}},
	} {
		if err := c.Set(set.typ, set.vars...); err != nil {
			return clause.Statement{}, err
		}
	}
	stmt := c.Build(typ, clause.WHERE, clause.GROUPBY, clause.HAVING, clause.ORDERBY, clause.LIMIT)

	switch strings.ToLower(as) {
	case "", "select":
		return stmt, nil
	case "count":
		return clause.Count(stmt.Fragment), nil
	case "exists":
		return clause.Exists(stmt.Fragment), nil
	}
	return clause.Statement{}, fmt.Errorf("unknown statement %q, expected select, count or exists", as)
}

// compileJoins accepts one {type, table, on} mapping or a list of them.
// type defaults to left.
func compileJoins(v value.Value) ([]string, error) {
	var items []value.Value
	switch v.Kind() {
	case value.Empty:
		return nil, nil
	case value.Map:
		items = []value.Value{v}
	case value.List:
		items = v.Items()
	default:
		return nil, fmt.Errorf("%w: join must be a mapping or a list: %s", errInvalidDocument, v)
	}

	joins := make([]string, 0, len(items))
	for _, item := range items {
		if item.Kind() != value.Map {
			return nil, fmt.Errorf("%w: join entry must be a mapping: %s", errInvalidDocument, item)
		}
		direction, target, on := "left", value.Nil(), value.Nil()
		for _, p := range item.Pairs() {
			switch strings.ToLower(p.Key) {
			case "type":
				direction = p.Value.Text()
			case "table":
				target = p.Value
			case "on":
				on = p.Value
			default:
				return nil, fmt.Errorf("%w: unknown join key %q", errInvalidDocument, p.Key)
			}
		}
		j, err := clause.Join(direction, target, on)
		if err != nil {
			return nil, err
		}
		joins = append(joins, j)
	}
	return joins, nil
}

func knownKeys() string {
	keys := make([]string, 0, len(documentKeys))
	for k := range documentKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
