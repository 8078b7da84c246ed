package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"geemysql/clause"
	"geemysql/quote"
)

type output struct {
	SQL      string        `json:"sql" yaml:"sql"`
	Prepared string        `json:"prepared" yaml:"prepared"`
	Params   []interface{} `json:"params" yaml:"params"`
}

func writeStatement(w io.Writer, format string, stmt clause.Statement) error {
	out := output{SQL: stmt.SQL, Prepared: stmt.Prepared, Params: stmt.Params}
	if out.Params == nil {
		out.Params = []interface{}{}
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(out)
	case "proto":
		data, err := stmt.MarshalBinary()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	params := make([]string, len(out.Params))
	for i, p := range out.Params {
		params[i] = quote.Literal(p)
	}
	label := color.New(color.FgCyan).SprintFunc()
	_, err := fmt.Fprintf(w, "%s %s\n%s %s\n%s [%s]\n",
		label("sql:     "), out.SQL,
		label("prepared:"), out.Prepared,
		label("params:  "), strings.Join(params, ", "))
	return err
}
