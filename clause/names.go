package clause

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrUnsupportedStatement = errors.New("unsupported statement")

var (
	leadingVerb = regexp.MustCompile(`^\s*(\w+)\b`)
	// FROM a, b ... / JOIN c
	queryTables = regexp.MustCompile("(?i)\\bfrom\\s+([\\w`.]+(?:\\s*,\\s*[\\w`.]+)*)|\\bjoin\\s+([\\w`.]+)")
	// INSERT [INTO] a / REPLACE [INTO] a / DELETE FROM a / UPDATE a
	executeTables = regexp.MustCompile("(?i)\\b(?:insert|replace)\\s+(?:ignore\\s+)?(?:into\\s+)?([\\w`.]+)|\\bdelete\\s+from\\s+([\\w`.]+)|\\bupdate\\s+([\\w`.]+)")
)

var (
	queryVerbs   = map[string]bool{"select": true, "show": true, "desc": true, "describe": true, "repair": true, "optimize": true, "call": true}
	executeVerbs = map[string]bool{"insert": true, "update": true, "delete": true, "replace": true}
)

func verb(sql string) (string, error) {
	m := leadingVerb.FindStringSubmatch(sql)
	if m == nil {
		return "", fmt.Errorf("%w: no leading keyword in %q", ErrUnsupportedStatement, sql)
	}
	return strings.ToLower(m[1]), nil
}

// TablesFromQuery returns the tables named after FROM and JOIN in a read
// statement, back-ticks removed, in order of appearance.
func TablesFromQuery(sql string) ([]string, error) {
	v, err := verb(sql)
	if err != nil {
		return nil, err
	}
	if !queryVerbs[v] {
		return nil, fmt.Errorf("%w: %q is not a query", ErrUnsupportedStatement, v)
	}
	var names []string
	for _, m := range queryTables.FindAllStringSubmatch(sql, -1) {
		if m[1] != "" {
			for _, name := range strings.Split(m[1], ",") {
				names = append(names, untick(name))
			}
		}
		if m[2] != "" {
			names = append(names, untick(m[2]))
		}
	}
	return names, nil
}

// TablesFromExecute returns the table written by an INSERT, REPLACE,
// UPDATE or DELETE statement.
func TablesFromExecute(sql string) ([]string, error) {
	v, err := verb(sql)
	if err != nil {
		return nil, err
	}
	if !executeVerbs[v] {
		return nil, fmt.Errorf("%w: %q is not a write", ErrUnsupportedStatement, v)
	}
	// only the leading target counts: "ON DUPLICATE KEY UPDATE a" names no table
	if m := executeTables.FindStringSubmatch(sql); m != nil {
		for _, name := range m[1:] {
			if name != "" {
				return []string{untick(name)}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no table in %q", ErrUnsupportedStatement, sql)
}

func untick(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "`", "")
}
