package session

import (
	"database/sql"
	"fmt"
	"strings"

	"geemysql/clause"
	"geemysql/config"
	"geemysql/log"
)

// target resolves alias for mode and returns the table name with the
// connection to run on. release gives the connection back to the cache
// and must be called once the statement is done.
func (s *Session) target(alias string, mode config.Mode) (table string, db CommonDB, release func(), err error) {
	t, err := s.resolver.Lookup(alias, mode)
	if err != nil {
		return "", nil, nil, err
	}
	if s.conn != nil {
		return t.Table, s.conn, func() {}, nil
	}
	h, err := s.cache.Acquire(s.ctx, t.Connect, 0)
	if err != nil {
		return "", nil, nil, err
	}
	return t.Table, h.DB, h.Release, nil
}

// route picks the alias a hand written statement runs under. The session
// alias wins when the statement names its table, or names none; otherwise
// the first named table is looked up as an alias of its own.
func (s *Session) route(tables []string, mode config.Mode) string {
	if len(tables) == 0 {
		return s.alias
	}
	own, err := s.resolver.Lookup(s.alias, mode)
	if err == nil {
		for _, name := range tables {
			if strings.EqualFold(name, own.Table) {
				return s.alias
			}
		}
	}
	if _, err := s.resolver.Lookup(tables[0], mode); err != nil {
		log.Debugf("no connection for %s, run on %s: %v", tables[0], s.alias, err)
		return s.alias
	}
	log.Debugf("statement on %v runs on %s", tables, tables[0])
	return tables[0]
}

func logStatement(stmt clause.Statement) {
	log.Info(stmt.SQL)
	if log.DebugEnabled() {
		log.Debugf("%s %v", stmt.Prepared, stmt.Params)
	}
}

// build assembles one statement for the table the session alias resolves
// to in mode. The builder state is cleared whatever the outcome. On
// success the caller must call release after running the statement.
func (s *Session) build(mode config.Mode, assemble func(table string) (clause.Statement, error)) (clause.Statement, CommonDB, func(), error) {
	return s.buildOn(s.alias, mode, assemble)
}

func (s *Session) buildOn(alias string, mode config.Mode, assemble func(table string) (clause.Statement, error)) (clause.Statement, CommonDB, func(), error) {
	defer s.Clear()
	if s.err != nil {
		return clause.Statement{}, nil, nil, s.err
	}
	table, db, release, err := s.target(alias, mode)
	if err != nil {
		return clause.Statement{}, nil, nil, err
	}
	stmt, err := assemble(table)
	if err != nil {
		release()
		return clause.Statement{}, nil, nil, err
	}
	return stmt, db, release, nil
}

func (s *Session) exec(stmt clause.Statement, db CommonDB) (sql.Result, error) {
	logStatement(stmt)
	result, err := db.ExecContext(s.ctx, stmt.Prepared, stmt.Params...)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	return result, nil
}

func (s *Session) query(stmt clause.Statement, db CommonDB) (*sql.Rows, error) {
	logStatement(stmt)
	rows, err := db.QueryContext(s.ctx, stmt.Prepared, stmt.Params...)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	return rows, nil
}

// Raw runs a hand written read statement. The statement must start with
// SELECT, SHOW, DESC and the like. It runs on the read connection of the
// session's alias unless it only reads tables configured elsewhere.
func (s *Session) Raw(query string, args ...interface{}) ([]map[string]interface{}, error) {
	tables, err := clause.TablesFromQuery(query)
	if err != nil {
		s.Clear()
		return nil, err
	}
	stmt, db, release, err := s.buildOn(s.route(tables, config.Read), config.Read, func(string) (clause.Statement, error) {
		return rawStatement(query, args), nil
	})
	if err != nil {
		return nil, err
	}
	defer release()
	rows, err := s.query(stmt, db)
	if err != nil {
		return nil, err
	}
	return scanMaps(rows)
}

// Exec runs a hand written INSERT, REPLACE, UPDATE or DELETE on the write
// connection of the table it writes, falling back to the session's alias.
func (s *Session) Exec(query string, args ...interface{}) (sql.Result, error) {
	tables, err := clause.TablesFromExecute(query)
	if err != nil {
		s.Clear()
		return nil, err
	}
	stmt, db, release, err := s.buildOn(s.route(tables, config.Write), config.Write, func(string) (clause.Statement, error) {
		return rawStatement(query, args), nil
	})
	if err != nil {
		return nil, err
	}
	defer release()
	return s.exec(stmt, db)
}

func rawStatement(query string, args []interface{}) clause.Statement {
	var stmt clause.Statement
	stmt.Prepared = query
	stmt.Params = args
	stmt.SQL = stmt.Interpolated()
	return stmt
}

// scanMaps reads every row into a column -> value map. Text and blob
// columns come back as string.
func scanMaps(rows *sql.Rows) ([]map[string]interface{}, error) {
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	result := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return result, nil
}
