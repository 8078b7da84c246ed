package session

import (
	"database/sql"
	"errors"
	"fmt"

	"geemysql/clause"
	"geemysql/config"
	"geemysql/dialect"
)

// HasTable asks the read connection whether the aliased table exists.
func (s *Session) HasTable() (bool, error) {
	defer s.Clear()
	t, err := s.resolver.Lookup(s.alias, config.Read)
	if err != nil {
		return false, err
	}
	d, ok := dialect.GetDialect(t.Connect.WithDefaults().Driver)
	if !ok {
		return false, fmt.Errorf("dialect %s not found", t.Connect.Driver)
	}
	name, err := clause.TableName(t.Table)
	if err != nil {
		return false, err
	}
	_, db, release, err := s.target(s.alias, config.Read)
	if err != nil {
		return false, err
	}
	defer release()
	// 显然，dialect的TableExistSQL完全是为HasTable而创建的工具接口
	query, args := d.TableExistSQL(name)
	var tmp string
	err = db.QueryRowContext(s.ctx, query, args...).Scan(&tmp)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return tmp == name, nil
}

func (s *Session) inspect(statement func(table string) (clause.Statement, error)) ([]map[string]interface{}, error) {
	stmt, db, release, err := s.build(config.Read, statement)
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

// Describe lists the columns of the table from information_schema.
func (s *Session) Describe() ([]map[string]interface{}, error) {
	return s.inspect(clause.Describe)
}

func (s *Session) ShowIndex() ([]map[string]interface{}, error) {
	return s.inspect(clause.ShowIndex)
}

func (s *Session) ShowCreateTable() (string, error) {
	rows, err := s.inspect(clause.ShowCreateTable)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", ErrNotFound
	}
	ddl, _ := rows[0]["Create Table"].(string)
	return ddl, nil
}
