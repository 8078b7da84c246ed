package session

import (
	"geemysql/clause"
	"geemysql/config"
	"geemysql/quote"
)

func (s *Session) selectStatement(table string) (clause.Statement, error) {
	from, err := s.from(table)
	if err != nil {
		return clause.Statement{}, err
	}
	typ := clause.SELECT
	if s.distinct {
		typ = clause.DISTINCT
	}
	if err := s.clause.Set(typ, from, s.fields); err != nil {
		return clause.Statement{}, err
	}
	return s.clause.Build(typ, clause.WHERE, clause.GROUPBY, clause.HAVING, clause.ORDERBY, clause.LIMIT), nil
}

/*
s := engine.NewSession("user")
rows, err := s.Fields("id,name").Where(value.MustKV("age >", 18)).OrderBy("id desc").Limit(10).Select()
*/
func (s *Session) Select() ([]map[string]interface{}, error) {
	stmt, db, release, err := s.build(config.Read, s.selectStatement)
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

// Find returns the first matching row, or ErrNotFound. Any Limit set
// before is replaced by a limit of one row.
func (s *Session) Find() (map[string]interface{}, error) {
	rows, err := s.Limit(1).Select()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Count returns the number of matching rows. With GROUP BY or DISTINCT it
// counts the groups.
func (s *Session) Count() (int64, error) {
	stmt, db, release, err := s.build(config.Read, func(table string) (clause.Statement, error) {
		from, err := s.from(table)
		if err != nil {
			return clause.Statement{}, err
		}
		if s.distinct || s.clause.Has(clause.GROUPBY) {
			sub, err := s.selectStatement(table)
			if err != nil {
				return clause.Statement{}, err
			}
			return clause.Count(sub.Fragment), nil
		}
		if err := s.clause.Set(clause.COUNT, from); err != nil {
			return clause.Statement{}, err
		}
		return s.clause.Build(clause.COUNT, clause.WHERE), nil
	})
	if err != nil {
		return 0, err
	}
	defer release()
	logStatement(stmt)
	var cnt int64
	if err := db.QueryRowContext(s.ctx, stmt.Prepared, stmt.Params...).Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

// Exists reports whether any row matches.
func (s *Session) Exists() (bool, error) {
	stmt, db, release, err := s.build(config.Read, func(table string) (clause.Statement, error) {
		sub, err := s.selectStatement(table)
		if err != nil {
			return clause.Statement{}, err
		}
		return clause.Exists(sub.Fragment), nil
	})
	if err != nil {
		return false, err
	}
	defer release()
	logStatement(stmt)
	var cnt int64
	if err := db.QueryRowContext(s.ctx, stmt.Prepared, stmt.Params...).Scan(&cnt); err != nil {
		return false, err
	}
	return cnt == 1, nil
}

type insertFunc func(table string, row clause.Row) clause.Statement

func (s *Session) insert(data interface{}, template insertFunc) (int64, error) {
	stmt, db, release, err := s.build(config.Write, func(table string) (clause.Statement, error) {
		row, err := clause.NewRow(data)
		if err != nil {
			return clause.Statement{}, err
		}
		t, err := clause.Table(table)
		if err != nil {
			return clause.Statement{}, err
		}
		return template(t, row), nil
	})
	if err != nil {
		return 0, err
	}
	defer release()
	result, err := s.exec(stmt, db)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Insert writes one row given as a struct, a map or value.KV pairs and
// returns the new auto increment id.
func (s *Session) Insert(data interface{}) (int64, error) {
	return s.insert(data, clause.Insert)
}

func (s *Session) InsertIgnore(data interface{}) (int64, error) {
	return s.insert(data, clause.InsertIgnore)
}

func (s *Session) Replace(data interface{}) (int64, error) {
	return s.insert(data, clause.Replace)
}

// InsertRows writes rows that all list the same fields in one statement
// and returns the number of rows affected.
func (s *Session) InsertRows(data ...interface{}) (int64, error) {
	stmt, db, release, err := s.build(config.Write, func(table string) (clause.Statement, error) {
		if len(data) == 0 {
			return clause.Statement{}, clause.ErrMissingData
		}
		t, err := clause.Table(table)
		if err != nil {
			return clause.Statement{}, err
		}
		rows := make([]interface{}, len(data))
		for i, d := range data {
			row, err := clause.NewRow(d)
			if err != nil {
				return clause.Statement{}, err
			}
			rows[i] = row
		}
		if err := s.clause.Set(clause.INSERT, t, rows[0]); err != nil {
			return clause.Statement{}, err
		}
		if err := s.clause.Set(clause.VALUES, rows...); err != nil {
			return clause.Statement{}, err
		}
		return s.clause.Build(clause.INSERT, clause.VALUES), nil
	})
	if err != nil {
		return 0, err
	}
	defer release()
	result, err := s.exec(stmt, db)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Update sets the fields of data on the matching rows.
func (s *Session) Update(data interface{}) (int64, error) {
	row, err := clause.NewRow(data)
	if err != nil {
		s.Clear()
		return 0, err
	}
	set, err := row.Assignments()
	if err != nil {
		s.Clear()
		return 0, err
	}
	return s.UpdateSet(set...)
}

// UpdateSet is Update with prepared assignments such as clause.Set and
// clause.Crease.
func (s *Session) UpdateSet(set ...quote.Fragment) (int64, error) {
	stmt, db, release, err := s.build(config.Write, func(table string) (clause.Statement, error) {
		t, err := clause.Table(table)
		if err != nil {
			return clause.Statement{}, err
		}
		vars := make([]interface{}, 0, len(set)+1)
		vars = append(vars, t)
		for _, f := range set {
			vars = append(vars, f)
		}
		if err := s.clause.Set(clause.UPDATE, vars...); err != nil {
			return clause.Statement{}, err
		}
		return s.clause.Build(clause.UPDATE, clause.WHERE), nil
	})
	if err != nil {
		return 0, err
	}
	defer release()
	result, err := s.exec(stmt, db)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Increase adds diff to field on the matching rows.
func (s *Session) Increase(field string, diff interface{}) (int64, error) {
	return s.crease(field, "+", diff)
}

func (s *Session) Decrease(field string, diff interface{}) (int64, error) {
	return s.crease(field, "-", diff)
}

func (s *Session) crease(field, op string, diff interface{}) (int64, error) {
	f, err := clause.Crease(field, op, diff)
	if err != nil {
		s.Clear()
		return 0, err
	}
	return s.UpdateSet(f)
}

// Delete records with where clause
func (s *Session) Delete() (int64, error) {
	stmt, db, release, err := s.build(config.Write, func(table string) (clause.Statement, error) {
		t, err := clause.Table(table)
		if err != nil {
			return clause.Statement{}, err
		}
		if err := s.clause.Set(clause.DELETE, t); err != nil {
			return clause.Statement{}, err
		}
		return s.clause.Build(clause.DELETE, clause.WHERE), nil
	})
	if err != nil {
		return 0, err
	}
	defer release()
	result, err := s.exec(stmt, db)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
