package session

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"geemysql/clause"
	"geemysql/config"
	"geemysql/conncache"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNotLocked = errors.New("table is not locked by this session")
)

// Resolver maps a table alias to its table name and connection.
// *config.Config implements it.
type Resolver interface {
	Lookup(alias string, mode config.Mode) (config.Target, error)
}

// CommonDB is the part of *sql.DB and *sql.Conn a session runs
// statements on.
type CommonDB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	_ CommonDB = (*sql.DB)(nil)
	_ CommonDB = (*sql.Conn)(nil)
)

// Session 只对应一个表别名
//
// 查询条件等子句通过链式调用设置，第一个出错的调用之后的设置都被忽略，
// 错误在执行时返回。每次执行之后子句被清空。
type Session struct {
	ctx      context.Context
	cache    *conncache.Cache
	resolver Resolver
	alias    string

	fields   interface{}
	distinct bool
	joins    []string
	clause   clause.Clause
	err      error

	// LOCK TABLES 期间独占的连接，release在Unlock时归还它所属的缓存连接
	conn    *sql.Conn
	release func()
}

func New(cache *conncache.Cache, resolver Resolver, alias string) *Session {
	return &Session{
		ctx:      context.Background(),
		cache:    cache,
		resolver: resolver,
		alias:    alias,
	}
}

// WithContext sets the context of the statements run afterwards.
func (s *Session) WithContext(ctx context.Context) *Session {
	s.ctx = ctx
	return s
}

func (s *Session) Alias() string {
	return s.alias
}

// Err is the first error of the builder calls since the last execution.
func (s *Session) Err() error {
	return s.err
}

// Clear drops everything set since the last execution.
func (s *Session) Clear() {
	s.fields = nil
	s.distinct = false
	s.joins = nil
	s.clause = clause.Clause{}
	s.err = nil
}

func (s *Session) set(typ clause.Type, vars ...interface{}) *Session {
	if s.err == nil {
		s.err = s.clause.Set(typ, vars...)
	}
	return s
}

func (s *Session) Fields(fields interface{}) *Session {
	s.fields = fields
	return s
}

func (s *Session) Distinct() *Session {
	s.distinct = true
	return s
}

func (s *Session) Where(cond interface{}) *Session {
	return s.set(clause.WHERE, cond)
}

func (s *Session) Having(cond interface{}) *Session {
	return s.set(clause.HAVING, cond)
}

func (s *Session) GroupBy(spec interface{}) *Session {
	return s.set(clause.GROUPBY, spec)
}

func (s *Session) OrderBy(spec interface{}) *Session {
	return s.set(clause.ORDERBY, spec)
}

func (s *Session) Limit(limit interface{}) *Session {
	return s.set(clause.LIMIT, limit)
}

// Join adds "<DIR> JOIN target ON relation"; see clause.Join.
func (s *Session) Join(direction string, target, relation interface{}) *Session {
	if s.err != nil {
		return s
	}
	join, err := clause.Join(direction, target, relation)
	if err != nil {
		s.err = err
		return s
	}
	s.joins = append(s.joins, join)
	return s
}

func (s *Session) LeftJoin(target, relation interface{}) *Session {
	return s.Join("left", target, relation)
}

func (s *Session) InnerJoin(target, relation interface{}) *Session {
	return s.Join("inner", target, relation)
}

// from is the quoted table followed by the joins.
func (s *Session) from(table string) (string, error) {
	t, err := clause.Table(table)
	if err != nil {
		return "", err
	}
	if len(s.joins) == 0 {
		return t, nil
	}
	return t + " " + strings.Join(s.joins, " "), nil
}
