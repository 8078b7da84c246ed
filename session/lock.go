package session

import (
	"database/sql"
	"errors"

	"geemysql/clause"
	"geemysql/config"
	"geemysql/log"
)

const (
	autocommitOff = "SET autocommit=0"
	autocommitOn  = "SET autocommit=1"
)

var ErrAlreadyLocked = errors.New("session already holds a table lock")

// Lock issues LOCK TABLES <table> <level> on the write connection with
// autocommit off. LOCK TABLES holds for one connection only, so the
// session keeps that connection and runs every statement on it until
// Unlock.
func (s *Session) Lock(level string) error {
	if s.conn != nil {
		s.Clear()
		return ErrAlreadyLocked
	}
	stmt, db, release, err := s.build(config.Write, func(table string) (clause.Statement, error) {
		return clause.Lock(table, level)
	})
	if err != nil {
		return err
	}
	pool, ok := db.(*sql.DB)
	if !ok {
		release()
		return errors.New("lock needs a connection pool")
	}
	conn, err := pool.Conn(s.ctx)
	if err != nil {
		release()
		return err
	}
	if _, err := conn.ExecContext(s.ctx, autocommitOff); err != nil {
		log.Error(err)
		conn.Close()
		release()
		return err
	}
	logStatement(stmt)
	if _, err := conn.ExecContext(s.ctx, stmt.Prepared); err != nil {
		log.Error(err)
		_, _ = conn.ExecContext(s.ctx, autocommitOn)
		conn.Close()
		release()
		return err
	}
	s.conn = conn
	// 持锁期间连接池不能被缓存关闭
	s.release = release
	return nil
}

// Unlock releases the table lock, turns autocommit back on and returns
// the reserved connection to the pool.
func (s *Session) Unlock() error {
	if s.conn == nil {
		return ErrNotLocked
	}
	conn, release := s.conn, s.release
	s.conn, s.release = nil, nil
	defer release()
	defer conn.Close()

	stmt := clause.Unlock()
	logStatement(stmt)
	_, err := conn.ExecContext(s.ctx, stmt.Prepared)
	if _, e := conn.ExecContext(s.ctx, autocommitOn); err == nil {
		err = e
	}
	if err != nil {
		log.Error(err)
	}
	return err
}

// Locked reports whether the session holds a table lock.
func (s *Session) Locked() bool {
	return s.conn != nil
}
