package dialect

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"
)

// sqlite3 runs the assembled MySQL statements locally, without a server.
// Database is the file path, ":memory:" or empty for a private in-memory
// database.
type sqlite3Dialect struct{}

// driver name of sqlite3 with the MySQL helpers below installed
const sqlite3Driver = "sqlite3_geemysql"

func init() {
	// 每个新连接上补齐MySQL语句用到的IF()函数和DUAL表
	sql.Register(sqlite3Driver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if err := conn.RegisterFunc("if", mysqlIf, true); err != nil {
				return err
			}
			_, err := conn.Exec("CREATE TEMP VIEW IF NOT EXISTS dual AS SELECT 'X' AS dummy", nil)
			return err
		},
	})
	RegisterDialect("sqlite3", &sqlite3Dialect{})
}

func mysqlIf(cond bool, then, otherwise int64) int64 {
	if cond {
		return then
	}
	return otherwise
}

func (s *sqlite3Dialect) DriverName() string {
	return sqlite3Driver
}

func (s *sqlite3Dialect) DSN(info ConnectInfo) string {
	if info.Database == "" {
		return ":memory:"
	}
	return info.Database
}

// 每个内存数据库只属于一个连接，所以连接池只保留一个连接
func (s *sqlite3Dialect) Configure(db *sql.DB, info ConnectInfo) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)
}

func (s *sqlite3Dialect) TableExistSQL(tableName string) (string, []interface{}) {
	args := []interface{}{tableName}
	return "SELECT name FROM sqlite_master WHERE type='table' and name = ?", args
}
