package dialect

import (
	"database/sql"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

type mysqlDialect struct{}

var _ Dialect = (*mysqlDialect)(nil)

func init() {
	RegisterDialect("mysql", &mysqlDialect{})
}

func (m *mysqlDialect) DriverName() string {
	return "mysql"
}

// DSN 会话属性:
// utf8mb4字符集, 自动提交, 服务端预处理(不在客户端拼接参数),
// 时间类型解析为time.Time, 连接与读写超时均为info.Timeout
func (m *mysqlDialect) DSN(info ConnectInfo) string {
	info = info.WithDefaults()
	cfg := mysql.NewConfig()
	cfg.User = info.User
	cfg.Passwd = info.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(info.Host, strconv.Itoa(info.Port))
	cfg.DBName = info.Database
	cfg.Collation = "utf8mb4_unicode_ci"
	cfg.Timeout = info.Timeout
	cfg.ReadTimeout = info.Timeout
	cfg.WriteTimeout = info.Timeout
	cfg.ParseTime = true
	cfg.InterpolateParams = false
	cfg.Params = map[string]string{
		"autocommit": "1",
	}
	return cfg.FormatDSN()
}

func (m *mysqlDialect) Configure(db *sql.DB, info ConnectInfo) {
	info = info.WithDefaults()
	// 空闲超过超时时间的连接由服务端断开前主动丢弃
	db.SetConnMaxIdleTime(info.Timeout)
}

func (m *mysqlDialect) TableExistSQL(tableName string) (string, []interface{}) {
	return "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?", []interface{}{tableName}
}
