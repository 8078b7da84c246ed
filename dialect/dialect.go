package dialect

import (
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"
)

const (
	DefaultPort    = 3306
	DefaultTimeout = 10 * time.Second
	DefaultDriver  = "mysql"
)

// ConnectInfo 连接一个数据库所需的参数
type ConnectInfo struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Driver   string
	// 连接及读写超时
	Timeout time.Duration
}

// WithDefaults fills in the default port, timeout and driver.
func (c ConnectInfo) WithDefaults() ConnectInfo {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Driver == "" {
		c.Driver = DefaultDriver
	}
	return c
}

// String is database@host:port; the password never appears.
func (c ConnectInfo) String() string {
	return c.Database + "@" + c.Host + ":" + strconv.Itoa(c.Port)
}

type Dialect interface {
	// 注册到database/sql中的驱动名
	DriverName() string
	// 根据连接参数生成DSN，会话属性也在这里设置
	DSN(info ConnectInfo) string
	// 打开之后对连接池的调整
	Configure(db *sql.DB, info ConnectInfo)
	// 判断某个表是否存在的sql语句
	TableExistSQL(tableName string) (string, []interface{})
}

var (
	mu       sync.RWMutex
	dialects = map[string]Dialect{}
)

func RegisterDialect(name string, d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[name] = d
}

func GetDialect(name string) (d Dialect, ok bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok = dialects[name]
	return
}

// Open opens a database for info with the dialect registered under
// info.Driver. Like sql.Open it does not connect.
func Open(info ConnectInfo) (*sql.DB, error) {
	info = info.WithDefaults()
	d, ok := GetDialect(info.Driver)
	if !ok {
		return nil, fmt.Errorf("dialect %s not found", info.Driver)
	}
	db, err := sql.Open(d.DriverName(), d.DSN(info))
	if err != nil {
		return nil, err
	}
	d.Configure(db, info)
	return db, nil
}
