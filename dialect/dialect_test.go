package dialect

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectInfoDefaults(t *testing.T) {
	info := ConnectInfo{Host: "db1", Database: "shop"}.WithDefaults()
	assert.Equal(t, DefaultPort, info.Port)
	assert.Equal(t, DefaultTimeout, info.Timeout)
	assert.Equal(t, "mysql", info.Driver)
	assert.Equal(t, "shop@db1:3306", info.String())

	info = ConnectInfo{Port: 3307, Timeout: time.Second, Driver: "sqlite3"}.WithDefaults()
	assert.Equal(t, 3307, info.Port)
	assert.Equal(t, time.Second, info.Timeout)
	assert.Equal(t, "sqlite3", info.Driver)
}

func TestGetDialect(t *testing.T) {
	testCases := []struct {
		desc   string
		name   string
		driver string
		exists bool
	}{
		{desc: "mysql", name: "mysql", driver: "mysql", exists: true},
		{desc: "sqlite3", name: "sqlite3", driver: "sqlite3_geemysql", exists: true},
		{desc: "unknown", name: "oracle", exists: false},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			d, ok := GetDialect(tC.name)
			assert.Equal(t, tC.exists, ok)
			if ok {
				assert.Equal(t, tC.driver, d.DriverName())
			}
		})
	}
}

func TestMysqlDSN(t *testing.T) {
	d, ok := GetDialect("mysql")
	require.True(t, ok)

	dsn := d.DSN(ConnectInfo{
		Host:     "10.0.0.1",
		User:     "root",
		Password: "p@ss:word",
		Database: "shop",
		Timeout:  3 * time.Second,
	})
	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "p@ss:word", cfg.Passwd)
	assert.Equal(t, "tcp", cfg.Net)
	assert.Equal(t, "10.0.0.1:3306", cfg.Addr)
	assert.Equal(t, "shop", cfg.DBName)
	assert.Equal(t, "utf8mb4_unicode_ci", cfg.Collation)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 3*time.Second, cfg.WriteTimeout)
	assert.True(t, cfg.ParseTime)
	assert.False(t, cfg.InterpolateParams)
	assert.Equal(t, "1", cfg.Params["autocommit"])

	query, args := d.TableExistSQL("user")
	assert.Contains(t, query, "information_schema.tables")
	assert.Equal(t, []interface{}{"user"}, args)
}

func TestOpenSqlite3(t *testing.T) {
	db, err := Open(ConnectInfo{Driver: "sqlite3", Database: ":memory:"})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Ping())
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	d, _ := GetDialect("sqlite3")
	_, err = db.Exec("CREATE TABLE user(name text)")
	require.NoError(t, err)
	query, args := d.TableExistSQL("user")
	var name string
	require.NoError(t, db.QueryRow(query, args...).Scan(&name))
	assert.Equal(t, "user", name)

	// MySQL only constructs work on sqlite3 too
	var cnt int64
	require.NoError(t, db.QueryRow("SELECT IF(EXISTS(SELECT * FROM `user`),1,0) AS cnt FROM DUAL").Scan(&cnt))
	assert.Equal(t, int64(0), cnt)
	_, err = db.Exec("INSERT INTO `user`(`name`) VALUES(?)", "Tom")
	require.NoError(t, err)
	require.NoError(t, db.QueryRow("SELECT IF(EXISTS(SELECT * FROM `user` WHERE `name`=?),1,0) AS cnt FROM DUAL", "Tom").Scan(&cnt))
	assert.Equal(t, int64(1), cnt)

	_, err = Open(ConnectInfo{Driver: "oracle"})
	assert.Error(t, err)
}
