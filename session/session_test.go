package session

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geemysql/clause"
	"geemysql/condition"
	"geemysql/config"
	"geemysql/conncache"
	"geemysql/dialect"
	"geemysql/value"
)

const testConfig = `
database:
  - default: true
    connect:
      driver: sqlite3
      database: ":memory:"
  - mode: rw
    connect:
      driver: sqlite3
      database: ":memory:"
    tables:
      u: user
  - connect:
      driver: sqlite3
      database: "file:logs?mode=memory"
    tables: [logs]
`

type User struct {
	Name string `geemysql:"name"`
	Age  int    `geemysql:"age"`
}

// newTestSession returns a session on a fresh in-memory database holding
// the user and orders tables.
func newTestSession(t *testing.T, alias string) *Session {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/geemysql.yaml", []byte(testConfig), 0644))
	v, err := config.New(fs, "/geemysql.yaml")
	require.NoError(t, err)
	cfg, err := config.Load(v)
	require.NoError(t, err)

	cache := conncache.New(conncache.Options{})
	t.Cleanup(cache.Close)

	target, err := cfg.Lookup(alias, config.Write)
	require.NoError(t, err)
	h, err := cache.Acquire(context.Background(), target.Connect, 0)
	require.NoError(t, err)
	defer h.Release()
	for _, ddl := range []string{
		"CREATE TABLE user(id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT UNIQUE, age INTEGER, hits INTEGER DEFAULT 0)",
		"CREATE TABLE orders(id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER, amount INTEGER)",
	} {
		_, err := h.DB.Exec(ddl)
		require.NoError(t, err)
	}
	return New(cache, cfg, alias)
}

func seed(t *testing.T, s *Session) {
	t.Helper()
	id, err := s.Insert(value.MustKV("name", "Tom", "age", 18))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = s.Insert(User{Name: "Jerry", Age: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	n, err := s.InsertRows(value.MustKV("name", "Spike", "age", 20), value.MustKV("name", "Tyke", "age", 3))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func names(rows []map[string]interface{}) []string {
	var ret []string
	for _, row := range rows {
		ret = append(ret, row["name"].(string))
	}
	return ret
}

func TestSelect(t *testing.T) {
	s := newTestSession(t, "user")
	seed(t, s)

	testCases := []struct {
		desc  string
		build func(s *Session) *Session
		want  []string
	}{
		{
			desc:  "all",
			build: func(s *Session) *Session { return s },
			want:  []string{"Tom", "Jerry", "Spike", "Tyke"},
		},
		{
			desc: "where order limit",
			build: func(s *Session) *Session {
				return s.Fields("id,name").Where(value.MustKV("age >=", 18)).OrderBy("id desc").Limit(2)
			},
			want: []string{"Spike", "Jerry"},
		},
		{
			desc: "limit with offset",
			build: func(s *Session) *Session {
				return s.Fields([]string{"name"}).OrderBy([]string{"id", "ASC"}).Limit("1,2")
			},
			want: []string{"Jerry", "Spike"},
		},
		{
			desc: "nested or",
			build: func(s *Session) *Session {
				return s.Where([]interface{}{
					value.MustKV("age", 20),
					[]interface{}{value.MustKV("name", "Jerry"), value.MustKV("name LIKE", "S%")},
				}).OrderBy("name")
			},
			want: []string{"Jerry", "Spike"},
		},
		{
			desc:  "in list",
			build: func(s *Session) *Session { return s.Where(value.MustKV("id", []int{1, 4})) },
			want:  []string{"Tom", "Tyke"},
		},
		{
			desc:  "between",
			build: func(s *Session) *Session { return s.Where(value.MustKV("age BETWEEN", "4,19")) },
			want:  []string{"Tom"},
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			rows, err := tC.build(s).Select()
			require.NoError(t, err)
			assert.Equal(t, tC.want, names(rows))
		})
	}
}

func TestFindCountExists(t *testing.T) {
	s := newTestSession(t, "user")
	seed(t, s)

	row, err := s.Where(2).Find()
	require.NoError(t, err)
	assert.Equal(t, "Jerry", row["name"])
	assert.EqualValues(t, 20, row["age"])

	_, err = s.Where(99).Find()
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.Where(value.MustKV("age >=", 18)).Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// sqlite has no GROUP BY ... ASC, the distinct count takes the same
	// sub-query path
	n, err = s.Fields("age").Distinct().Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	rows, err := s.Fields("age").Distinct().OrderBy("age").Select()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.EqualValues(t, 3, rows[0]["age"])

	ok, err := s.Where(value.MustKV("name", "Tom")).Exists()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Where(value.MustKV("name", "Nobody")).Exists()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWrites(t *testing.T) {
	s := newTestSession(t, "user")
	seed(t, s)

	n, err := s.Where(1).Update(value.MustKV("name", "Thomas"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Where(1).Increase("hits", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = s.Where(1).Decrease("hits", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	row, err := s.Where(1).Find()
	require.NoError(t, err)
	assert.Equal(t, "Thomas", row["name"])
	assert.EqualValues(t, 1, row["hits"])

	// REPLACE on the unique name swaps the row
	_, err = s.Replace(value.MustKV("name", "Thomas", "age", 40))
	require.NoError(t, err)
	row, err = s.Where(value.MustKV("name", "Thomas")).Find()
	require.NoError(t, err)
	assert.EqualValues(t, 40, row["age"])

	n, err = s.Where(value.MustKV("age <", 10)).Delete()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = s.Update(nil)
	assert.ErrorIs(t, err, clause.ErrMissingData)
	_, err = s.Insert("name")
	assert.ErrorIs(t, err, clause.ErrInvalidData)
	_, err = s.InsertRows()
	assert.ErrorIs(t, err, clause.ErrMissingData)
	_, err = s.InsertRows(value.MustKV("name", "a"), value.MustKV("age", 1))
	assert.ErrorIs(t, err, clause.ErrInvalidData)
}

func TestJoin(t *testing.T) {
	s := newTestSession(t, "user")
	seed(t, s)
	orders := New(s.cache, s.resolver, "orders")
	_, err := orders.InsertRows(
		value.MustKV("user_id", 1, "amount", 10),
		value.MustKV("user_id", 1, "amount", 5),
		value.MustKV("user_id", 3, "amount", 7),
	)
	require.NoError(t, err)

	rows, err := s.Fields("user.name, orders.amount AS total").
		LeftJoin("orders", "user.id=orders.user_id").
		Where(value.MustKV("orders.amount >", 6)).
		OrderBy("total desc").
		Select()
	require.NoError(t, err)
	assert.Equal(t, []string{"Tom", "Spike"}, names(rows))
	assert.EqualValues(t, 10, rows[0]["total"])
}

func TestAliasResolvesTable(t *testing.T) {
	s := newTestSession(t, "u")
	seed(t, s)
	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	ok, err := s.HasTable()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = New(s.cache, s.resolver, "nope").HasTable()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuilderErrors(t *testing.T) {
	s := newTestSession(t, "user")
	seed(t, s)

	_, err := s.Where([]interface{}{1}).OrderBy("id").Select()
	assert.ErrorIs(t, err, condition.ErrInvalidCondition)
	assert.NoError(t, s.Err(), "state is cleared after execution")

	_, err = s.Join("sideways", "orders", "id").Select()
	assert.ErrorIs(t, err, clause.ErrInvalidJoin)

	_, err = s.OrderBy("id up down").Select()
	assert.Error(t, err)

	rows, err := s.Select()
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	_, err = New(s.cache, s.resolver, "bad/name").Select()
	assert.ErrorIs(t, err, clause.ErrInvalidTable)
}

func TestRawExec(t *testing.T) {
	s := newTestSession(t, "user")
	seed(t, s)

	rows, err := s.Raw("SELECT name FROM user WHERE id = ?", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Spike"}, names(rows))

	res, err := s.Exec("UPDATE user SET age = ? WHERE id = ?", 30, 1)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Raw("DELETE FROM user")
	assert.ErrorIs(t, err, clause.ErrUnsupportedStatement)
	_, err = s.Exec("SELECT * FROM user")
	assert.ErrorIs(t, err, clause.ErrUnsupportedStatement)
}

func TestRawRoutesByTable(t *testing.T) {
	s := newTestSession(t, "user")
	seed(t, s)
	ctx := context.Background()

	// logs lives on a database of its own
	logs, err := s.resolver.Lookup("logs", config.Write)
	require.NoError(t, err)
	h, err := s.cache.Acquire(ctx, logs.Connect, 0)
	require.NoError(t, err)
	defer h.Release()
	_, err = h.DB.Exec("CREATE TABLE logs(id INTEGER PRIMARY KEY AUTOINCREMENT, msg TEXT)")
	require.NoError(t, err)

	// a user session writes and reads logs on the logs connection
	_, err = s.Exec("INSERT INTO logs(msg) VALUES(?)", "hello")
	require.NoError(t, err)
	rows, err := s.Raw("SELECT msg FROM `logs` WHERE msg = ?", "hello")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "hello", rows[0]["msg"])

	// and its own table still on the default one
	rows, err = s.Raw("SELECT name FROM user WHERE id = ?", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tom"}, names(rows))

	// a logs session reading user goes to the default connection
	rows, err = New(s.cache, s.resolver, "logs").Raw("SELECT name FROM user ORDER BY id")
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	n, err := New(s.cache, s.resolver, "logs").Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestRawFallsBackToSessionAlias(t *testing.T) {
	cache := conncache.New(conncache.Options{})
	defer cache.Close()

	info := dialect.ConnectInfo{Driver: "sqlite3", Database: ":memory:"}
	only := resolverFunc(func(alias string, mode config.Mode) (config.Target, error) {
		if alias != "user" {
			return config.Target{}, config.ErrNoConnection
		}
		return config.Target{Table: alias, Connect: info}, nil
	})
	s := New(cache, only, "user")
	_, err := s.Exec("CREATE TABLE user(id INTEGER)")
	assert.ErrorIs(t, err, clause.ErrUnsupportedStatement)

	h, err := cache.Acquire(context.Background(), info, 0)
	require.NoError(t, err)
	defer h.Release()
	_, err = h.DB.Exec("CREATE TABLE user(id INTEGER)")
	require.NoError(t, err)

	// dual has no connection of its own
	rows, err := s.Raw("SELECT 1 AS one FROM dual")
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows[0]["one"])
	// neither does a statement without a table
	rows, err = s.Raw("SELECT 2 AS two")
	require.NoError(t, err)
	assert.EqualValues(t, 2, rows[0]["two"])
}

func TestLockUnsupported(t *testing.T) {
	s := newTestSession(t, "user")

	// sqlite has no LOCK TABLES; the reserved connection must be released
	assert.Error(t, s.Lock("write"))
	assert.False(t, s.Locked())
	assert.ErrorIs(t, s.Unlock(), ErrNotLocked)
	assert.ErrorIs(t, s.Lock("share"), clause.ErrInvalidLock)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

type resolverFunc func(alias string, mode config.Mode) (config.Target, error)

func (f resolverFunc) Lookup(alias string, mode config.Mode) (config.Target, error) {
	return f(alias, mode)
}

func TestResolveErrors(t *testing.T) {
	cache := conncache.New(conncache.Options{})
	defer cache.Close()

	none := resolverFunc(func(alias string, mode config.Mode) (config.Target, error) {
		return config.Target{}, config.ErrNoConnection
	})
	_, err := New(cache, none, "user").Select()
	assert.ErrorIs(t, err, config.ErrNoConnection)

	unreachable := resolverFunc(func(alias string, mode config.Mode) (config.Target, error) {
		return config.Target{Table: alias, Connect: dialect.ConnectInfo{Driver: "oracle", Database: "shop"}}, nil
	})
	_, err = New(cache, unreachable, "user").Count()
	assert.ErrorIs(t, err, conncache.ErrConnect)
	assert.False(t, errors.Is(err, config.ErrNoConnection))
}
