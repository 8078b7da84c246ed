package clause

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geemysql/condition"
	"geemysql/quote"
	"geemysql/value"
)

func mustWhere(t *testing.T, cond interface{}) quote.Fragment {
	t.Helper()
	f, err := condition.Where(cond)
	require.NoError(t, err)
	return f
}

func TestSelect(t *testing.T) {
	having, err := condition.Having("cnt > 1")
	require.NoError(t, err)
	s := Select("`user`", "`age`,COUNT(*) AS `cnt`", mustWhere(t, value.MustKV("status", 1)), "GROUP BY `age`", having, "ORDER BY `age` DESC", Limit{Offset: 0, Count: 10})
	assert.Equal(t, "SELECT `age`,COUNT(*) AS `cnt` FROM `user` WHERE `status`=1 GROUP BY `age` HAVING cnt > 1 ORDER BY `age` DESC LIMIT 0,10", s.SQL)
	assert.Equal(t, "SELECT `age`,COUNT(*) AS `cnt` FROM `user` WHERE `status`=? GROUP BY `age` HAVING cnt > 1 ORDER BY `age` DESC LIMIT 0,10", s.Prepared)
	assert.Equal(t, []interface{}{int64(1)}, s.Params)

	s = Distinct("`user`", "", quote.Fragment{}, "", quote.Fragment{}, "", Limit{})
	assert.Equal(t, "SELECT DISTINCT * FROM `user`", s.String())
	assert.Empty(t, s.Params)
}

func TestInsertStatements(t *testing.T) {
	row, err := NewRow(value.MustKV("name", "O'Neil", "age", 30))
	require.NoError(t, err)

	testCases := []struct {
		desc string
		stmt Statement
		verb string
	}{
		{desc: "insert", stmt: Insert("`user`", row), verb: "INSERT INTO"},
		{desc: "insert ignore", stmt: InsertIgnore("`user`", row), verb: "INSERT IGNORE INTO"},
		{desc: "replace", stmt: Replace("`user`", row), verb: "REPLACE INTO"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.verb+" `user`(`name`,`age`) VALUES('O\\'Neil',30)", tC.stmt.SQL)
			assert.Equal(t, tC.verb+" `user`(`name`,`age`) VALUES(?,?)", tC.stmt.Prepared)
			assert.Equal(t, []interface{}{"O'Neil", int64(30)}, tC.stmt.Params)
			assert.Equal(t, tC.stmt.SQL, tC.stmt.Interpolated())
		})
	}
}

func TestInsertRows(t *testing.T) {
	a, err := NewRow(value.MustKV("a", 1, "b", "x"))
	require.NoError(t, err)
	b, err := NewRow(value.MustKV("a", 2, "b", "y"))
	require.NoError(t, err)

	s, err := InsertRows("`t`", []Row{a, b})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `t`(`a`,`b`) VALUES(1,'x'), (2,'y')", s.SQL)
	assert.Equal(t, "INSERT INTO `t`(`a`,`b`) VALUES(?,?), (?,?)", s.Prepared)
	assert.Equal(t, []interface{}{int64(1), "x", int64(2), "y"}, s.Params)

	c, err := NewRow(value.MustKV("b", "z", "a", 3))
	require.NoError(t, err)
	_, err = InsertRows("`t`", []Row{a, c})
	assert.ErrorIs(t, err, ErrInvalidData)
	_, err = InsertRows("`t`", nil)
	assert.ErrorIs(t, err, ErrMissingData)
}

func TestUpdateDeleteExists(t *testing.T) {
	row, err := NewRow(value.MustKV("name", "x", "age", 3))
	require.NoError(t, err)

	set, err := row.Assignments()
	require.NoError(t, err)
	s, err := Update("`t`", set, mustWhere(t, 5))
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `t` SET `name` = 'x',`age` = 3 WHERE id = 5", s.SQL)
	assert.Equal(t, "UPDATE `t` SET `name` = ?,`age` = ? WHERE id = ?", s.Prepared)
	assert.Equal(t, []interface{}{"x", int64(3), int64(5)}, s.Params)

	crease, err := Crease("hits", "-", 2)
	require.NoError(t, err)
	s, err = Update("`t`", []quote.Fragment{crease}, quote.Fragment{})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `t` SET `hits` = `hits` - 2", s.SQL)

	_, err = Update("`t`", nil, mustWhere(t, 5))
	assert.ErrorIs(t, err, ErrMissingData)

	s = Delete("`t`", mustWhere(t, 5))
	assert.Equal(t, "DELETE FROM `t` WHERE id = 5", s.SQL)
	assert.Equal(t, "DELETE FROM `t` WHERE id = ?", s.Prepared)

	sub := Select("`t`", "*", mustWhere(t, 5), "", quote.Fragment{}, "", Limit{})
	s = Exists(sub.Fragment)
	assert.Equal(t, "SELECT IF(EXISTS(SELECT * FROM `t` WHERE id = 5),1,0) AS cnt FROM DUAL", s.SQL)
	assert.Equal(t, "SELECT IF(EXISTS(SELECT * FROM `t` WHERE id = ?),1,0) AS cnt FROM DUAL", s.Prepared)
	assert.Equal(t, []interface{}{int64(5)}, s.Params)

	s = Count(sub.Fragment)
	assert.Equal(t, "SELECT COUNT(*) AS cnt FROM (SELECT * FROM `t` WHERE id = 5) AS t", s.SQL)
}

func TestInspectionStatements(t *testing.T) {
	s, err := Describe("`user`")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM information_schema.columns WHERE table_name = 'user' AND table_schema = DATABASE()", s.SQL)
	assert.Equal(t, []interface{}{"user"}, s.Params)
	assert.Equal(t, 1, strings.Count(s.Prepared, "?"))

	_, err = Describe("a/b")
	assert.ErrorIs(t, err, ErrInvalidTable)

	s, err = ShowIndex("db.user")
	require.NoError(t, err)
	assert.Equal(t, "SHOW INDEX FROM `db`.`user`", s.SQL)

	s, err = ShowCreateTable("user")
	require.NoError(t, err)
	assert.Equal(t, "SHOW CREATE TABLE `user`", s.SQL)

	assert.Equal(t, "SHOW FULL TABLES WHERE Table_type = 'BASE TABLE'", ShowTables().SQL)
	assert.Equal(t, "SHOW TABLE STATUS FROM `shop`", TableStatus("shop").SQL)

	s = DatabaseInfo("shop")
	assert.Equal(t, "SELECT table_name, table_comment FROM information_schema.tables WHERE table_schema = 'shop'", s.SQL)
	assert.Equal(t, []interface{}{"shop"}, s.Params)
}

func TestLock(t *testing.T) {
	testCases := []struct {
		desc  string
		level string
		want  string
	}{
		{desc: "default write", level: "", want: "LOCK TABLES `user` WRITE"},
		{desc: "read", level: "read", want: "LOCK TABLES `user` READ"},
		{desc: "read local", level: " Read Local ", want: "LOCK TABLES `user` READ LOCAL"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			s, err := Lock("user", tC.level)
			require.NoError(t, err)
			assert.Equal(t, tC.want, s.SQL)
		})
	}
	_, err := Lock("user", "share")
	assert.ErrorIs(t, err, ErrInvalidLock)
	_, err = Lock("", "read")
	assert.ErrorIs(t, err, ErrInvalidTable)
	assert.Equal(t, "UNLOCK TABLES", Unlock().SQL)
}

func TestStatementBinary(t *testing.T) {
	s := Statement{quote.Fragment{
		SQL:      "SELECT * FROM `t` WHERE `a`=1 AND `b`='x' AND `c`=1.5 AND `d`=NULL",
		Prepared: "SELECT * FROM `t` WHERE `a`=? AND `b`=? AND `c`=? AND `d`=?",
		Params:   []interface{}{int64(1), "x", 1.5, nil},
	}}
	data, err := s.MarshalBinary()
	require.NoError(t, err)

	got, err := UnmarshalStatement(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	pb, err := s.Proto()
	require.NoError(t, err)
	assert.Equal(t, s.Prepared, pb.GetFields()["prepared"].GetStringValue())

	_, err = UnmarshalStatement([]byte{0xff, 0xff})
	assert.Error(t, err)
}

func TestTablesFromStatements(t *testing.T) {
	queries := []struct {
		desc string
		sql  string
		want []string
	}{
		{desc: "single", sql: "SELECT * FROM `user` WHERE id = 1", want: []string{"user"}},
		{desc: "comma list and join", sql: "select * from `a`, b LEFT JOIN `db`.`c` ON a.id=c.id", want: []string{"a", "b", "db.c"}},
		{desc: "show", sql: "SHOW INDEX FROM `user`", want: []string{"user"}},
		{desc: "no table", sql: "SELECT 1", want: nil},
	}
	for _, tC := range queries {
		t.Run(tC.desc, func(t *testing.T) {
			got, err := TablesFromQuery(tC.sql)
			require.NoError(t, err)
			assert.Equal(t, tC.want, got)
		})
	}
	_, err := TablesFromQuery("UPDATE t SET a=1")
	assert.ErrorIs(t, err, ErrUnsupportedStatement)
	_, err = TablesFromQuery("  ")
	assert.ErrorIs(t, err, ErrUnsupportedStatement)

	executes := []struct {
		desc string
		sql  string
		want string
	}{
		{desc: "insert", sql: "INSERT INTO `user`(`a`) VALUES(1) ON DUPLICATE KEY UPDATE a=1", want: "user"},
		{desc: "insert ignore", sql: "insert ignore into log(a) values(1)", want: "log"},
		{desc: "replace", sql: "REPLACE `user`(`a`) VALUES(1)", want: "user"},
		{desc: "update", sql: "UPDATE `db`.`user` SET a=1", want: "db.user"},
		{desc: "delete", sql: "DELETE FROM user WHERE id=1", want: "user"},
	}
	for _, tC := range executes {
		t.Run(tC.desc, func(t *testing.T) {
			got, err := TablesFromExecute(tC.sql)
			require.NoError(t, err)
			assert.Equal(t, []string{tC.want}, got)
		})
	}
	_, err = TablesFromExecute("SELECT * FROM t")
	assert.ErrorIs(t, err, ErrUnsupportedStatement)
}
