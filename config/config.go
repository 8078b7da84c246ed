// Package config reads which database serves each table alias.
//
//	database:
//	  - default: true
//	    mode: rw
//	    connect: {host: 10.0.0.1, user: root, password: x, database: shop}
//	  - mode: r
//	    connect: {host: 10.0.0.2, user: reader, database: shop}
//	    tables: {goods: shop_goods, order: order}
//	system:
//	  database_timeout: 10
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"geemysql/dialect"
)

var AppFs = afero.NewOsFs()

const (
	// DefaultAlias serves every alias without its own entry.
	DefaultAlias = "_default"
	EnvPrefix    = "GEEMYSQL"
	ConfigName   = ".geemysql"
)

var (
	ErrNoConnection  = errors.New("no connection configured")
	ErrInvalidConfig = errors.New("invalid database config")
)

type Mode string

const (
	Read  Mode = "read"
	Write Mode = "write"
)

// Table is one configured alias: the real table name and the connections
// used to read and write it.
type Table struct {
	Name  string
	Read  *dialect.ConnectInfo
	Write *dialect.ConnectInfo
}

type Config struct {
	// keys are lower case aliases plus DefaultAlias
	Tables  map[string]Table
	Timeout time.Duration
}

// Target is the result of a lookup.
type Target struct {
	Table   string
	Connect dialect.ConnectInfo
}

type connectSection struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Driver   string `mapstructure:"driver"`
	// 秒
	Timeout int `mapstructure:"timeout"`
}

type databaseSection struct {
	Default bool           `mapstructure:"default"`
	Mode    string         `mapstructure:"mode"`
	Connect connectSection `mapstructure:"connect"`
	// {alias: table} or [table, ...]
	Tables interface{} `mapstructure:"tables"`
}

// New returns a viper instance reading file, or when file is empty the
// first .geemysql.{yaml,json,toml} found in ., $HOME and
// $HOME/.config/geemysql. A missing config file is not an error.
func New(fs afero.Fs, file string) (*viper.Viper, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("system.database_timeout", int(dialect.DefaultTimeout/time.Second))

	if file != "" {
		v.SetConfigFile(file)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "geemysql"))
	}

	if err := v.ReadInConfig(); err != nil {
		// 只有搜索不到配置文件时才忽略，指定的文件必须存在
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return v, nil
}

// LoadEnv sets the variables of each existing .env style file that are
// not already set in the environment.
func LoadEnv(fs afero.Fs, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, name := range files {
		f, err := fs.Open(name)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		env, err := godotenv.Parse(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		for k, val := range env {
			if _, ok := os.LookupEnv(k); !ok {
				if err := os.Setenv(k, val); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Load builds the alias table from the database list of v.
func Load(v *viper.Viper) (*Config, error) {
	var sections []databaseSection
	if err := v.UnmarshalKey("database", &sections); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: missing database section", ErrInvalidConfig)
	}

	cfg := &Config{
		Tables:  map[string]Table{},
		Timeout: time.Duration(v.GetInt("system.database_timeout")) * time.Second,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = dialect.DefaultTimeout
	}

	var def Table
	for i, s := range sections {
		read, write, err := parseMode(s.Mode)
		if err != nil {
			return nil, fmt.Errorf("%w: database[%d]: %v", ErrInvalidConfig, i, err)
		}
		info := cfg.connectInfo(s.Connect)

		// 默认连接
		if s.Default {
			if read {
				def.Read = info
			}
			if write {
				def.Write = info
			}
			continue
		}

		// 非默认连接，必须指定这个连接里有哪些表
		tables, err := parseTables(s.Tables)
		if err != nil {
			return nil, fmt.Errorf("%w: database[%d]: %v", ErrInvalidConfig, i, err)
		}
		for _, alias := range sortedKeys(tables) {
			key := strings.ToLower(alias)
			t := cfg.Tables[key]
			t.Name = tables[alias]
			if read {
				t.Read = info
			}
			if write {
				t.Write = info
			}
			cfg.Tables[key] = t
		}
	}
	cfg.Tables[DefaultAlias] = def
	return cfg, nil
}

func (c *Config) connectInfo(s connectSection) *dialect.ConnectInfo {
	info := dialect.ConnectInfo{
		Host:     s.Host,
		Port:     s.Port,
		User:     s.User,
		Password: s.Password,
		Database: s.Database,
		Driver:   s.Driver,
		Timeout:  time.Duration(s.Timeout) * time.Second,
	}
	if info.Timeout <= 0 {
		info.Timeout = c.Timeout
	}
	info = info.WithDefaults()
	return &info
}

// Lookup returns the table name and connection for alias in the given
// mode. Anything but Read means Write. An alias without its own entry,
// or without a connection for mode, uses DefaultAlias; the table name is
// then the alias itself.
func (c *Config) Lookup(alias string, mode Mode) (Target, error) {
	if mode != Read {
		mode = Write
	}
	name := alias
	t, ok := c.Tables[strings.ToLower(alias)]
	if ok && t.Name != "" {
		name = t.Name
	}
	info := t.connect(mode)
	if info == nil {
		info = c.Tables[DefaultAlias].connect(mode)
	}
	if info == nil {
		return Target{}, fmt.Errorf("%w: %s for %q", ErrNoConnection, mode, alias)
	}
	return Target{Table: name, Connect: *info}, nil
}

func (t Table) connect(mode Mode) *dialect.ConnectInfo {
	if mode == Read {
		return t.Read
	}
	return t.Write
}

// 访问模式: r/w/rw, read/write, 读/写/读写
func parseMode(mode string) (read, write bool, err error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "rw", "wr", "readwrite", "read-write", "读写":
		return true, true, nil
	case "r", "read", "读":
		return true, false, nil
	case "w", "write", "写":
		return false, true, nil
	}
	return false, false, fmt.Errorf("unknown mode %q", mode)
}

// 未指定别名时，别名与表名相同
func parseTables(raw interface{}) (map[string]string, error) {
	tables := map[string]string{}
	switch t := raw.(type) {
	case nil:
		return nil, errors.New("a connection that is not the default must list its tables")
	case []interface{}:
		for _, item := range t {
			name, ok := item.(string)
			if !ok || strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("table name must be a string: %v", item)
			}
			tables[strings.TrimSpace(name)] = strings.TrimSpace(name)
		}
	case map[string]interface{}:
		for alias, item := range t {
			name, ok := item.(string)
			if !ok || strings.TrimSpace(name) == "" {
				name = alias
			}
			tables[alias] = strings.TrimSpace(name)
		}
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = item
		}
		return parseTables(m)
	default:
		return nil, fmt.Errorf("tables must be a list or a mapping: %v", raw)
	}
	return tables, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
