package geemysql

import (
	"fmt"

	"geemysql/config"
	"geemysql/conncache"
	"geemysql/log"
	"geemysql/session"
)

// Engine ties the alias table to the connection cache. Sessions created
// from one engine share its connections.
type Engine struct {
	cfg   *config.Config
	cache *conncache.Cache
}

func NewEngine(cfg *config.Config, opts conncache.Options) *Engine {
	return &Engine{cfg: cfg, cache: conncache.New(opts)}
}

// Open reads .env, then the config file (searched for when file is empty)
// and builds an engine on it. Connections are opened lazily by sessions.
func Open(file string) (*Engine, error) {
	if err := config.LoadEnv(config.AppFs); err != nil {
		log.Error(err)
		return nil, err
	}
	v, err := config.New(config.AppFs, file)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	log.Infof("load config %s with %d aliases", v.ConfigFileUsed(), len(cfg.Tables))
	return NewEngine(cfg, conncache.Options{}), nil
}

func (engine *Engine) Config() *config.Config {
	return engine.cfg
}

func (engine *Engine) NewSession(alias string) *session.Session {
	return session.New(engine.cache, engine.cfg, alias)
}

// Close closes every cached connection.
func (engine *Engine) Close() {
	n := engine.cache.Len()
	engine.cache.Close()
	log.Infof("close %d database connections", n)
}

// 锁表函数，将需要独占表的操作置于函数中。
// 函数内的session运行在持锁的连接上，返回后一定会解锁
type LockFunc func(*session.Session) (interface{}, error)

func (engine *Engine) WithLock(alias, level string, fn LockFunc) (result interface{}, err error) {
	s := engine.NewSession(alias)
	if err := s.Lock(level); err != nil {
		return nil, err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.Unlock()
			panic(p)
		}
		if e := s.Unlock(); e != nil && err == nil {
			err = fmt.Errorf("unlock %s: %w", alias, e)
		}
	}()
	return fn(s)
}
