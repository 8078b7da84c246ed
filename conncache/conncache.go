// Package conncache keeps one open database handle per host, port and
// database, dropping handles that were idle for longer than their TTL.
package conncache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"geemysql/conncache/lru"
	"geemysql/dialect"
	"geemysql/log"
)

// ErrConnect 连接失败是致命错误，后续的任何语句都无法执行
var ErrConnect = errors.New("connect database failed")

// Key identifies a cached handle. User and password are not part of it.
type Key struct {
	Host     string
	Port     int
	Database string
}

func KeyOf(info dialect.ConnectInfo) Key {
	info = info.WithDefaults()
	return Key{Host: info.Host, Port: info.Port, Database: info.Database}
}

func (k Key) String() string {
	return k.Database + "@" + k.Host + ":" + strconv.Itoa(k.Port)
}

// Handle is a cached connection pool. DB is shared by every caller that
// acquired the same key and must not be closed by them; call Release once
// for every Acquire instead.
//
// A handle dropped from the cache (idle past its TTL or pushed out by the
// capacity) stays open until its last holder releases it.
type Handle struct {
	ID         uuid.UUID
	DB         *sql.DB
	Key        Key
	OpenedAt   time.Time
	LastUsedAt time.Time

	cache   *Cache
	refs    int
	evicted bool
	closed  bool
}

// Release gives back a handle returned by Acquire.
func (h *Handle) Release() {
	h.cache.mu.Lock()
	defer h.cache.mu.Unlock()
	if h.refs > 0 {
		h.refs--
	}
	if h.evicted && h.refs == 0 {
		h.close()
		delete(h.cache.dropped, h)
	}
}

// Refs is the number of holders that have not released the handle yet.
func (h *Handle) Refs() int {
	h.cache.mu.Lock()
	defer h.cache.mu.Unlock()
	return h.refs
}

func (h *Handle) close() {
	if h.closed {
		return
	}
	h.closed = true
	if err := h.DB.Close(); err != nil {
		log.Errorf("close connection %s (%s): %v", h.Key, h.ID, err)
		return
	}
	log.Infof("close connection %s (%s)", h.Key, h.ID)
}

// Opener 缓存不中时调用，打开一个新的连接
type Opener interface {
	Open(ctx context.Context, info dialect.ConnectInfo) (*sql.DB, error)
}

type OpenerFunc func(context.Context, dialect.ConnectInfo) (*sql.DB, error)

func (f OpenerFunc) Open(ctx context.Context, info dialect.ConnectInfo) (*sql.DB, error) {
	return f(ctx, info)
}

// DialectOpener opens info with its dialect and pings it within
// info.Timeout.
var DialectOpener = OpenerFunc(func(ctx context.Context, info dialect.ConnectInfo) (*sql.DB, error) {
	db, err := dialect.Open(info)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, info.WithDefaults().Timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
})

type Options struct {
	// 最多缓存的连接数，0表示不限制，超出时关闭最久未使用的连接
	Capacity int
	// nil means DialectOpener
	Opener Opener
	// nil means time.Now
	Now func() time.Time
}

type Cache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	opener Opener
	now    func() time.Time
	// 已移出缓存但仍被持有的连接，Close时一并关闭
	dropped map[*Handle]struct{}
}

func New(opts Options) *Cache {
	c := &Cache{
		opener:  opts.Opener,
		now:     opts.Now,
		dropped: make(map[*Handle]struct{}),
	}
	if c.opener == nil {
		c.opener = DialectOpener
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.lru = lru.New(opts.Capacity, func(key string, value interface{}) {
		h := value.(*Handle)
		h.evicted = true
		if h.refs == 0 {
			h.close()
			return
		}
		log.Infof("connection %s (%s) dropped, %d holders left", key, h.ID, h.refs)
		c.dropped[h] = struct{}{}
	})
	return c
}

// Acquire returns the handle cached for info, opening one when there is
// none or the cached one has been idle for longer than ttl. The caller
// holds the handle until it calls Release. ttl is also the connect and
// read/write timeout of a new connection; ttl <= 0 means info.Timeout.
//
// Lookup, eviction and opening happen under one lock, so concurrent
// callers never open two handles for the same key.
func (c *Cache) Acquire(ctx context.Context, info dialect.ConnectInfo, ttl time.Duration) (*Handle, error) {
	info = info.WithDefaults()
	if ttl <= 0 {
		ttl = info.Timeout
	}
	info.Timeout = ttl
	key := KeyOf(info)
	name := key.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if v, ok := c.lru.Get(name); ok {
		h := v.(*Handle)
		if now.Sub(h.LastUsedAt) <= ttl {
			h.LastUsedAt = now
			h.refs++
			return h, nil
		}
		log.Infof("connection %s idle since %s, reconnect", name, h.LastUsedAt.Format(time.RFC3339))
		c.lru.Remove(name)
	}

	db, err := c.opener.Open(ctx, info)
	if err != nil {
		log.Errorf("connect %s: %v", name, err)
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, name, err)
	}
	h := &Handle{
		ID:         uuid.New(),
		DB:         db,
		Key:        key,
		OpenedAt:   now,
		LastUsedAt: now,
		cache:      c,
		refs:       1,
	}
	c.lru.Add(name, h)
	log.Infof("open connection %s (%s)", name, h.ID)
	return h, nil
}

// Len is the number of cached handles, expired ones included until they
// are next looked up.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Keys lists cached keys from most to least recently used.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}

// Close closes every handle, cached or still held, and forgets them.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.lru.Values() {
		v.(*Handle).refs = 0
	}
	c.lru.Clear()
	for h := range c.dropped {
		h.close()
	}
	c.dropped = make(map[*Handle]struct{})
}
