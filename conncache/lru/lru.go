package lru

import "container/list"

// Cache is a least recently used cache bounded by its number of entries.
// It is not safe for concurrent use.
type Cache struct {
	maxEntries int
	ll         *list.List
	cache      map[string]*list.Element
	// 条目被移除时调用，包括淘汰、Remove和Clear
	OnEvicted func(key string, value interface{})
}

type entry struct {
	key   string
	value interface{}
}

// New creates a Cache. maxEntries 0 means no limit.
func New(maxEntries int, onEvicted func(string, interface{})) *Cache {
	return &Cache{
		maxEntries: maxEntries,
		ll:         list.New(),
		cache:      make(map[string]*list.Element),
		OnEvicted:  onEvicted,
	}
}

// Get returns the value of key and marks it most recently used.
func (c *Cache) Get(key string) (interface{}, bool) {
	if ele, ok := c.cache[key]; ok {
		c.ll.MoveToFront(ele)
		return ele.Value.(*entry).value, true
	}
	return nil, false
}

// Add inserts or replaces key. Replacing does not call OnEvicted for the
// old value.
func (c *Cache) Add(key string, value interface{}) {
	if ele, ok := c.cache[key]; ok {
		c.ll.MoveToFront(ele)
		ele.Value.(*entry).value = value
	} else {
		c.cache[key] = c.ll.PushFront(&entry{key, value})
	}
	// c.maxEntries为0表示不限制大小
	for c.maxEntries != 0 && c.ll.Len() > c.maxEntries {
		c.RemoveOldest()
	}
}

func (c *Cache) Remove(key string) {
	if ele, ok := c.cache[key]; ok {
		c.removeElement(ele)
	}
}

func (c *Cache) RemoveOldest() {
	if ele := c.ll.Back(); ele != nil {
		c.removeElement(ele)
	}
}

func (c *Cache) removeElement(ele *list.Element) {
	c.ll.Remove(ele)
	kv := ele.Value.(*entry)
	delete(c.cache, kv.key)
	if c.OnEvicted != nil {
		c.OnEvicted(kv.key, kv.value)
	}
}

// Clear removes every entry, oldest first.
func (c *Cache) Clear() {
	for c.ll.Len() > 0 {
		c.RemoveOldest()
	}
}

// Keys lists the keys from most to least recently used.
func (c *Cache) Keys() []string {
	keys := make([]string, 0, c.ll.Len())
	for ele := c.ll.Front(); ele != nil; ele = ele.Next() {
		keys = append(keys, ele.Value.(*entry).key)
	}
	return keys
}

// Values lists the values in the order of Keys.
func (c *Cache) Values() []interface{} {
	values := make([]interface{}, 0, c.ll.Len())
	for ele := c.ll.Front(); ele != nil; ele = ele.Next() {
		values = append(values, ele.Value.(*entry).value)
	}
	return values
}

func (c *Cache) Len() int {
	return c.ll.Len()
}
