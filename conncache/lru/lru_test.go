package lru

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	c := New(0, nil)
	c.Add("k1", 1)
	v, ok := c.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("k2")
	assert.False(t, ok)

	c.Add("k1", 2)
	v, _ = c.Get("k1")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestRemoveOldest(t *testing.T) {
	var evicted []string
	c := New(2, func(key string, _ interface{}) {
		evicted = append(evicted, key)
	})
	c.Add("k1", 1)
	c.Add("k2", 2)
	// k1 becomes the most recently used
	c.Get("k1")
	c.Add("k3", 3)

	assert.Equal(t, []string{"k2"}, evicted)
	assert.Equal(t, []string{"k3", "k1"}, c.Keys())
	_, ok := c.Get("k2")
	assert.False(t, ok)
}

func TestRemoveAndClear(t *testing.T) {
	testCases := []struct {
		desc    string
		do      func(c *Cache)
		evicted []string
		left    int
	}{
		{
			desc:    "remove one",
			do:      func(c *Cache) { c.Remove("k2") },
			evicted: []string{"k2"},
			left:    2,
		},
		{
			desc:    "remove missing",
			do:      func(c *Cache) { c.Remove("nope") },
			evicted: nil,
			left:    3,
		},
		{
			desc:    "clear",
			do:      func(c *Cache) { c.Clear() },
			evicted: []string{"k1", "k2", "k3"},
			left:    0,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			var evicted []string
			c := New(0, func(key string, _ interface{}) {
				evicted = append(evicted, key)
			})
			c.Add("k1", 1)
			c.Add("k2", 2)
			c.Add("k3", 3)
			tC.do(c)
			assert.Equal(t, tC.evicted, evicted)
			assert.Equal(t, tC.left, c.Len())
		})
	}
}
