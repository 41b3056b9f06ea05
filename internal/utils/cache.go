package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem 包装实际的数据，增加过期时间
type CacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// TTLCache 带容量上限和空闲过期的缓存，每次读取都会顺延过期时间
type TTLCache[T any] struct {
	storage *lru.Cache[string, CacheItem[T]]
	ttl     time.Duration
	now     func() time.Time
}

// NewTTLCache 初始化，size 是最大缓存条数，ttl 是空闲多久后失效
func NewTTLCache[T any](size int, ttl time.Duration) (*TTLCache[T], error) {
	// lru.Cache 是线程安全的
	c, err := lru.New[string, CacheItem[T]](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache[T]{
		storage: c,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// Set 写入或覆盖
func (c *TTLCache[T]) Set(key string, value T) {
	c.storage.Add(key, CacheItem[T]{
		Value:     value,
		ExpiredAt: c.now().Add(c.ttl),
	})
}

// Get 读取，过期的条目会被删除
func (c *TTLCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}

	now := c.now()
	if now.After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}

	item.ExpiredAt = now.Add(c.ttl)
	c.storage.Add(key, item)
	return item.Value, true
}

// Delete 删除并返回被删除的值
func (c *TTLCache[T]) Delete(key string) (T, bool) {
	item, ok := c.storage.Peek(key)
	c.storage.Remove(key)
	if !ok {
		var zero T
		return zero, false
	}
	return item.Value, true
}

// PurgeExpired 清理全部过期条目，返回清理数量
func (c *TTLCache[T]) PurgeExpired() int {
	now := c.now()
	purged := 0
	for _, key := range c.storage.Keys() {
		item, ok := c.storage.Peek(key)
		if ok && now.After(item.ExpiredAt) {
			c.storage.Remove(key)
			purged++
		}
	}
	return purged
}

// Clear 清空
func (c *TTLCache[T]) Clear() {
	c.storage.Purge()
}

// Len 当前条数（包含尚未清理的过期条目）
func (c *TTLCache[T]) Len() int {
	return c.storage.Len()
}
