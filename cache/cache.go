// Package cache 提供装配期解析产物的进程内缓存。
//
// 典型用途是按方法约定名缓存解析完成的查询对
// （cache.New[string, *aot.AotQueries]）：解析是纯函数，同键结果
// 恒等，缓存因此只需要 LRU 容量上限与可选的访问 TTL，不需要
// 失效通知或跨进程一致性。并发安全。
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Config 缓存配置。
type Config struct {
	// Name 缓存名，随统计快照返回
	Name string

	// MaxSize 条目数上限；0 表示不限容量
	MaxSize int

	// TTL 基于最近访问时间的过期时长；0 表示永不过期
	TTL time.Duration
}

// CacheStats 统计快照。
type CacheStats struct {
	Name      string
	Hits      int64
	Misses    int64
	Evictions int64
	Expires   int64
	Size      int
}

// Cache 带 LRU 驱逐与访问 TTL 的泛型缓存。
type Cache[K comparable, V any] struct {
	name    string
	maxSize int
	ttl     time.Duration

	mu    sync.Mutex
	items map[K]*item[K, V]
	order *list.List // 最近访问的在前
	stats CacheStats
}

type item[K comparable, V any] struct {
	key        K
	value      V
	accessedAt time.Time
	element    *list.Element
}

// New 创建缓存。
func New[K comparable, V any](cfg Config) *Cache[K, V] {
	name := cfg.Name
	if name == "" {
		name = "unnamed"
	}
	return &Cache[K, V]{
		name:    name,
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
		items:   make(map[K]*item[K, V]),
		order:   list.New(),
	}
}

// Get 返回键对应的值。命中会刷新访问时间与 LRU 位置，
// 读取也修改内部状态，因此统一走互斥锁。
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	if c.expired(it) {
		c.remove(it)
		c.stats.Misses++
		c.stats.Expires++
		return zero, false
	}

	it.accessedAt = time.Now()
	c.order.MoveToFront(it.element)
	c.stats.Hits++
	return it.value, true
}

// Set 写入键值。键已存在时就地更新并刷新 LRU 位置；
// 容量已满时先驱逐最久未访问的条目。
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if it, ok := c.items[key]; ok {
		it.value = value
		it.accessedAt = time.Now()
		c.order.MoveToFront(it.element)
		return
	}

	if c.maxSize > 0 && len(c.items) >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest.Value.(*item[K, V]))
			c.stats.Evictions++
		}
	}

	it := &item[K, V]{key: key, value: value, accessedAt: time.Now()}
	it.element = c.order.PushFront(it)
	c.items[key] = it
}

// Size 当前条目数。
func (c *Cache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats 返回统计快照。
func (c *Cache[K, V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Name = c.name
	stats.Size = len(c.items)
	return stats
}

func (c *Cache[K, V]) expired(it *item[K, V]) bool {
	return c.ttl > 0 && time.Since(it.accessedAt) >= c.ttl
}

func (c *Cache[K, V]) remove(it *item[K, V]) {
	c.order.Remove(it.element)
	delete(c.items, it.key)
}
