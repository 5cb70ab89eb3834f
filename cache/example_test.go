package cache_test

import (
	"fmt"
	"time"

	"querykit/cache"
)

// ExampleNew 演示创建缓存
func ExampleNew() {
	// 缓存方法名到查询文本的解析结果
	c := cache.New[string, string](cache.Config{
		Name:    "resolved_queries",
		MaxSize: 100,
		TTL:     5 * time.Minute,
	})

	c.Set("User.findByEmail", "select u from User u where u.email = :email")
	value, found := c.Get("User.findByEmail")
	fmt.Println(found, value)
	// Output: true select u from User u where u.email = :email
}

// Example_lruEviction 演示LRU淘汰机制
func Example_lruEviction() {
	// 小容量缓存演示 LRU
	c := cache.New[int, string](cache.Config{
		Name:    "lru_demo",
		MaxSize: 3,
		TTL:     time.Hour,
	})

	c.Set(1, "one")
	c.Set(2, "two")
	c.Set(3, "three")
	fmt.Println("初始大小:", c.Size())

	// 添加第4个元素，淘汰最久未使用的（1）
	c.Set(4, "four")
	fmt.Println("添加第4个后:", c.Size())

	_, found := c.Get(1)
	fmt.Println("键1还存在:", found)

	// Output:
	// 初始大小: 3
	// 添加第4个后: 3
	// 键1还存在: false
}

// Example_stats 演示命中统计
func Example_stats() {
	c := cache.New[string, int](cache.Config{
		Name:    "stats_demo",
		MaxSize: 10,
		TTL:     time.Minute,
	})

	c.Set("a", 1)
	c.Get("a")
	c.Get("missing")

	stats := c.Stats()
	fmt.Printf("hits=%d misses=%d size=%d\n", stats.Hits, stats.Misses, stats.Size)
	// Output: hits=1 misses=1 size=1
}
