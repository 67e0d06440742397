package cache

import (
	"sync"
	"time"
)

// Cache 通用缓存接口（带标签失效）
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration, tags ...string)
	Delete(key string)
	InvalidateTag(tag string)
	Clear()
	Size() int
}

// entry 缓存项
type entry struct {
	value     any
	expiresAt time.Time
	tags      []string
}

// TaggedCache 内存缓存实现
// 每个缓存项携带过期时间和零个或多个标签；InvalidateTag 按标签批量删除。
// 并发写同一个 key 时后写覆盖先写（last-writer-wins），不做额外协调。
type TaggedCache struct {
	items map[string]*entry
	mu    sync.RWMutex
}

// New 创建新的标签缓存，并启动后台清理 goroutine
func New() *TaggedCache {
	c := &TaggedCache{items: make(map[string]*entry)}
	go c.startCleanup()
	return c
}

// Get 获取缓存值；过期视为不存在
func (c *TaggedCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, exists := c.items[key]
	if !exists {
		return nil, false
	}
	if time.Now().After(it.expiresAt) {
		// 异步删除过期项
		go c.Delete(key)
		return nil, false
	}
	return it.value, true
}

// Set 设置缓存值
// ttl <= 0 时不缓存（直接丢弃），调用方据此表达 no-store 语义。
func (c *TaggedCache) Set(key string, value any, ttl time.Duration, tags ...string) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = &entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
		tags:      tags,
	}
}

// Delete 删除缓存项
func (c *TaggedCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// InvalidateTag 按标签删除所有携带该标签的缓存项
// 变更操作成功后调用；下一次关联的 GET 必然回源。
func (c *TaggedCache) InvalidateTag(tag string) {
	if tag == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, it := range c.items {
		for _, t := range it.tags {
			if t == tag {
				delete(c.items, key)
				break
			}
		}
	}
}

// Clear 清空缓存
func (c *TaggedCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*entry)
}

// Size 获取缓存大小
func (c *TaggedCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// startCleanup 定期清理过期项
func (c *TaggedCache) startCleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *TaggedCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, key)
		}
	}
}
