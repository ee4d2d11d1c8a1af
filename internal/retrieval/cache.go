package retrieval

import "sync"

// EmbeddingSet 是一个文档的分块及其向量，两者下标一一对应。
// 向量计算彻底失败时为空集合。
type EmbeddingSet struct {
	Chunks  []string
	Vectors [][]float32
}

// Empty 报告集合是否没有可用的上下文。
func (s EmbeddingSet) Empty() bool {
	return len(s.Chunks) == 0 || len(s.Vectors) == 0
}

// Cache 按文档 ID 缓存 EmbeddingSet，生命周期与进程相同，没有淘汰。
type Cache struct {
	mu   sync.RWMutex
	sets map[uint]EmbeddingSet
}

// NewCache 创建一个空缓存。
func NewCache() *Cache {
	return &Cache{sets: make(map[uint]EmbeddingSet)}
}

// Get 返回缓存的集合以及是否命中。
func (c *Cache) Get(documentID uint) (EmbeddingSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set, ok := c.sets[documentID]
	return set, ok
}

// Put 写入集合，已有条目被覆盖。
func (c *Cache) Put(documentID uint, set EmbeddingSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets[documentID] = set
}

// Len 返回缓存的文档数。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sets)
}
