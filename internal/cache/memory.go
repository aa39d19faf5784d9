package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/d60-Lab/study-partner/internal/metrics"
	"github.com/d60-Lab/study-partner/internal/model"
)

// Memory 进程内带过期的 LRU
type Memory struct {
	// mu 保证代数比较与写入、递增与清空各自原子
	mu  sync.Mutex
	gen uint64
	lru *expirable.LRU[int, []*model.Partner]
}

func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 64
	}
	return &Memory{lru: expirable.NewLRU[int, []*model.Partner](size, nil, ttl)}
}

func (m *Memory) Generation(context.Context) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

func (m *Memory) Get(_ context.Context, limit int) ([]*model.Partner, bool) {
	v, ok := m.lru.Get(limit)
	if !ok {
		metrics.CacheMisses.Inc()
		return nil, false
	}
	metrics.CacheHits.Inc()
	return clonePartners(v), true
}

func (m *Memory) Set(_ context.Context, gen uint64, limit int, list []*model.Partner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	m.lru.Add(limit, clonePartners(list))
}

func (m *Memory) Invalidate(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.lru.Purge()
}
