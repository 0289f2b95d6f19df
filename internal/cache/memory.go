package cache

import (
	"context"
	"sort"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// Memory implements Backend in process.
type Memory struct {
	data            *xsync.MapOf[string, *memoryEntry]
	maxSize         int
	cleanupInterval time.Duration
	stopCh          chan struct{}
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemory creates an in-memory cache. maxSize <= 0 disables the size limit.
func NewMemory(maxSize int, cleanupInterval time.Duration) *Memory {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	m := &Memory{
		data:            xsync.NewMapOf[string, *memoryEntry](),
		maxSize:         maxSize,
		cleanupInterval: cleanupInterval,
		stopCh:          make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := m.data.Load(key)
	if !ok {
		return nil, false, nil
	}
	if entry.expired(time.Now()) {
		m.data.Delete(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := &memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.data.Store(key, e)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	return m.data.Size()
}

func (m *Memory) Close() error {
	close(m.stopCh)
	return nil
}

func (m *Memory) cleanupLoop() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

// cleanup drops expired entries, then the ones expiring first while the
// cache is over its size limit.
func (m *Memory) cleanup() {
	now := time.Now()
	type kv struct {
		key       string
		expiresAt time.Time
	}
	var live []kv
	m.data.Range(func(key string, e *memoryEntry) bool {
		if e.expired(now) {
			m.data.Delete(key)
		} else {
			live = append(live, kv{key, e.expiresAt})
		}
		return true
	})
	if m.maxSize <= 0 || len(live) <= m.maxSize {
		return
	}
	sort.Slice(live, func(i, j int) bool {
		a, b := live[i].expiresAt, live[j].expiresAt
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		return a.Before(b)
	})
	for _, e := range live[:len(live)-m.maxSize] {
		m.data.Delete(e.key)
	}
}
