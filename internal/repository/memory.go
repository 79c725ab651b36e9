package repository

import (
	"context"
	"sync"
	"time"
)

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryRateLimitRepository хранит окна в памяти процесса.
// Используется, пока Redis недоступен.
type MemoryRateLimitRepository struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	now     func() time.Time
}

func NewMemoryRateLimitRepository() *MemoryRateLimitRepository {
	return &MemoryRateLimitRepository{
		entries: make(map[string]*rateLimitEntry),
		now:     time.Now,
	}
}

func (r *MemoryRateLimitRepository) CheckRateLimit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok || !now.Before(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		r.entries[key] = entry
	}
	entry.count++

	return entry.count <= limit, nil
}

// Sweep удаляет истекшие окна.
func (r *MemoryRateLimitRepository) Sweep() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, entry := range r.entries {
		if !now.Before(entry.expiresAt) {
			delete(r.entries, key)
			removed++
		}
	}
	return removed
}
