// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache stores assembled Documents by fingerprint for the lifetime of
// the process. Nothing is written to disk.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pdiddy/modulegen/pkg/types"
)

// ResultCache maps a fingerprint to a previously assembled Document.
type ResultCache interface {
	// Get returns the Document stored under fp, if any.
	Get(ctx context.Context, fp types.Fingerprint) (*types.Document, bool, error)

	// Put stores doc under fp, replacing any previous entry.
	Put(ctx context.Context, fp types.Fingerprint, doc *types.Document) error

	// Len returns the number of cached entries.
	Len() int
}

// New returns the cache selected by cfg.Driver.
func New(cfg types.CacheConfig) (ResultCache, error) {
	switch cfg.Driver {
	case types.CacheMemory, "":
		return NewMemory(), nil
	case types.CacheSQLite:
		return NewSQLite()
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// Memory is an unbounded map-backed ResultCache safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[types.Fingerprint]types.CacheEntry
	now     func() time.Time
}

// NewMemory creates an empty Memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[types.Fingerprint]types.CacheEntry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, fp types.Fingerprint) (*types.Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[fp]
	if !ok {
		return nil, false, nil
	}
	return e.Document, true, nil
}

func (m *Memory) Put(_ context.Context, fp types.Fingerprint, doc *types.Document) error {
	if doc == nil {
		return fmt.Errorf("cache: nil document for %s", fp.Short())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[fp] = types.CacheEntry{Fingerprint: fp, Document: doc, CreatedAt: m.now().UTC()}
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Entry returns the full cache entry for fp.
func (m *Memory) Entry(fp types.Fingerprint) (types.CacheEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[fp]
	return e, ok
}
