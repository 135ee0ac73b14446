package service

import (
	"context"
	"sync"
	"time"

	"shorturls/pkg/cache"
	"shorturls/pkg/storage"
)

// mockStore instruments the in-memory store with call counting and an
// injectable duplicate failure for the collision retry path.
type mockStore struct {
	*storage.MemoryStore
	mu    sync.Mutex
	calls map[string]int

	// failDuplicates makes the next N CreateLink calls fail with
	// ErrDuplicate.
	failDuplicates int
}

func newMockStore() *mockStore {
	return &mockStore{
		MemoryStore: storage.NewMemoryStore(),
		calls:       make(map[string]int),
	}
}

func (m *mockStore) record(name string) {
	m.mu.Lock()
	m.calls[name]++
	m.mu.Unlock()
}

func (m *mockStore) CreateLink(ctx context.Context, link *storage.ShortLink) error {
	m.record("CreateLink")
	m.mu.Lock()
	if m.failDuplicates > 0 {
		m.failDuplicates--
		m.mu.Unlock()
		return storage.ErrDuplicate
	}
	m.mu.Unlock()
	return m.MemoryStore.CreateLink(ctx, link)
}

func (m *mockStore) GetLinkByCode(ctx context.Context, code string) (*storage.ShortLink, error) {
	m.record("GetLinkByCode")
	return m.MemoryStore.GetLinkByCode(ctx, code)
}

func (m *mockStore) GetLinkByOriginalURL(ctx context.Context, originalURL string) (*storage.ShortLink, error) {
	m.record("GetLinkByOriginalURL")
	return m.MemoryStore.GetLinkByOriginalURL(ctx, originalURL)
}

func (m *mockStore) CodeExists(ctx context.Context, code string) (bool, error) {
	m.record("CodeExists")
	return m.MemoryStore.CodeExists(ctx, code)
}

func (m *mockStore) UpsertDailyVisit(ctx context.Context, shortLinkID int64, day time.Time, remoteAddr string, at time.Time) (*storage.DailyVisitCounter, error) {
	m.record("UpsertDailyVisit")
	return m.MemoryStore.UpsertDailyVisit(ctx, shortLinkID, day, remoteAddr, at)
}

// mockCache is an in-memory cache.LinkCacheInterface. Setting failAll makes
// every call error, to verify cache failures stay non-fatal.
type mockCache struct {
	mu      sync.Mutex
	byCode  map[string]*cache.CachedLink
	byURL   map[string]*cache.CachedLink
	failAll bool
	err     error
}

func newMockCache() *mockCache {
	return &mockCache{
		byCode: make(map[string]*cache.CachedLink),
		byURL:  make(map[string]*cache.CachedLink),
	}
}

func (m *mockCache) GetByCode(ctx context.Context, code string) (*cache.CachedLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, m.err
	}
	return m.byCode[code], nil
}

func (m *mockCache) GetByOriginalURL(ctx context.Context, originalURL string) (*cache.CachedLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, m.err
	}
	return m.byURL[originalURL], nil
}

func (m *mockCache) PutByCode(ctx context.Context, link *cache.CachedLink, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return false, m.err
	}
	if _, ok := m.byCode[link.ShortCode]; ok {
		return false, nil
	}
	m.byCode[link.ShortCode] = link
	return true, nil
}

func (m *mockCache) PutByOriginalURL(ctx context.Context, link *cache.CachedLink, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return false, m.err
	}
	if _, ok := m.byURL[link.OriginalURL]; ok {
		return false, nil
	}
	m.byURL[link.OriginalURL] = link
	return true, nil
}
