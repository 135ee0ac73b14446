package service

import (
	"context"
	"errors"
	"testing"

	"shorturls/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(store *mockStore, c *mockCache) *LinkService {
	return NewLinkService(store, c, logging.NewLogger(logging.LevelError), Options{})
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"https kept", "https://example.com", "https://example.com", false},
		{"http kept", "http://example.com/path?q=1", "http://example.com/path?q=1", false},
		{"scheme prefixed", "example.com", "http://example.com", false},
		{"scheme prefixed with path", "example.com/a/b", "http://example.com/a/b", false},
		{"http in path not mistaken for scheme", "example.com/http-archive", "http://example.com/http-archive", false},
		{"host port not mistaken for scheme", "localhost:3000", "http://localhost:3000", false},
		{"host port with path prefixed", "example.com:8080/a/b", "http://example.com:8080/a/b", false},
		{"localhost allowed", "http://localhost:3000", "http://localhost:3000", false},
		{"ip allowed", "http://127.0.0.1:8080", "http://127.0.0.1:8080", false},
		{"garbage", "??", "", true},
		{"empty", "", "", true},
		{"whitespace", "   ", "", true},
		{"ftp rejected", "ftp://example.com", "", true},
		{"javascript rejected", "javascript:alert(1)", "", true},
		{"no host", "http://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := normalizeURL(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNewCodeLength(t *testing.T) {
	for _, length := range []int{1, 5, 8, 40} {
		code := newCode(length)
		assert.Len(t, code, length)
	}
}

func TestShortenCreatesLink(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, newMockCache())

	link, created, err := svc.Shorten(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, link.ShortCode, DefaultCodeLength)
	assert.Equal(t, "https://example.com", link.OriginalURL)
	assert.NotZero(t, link.ID)
}

func TestShortenIsIdempotent(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, newMockCache())

	first, created, err := svc.Shorten(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Shorten(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ShortCode, second.ShortCode)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.calls["CreateLink"])
}

func TestShortenIdempotentAcrossColdCache(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, newMockCache())

	first, _, err := svc.Shorten(context.Background(), "https://example.com")
	require.NoError(t, err)

	// Fresh cache, same store: the store lookup must still dedupe.
	svc2 := newTestService(store, newMockCache())
	second, created, err := svc2.Shorten(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ShortCode, second.ShortCode)
}

func TestShortenInvalidURLWritesNothing(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, newMockCache())

	_, _, err := svc.Shorten(context.Background(), "??")
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.Empty(t, store.calls)
}

func TestShortenRetriesOnDuplicateCode(t *testing.T) {
	store := newMockStore()
	store.failDuplicates = 2
	svc := newTestService(store, newMockCache())

	link, created, err := svc.Shorten(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, link.ShortCode, DefaultCodeLength)
	assert.Equal(t, 3, store.calls["CreateLink"])
}

func TestShortenCodeSpaceExhausted(t *testing.T) {
	store := newMockStore()
	store.failDuplicates = 1000
	svc := newTestService(store, newMockCache())

	_, _, err := svc.Shorten(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
	assert.Equal(t, DefaultMaxCodeRetries, store.calls["CreateLink"])
}

func TestShortenSurvivesCacheFailure(t *testing.T) {
	store := newMockStore()
	c := newMockCache()
	c.failAll = true
	c.err = errors.New("redis down")
	svc := newTestService(store, c)

	link, created, err := svc.Shorten(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, link.ShortCode)
}

func TestShortenRoundTrip(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, newMockCache())

	link, _, err := svc.Shorten(context.Background(), "https://example.com/some/page")
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/some/page", resolved.OriginalURL)
}
