package service

import (
	"errors"
	"net/http"
	"time"

	"shorturls/pkg/cache"
	"shorturls/pkg/logging"
	"shorturls/pkg/storage"
)

const (
	DefaultCodeLength     = 5
	DefaultMaxCodeRetries = 10
)

type Options struct {
	CodeLength     int
	MaxCodeRetries int
	CacheTTL       time.Duration

	// ProbeTimeout enables a reachability check of candidate URLs when > 0.
	ProbeTimeout time.Duration
}

type LinkService struct {
	store  storage.Store
	cache  cache.LinkCacheInterface
	logger *logging.Logger
	opts   Options
	probe  *http.Client
	now    func() time.Time
}

func NewLinkService(store storage.Store, cache cache.LinkCacheInterface, logger *logging.Logger, opts Options) *LinkService {
	if opts.CodeLength <= 0 {
		opts.CodeLength = DefaultCodeLength
	}
	if opts.MaxCodeRetries <= 0 {
		opts.MaxCodeRetries = DefaultMaxCodeRetries
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}

	s := &LinkService{
		store:  store,
		cache:  cache,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
	if opts.ProbeTimeout > 0 {
		s.probe = &http.Client{Timeout: opts.ProbeTimeout}
	}
	return s
}

// CodeLength reports the fixed length of issued short codes.
func (s *LinkService) CodeLength() int {
	return s.opts.CodeLength
}

// mapStoreErr translates storage-level integrity signals into the service
// error taxonomy.
func mapStoreErr(err error) error {
	if errors.Is(err, storage.ErrTooManyRows) {
		return ErrMultipleRecords
	}
	return err
}

func cachedToLink(c *cache.CachedLink) *storage.ShortLink {
	return &storage.ShortLink{
		ID:          c.ID,
		OriginalURL: c.OriginalURL,
		ShortCode:   c.ShortCode,
		CreatedAt:   c.CreatedAt,
	}
}

func linkToCached(l *storage.ShortLink) *cache.CachedLink {
	return &cache.CachedLink{
		ID:          l.ID,
		OriginalURL: l.OriginalURL,
		ShortCode:   l.ShortCode,
		CreatedAt:   l.CreatedAt,
	}
}
