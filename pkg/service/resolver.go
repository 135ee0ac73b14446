package service

import (
	"context"

	"shorturls/pkg/metrics"
	"shorturls/pkg/storage"
)

// Resolve looks up the link behind a short code. A wrong-length code is
// rejected before any cache or store access.
func (s *LinkService) Resolve(ctx context.Context, code string) (*storage.ShortLink, error) {
	if len(code) != s.opts.CodeLength {
		return nil, ErrMalformedCode
	}

	cached, err := s.cache.GetByCode(ctx, code)
	if err != nil {
		s.logger.Warn(ctx, "cache lookup by code failed", "error", err)
	}
	if cached != nil {
		metrics.CacheHits.WithLabelValues("code").Inc()
		return cachedToLink(cached), nil
	}
	metrics.CacheMisses.WithLabelValues("code").Inc()

	link, err := s.store.GetLinkByCode(ctx, code)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if link == nil {
		return nil, ErrNotFound
	}

	if _, err := s.cache.PutByCode(ctx, linkToCached(link), s.opts.CacheTTL); err != nil {
		s.logger.Warn(ctx, "caching link by code failed", "error", err)
	}

	return link, nil
}
