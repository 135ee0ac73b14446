package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"shorturls/pkg/metrics"
	"shorturls/pkg/storage"
)

// Shorten issues a short link for rawURL. Shortening is idempotent: the same
// original URL always resolves to the same code. The returned bool reports
// whether a new link was created.
func (s *LinkService) Shorten(ctx context.Context, rawURL string) (*storage.ShortLink, bool, error) {
	normalized, err := normalizeURL(rawURL)
	if err != nil {
		return nil, false, err
	}

	if s.probe != nil {
		if err := s.probeURL(ctx, normalized); err != nil {
			return nil, false, ErrInvalidURL
		}
	}

	// Idempotence check: cache keyed by original URL, then the store.
	cached, err := s.cache.GetByOriginalURL(ctx, normalized)
	if err != nil {
		s.logger.Warn(ctx, "cache lookup by url failed", "error", err)
	}
	if cached != nil {
		metrics.CacheHits.WithLabelValues("url").Inc()
		return cachedToLink(cached), false, nil
	}
	metrics.CacheMisses.WithLabelValues("url").Inc()

	existing, err := s.store.GetLinkByOriginalURL(ctx, normalized)
	if err != nil {
		return nil, false, mapStoreErr(err)
	}
	if existing != nil {
		s.cacheLink(ctx, existing)
		return existing, false, nil
	}

	link, err := s.createWithFreshCode(ctx, normalized)
	if err != nil {
		return nil, false, err
	}

	s.cacheLink(ctx, link)
	s.logger.LogLinkOperation(ctx, "create", link.ShortCode, true)
	metrics.LinksCreated.Inc()
	return link, true, nil
}

// createWithFreshCode draws random codes until the insert sticks. The unique
// constraints on short_code and original_url are the authoritative guard
// against races between the existence check and the insert: a duplicate on
// insert is a retry signal, not a fatal error.
func (s *LinkService) createWithFreshCode(ctx context.Context, originalURL string) (*storage.ShortLink, error) {
	for attempt := 0; attempt < s.opts.MaxCodeRetries; attempt++ {
		code := newCode(s.opts.CodeLength)

		exists, err := s.store.CodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		link := &storage.ShortLink{OriginalURL: originalURL, ShortCode: code}
		err = s.store.CreateLink(ctx, link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, storage.ErrDuplicate) {
			return nil, err
		}

		// Either the code collided or a concurrent request inserted the
		// same original URL first. The latter wins: return its row.
		concurrent, lookupErr := s.store.GetLinkByOriginalURL(ctx, originalURL)
		if lookupErr != nil {
			return nil, mapStoreErr(lookupErr)
		}
		if concurrent != nil {
			return concurrent, nil
		}
	}
	return nil, ErrCodeSpaceExhausted
}

// newCode derives a fixed-length code from random UUIDs, dashes stripped.
func newCode(length int) string {
	var sb strings.Builder
	for sb.Len() < length {
		sb.WriteString(strings.ReplaceAll(uuid.NewString(), "-", ""))
	}
	return sb.String()[:length]
}

// normalizeURL prefixes a scheme-less candidate with http:// and validates
// the result as an absolute http(s) URL.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	// "localhost:3000" parses with scheme "localhost", so the presence of
	// "://" decides whether a leading token is really a scheme.
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ErrInvalidURL
	}
	host := parsed.Hostname()
	if host == "" {
		return "", ErrInvalidURL
	}
	if net.ParseIP(host) == nil && host != "localhost" && !strings.Contains(host, ".") {
		return "", ErrInvalidURL
	}

	return parsed.String(), nil
}

func (s *LinkService) probeURL(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := s.probe.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (s *LinkService) cacheLink(ctx context.Context, link *storage.ShortLink) {
	cached := linkToCached(link)
	if _, err := s.cache.PutByOriginalURL(ctx, cached, s.opts.CacheTTL); err != nil {
		s.logger.Warn(ctx, "caching link by url failed", "error", err)
	}
	if _, err := s.cache.PutByCode(ctx, cached, s.opts.CacheTTL); err != nil {
		s.logger.Warn(ctx, "caching link by code failed", "error", err)
	}
}
