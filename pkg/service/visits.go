package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shorturls/pkg/storage"
)

// RequestMeta carries the client metadata a redirect needs to record its
// visitor.
type RequestMeta struct {
	RemoteAddr string
	UserAgent  string
}

// RecordVisit bumps today's visit counter for the link. The counter is
// created lazily on the day's first redirect; creation and increment are a
// single atomic upsert keyed by (link, day), so two concurrent redirects
// cannot race a duplicate row into existence.
func (s *LinkService) RecordVisit(ctx context.Context, shortLinkID int64, remoteAddr string) (*storage.DailyVisitCounter, error) {
	now := s.now().UTC()
	counter, err := s.store.UpsertDailyVisit(ctx, shortLinkID, dayOf(now), remoteAddr, now)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	s.logger.LogVisit(ctx, shortLinkID, remoteAddr)
	return counter, nil
}

// RecordVisitor bumps the per-address record under the given counter and
// propagates the visit up to the owning short link. Must run after
// RecordVisit, which supplies the counter id.
func (s *LinkService) RecordVisitor(ctx context.Context, meta RequestMeta, counterID int64) (*storage.VisitorRecord, error) {
	if meta.RemoteAddr == "" {
		return nil, errors.New("remote address is required")
	}
	userAgent := meta.UserAgent
	if userAgent == "" {
		userAgent = "N/A"
	}

	now := s.now().UTC()
	visitor, err := s.store.UpsertVisitor(ctx, counterID, meta.RemoteAddr, userAgent, now)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	err = s.store.TouchLinkVisitByCounter(ctx, counterID, meta.RemoteAddr, now)
	if err != nil {
		if errors.Is(err, storage.ErrMissingRow) {
			return nil, fmt.Errorf("owning link for counter %d: %w", counterID, ErrNotFound)
		}
		return nil, mapStoreErr(err)
	}

	return visitor, nil
}

// dayOf truncates a timestamp to its calendar day.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
