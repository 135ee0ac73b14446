package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shorturls/pkg/storage"
)

// ListQuery narrows and orders a link listing. All supplied date filters
// apply together as an AND on the creation timestamp; Date is an exact-day
// shorthand. Limit of 0 means no cap.
type ListQuery struct {
	FromDate *time.Time
	ToDate   *time.Time
	Date     *time.Time
	OrderBy  string
	Limit    int
}

// orderColumns whitelists external order_by names against real columns.
var orderColumns = map[string]string{
	"id":            "id",
	"created":       "created_at",
	"created_at":    "created_at",
	"original_url":  "original_url",
	"short_code":    "short_code",
	"last_visit_at": "last_visit_at",
}

// ListLinks returns links matching the query, each with its lifetime visit
// total. The total always covers all days, regardless of the date filters.
func (s *LinkService) ListLinks(ctx context.Context, q ListQuery) ([]storage.LinkWithVisits, error) {
	orderBy, err := resolveOrder(q.OrderBy)
	if err != nil {
		return nil, err
	}

	filters := storage.ListFilters{OrderBy: orderBy, Limit: q.Limit}
	if q.FromDate != nil {
		filters.From = startOfDay(*q.FromDate)
	}
	if q.ToDate != nil {
		filters.To = nextDay(*q.ToDate)
	}
	if q.Date != nil {
		// Exact day intersects with any range bounds already set.
		if from := startOfDay(*q.Date); filters.From == nil || from.After(*filters.From) {
			filters.From = from
		}
		if to := nextDay(*q.Date); filters.To == nil || to.Before(*filters.To) {
			filters.To = to
		}
	}

	links, err := s.store.ListLinks(ctx, filters)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return links, nil
}

// GetVisits returns all daily counters for a link in creation order. An
// unknown link yields an empty slice, not an error.
func (s *LinkService) GetVisits(ctx context.Context, shortLinkID int64) ([]storage.DailyVisitCounter, error) {
	visits, err := s.store.ListVisits(ctx, shortLinkID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return visits, nil
}

// GetVisitors returns all visitor records across all of a link's counters.
func (s *LinkService) GetVisitors(ctx context.Context, shortLinkID int64) ([]storage.VisitorRecord, error) {
	visitors, err := s.store.ListVisitors(ctx, shortLinkID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return visitors, nil
}

// resolveOrder maps an external order_by name onto a column, honoring a
// leading "-" for descending order.
func resolveOrder(orderBy string) (string, error) {
	if orderBy == "" {
		return "", nil
	}
	desc := strings.HasPrefix(orderBy, "-")
	name := strings.TrimPrefix(orderBy, "-")
	col, ok := orderColumns[name]
	if !ok {
		return "", fmt.Errorf("unknown order_by field %q", name)
	}
	if desc {
		col += " DESC"
	}
	return col, nil
}

func startOfDay(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// nextDay is the exclusive upper bound covering t's calendar day.
func nextDay(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return &d
}
