package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store with the same upsert and duplicate
// semantics as PostgresStore. It backs handler tests and local development
// without a database.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	links    []*ShortLink
	counters []*DailyVisitCounter
	visitors []*VisitorRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) CreateLink(ctx context.Context, link *ShortLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.links {
		if l.ShortCode == link.ShortCode || l.OriginalURL == link.OriginalURL {
			return ErrDuplicate
		}
	}

	link.ID = s.id()
	link.CreatedAt = time.Now().UTC()
	stored := *link
	s.links = append(s.links, &stored)
	return nil
}

func (s *MemoryStore) GetLinkByCode(ctx context.Context, code string) (*ShortLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l.ShortCode == code {
			copied := *l
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetLinkByOriginalURL(ctx context.Context, originalURL string) (*ShortLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l.OriginalURL == originalURL {
			copied := *l
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetLinkByID(ctx context.Context, id int64) (*ShortLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l.ID == id {
			copied := *l
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l.ShortCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) TouchLinkVisitByCounter(ctx context.Context, counterID int64, remoteAddr string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.counters {
		if c.ID != counterID {
			continue
		}
		for _, l := range s.links {
			if l.ID == c.ShortLinkID {
				t, addr := at, remoteAddr
				l.LastVisitAt = &t
				l.LastVisitFrom = &addr
				return nil
			}
		}
	}
	return ErrMissingRow
}

func (s *MemoryStore) ListLinks(ctx context.Context, filters ListFilters) ([]LinkWithVisits, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []LinkWithVisits
	for _, l := range s.links {
		if filters.From != nil && l.CreatedAt.Before(*filters.From) {
			continue
		}
		if filters.To != nil && !l.CreatedAt.Before(*filters.To) {
			continue
		}
		var total int64
		for _, c := range s.counters {
			if c.ShortLinkID == l.ID {
				total += int64(c.VisitCount)
			}
		}
		out = append(out, LinkWithVisits{ShortLink: *l, Visits: total})
	}

	sortLinks(out, filters.OrderBy)
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

// sortLinks orders rows the way PostgresStore does for the same OrderBy
// value: a whitelisted column name with an optional " DESC" suffix.
func sortLinks(links []LinkWithVisits, orderBy string) {
	col := orderBy
	desc := strings.HasSuffix(col, " DESC")
	col = strings.TrimSuffix(col, " DESC")

	var less func(a, b LinkWithVisits) bool
	switch col {
	case "", "id":
		less = func(a, b LinkWithVisits) bool { return a.ID < b.ID }
	case "created_at":
		less = func(a, b LinkWithVisits) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "original_url":
		less = func(a, b LinkWithVisits) bool { return a.OriginalURL < b.OriginalURL }
	case "short_code":
		less = func(a, b LinkWithVisits) bool { return a.ShortCode < b.ShortCode }
	case "last_visit_at":
		less = func(a, b LinkWithVisits) bool {
			if a.LastVisitAt == nil || b.LastVisitAt == nil {
				return b.LastVisitAt != nil
			}
			return a.LastVisitAt.Before(*b.LastVisitAt)
		}
	default:
		return
	}

	sort.SliceStable(links, func(i, j int) bool {
		if desc {
			return less(links[j], links[i])
		}
		return less(links[i], links[j])
	})
}

func (s *MemoryStore) UpsertDailyVisit(ctx context.Context, shortLinkID int64, day time.Time, remoteAddr string, at time.Time) (*DailyVisitCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.counters {
		if c.ShortLinkID == shortLinkID && c.VisitDate.Equal(day) {
			c.VisitCount++
			t, addr := at, remoteAddr
			c.LastVisitAt = &t
			c.LastVisitFrom = &addr
			copied := *c
			return &copied, nil
		}
	}

	t, addr := at, remoteAddr
	c := &DailyVisitCounter{
		ID:            s.id(),
		ShortLinkID:   shortLinkID,
		VisitDate:     day,
		VisitCount:    1,
		LastVisitAt:   &t,
		LastVisitFrom: &addr,
	}
	s.counters = append(s.counters, c)
	copied := *c
	return &copied, nil
}

func (s *MemoryStore) UpsertVisitor(ctx context.Context, counterID int64, remoteAddr, userAgent string, at time.Time) (*VisitorRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.visitors {
		if v.DailyVisitCounterID == counterID && v.RemoteAddress == remoteAddr {
			v.VisitCount++
			t := at
			v.LastVisitAt = &t
			copied := *v
			return &copied, nil
		}
	}

	v := &VisitorRecord{
		ID:                  s.id(),
		DailyVisitCounterID: counterID,
		RemoteAddress:       remoteAddr,
		UserAgent:           userAgent,
		VisitCount:          1,
		FirstVisitAt:        at,
	}
	s.visitors = append(s.visitors, v)
	copied := *v
	return &copied, nil
}

func (s *MemoryStore) GetDailyVisit(ctx context.Context, shortLinkID int64, day time.Time) (*DailyVisitCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []*DailyVisitCounter
	for _, c := range s.counters {
		if c.ShortLinkID == shortLinkID && c.VisitDate.Equal(day) {
			found = append(found, c)
		}
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		copied := *found[0]
		return &copied, nil
	default:
		return nil, ErrTooManyRows
	}
}

func (s *MemoryStore) ListVisits(ctx context.Context, shortLinkID int64) ([]DailyVisitCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []DailyVisitCounter
	for _, c := range s.counters {
		if c.ShortLinkID == shortLinkID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListVisitors(ctx context.Context, shortLinkID int64) ([]VisitorRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counterIDs := make(map[int64]bool)
	for _, c := range s.counters {
		if c.ShortLinkID == shortLinkID {
			counterIDs[c.ID] = true
		}
	}
	var out []VisitorRecord
	for _, v := range s.visitors {
		if counterIDs[v.DailyVisitCounterID] {
			out = append(out, *v)
		}
	}
	return out, nil
}
