package storage

import (
	"time"
)

type ShortLink struct {
	ID            int64      `json:"id" db:"id"`
	OriginalURL   string     `json:"original_url" db:"original_url"`
	ShortCode     string     `json:"short_code" db:"short_code"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	LastVisitAt   *time.Time `json:"last_visit_at,omitempty" db:"last_visit_at"`
	LastVisitFrom *string    `json:"last_visit_from,omitempty" db:"last_visit_from"`
}

// LinkWithVisits is a ShortLink joined with its lifetime visit total
// across all daily counters.
type LinkWithVisits struct {
	ShortLink
	Visits int64 `json:"visits" db:"visits"`
}

type DailyVisitCounter struct {
	ID            int64      `json:"id" db:"id"`
	ShortLinkID   int64      `json:"short_link_id" db:"short_link_id"`
	VisitDate     time.Time  `json:"visit_date" db:"visit_date"`
	VisitCount    int        `json:"visit_count" db:"visit_count"`
	LastVisitAt   *time.Time `json:"last_visit_at,omitempty" db:"last_visit_at"`
	LastVisitFrom *string    `json:"last_visit_from,omitempty" db:"last_visit_from"`
}

type VisitorRecord struct {
	ID                  int64      `json:"id" db:"id"`
	DailyVisitCounterID int64      `json:"daily_visit_counter_id" db:"daily_visit_counter_id"`
	RemoteAddress       string     `json:"remote_address" db:"remote_address"`
	UserAgent           string     `json:"user_agent" db:"user_agent"`
	VisitCount          int        `json:"visit_count" db:"visit_count"`
	FirstVisitAt        time.Time  `json:"first_visit_at" db:"first_visit_at"`
	LastVisitAt         *time.Time `json:"last_visit_at,omitempty" db:"last_visit_at"`
}
