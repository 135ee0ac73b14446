package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned by writes that hit a unique constraint. Callers
// treat it as a retry or fall-back-to-read signal, not a fatal error.
var ErrDuplicate = errors.New("storage: duplicate row")

// ErrTooManyRows is returned by lookups that expect at most one row when the
// store holds more. It marks a broken uniqueness invariant.
var ErrTooManyRows = errors.New("storage: more than one row matched")

// ErrMissingRow is returned by updates that matched nothing, e.g. touching
// the last-visit fields of a link that no longer exists.
var ErrMissingRow = errors.New("storage: no row matched")

// ListFilters narrows and orders ListLinks results. The created_at window is
// half-open: From is inclusive, To is exclusive. OrderBy must already be a
// valid column name; Limit of 0 means no cap.
type ListFilters struct {
	From    *time.Time
	To      *time.Time
	OrderBy string
	Limit   int
}

type LinkStore interface {
	CreateLink(ctx context.Context, link *ShortLink) error
	GetLinkByCode(ctx context.Context, code string) (*ShortLink, error)
	GetLinkByOriginalURL(ctx context.Context, originalURL string) (*ShortLink, error)
	GetLinkByID(ctx context.Context, id int64) (*ShortLink, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	TouchLinkVisitByCounter(ctx context.Context, counterID int64, remoteAddr string, at time.Time) error
	ListLinks(ctx context.Context, filters ListFilters) ([]LinkWithVisits, error)
}

type VisitStore interface {
	UpsertDailyVisit(ctx context.Context, shortLinkID int64, day time.Time, remoteAddr string, at time.Time) (*DailyVisitCounter, error)
	UpsertVisitor(ctx context.Context, counterID int64, remoteAddr, userAgent string, at time.Time) (*VisitorRecord, error)
	GetDailyVisit(ctx context.Context, shortLinkID int64, day time.Time) (*DailyVisitCounter, error)
	ListVisits(ctx context.Context, shortLinkID int64) ([]DailyVisitCounter, error)
	ListVisitors(ctx context.Context, shortLinkID int64) ([]VisitorRecord, error)
}

// Store is the full persistence contract the service layer depends on.
type Store interface {
	LinkStore
	VisitStore
}
