package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *PostgresStore) CreateLink(ctx context.Context, link *ShortLink) error {
	query := `INSERT INTO short_links (original_url, short_code) VALUES ($1, $2) RETURNING id, created_at`
	err := s.pool.QueryRow(ctx, query, link.OriginalURL, link.ShortCode).Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *PostgresStore) GetLinkByCode(ctx context.Context, code string) (*ShortLink, error) {
	query := `SELECT id, original_url, short_code, created_at, last_visit_at, last_visit_from FROM short_links WHERE short_code = $1`
	return s.scanLink(s.pool.QueryRow(ctx, query, code))
}

func (s *PostgresStore) GetLinkByOriginalURL(ctx context.Context, originalURL string) (*ShortLink, error) {
	query := `SELECT id, original_url, short_code, created_at, last_visit_at, last_visit_from FROM short_links WHERE original_url = $1`
	return s.scanLink(s.pool.QueryRow(ctx, query, originalURL))
}

func (s *PostgresStore) GetLinkByID(ctx context.Context, id int64) (*ShortLink, error) {
	query := `SELECT id, original_url, short_code, created_at, last_visit_at, last_visit_from FROM short_links WHERE id = $1`
	return s.scanLink(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresStore) scanLink(row pgx.Row) (*ShortLink, error) {
	var link ShortLink
	err := row.Scan(&link.ID, &link.OriginalURL, &link.ShortCode, &link.CreatedAt, &link.LastVisitAt, &link.LastVisitFrom)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (s *PostgresStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM short_links WHERE short_code = $1)`, code).Scan(&exists)
	return exists, err
}

// TouchLinkVisitByCounter propagates the latest visit up to the short link
// that owns the given daily counter. Matching nothing means the counter or
// its parent link is gone, which is an integrity fault for the caller.
func (s *PostgresStore) TouchLinkVisitByCounter(ctx context.Context, counterID int64, remoteAddr string, at time.Time) error {
	query := `UPDATE short_links SET last_visit_at = $2, last_visit_from = $3
FROM daily_visit_counters d
WHERE d.id = $1 AND short_links.id = d.short_link_id`
	tag, err := s.pool.Exec(ctx, query, counterID, at, remoteAddr)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMissingRow
	}
	return nil
}

// ListLinks returns links with their lifetime visit totals. The total is not
// restricted by the date filters; those apply to created_at only.
func (s *PostgresStore) ListLinks(ctx context.Context, filters ListFilters) ([]LinkWithVisits, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT s.id, s.original_url, s.short_code, s.created_at, s.last_visit_at, s.last_visit_from, COALESCE(v.total, 0) AS visits
FROM short_links s
LEFT JOIN (SELECT short_link_id, SUM(visit_count) AS total FROM daily_visit_counters GROUP BY short_link_id) v ON v.short_link_id = s.id`)

	var args []any
	var conds []string
	if filters.From != nil {
		args = append(args, *filters.From)
		conds = append(conds, fmt.Sprintf("s.created_at >= $%d", len(args)))
	}
	if filters.To != nil {
		args = append(args, *filters.To)
		conds = append(conds, fmt.Sprintf("s.created_at < $%d", len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	// OrderBy is validated against a column whitelist by the caller.
	orderBy := filters.OrderBy
	if orderBy == "" {
		orderBy = "id"
	}
	fmt.Fprintf(&sb, " ORDER BY s.%s", orderBy)
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []LinkWithVisits
	for rows.Next() {
		var l LinkWithVisits
		if err := rows.Scan(&l.ID, &l.OriginalURL, &l.ShortCode, &l.CreatedAt, &l.LastVisitAt, &l.LastVisitFrom, &l.Visits); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// UpsertDailyVisit inserts or increments the counter for (link, day) in one
// statement, so concurrent redirects can never race a second row into
// existence. The returned row reflects this visit.
func (s *PostgresStore) UpsertDailyVisit(ctx context.Context, shortLinkID int64, day time.Time, remoteAddr string, at time.Time) (*DailyVisitCounter, error) {
	query := `INSERT INTO daily_visit_counters (short_link_id, visit_date, visit_count, last_visit_at, last_visit_from)
VALUES ($1, $2, 1, $3, $4)
ON CONFLICT (short_link_id, visit_date)
DO UPDATE SET visit_count = daily_visit_counters.visit_count + 1, last_visit_at = EXCLUDED.last_visit_at, last_visit_from = EXCLUDED.last_visit_from
RETURNING id, short_link_id, visit_date, visit_count, last_visit_at, last_visit_from`
	var c DailyVisitCounter
	err := s.pool.QueryRow(ctx, query, shortLinkID, day, at, remoteAddr).Scan(
		&c.ID, &c.ShortLinkID, &c.VisitDate, &c.VisitCount, &c.LastVisitAt, &c.LastVisitFrom)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertVisitor inserts or increments the visitor row for (counter, address).
// A fresh row leaves last_visit_at NULL; it is only stamped from the second
// visit onward, while first_visit_at keeps the initial timestamp.
func (s *PostgresStore) UpsertVisitor(ctx context.Context, counterID int64, remoteAddr, userAgent string, at time.Time) (*VisitorRecord, error) {
	query := `INSERT INTO visitor_records (daily_visit_counter_id, remote_address, user_agent, visit_count, first_visit_at)
VALUES ($1, $2, $3, 1, $4)
ON CONFLICT (daily_visit_counter_id, remote_address)
DO UPDATE SET visit_count = visitor_records.visit_count + 1, last_visit_at = $4
RETURNING id, daily_visit_counter_id, remote_address, user_agent, visit_count, first_visit_at, last_visit_at`
	var v VisitorRecord
	err := s.pool.QueryRow(ctx, query, counterID, remoteAddr, userAgent, at).Scan(
		&v.ID, &v.DailyVisitCounterID, &v.RemoteAddress, &v.UserAgent, &v.VisitCount, &v.FirstVisitAt, &v.LastVisitAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetDailyVisit expects at most one row per (link, day). More than one means
// the uniqueness invariant is broken and is reported as ErrTooManyRows.
func (s *PostgresStore) GetDailyVisit(ctx context.Context, shortLinkID int64, day time.Time) (*DailyVisitCounter, error) {
	query := `SELECT id, short_link_id, visit_date, visit_count, last_visit_at, last_visit_from FROM daily_visit_counters WHERE short_link_id = $1 AND visit_date = $2`
	rows, err := s.pool.Query(ctx, query, shortLinkID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counters []DailyVisitCounter
	for rows.Next() {
		var c DailyVisitCounter
		if err := rows.Scan(&c.ID, &c.ShortLinkID, &c.VisitDate, &c.VisitCount, &c.LastVisitAt, &c.LastVisitFrom); err != nil {
			return nil, err
		}
		counters = append(counters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(counters) {
	case 0:
		return nil, nil
	case 1:
		return &counters[0], nil
	default:
		return nil, ErrTooManyRows
	}
}

func (s *PostgresStore) ListVisits(ctx context.Context, shortLinkID int64) ([]DailyVisitCounter, error) {
	query := `SELECT id, short_link_id, visit_date, visit_count, last_visit_at, last_visit_from FROM daily_visit_counters WHERE short_link_id = $1 ORDER BY id`
	rows, err := s.pool.Query(ctx, query, shortLinkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counters []DailyVisitCounter
	for rows.Next() {
		var c DailyVisitCounter
		if err := rows.Scan(&c.ID, &c.ShortLinkID, &c.VisitDate, &c.VisitCount, &c.LastVisitAt, &c.LastVisitFrom); err != nil {
			return nil, err
		}
		counters = append(counters, c)
	}
	return counters, rows.Err()
}

func (s *PostgresStore) ListVisitors(ctx context.Context, shortLinkID int64) ([]VisitorRecord, error) {
	query := `SELECT v.id, v.daily_visit_counter_id, v.remote_address, v.user_agent, v.visit_count, v.first_visit_at, v.last_visit_at
FROM visitor_records v
JOIN daily_visit_counters d ON d.id = v.daily_visit_counter_id
WHERE d.short_link_id = $1
ORDER BY v.id`
	rows, err := s.pool.Query(ctx, query, shortLinkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visitors []VisitorRecord
	for rows.Next() {
		var v VisitorRecord
		if err := rows.Scan(&v.ID, &v.DailyVisitCounterID, &v.RemoteAddress, &v.UserAgent, &v.VisitCount, &v.FirstVisitAt, &v.LastVisitAt); err != nil {
			return nil, err
		}
		visitors = append(visitors, v)
	}
	return visitors, rows.Err()
}
