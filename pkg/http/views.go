package http

import (
	"time"

	"shorturls/pkg/storage"
)

// Layouts shared by every serializer. The field names and formats below are
// a stable external contract.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

type LinkView struct {
	ID          int64  `json:"id"`
	ShortURL    string `json:"shortUrl"`
	RedirectURL string `json:"redirectUrl"`
	Created     string `json:"created"`
	LastIP      string `json:"lastIP"`
	Visits      int64  `json:"visits"`
}

type VisitView struct {
	ID          int64   `json:"id"`
	Visits      int     `json:"visits"`
	Created     string  `json:"created"`
	LastVisitAt *string `json:"lastVisitAt"`
	LastIP      string  `json:"lastIP"`
}

type VisitorView struct {
	ID         int64   `json:"id"`
	Visits     int     `json:"visits"`
	FirstVisit string  `json:"firstVisit"`
	LastVisit  *string `json:"lastVisit"`
	IP         string  `json:"ip"`
	UserAgent  string  `json:"userAgent"`
}

func NewLinkView(l storage.LinkWithVisits, baseURL string) LinkView {
	return LinkView{
		ID:          l.ID,
		ShortURL:    baseURL + "/" + l.ShortCode,
		RedirectURL: l.OriginalURL,
		Created:     l.CreatedAt.Format(DateLayout),
		LastIP:      stringOrEmpty(l.LastVisitFrom),
		Visits:      l.Visits,
	}
}

func NewVisitView(c storage.DailyVisitCounter) VisitView {
	return VisitView{
		ID:          c.ID,
		Visits:      c.VisitCount,
		Created:     c.VisitDate.Format(DateLayout),
		LastVisitAt: formatTimePtr(c.LastVisitAt),
		LastIP:      stringOrEmpty(c.LastVisitFrom),
	}
}

func NewVisitorView(v storage.VisitorRecord) VisitorView {
	return VisitorView{
		ID:         v.ID,
		Visits:     v.VisitCount,
		FirstVisit: v.FirstVisitAt.Format(DateTimeLayout),
		LastVisit:  formatTimePtr(v.LastVisitAt),
		IP:         v.RemoteAddress,
		UserAgent:  v.UserAgent,
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateTimeLayout)
	return &s
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
