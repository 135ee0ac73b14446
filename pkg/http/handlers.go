package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"shorturls/pkg/metrics"
	"shorturls/pkg/middleware"
	"shorturls/pkg/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	linkService *service.LinkService
	baseURL     string
}

func NewHandler(linkService *service.LinkService, baseURL string) *Handler {
	return &Handler{linkService: linkService, baseURL: baseURL}
}

type createRequest struct {
	URL string `json:"url"`
}

type createResponse struct {
	ShortenURL string `json:"shortenUrl"`
}

func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	link, created, err := h.linkService.Shorten(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, service.ErrInvalidURL) {
			http.Error(w, "Provided URL is not valid.", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(createResponse{ShortenURL: h.baseURL + "/" + link.ShortCode})
}

func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	link, err := h.linkService.Resolve(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMalformedCode):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	remoteAddr := middleware.ClientAddr(r)
	counter, err := h.linkService.RecordVisit(r.Context(), link.ID, remoteAddr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	meta := service.RequestMeta{RemoteAddr: remoteAddr, UserAgent: middleware.UserAgent(r)}
	if _, err := h.linkService.RecordVisitor(r.Context(), meta, counter.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.RedirectsServed.Inc()
	http.Redirect(w, r, link.OriginalURL, http.StatusMovedPermanently)
}

func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	links, err := h.linkService.ListLinks(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]LinkView, 0, len(links))
	for _, l := range links {
		views = append(views, NewLinkView(l, h.baseURL))
	}
	writeJSON(w, views)
}

func (h *Handler) GetVisits(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid link id", http.StatusBadRequest)
		return
	}

	visits, err := h.linkService.GetVisits(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]VisitView, 0, len(visits))
	for _, v := range visits {
		views = append(views, NewVisitView(v))
	}
	writeJSON(w, views)
}

func (h *Handler) GetVisitors(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid link id", http.StatusBadRequest)
		return
	}

	visitors, err := h.linkService.GetVisitors(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]VisitorView, 0, len(visitors))
	for _, v := range visitors {
		views = append(views, NewVisitorView(v))
	}
	writeJSON(w, views)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func parseListQuery(r *http.Request) (service.ListQuery, error) {
	q := service.ListQuery{}
	params := r.URL.Query()

	for name, dst := range map[string]**time.Time{
		"from_date": &q.FromDate,
		"to_date":   &q.ToDate,
		"date":      &q.Date,
	} {
		raw := params.Get(name)
		if raw == "" {
			continue
		}
		day, err := time.Parse(DateLayout, raw)
		if err != nil {
			return q, errors.New("invalid " + name + ": expected " + DateLayout)
		}
		*dst = &day
	}

	q.OrderBy = params.Get("order_by")
	if raw := params.Get("results"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return q, errors.New("invalid results: expected a non-negative integer")
		}
		q.Limit = limit
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// SetupRoutes mounts the full HTTP surface. Redirects match any path of one
// segment, so the fixed routes are registered first and numeric ids get
// their own pattern.
func SetupRoutes(r *chi.Mux, handler *Handler) {
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)

	r.Get("/health", handler.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/create", handler.CreateLink)
	r.Get("/all", handler.ListLinks)
	r.Get("/{id:[0-9]+}/visits", handler.GetVisits)
	r.Get("/{id:[0-9]+}/visitors", handler.GetVisitors)
	r.Get("/{code}", handler.Redirect)
}

// SetupRedirectRoutes mounts only the redirect hot path, for the standalone
// redirect server.
func SetupRedirectRoutes(r *chi.Mux, handler *Handler) {
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)

	r.Get("/health", handler.HealthCheck)
	r.Get("/{code}", handler.Redirect)
}
