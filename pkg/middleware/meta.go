package middleware

import (
	"net"
	"net/http"

	"shorturls/pkg/logging"
)

// CorrelationID tags every request context with a correlation ID so log
// lines across the shorten/redirect path can be stitched together.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithCorrelationID(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientAddr returns the visitor's address in textual form. RemoteAddr
// carries "host:port" on a direct connection but a bare IP once chi's RealIP
// middleware has rewritten it from a forwarding header.
func ClientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// UserAgent returns the client's user agent, or "N/A" when the header is
// absent.
func UserAgent(r *http.Request) string {
	if ua := r.UserAgent(); ua != "" {
		return ua
	}
	return "N/A"
}
