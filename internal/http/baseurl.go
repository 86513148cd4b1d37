package http

import (
	"net/http"
	"strings"
)

// BaseURL returns the scheme and host the client used to reach the server.
// X-Forwarded-Proto wins over the connection state so that TLS terminated at a
// proxy still yields https links.
func BaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		if before, _, ok := strings.Cut(proto, ","); ok {
			proto = before
		}
		scheme = strings.ToLower(strings.TrimSpace(proto))
	}

	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}

	return scheme + "://" + host
}
