package auth

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

type contextKey int

const (
	subjectContextKey contextKey = iota
)

// SubjectFromContext returns the authenticated subject stored by Middleware.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectContextKey).(string)
	return subject, ok && subject != ""
}

// WithSubject returns a copy of ctx carrying subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

// Middleware authenticates every request with authn. Failures are handed to
// unauthorized, which writes the response; the next handler is not called.
func Middleware(authn Authenticator, unauthorized func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := authn.Authenticate(r)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Msg("Request not authenticated")
				unauthorized(w, r, err)
				return
			}

			// the request logger is shared with the outer middleware, so the
			// final request line carries the subject too
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("subject", subject)
			})

			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
		})
	}
}
