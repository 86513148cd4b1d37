package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/offices/internal/auth"
	httpmiddleware "github.com/wolfeidau/offices/internal/http"
	"github.com/wolfeidau/offices/internal/logger"
	"github.com/wolfeidau/offices/internal/office"
)

const collectionPath = "/offices"

// Server exposes the office service over HTTP.
type Server struct {
	svc     *office.Service
	authn   auth.Authenticator
	baseURL string
}

// NewServer creates a server. When baseURL is empty links are built from the
// scheme and host of each request.
func NewServer(svc *office.Service, authn auth.Authenticator, baseURL string) *Server {
	return &Server{
		svc:     svc,
		authn:   authn,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler(log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(
		httpmiddleware.ClientIPMiddleware(),
		logger.Requests(log),
		middleware.Recoverer,
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})

	// Health check endpoint for load balancer
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route(collectionPath, func(r chi.Router) {
		// unsupported collection methods answer 405 with or without a token
		r.Put("/", s.handleCollectionMethodNotAllowed)
		r.Patch("/", s.handleCollectionMethodNotAllowed)
		r.Delete("/", s.handleCollectionMethodNotAllowed)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.authn, func(w http.ResponseWriter, r *http.Request, err error) {
				writeError(w, http.StatusUnauthorized, msgUnauthorized)
			}))

			r.Get("/", s.handleList)
			r.With(requireJSON).Post("/", s.handleCreate)

			r.Route("/{oid}", func(r chi.Router) {
				r.With(requireJSON).Get("/", s.handleGet)
				r.With(requireJSON).Put("/", s.handleReplace)
				r.With(requireJSON).Patch("/", s.handlePatch)
				r.Delete("/", s.handleDelete)

				r.Put("/employees/{eid}", s.handleAssign)
				r.Delete("/employees/{eid}", s.handleUnassign)
			})
		})
	})

	return r
}

// caller builds the identity and link base for the request.
func (s *Server) caller(r *http.Request) office.Caller {
	subject, _ := auth.SubjectFromContext(r.Context())

	base := s.baseURL
	if base == "" {
		base = httpmiddleware.BaseURL(r)
	}

	return office.Caller{
		Subject:       subject,
		CollectionURL: base + collectionPath,
	}
}
