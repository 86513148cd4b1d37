package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/offices/internal/models"
)

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	o, err := s.svc.Create(r.Context(), s.caller(r), fields)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Location", o.Self)
	writeJSON(w, http.StatusCreated, present(o))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := s.svc.List(r.Context(), s.caller(r), rawQueryValue(r.URL.RawQuery, "cursor"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	for i, o := range page.Offices {
		page.Offices[i] = present(o)
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	o, err := s.svc.Get(r.Context(), s.caller(r), chi.URLParam(r, "oid"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSONWithETag(w, r, present(o))
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	o, err := s.svc.Replace(r.Context(), s.caller(r), chi.URLParam(r, "oid"), fields)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Location", o.Self)
	writeJSON(w, http.StatusSeeOther, present(o))
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	o, err := s.svc.Patch(r.Context(), s.caller(r), chi.URLParam(r, "oid"), fields)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, present(o))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), s.caller(r), chi.URLParam(r, "oid")); err != nil {
		s.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Assign(r.Context(), s.caller(r), chi.URLParam(r, "oid"), chi.URLParam(r, "eid"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnassign(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Unassign(r.Context(), s.caller(r), chi.URLParam(r, "oid"), chi.URLParam(r, "eid"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCollectionMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, POST")
	writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	zerolog.Ctx(r.Context()).Debug().Err(err).Int("status", status).Msg("Request failed")
	writeError(w, status, msg)
}

// present normalizes an office for the wire: employees is always an array.
func present(o *models.Office) *models.Office {
	if o.Employees == nil {
		o.Employees = []models.EmployeeRef{}
	}
	return o
}

// rawQueryValue returns the still percent-encoded value of key. The cursor is
// handed to the paginator as received so that it decodes it exactly once.
func rawQueryValue(rawQuery, key string) string {
	for rawQuery != "" {
		var pair string
		pair, rawQuery, _ = strings.Cut(rawQuery, "&")
		name, value, _ := strings.Cut(pair, "=")
		if name == key {
			return value
		}
	}
	return ""
}
