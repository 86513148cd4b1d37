package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/rs/zerolog"
	httpmiddleware "github.com/wolfeidau/offices/internal/http"
)

const jsonContentType = "application/json"

var errInvalidJSON = errors.New("request body is not a JSON object")

type errorResponse struct {
	Error string `json:"Error"`
}

// requireJSON rejects requests whose Content-Type media type is not
// application/json. Parameters such as charset are ignored.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != jsonContentType {
			writeError(w, http.StatusNotAcceptable, msgNotAcceptable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decodeFields reads a JSON object from the request body. Values keep their
// decoded JSON types so that the validator can reject non-string attributes.
func decodeFields(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(r.Body)

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errInvalidJSON
	}
	// trailing data after the object
	if _, err := dec.Token(); err != io.EOF {
		return nil, errInvalidJSON
	}
	return fields, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONWithETag writes v with an ETag and answers 304 when the client
// already holds the same representation.
func writeJSONWithETag(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode response")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	etag := httpmiddleware.ETag(body)
	w.Header().Set("ETag", etag)

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
