package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON document from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("A non-empty request body is required.", nil)
		}
		return badRequest("The request body is not valid JSON.", err)
	}
	if dec.More() {
		return badRequest("The request body must contain a single JSON document.", nil)
	}
	return nil
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badRequest("The id in the route is not a valid identifier.", err)
	}
	return id, nil
}

func created(w http.ResponseWriter, location string, id uuid.UUID) {
	w.Header().Set("Location", location)
	writeJSON(w, http.StatusCreated, id)
}

var errRouteBodyMismatch = badRequest("The id in the route does not match the id in the body.", nil)
