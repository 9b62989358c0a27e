package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkralj/avtotrg/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps store errors onto HTTP statuses. Every store error is
// terminal for the request; the client decides what to do next.
func storeError(w http.ResponseWriter, err error) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrNotAllowed):
		jsonError(w, http.StatusForbidden, "insufficient permissions")
	case errors.Is(err, store.ErrSelfPurchase):
		jsonError(w, http.StatusForbidden, "cannot purchase your own listing")
	case errors.Is(err, store.ErrAlreadySold):
		jsonError(w, http.StatusConflict, "listing is no longer available")
	case errors.Is(err, store.ErrInvalidState):
		jsonError(w, http.StatusConflict, "listing state does not allow this action")
	default:
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
