package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"quick-route/internal/domain"
	"quick-route/internal/platform/obs"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obs.Logger(r.Context()).Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("encode failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// statusFor maps the planner error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAddressNotFound), errors.Is(err, domain.ErrNoRouteFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError reports err to the client. Internal failures are logged and masked.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		obs.Logger(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, r, status, "internal server error")
		return
	}
	writeError(w, r, status, err.Error())
}

// decodeJSON reads exactly one JSON object with no unknown fields into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

// MethodNotAllowed is the router's JSON 405 handler.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found")
}
