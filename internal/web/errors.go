package web

// errors.go provides unified error responses for the JSON API. Technical
// details are logged server-side with the request id; clients get a concise
// message.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vendasapp/sales-import/internal/logging"
	"github.com/vendasapp/sales-import/internal/repository"
)

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}

// statusFor maps known errors onto HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, repository.ErrImportNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
