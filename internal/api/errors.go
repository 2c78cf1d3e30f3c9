package api

import (
	"encoding/json"
	"net/http"

	"jokebox/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := ErrorResponse{
		Error: err.Error(),
	}

	// If it's a JokeError, expose its code and details and use its bare
	// message as the user-visible error string
	if jokeErr, ok := err.(*errors.JokeError); ok {
		resp.Error = jokeErr.Message
		resp.Code = string(jokeErr.Code)
		resp.Details = jokeErr.Details
	} else {
		resp.Code = string(errors.InternalError)
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// WriteJokeError writes a JokeError with automatic status code mapping
func WriteJokeError(w http.ResponseWriter, err *errors.JokeError) {
	WriteError(w, err, MapErrorCodeToStatus(err.Code))
}

// MapErrorCodeToStatus maps Jokebox error codes to HTTP status codes
func MapErrorCodeToStatus(code errors.ErrorCode) int {
	switch code {
	case errors.InvalidIndex:
		return http.StatusBadRequest // 400
	case errors.JokeNotFound:
		return http.StatusNotFound // 404
	case errors.DatasetEmpty:
		return http.StatusNotFound // 404
	case errors.DatasetInvalid:
		return http.StatusInternalServerError // 500
	case errors.Unauthorized:
		return http.StatusUnauthorized // 401
	case errors.RateLimited:
		return http.StatusTooManyRequests // 429
	case errors.InternalError:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// DataResponse is the single success envelope used by all joke endpoints
type DataResponse struct {
	Data json.RawMessage `json:"data"`
}

// WriteData writes a joke wrapped in the standard envelope
func WriteData(w http.ResponseWriter, joke json.RawMessage) {
	WriteJSON(w, DataResponse{Data: joke}, http.StatusOK)
}

// InternalError writes a 500 Internal Server Error
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, errors.New(errors.InternalError, message), http.StatusInternalServerError)
}

// MethodNotAllowed writes a 405 response
func MethodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
