// Package httpx carries the JSON request/response conventions shared by
// every handler: a stable response envelope, typed HTTP errors, and strict
// request decoding.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Response is the standard JSON envelope.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail carries machine-readable error information.
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

// HTTPError pairs a status code with a stable error code string.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string { return e.Key }

var (
	ErrBadRequest          = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized        = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrForbidden           = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound            = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict            = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrUnprocessableEntity = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrTooManyRequests     = HTTPError{Code: http.StatusTooManyRequests, Key: "too_many_requests"}
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
)

// JSON writes data inside the success envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

// Message writes a success envelope carrying only a human-readable message.
func Message(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Success: true, Message: msg})
}

// Notice writes an informational refusal: the request was understood and
// deliberately not acted on (for example a view-only admin attempting a
// mutation). It is not an error envelope; clients render it as a notice.
func Notice(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, Response{Success: false, Message: msg})
}

// Error maps err onto the envelope. HTTPError values keep their status and
// code; anything else becomes a 500 with a generic message so internals do
// not leak.
func Error(w http.ResponseWriter, err error) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		detail := &ErrorDetail{Code: httpErr.Key, Message: http.StatusText(httpErr.Code)}
		writeJSON(w, httpErr.Code, Response{Error: detail})
		return
	}

	detail := &ErrorDetail{Code: ErrInternalServerError.Key, Message: "something went wrong, please try again"}
	writeJSON(w, http.StatusInternalServerError, Response{Error: detail})
}

// ErrorWithMessage writes a typed error with a caller-supplied message,
// used when the failure text is meant for the user.
func ErrorWithMessage(w http.ResponseWriter, httpErr HTTPError, msg string) {
	detail := &ErrorDetail{Code: httpErr.Key, Message: msg}
	writeJSON(w, httpErr.Code, Response{Error: detail})
}

// ValidationError writes a 422 with per-field messages.
func ValidationError(w http.ResponseWriter, fields map[string][]string) {
	detail := &ErrorDetail{
		Code:    ErrUnprocessableEntity.Key,
		Message: "validation failed",
		Details: fields,
	}
	writeJSON(w, http.StatusUnprocessableEntity, Response{Error: detail})
}

// Decode parses a JSON request body into v, rejecting unknown fields so
// typos surface instead of silently dropping data.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
