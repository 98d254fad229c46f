// Package httpx provides HTTP response utilities following RFC7807 problem
// details.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ProblemDetail represents RFC7807 problem details, extended with the
// console's field-level validation errors and the calendar revert flag.
type ProblemDetail struct {
	Type   string              `json:"type,omitempty"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
	// Revert tells the calendar widget to restore the pre-gesture
	// position after a failed drag or resize commit.
	Revert bool `json:"revert,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	JSON(w, status, ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// ValidationProblem sends a 422 problem carrying field-level errors so
// forms can render them inline next to the relevant field.
func ValidationProblem(w http.ResponseWriter, detail string, fieldErrors map[string][]string) {
	JSON(w, http.StatusUnprocessableEntity, ProblemDetail{
		Title:  "Validation Failed",
		Status: http.StatusUnprocessableEntity,
		Detail: detail,
		Errors: fieldErrors,
	})
}

// RevertProblem sends a problem that additionally instructs the calendar
// widget to revert its optimistic change.
func RevertProblem(w http.ResponseWriter, status int, title, detail string) {
	JSON(w, status, ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
		Revert: true,
	})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
