package models

import "strconv"

// Result is one organic search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// StatusError is a non-200 reply from a search backend.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return e.Provider + ": status " + strconv.Itoa(e.Code) + ": " + e.Body
}

// Retryable reports whether the request may succeed if sent again.
func (e *StatusError) Retryable() bool {
	return e.Code == 429 || e.Code >= 500
}
