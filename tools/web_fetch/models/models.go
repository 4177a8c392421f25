package models

import "strconv"

type Result struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Byline   string `json:"byline"`
	SiteName string `json:"site_name"`
	Excerpt  string `json:"excerpt"`
	Text     string `json:"text"`
	HTMLHash string `json:"html_hash"`
	Status   int    `json:"status"`
	RenderMS int    `json:"render_ms"`
}

// StatusError is a page that answered with something other than 2xx.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return "fetch " + e.URL + ": status " + strconv.Itoa(e.Code)
}

func (e *StatusError) Retryable() bool {
	return e.Code == 429 || e.Code >= 500
}
