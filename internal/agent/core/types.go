package core

import (
	"context"
	"time"

	"github.com/mohammad-safakhou/newsdesk/internal/agent/protocol"
	"github.com/mohammad-safakhou/newsdesk/internal/attribution"
)

// LLMProvider is a text completion backend. Generation must end before any
// of the stop sequences.
type LLMProvider interface {
	Name() string
	Generate(ctx context.Context, prompt string, stop []string) (string, error)
}

// Request asks for one research run.
type Request struct {
	ID        string `json:"id,omitempty"`
	Topic     string `json:"topic"`
	Assistant string `json:"assistant,omitempty"`
	Translate bool   `json:"translate,omitempty"`
}

// Report is the outcome of a research run.
type Report struct {
	ID        string `json:"id"`
	Topic     string `json:"topic"`
	Assistant string `json:"assistant"`
	// Status is one of the telemetry outcomes: finished, inconclusive or failed.
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	// Output is the cleaned final answer the attribution was computed on.
	Output      string             `json:"output"`
	Translation string             `json:"translation,omitempty"`
	Steps       []protocol.Step    `json:"steps"`
	Attribution attribution.Result `json:"attribution"`
	Coverage    float64            `json:"coverage"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
}

// Duration is the wall time of the run.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ReportStore persists finished reports.
type ReportStore interface {
	SaveReport(ctx context.Context, r Report) error
}

// ReportIndex makes reports searchable.
type ReportIndex interface {
	IndexReport(r Report) error
}
