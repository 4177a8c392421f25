package server

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"github.com/mohammad-safakhou/newsdesk/internal/archive"
	"github.com/mohammad-safakhou/newsdesk/internal/attribution"
	"github.com/mohammad-safakhou/newsdesk/internal/store"
)

type fakeResearcher struct {
	mu     sync.Mutex
	report core.Report
	err    error
	reqs   []core.Request
}

func (f *fakeResearcher) ProcessTopic(_ context.Context, req core.Request) (core.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	r := f.report
	r.Topic, r.Assistant = req.Topic, req.Assistant
	return r, f.err
}

func (f *fakeResearcher) requests() []core.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Request(nil), f.reqs...)
}

type fakeReports struct {
	reports map[string]core.Report
	latest  *time.Time
}

func (f *fakeReports) GetReport(_ context.Context, id string) (core.Report, bool, error) {
	r, ok := f.reports[id]
	return r, ok, nil
}

func (f *fakeReports) ListReports(_ context.Context, _ int) ([]store.ReportSummary, error) {
	var out []store.ReportSummary
	for _, r := range f.reports {
		out = append(out, store.ReportSummary{ID: r.ID, Topic: r.Topic, Assistant: r.Assistant, Status: r.Status, StartedAt: r.StartedAt})
	}
	return out, nil
}

func (f *fakeReports) LatestReportTime(context.Context, string, string) (*time.Time, error) {
	return f.latest, nil
}

type fakeArchive struct {
	hits []archive.Hit
	q    string
}

func (f *fakeArchive) Search(q string, _ int) ([]archive.Hit, error) {
	f.q = q
	return f.hits, nil
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Normalize()
	return cfg
}

func sampleReport() core.Report {
	return core.Report{
		ID:        "run-1",
		Topic:     "tokyo rain",
		Assistant: "writing",
		Status:    "finished",
		Output:    "Tokyo saw record rain.",
		Attribution: attribution.Result{
			Mode:        attribution.WordMode,
			Spans:       []attribution.Span{{Text: "Tokyo saw record rain.", Source: 0, Tokens: 4}},
			SourcesUsed: []int{0},
			Sources:     []attribution.SourceRecord{{Link: "https://example.com/rain", Title: "Rain", Snippet: "Tokyo saw record rain."}},
		},
		Coverage:  1,
		StartedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

// fakeLLM answers each prompt with the reply of the first marker the prompt
// contains.
type fakeLLM struct {
	mu      sync.Mutex
	replies []llmReply
	err     error
	prompts []string
}

type llmReply struct{ marker, text string }

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	for _, r := range f.replies {
		if strings.Contains(prompt, r.marker) {
			return r.text, nil
		}
	}
	return "", errors.New("no reply scripted")
}
