package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/internal/attribution"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	reports []Report
	err     error
}

func (m *memoryStore) SaveReport(_ context.Context, r Report) error {
	if m.err != nil {
		return m.err
	}
	m.reports = append(m.reports, r)
	return nil
}

type memoryIndex struct{ ids []string }

func (m *memoryIndex) IndexReport(r Report) error {
	m.ids = append(m.ids, r.ID)
	return errors.New("index offline")
}

func testConfig() *config.Config {
	return &config.Config{Agent: config.AgentConfig{MaxSteps: 4, RetryBackoff: time.Millisecond}.Normalize()}
}

func searchTool() *fakeTool {
	return &fakeTool{name: "search", fn: func(int, string) (ToolResult, error) {
		return ToolResult{
			Observation: "results",
			Sources: []attribution.SourceRecord{
				{Link: "https://go.dev/blog/go1.22", Title: "Go 1.22", Snippet: "Go 1.22 adds range over integers"},
				{Link: "https://example.com/unrelated", Title: "Other", Snippet: "nothing shared here"},
			},
		}, nil
	}}
}

func newTestOrchestrator(t *testing.T, llm LLMProvider, tools ...Tool) *Orchestrator {
	t.Helper()
	reg, err := NewRegistry(tools...)
	require.NoError(t, err)
	o, err := NewOrchestrator(testConfig(), llm, reg, quietLogger(), nil)
	require.NoError(t, err)
	return o
}

func TestProcessTopicAttributesOutput(t *testing.T) {
	llm := &scriptedLLM{outputs: []string{
		act("search", "go 1.22"),
		finish("<output><Body><p>Go 1.22 adds range over integers today.</p></Body></output>"),
	}}
	o := newTestOrchestrator(t, llm, searchTool())
	store, index := &memoryStore{}, &memoryIndex{}
	o.AttachStore(store)
	o.AttachIndex(index)

	report, err := o.ProcessTopic(context.Background(), Request{Topic: "  Go 1.22  "})
	require.NoError(t, err)
	require.NotEmpty(t, report.ID)
	require.Equal(t, "Go 1.22", report.Topic)
	require.Equal(t, ProfileWriting, report.Assistant)
	require.Equal(t, "finished", report.Status)
	require.Equal(t, "Go 1.22 adds range over integers today.", report.Output)
	require.Equal(t, report.Output, report.Attribution.Text())
	require.Equal(t, attribution.WordMode, report.Attribution.Mode)
	require.Equal(t, []int{0}, report.Attribution.SourcesUsed)
	require.Len(t, report.Attribution.Sources, 2)
	require.InDelta(t, 6.0/7.0, report.Coverage, 1e-9)
	require.Empty(t, report.Translation)
	require.False(t, report.FinishedAt.Before(report.StartedAt))

	require.Len(t, store.reports, 1)
	require.Equal(t, report.ID, store.reports[0].ID)
	// index failures are logged, not returned
	require.Equal(t, []string{report.ID}, index.ids)
}

func TestProcessTopicTranslates(t *testing.T) {
	llm := &scriptedLLM{outputs: []string{
		finish("Go 1.22 adds range over integers."),
		"<output>Go 1.22 では整数の range が追加されました。</output>",
	}}
	o := newTestOrchestrator(t, llm, searchTool())

	report, err := o.ProcessTopic(context.Background(), Request{Topic: "go", Assistant: "idea", Translate: true})
	require.NoError(t, err)
	require.Equal(t, ProfileIdea, report.Assistant)
	require.Equal(t, "Go 1.22 では整数の range が追加されました。", report.Translation)
	require.Len(t, llm.prompts, 2)
	require.Contains(t, llm.prompts[1], "Go 1.22 adds range over integers.")
	require.Nil(t, llm.stops[1])
}

func TestProcessTopicSkipsTranslationForCharacterMode(t *testing.T) {
	llm := &scriptedLLM{outputs: []string{finish("東京は雨です。")}}
	o := newTestOrchestrator(t, llm, searchTool())

	report, err := o.ProcessTopic(context.Background(), Request{Topic: "天気", Translate: true})
	require.NoError(t, err)
	require.Equal(t, attribution.CharacterMode, report.Attribution.Mode)
	require.Empty(t, report.Translation)
	require.Len(t, llm.prompts, 1)
}

func TestProcessTopicInconclusive(t *testing.T) {
	llm := &scriptedLLM{outputs: []string{act("search", "a"), act("search", "b"), act("search", "c"), act("search", "d")}}
	o := newTestOrchestrator(t, llm, searchTool())
	store := &memoryStore{}
	o.AttachStore(store)

	report, err := o.ProcessTopic(context.Background(), Request{Topic: "go"})
	require.ErrorIs(t, err, ErrInconclusive)
	require.Len(t, report.Steps, 4)
	require.Empty(t, report.Output)
	require.Equal(t, "inconclusive", report.Status)
	require.NotEmpty(t, report.Error)
	require.Len(t, store.reports, 1)
	require.Equal(t, "inconclusive", store.reports[0].Status)
}

func TestProcessTopicStoreFailure(t *testing.T) {
	llm := &scriptedLLM{outputs: []string{finish("done")}}
	o := newTestOrchestrator(t, llm, searchTool())
	o.AttachStore(&memoryStore{err: errors.New("db down")})

	report, err := o.ProcessTopic(context.Background(), Request{Topic: "go"})
	require.ErrorContains(t, err, "db down")
	require.Equal(t, "done", report.Output)
}

func TestProcessTopicRejectsBadRequests(t *testing.T) {
	o := newTestOrchestrator(t, &scriptedLLM{}, searchTool())

	_, err := o.ProcessTopic(context.Background(), Request{Topic: "   "})
	require.Error(t, err)
	_, err = o.ProcessTopic(context.Background(), Request{Topic: "go", Assistant: "poet"})
	require.ErrorContains(t, err, "poet")
}

func TestNewOrchestratorValidatesArguments(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	_, err = NewOrchestrator(nil, &scriptedLLM{}, reg, nil, nil)
	require.Error(t, err)
	_, err = NewOrchestrator(testConfig(), nil, reg, nil, nil)
	require.Error(t, err)
	_, err = NewOrchestrator(testConfig(), &scriptedLLM{}, nil, nil, nil)
	require.Error(t, err)
}
