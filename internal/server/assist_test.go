package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"github.com/mohammad-safakhou/newsdesk/internal/runtime"
)

func deskReplies() []llmReply {
	return []llmReply{
		{marker: "appointment email", text: `<output>[{"who": "Weather bureau", "email_message": "Dear Sir or Madam", "interview_guide": "Rainfall totals"}]</output>`},
		{marker: "click-through", text: `<output>[{"title": "Tokyo drenched"}]</output>`},
		{marker: "<sources>", text: `<output>[{"excerpt": "record rain", "feedback": "cite the bureau"}]</output>`},
		{marker: "<title>", text: "<output>東京で記録的な大雨</output>"},
		{marker: "announcer", text: "<output>昨日、東京では記録的な大雨となりました。</output>"},
	}
}

func newAssistServer(t *testing.T, llm *fakeLLM, secret []byte) *echo.Echo {
	t.Helper()
	desk, err := core.NewDesk(llm, quietLogger(), nil)
	if err != nil {
		t.Fatalf("NewDesk: %v", err)
	}
	e, err := New(Deps{
		Config:   testConfig(),
		Research: &fakeResearcher{},
		Reports:  &fakeReports{},
		Desk:     desk,
		Secret:   secret,
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestAssistInterview(t *testing.T) {
	llm := &fakeLLM{replies: deskReplies()}
	e := newAssistServer(t, llm, nil)

	rec := do(e, http.MethodPost, "/api/assist/interview", `{"article":"Tokyo saw record rain."}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var plans []core.InterviewPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &plans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plans) != 1 || plans[0].Who != "Weather bureau" || plans[0].InterviewGuide != "Rainfall totals" {
		t.Fatalf("unexpected plans %+v", plans)
	}
	if len(llm.prompts) != 1 || !strings.Contains(llm.prompts[0], "Tokyo saw record rain.") {
		t.Fatalf("unexpected prompts %q", llm.prompts)
	}
}

func TestAssistEditorial(t *testing.T) {
	e := newAssistServer(t, &fakeLLM{replies: deskReplies()}, nil)

	rec := do(e, http.MethodPost, "/api/assist/editorial", `{"article":"Tokyo saw record rain.","sources":"https://example.com/rain"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var ed core.Editorial
	if err := json.Unmarshal(rec.Body.Bytes(), &ed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ed.Feedback) != 1 || ed.Feedback[0].Feedback != "cite the bureau" {
		t.Fatalf("unexpected feedback %+v", ed.Feedback)
	}
	if len(ed.Headlines) != 1 || ed.Headlines[0].Title != "Tokyo drenched" {
		t.Fatalf("unexpected headlines %+v", ed.Headlines)
	}
}

func TestAssistBroadcast(t *testing.T) {
	llm := &fakeLLM{replies: deskReplies()}
	e := newAssistServer(t, llm, nil)

	rec := do(e, http.MethodPost, "/api/assist/broadcast", `{"title":"Record rain","article":"Tokyo saw record rain.","date":"2024-06-02"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var b core.Broadcast
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.Title != "東京で記録的な大雨" || !strings.HasPrefix(b.Script, "昨日") {
		t.Fatalf("unexpected broadcast %+v", b)
	}
	if len(llm.prompts) != 2 || !strings.Contains(llm.prompts[1], "(2024-06-02)") {
		t.Fatalf("date not passed to the script prompt: %q", llm.prompts)
	}
}

func TestAssistErrors(t *testing.T) {
	cases := []struct {
		name string
		path string
		body string
		llm  *fakeLLM
		code int
	}{
		{"empty article", "/api/assist/interview", `{"article":"  "}`, &fakeLLM{replies: deskReplies()}, http.StatusBadRequest},
		{"bad json", "/api/assist/editorial", `{"article":`, &fakeLLM{replies: deskReplies()}, http.StatusBadRequest},
		{"empty broadcast", "/api/assist/broadcast", `{"title":"t"}`, &fakeLLM{replies: deskReplies()}, http.StatusBadRequest},
		{"model down", "/api/assist/interview", `{"article":"a"}`, &fakeLLM{err: errors.New("throttled")}, http.StatusBadGateway},
		{"not a list", "/api/assist/editorial", `{"article":"a"}`, &fakeLLM{replies: []llmReply{{marker: "<sources>", text: "no feedback"}}}, http.StatusBadGateway},
		{"deadline", "/api/assist/interview", `{"article":"a"}`, &fakeLLM{err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newAssistServer(t, tc.llm, nil)
			rec := do(e, http.MethodPost, tc.path, tc.body, "")
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Fatalf("expected JSON error body, got %s", rec.Body.String())
			}
		})
	}
}

func TestAssistRequiresWriteScope(t *testing.T) {
	secret := []byte("secret")
	e := newAssistServer(t, &fakeLLM{replies: deskReplies()}, secret)

	reader, _ := runtime.SignJWT("viewer", secret, time.Hour, runtime.ScopeRead)
	if rec := do(e, http.MethodPost, "/api/assist/interview", `{"article":"a"}`, reader); rec.Code != http.StatusForbidden {
		t.Fatalf("reader: expected 403, got %d", rec.Code)
	}
	writer, _ := runtime.SignJWT("cli", secret, time.Hour, runtime.ScopeResearch)
	if rec := do(e, http.MethodPost, "/api/assist/interview", `{"article":"a"}`, writer); rec.Code != http.StatusOK {
		t.Fatalf("writer: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAssistRoutesAbsentWithoutDesk(t *testing.T) {
	e, _ := newTestServer(t, &fakeResearcher{}, nil)
	if rec := do(e, http.MethodPost, "/api/assist/interview", `{"article":"a"}`, ""); rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected no assist route, got %d", rec.Code)
	}
}
