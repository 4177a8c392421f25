package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
)

func TestReadArticle(t *testing.T) {
	got, err := readArticle(strings.NewReader("from stdin"), "-")
	if err != nil || got != "from stdin" {
		t.Fatalf("stdin: %q %v", got, err)
	}
	path := filepath.Join(t.TempDir(), "draft.txt")
	if err := os.WriteFile(path, []byte("from file"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = readArticle(strings.NewReader("ignored"), path)
	if err != nil || got != "from file" {
		t.Fatalf("file: %q %v", got, err)
	}
	if _, err := readArticle(nil, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestPrintAssist(t *testing.T) {
	var buf bytes.Buffer
	ed := core.Editorial{
		Feedback:  []core.Feedback{{Excerpt: "record rain", Feedback: "cite the bureau"}},
		Headlines: []core.Headline{{Title: "Tokyo drenched"}},
	}
	if err := printAssist(&buf, ed, false); err != nil {
		t.Fatalf("editorial: %v", err)
	}
	want := "Feedback:\n- \"record rain\": cite the bureau\n\nHeadlines:\n- Tokyo drenched\n"
	if buf.String() != want {
		t.Fatalf("editorial output %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := printAssist(&buf, core.Broadcast{Title: "東京で大雨", Script: "昨日、東京では大雨となりました。"}, false); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if buf.String() != "東京で大雨\n\n昨日、東京では大雨となりました。\n" {
		t.Fatalf("broadcast output %q", buf.String())
	}

	buf.Reset()
	plans := []core.InterviewPlan{{Who: "Weather bureau", EmailMessage: "Dear Sir or Madam", InterviewGuide: "Rainfall totals"}}
	if err := printAssist(&buf, plans, true); err != nil {
		t.Fatalf("json: %v", err)
	}
	var back []core.InterviewPlan
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil || len(back) != 1 || back[0].Who != "Weather bureau" {
		t.Fatalf("json output %q: %v", buf.String(), err)
	}

	if err := printAssist(&buf, 42, false); err == nil {
		t.Fatalf("expected error for unknown result")
	}
}
