package helpers

import "testing"

func TestCleanOutput(t *testing.T) {
	in := "  <output><Title>Headline</Title>\n<Body>Story text</Body></output>  "
	if got := CleanOutput(in); got != "Headline\nStory text" {
		t.Fatalf("unexpected cleaned output %q", got)
	}
}

func TestHTMLToText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"<p>First para.</p><p>Second &amp; last.</p>", "First para.\nSecond & last."},
		{"<h1>Title</h1><script>alert(1)</script>Body<br/>line", "Title\nBody\nline"},
		{"<div>a</div>\n\n\n\n<div>b</div>", "a\n\nb"},
	}
	for _, tc := range cases {
		if got := HTMLToText(tc.in); got != tc.want {
			t.Errorf("HTMLToText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("東京都は晴れ", 3); got != "東京都…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("anything", 0); got != "anything" {
		t.Fatalf("zero limit must not truncate, got %q", got)
	}
}
