package utils

import "testing"

func TestSiteQuery(t *testing.T) {
	if got := SiteQuery("tokyo weather", nil); got != "tokyo weather" {
		t.Fatalf("unexpected query %q", got)
	}
	got := SiteQuery("tokyo weather", []string{"nhk.or.jp", " ", "jma.go.jp"})
	if got != "tokyo weather (site:nhk.or.jp OR site:jma.go.jp)" {
		t.Fatalf("unexpected query %q", got)
	}
}

func TestStr(t *testing.T) {
	if Str(nil) != "" || Str("x") != "x" || Str(3) != "3" {
		t.Fatalf("unexpected Str conversions")
	}
}
