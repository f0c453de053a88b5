// internal/version/version_test.go
package version

import (
	"errors"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	cases := map[string]Number{
		"0.81.1":   {Train: 81, Patch: 1},
		"1.82.0":   {Train: 82, Patch: 0},
		"1.100.12": {Train: 100, Patch: 12},
	}

	for raw, want := range cases {
		got, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) err=%v", raw, err)
		}
		if got != want {
			t.Fatalf("Parse(%q) got=%+v want=%+v", raw, got, want)
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, raw := range []string{"", "81", "0.81", "0.x.1", "0.81.y", "0.81.1.4", "0.0.1", "0.81.-1"} {
		_, err := Parse(raw)
		if !errors.Is(err, ErrMalformedVersion) {
			t.Fatalf("Parse(%q) expected ErrMalformedVersion, got %v", raw, err)
		}
	}
}

func TestTag(t *testing.T) {
	if got := Tag("0.81.1"); got != "v0.81.1" {
		t.Fatalf("Tag got=%q", got)
	}
}

func TestRepoMatcher_DefaultPattern(t *testing.T) {
	m, err := NewRepoMatcher("")
	if err != nil {
		t.Fatalf("NewRepoMatcher err=%v", err)
	}

	cases := map[string]string{
		"git://github.com/mozilla/fxa-content-server.git":    "mozilla/fxa-content-server",
		"git@github.com:mozilla/fxa-auth-server-private.git": "mozilla/fxa-auth-server-private",
		"https://github.com/mozilla/fxa-profile-server":      "mozilla/fxa-profile-server",
		"https://github.com/mozilla/fxa":                     "mozilla/fxa",
	}

	for source, want := range cases {
		got, err := m.Extract(source)
		if err != nil {
			t.Fatalf("Extract(%q) err=%v", source, err)
		}
		if got != want {
			t.Fatalf("Extract(%q) got=%q want=%q", source, got, want)
		}
	}
}

func TestRepoMatcher_NoMatch(t *testing.T) {
	m, err := NewRepoMatcher("")
	if err != nil {
		t.Fatalf("NewRepoMatcher err=%v", err)
	}

	_, err = m.Extract("https://example.com/other/project")

	var nm *NoMatchError
	if !errors.As(err, &nm) {
		t.Fatalf("expected NoMatchError, got %v", err)
	}
	if nm.Pattern != DefaultRepoPattern {
		t.Fatalf("unexpected pattern in error: %q", nm.Pattern)
	}
}

func TestRepoMatcher_BadPattern(t *testing.T) {
	if _, err := NewRepoMatcher("(unclosed"); err == nil {
		t.Fatalf("expected compile error, got nil")
	}
}
