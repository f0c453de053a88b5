// cmd/trainwatch/main_test.go
package main

import (
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		" WARN ":  slog.LevelWarn,
		"debug":   slog.LevelDebug,
		"trace":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for raw, want := range cases {
		if got := parseLogLevel(raw); got != want {
			t.Fatalf("parseLogLevel(%q) got=%s want=%s", raw, got, want)
		}
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("TRAINWATCH_TEST_VALUE", "")
	if got := envOrDefault("TRAINWATCH_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("empty env should fall back, got %q", got)
	}

	t.Setenv("TRAINWATCH_TEST_VALUE", ":9090")
	if got := envOrDefault("TRAINWATCH_TEST_VALUE", "fallback"); got != ":9090" {
		t.Fatalf("got %q", got)
	}
}
