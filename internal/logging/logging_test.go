package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupWriter(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := SetupWriter(&buf, slog.LevelWarn)
	logger.Info("hidden")
	slog.Warn("shown", "entity", "ExampleModel")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "ExampleModel") {
		t.Fatalf("expected warn record, got %q", out)
	}
}
