package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := New(Config{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = closer.Close() }()

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, `"service":"qbsearch"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "qbsearch.log")
	log, closer, err := New(Config{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log.Debug().Str("stage", "OPERATOR").Msg("stage change")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "stage change") {
		t.Errorf("expected log line in file, got %q", data)
	}
}
