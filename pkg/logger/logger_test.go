package logx

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewJSONLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, Config{})
	logger.Debug().Msg("hidden")
	logger.Info().Str("hcp", "Dr. Smith").Msg("saved")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected one line at info level, got %d: %s", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["message"] != "saved" || entry["hcp"] != "Dr. Smith" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	if entry["service"] != "hcp-interaction-logger" {
		t.Fatalf("missing service field: %#v", entry)
	}
}

func TestNewDebugEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, Config{Debug: true})
	logger.Debug().Msg("visible")

	if !bytes.Contains(buf.Bytes(), []byte("visible")) {
		t.Fatalf("expected debug line, got %q", buf.String())
	}
}
