package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", "console", &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	log.Debug("hidden")
	log.Info("halted", zap.Int("pc", 3))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message should be filtered at info level: %q", out)
	}
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "halted") || !strings.Contains(out, `"pc": 3`) {
		t.Errorf("unexpected console output: %q", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("DEBUG", "json", &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	log.Debug("loaded", zap.String("run_id", "abc"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "loaded" || entry["run_id"] != "abc" || entry["level"] != "debug" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New("loud", "console", &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New("warn", "xml", &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown format")
	}
}
