package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: WarnLevel, Format: JSONFormat, Output: &buf})

	logger.Debug("debug msg", nil)
	logger.Info("info msg", nil)
	logger.Warn("warn msg", nil)
	logger.Error("error msg", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 entries at warn level, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "warn msg") || !strings.Contains(lines[1], "error msg") {
		t.Errorf("Wrong entries passed the filter: %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: InfoLevel, Format: JSONFormat, Output: &buf})

	logger.Info("request completed", map[string]interface{}{
		"status": 200,
		"path":   "/health",
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not valid JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "info" || entry["message"] != "request completed" {
		t.Errorf("Unexpected entry: %v", entry)
	}
	fields := entry["fields"].(map[string]interface{})
	if fields["path"] != "/health" {
		t.Errorf("Fields not carried: %v", fields)
	}
}

func TestHumanFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: InfoLevel, Format: HumanFormat, Output: &buf})

	logger.Info("server started", map[string]interface{}{"port": 8080})

	out := buf.String()
	if !strings.Contains(out, "[info] server started") {
		t.Errorf("Unexpected human output: %q", out)
	}
	if !strings.Contains(out, "port=8080") {
		t.Errorf("Fields missing from human output: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"error":   ErrorLevel,
		"verbose": InfoLevel,
		"":        InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("json") != JSONFormat {
		t.Error("ParseFormat(json) should be JSON")
	}
	if ParseFormat("human") != HumanFormat {
		t.Error("ParseFormat(human) should be human")
	}
	if ParseFormat("") != HumanFormat {
		t.Error("ParseFormat default should be human")
	}
}
