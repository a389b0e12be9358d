package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Boluski2/lendsqr-admin/internal/config"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "warn", Format: "JSON"}, &buf)

	logger.Info("dropped")
	logger.Warn("cache corrupt", "key", "lendsqr_users")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the warning, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["msg"] != "cache corrupt" || entry["key"] != "lendsqr_users" || entry["service"] != "lendsqr-admin" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{"debug": "DEBUG", " Warning ": "WARN", "error": "ERROR", "": "INFO", "loud": "INFO"}
	for in, want := range cases {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
