package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/config"
)

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(config.LogConfig{Level: "info", Format: "json"}, &buf)

	l.Debug("hidden")
	l.Info("visible", "job_id", "job-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected json output: %v", err)
	}
	if entry["msg"] != "visible" || entry["job_id"] != "job-1" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNew_TextFormatDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(config.LogConfig{Level: "debug", Format: "text"}, &buf)

	l.Debug("details")

	if !strings.Contains(buf.String(), "level=DEBUG") || !strings.Contains(buf.String(), "msg=details") {
		t.Errorf("unexpected text output %q", buf.String())
	}
}
