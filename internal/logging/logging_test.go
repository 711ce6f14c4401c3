package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_TextToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("capture complete", "bytes", 1234)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	if !strings.Contains(out, "capture complete") || !strings.Contains(out, "bytes=1234") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("resolved", "path", "/tmp/a.jpg")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["path"] != "/tmp/a.jpg" {
		t.Errorf("path: got %v", record["path"])
	}
	if _, ok := record["time"].(string); !ok {
		t.Errorf("time should be an RFC3339 string, got %T", record["time"])
	}
}

func TestNew_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	for i := 0; i < 2; i++ {
		var buf bytes.Buffer
		logger, closer, err := New(Options{Level: "info", Output: &buf, File: path})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		logger.Info("event")
		if err := closer.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if buf.Len() == 0 {
			t.Error("records should still reach the primary output")
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Errorf("log file should hold one line per event across opens, got %d: %q", len(lines), data)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	if _, _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("New should reject an unknown level")
	}
	if _, _, err := New(Options{Format: "yaml"}); err == nil {
		t.Error("New should reject an unknown format")
	}
}

func TestDiscard(t *testing.T) {
	if Discard() == nil {
		t.Fatal("Discard returned nil")
	}
}
