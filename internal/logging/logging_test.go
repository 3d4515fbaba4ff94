package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// captureLogOutput captures log output for testing by temporarily
// redirecting the logger to write to a buffer
func captureLogOutput(f func()) string {
	var buf bytes.Buffer

	oldLogger := defaultLogger
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	defaultLogger = slog.New(handler)

	f()

	defaultLogger = oldLogger
	return buf.String()
}

func TestLevels(t *testing.T) {
	out := captureLogOutput(func() {
		Debug("debug msg")
		Info("info msg")
		Warn("warn msg")
		Error("error msg")
	})
	for _, want := range []string{"debug msg", "info msg", "warn msg", "error msg"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestKeyValuePairs(t *testing.T) {
	out := captureLogOutput(func() {
		Info("loading", "path", "run.xml", "size", 42)
	})
	var entry map[string]any
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if entry["path"] != "run.xml" {
		t.Errorf("expected path=run.xml, got %v", entry["path"])
	}
	if entry["size"] != float64(42) {
		t.Errorf("expected size=42, got %v", entry["size"])
	}
}

func TestDocumentIDContext(t *testing.T) {
	ctx := WithDocumentID(context.Background(), "doc-123")
	if got := GetDocumentID(ctx); got != "doc-123" {
		t.Errorf("GetDocumentID = %q, want doc-123", got)
	}
	if got := GetDocumentID(context.Background()); got != "" {
		t.Errorf("GetDocumentID on empty context = %q, want empty", got)
	}

	out := captureLogOutput(func() {
		InfoContext(ctx, "processing")
	})
	if !strings.Contains(out, "doc-123") {
		t.Errorf("context logger should carry document_id:\n%s", out)
	}
}

func TestDocumentLoaded(t *testing.T) {
	out := captureLogOutput(func() {
		DocumentLoaded("run.xml", "0.90", 2, 1, 3)
	})
	var entry map[string]any
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if entry["msg"] != "document_loaded" {
		t.Errorf("unexpected msg %v", entry["msg"])
	}
	if entry["version"] != "0.90" || entry["series"] != float64(3) {
		t.Errorf("unexpected fields: %v", entry)
	}
}

func TestIngestError(t *testing.T) {
	out := captureLogOutput(func() {
		IngestError("run.xml", "store", errors.New("disk full"))
	})
	if !strings.Contains(out, "disk full") || !strings.Contains(out, "ingest_error") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestInitLoggerFormats(t *testing.T) {
	InitLogger(LevelDebug, FormatText)
	if GetLogger() == nil {
		t.Fatal("GetLogger returned nil after InitLogger")
	}
	// Restore defaults for other tests.
	InitLogger(LevelInfo, FormatJSON)
}
