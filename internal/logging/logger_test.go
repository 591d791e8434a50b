package logging_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/choiway/filmtag/internal/config"
	"github.com/choiway/filmtag/internal/logging"
)

func TestConsoleLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.With("component", "apply").Info("metadata applied", "frame", 3, slog.Group("image", "path", "/x/frame_03.jpg"))
	logger.Debug("hidden at info level")

	out := buf.String()
	if !strings.Contains(out, "INFO  metadata applied") {
		t.Fatalf("missing header in %q", out)
	}
	for _, want := range []string{"    - component: apply", "    - frame: 3", "    - image.path: /x/frame_03.jpg"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if strings.Contains(out, "hidden at info level") {
		t.Fatalf("debug line leaked at info level: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no colour for a non-terminal writer: %q", out)
	}
}

func TestConsoleLoggerForcedColour(t *testing.T) {
	var buf bytes.Buffer
	on := true
	logger, err := logging.New(logging.Options{Format: "console", Output: &buf, Color: &on})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("careful")
	if !strings.Contains(buf.String(), "\x1b[33mWARN ") {
		t.Fatalf("expected coloured warn label, got %q", buf.String())
	}
}

func TestJSONLoggerKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("file missing", "path", "/x/frame_02.jpg")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["level"] != "warn" {
		t.Fatalf("expected lowercase level, got %v", entry["level"])
	}
	if entry["msg"] != "file missing" {
		t.Fatalf("unexpected msg %v", entry["msg"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key in %v", entry)
	}
	if entry["path"] != "/x/frame_02.jpg" {
		t.Fatalf("unexpected path %v", entry["path"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "warn"

	var buf bytes.Buffer
	logger, err := logging.NewFromConfig(&cfg, &buf)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := logging.NewFromConfig(nil, io.Discard); err != nil {
		t.Fatalf("NewFromConfig(nil) returned error: %v", err)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("nothing to see")
}
