package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestContextFieldsInJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(Config{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	ctx := WithCase(WithSuite(context.Background(), "twice"), "checker")
	l.WithContext(ctx).Info("converter finished", zap.Int("exit_code", 0))
	_ = l.Sync()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["suite"] != "twice" || entry["case"] != "checker" {
		t.Fatalf("missing context fields: %v", entry)
	}
	if entry["msg"] != "converter finished" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
}

func TestConsoleColor(t *testing.T) {
	for _, noColor := range []bool{false, true} {
		var buf bytes.Buffer
		l, err := NewLogger(Config{Format: "console", Output: &buf, NoColor: noColor})
		if err != nil {
			t.Fatalf("new logger: %v", err)
		}
		l.WithContext(context.Background()).Warn("converter slow")
		_ = l.Sync()

		line := buf.String()
		if !strings.Contains(line, "WARN") {
			t.Fatalf("missing level in %q", line)
		}
		if hasEscape := strings.Contains(line, "\x1b["); hasEscape == noColor {
			t.Fatalf("noColor=%v: unexpected escape codes in %q", noColor, line)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(Config{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	l.WithContext(context.Background()).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be filtered, got %q", buf.String())
	}
}

func TestInvalidConfig(t *testing.T) {
	if _, err := NewLogger(Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
	if _, err := NewLogger(Config{Format: "xml"}); err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestGlobalHelpersWithoutInit(t *testing.T) {
	globalLogger = nil
	Warn(context.Background(), "dropped")
	if err := Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
}
