package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevelsAndKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "ocr", LevelInfo)

	l.Debug("hidden", "k", "v")
	l.Info("engine ready", "backend", "cli", "dangling")
	l.With("cli").Error("call failed", "op", "extract_text")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line written at info level:\n%s", out)
	}
	if !strings.Contains(out, "[ocr] ") || !strings.Contains(out, "[INFO] engine ready backend=cli\n") {
		t.Fatalf("info line malformed:\n%s", out)
	}
	if !strings.Contains(out, "[ocr/cli] ") || !strings.Contains(out, "[ERROR] call failed op=extract_text") {
		t.Fatalf("child logger line malformed:\n%s", out)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"": LevelInfo, "DEBUG": LevelDebug, "warning": LevelWarn, "error": LevelError} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("trace"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing", "k", "v")
}
