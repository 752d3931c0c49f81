package log

import (
	"bytes"
	"strings"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	saved := GetLevel()
	t.Cleanup(func() {
		SetOutput(prev)
		SetLevel(saved)
	})
	return &buf
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelInfo)

	Debug("hidden %d", 1)
	Info("shown %d", 2)

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Errorf("debug message emitted at info level: %q", got)
	}
	if !strings.Contains(got, "[INFO] shown 2") {
		t.Errorf("info message missing: %q", got)
	}
}

func TestErrorAlwaysEmitted(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelError + 4)

	Warn("quiet")
	Error("loud")

	if got := buf.String(); got != "[ERROR] loud\n" {
		t.Errorf("output = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]string{
		"debug": "DEBUG",
		"INFO":  "INFO",
		"warn":  "WARN",
		"error": "ERROR",
	} {
		l, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", in, err)
			continue
		}
		if l.String() != want {
			t.Errorf("ParseLevel(%q) = %v, want %s", in, l, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(\"loud\") succeeded")
	}
}
