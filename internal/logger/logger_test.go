package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init("warn", false, &buf)
	defer Init("warn", false, os.Stderr)

	Debug("hidden")
	Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("expected warn line with attribute, got %q", out)
	}
}

func TestInit_JSON(t *testing.T) {
	var buf bytes.Buffer
	Init("debug", true, &buf)
	defer Init("warn", false, os.Stderr)

	With("request_id", "abc").Debug("request")

	if !strings.Contains(buf.String(), `"request_id":"abc"`) {
		t.Errorf("expected JSON attribute, got %q", buf.String())
	}
}

func TestParseLevel_Unknown(t *testing.T) {
	if parseLevel("loud").String() != "INFO" {
		t.Errorf("unknown level should fall back to info")
	}
}
