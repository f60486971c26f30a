package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrollseek.log")
	if err := Init(path); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	defer Close()

	Info("search started view=%s", "year")
	Warn("gesture %d failed", 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "search started view=year") {
		t.Errorf("log missing info line: %s", out)
	}
	if !strings.Contains(out, "level=warning") {
		t.Errorf("log missing warning level: %s", out)
	}
	if GetWriter() == nil {
		t.Error("GetWriter() should not be nil")
	}
}

func TestInitInvalidPath(t *testing.T) {
	if err := Init("/nonexistent/dir/scrollseek.log"); err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestSetLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	defer Close()

	if err := SetLevel("info"); err != nil {
		t.Fatalf("SetLevel() error: %v", err)
	}
	defer SetLevel("debug")

	Debug("hidden")
	WithFields(Fields{"view": "spinner"}).Info("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered: %s", out)
	}
	if !strings.Contains(out, "view=spinner") {
		t.Errorf("missing structured field: %s", out)
	}
}

func TestSetLevelInvalid(t *testing.T) {
	if err := SetLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNoOutputBeforeInit(t *testing.T) {
	Close()
	Info("dropped")
	if GetWriter() == nil {
		t.Error("GetWriter() should return io.Discard, not nil")
	}
}
