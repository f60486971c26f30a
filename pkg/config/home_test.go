package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetHome_EnvVar(t *testing.T) {
	ResetHome()
	t.Setenv("SCROLLSEEK_HOME", "/custom/path")

	if got := GetHome(); got != "/custom/path" {
		t.Errorf("GetHome() = %q, want %q", got, "/custom/path")
	}
}

func TestGetHome_Fallback(t *testing.T) {
	ResetHome()
	t.Setenv("SCROLLSEEK_HOME", "")

	if got := GetHome(); got == "" {
		t.Error("GetHome() returned empty string")
	}
}

func TestGetHome_Cached(t *testing.T) {
	ResetHome()
	t.Setenv("SCROLLSEEK_HOME", "/first")
	first := GetHome()

	t.Setenv("SCROLLSEEK_HOME", "/second")
	second := GetHome()

	if first != second {
		t.Errorf("GetHome() not cached: first=%q, second=%q", first, second)
	}
}

func TestGetLogsDir(t *testing.T) {
	ResetHome()
	t.Setenv("SCROLLSEEK_HOME", "/test/home")

	want := filepath.Join("/test/home", "logs")
	if got := GetLogsDir(); got != want {
		t.Errorf("GetLogsDir() = %q, want %q", got, want)
	}
}

func TestLoadDefault(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "scrollseek.yaml"), []byte("views:\n  month:\n    grace: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ResetHome()
	t.Setenv("SCROLLSEEK_HOME", dir)
	defer ResetHome()

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Views[ViewMonth].Grace != 3 {
		t.Errorf("expected month.grace 3, got %d", cfg.Views[ViewMonth].Grace)
	}
}
