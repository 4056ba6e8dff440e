package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.CountNewlines {
		t.Error("CountNewlines = false, want true")
	}
	if cfg.DefaultCharset != "utf-8" {
		t.Errorf("DefaultCharset = %q, want utf-8", cfg.DefaultCharset)
	}
	if cfg.MaxHeaderBytes <= 0 {
		t.Error("MaxHeaderBytes should be positive by default")
	}
}

func TestReadConfigLayersOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.json")
	if err := os.WriteFile(path, []byte(`{"default_charset":"iso-8859-1"}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.DefaultCharset != "iso-8859-1" {
		t.Errorf("DefaultCharset = %q, want iso-8859-1", cfg.DefaultCharset)
	}
	if !cfg.CountNewlines {
		t.Error("CountNewlines should keep its default when omitted from the JSON")
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	if _, err := ReadConfig("/nonexistent/engine.json"); err == nil {
		t.Error("ReadConfig on a missing file returned nil error")
	}
}
