package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	d := Default()
	if d.MaxExecutionTimeMs != 5000 || d.MaxCallDepth != 32 || !d.WarningsAsErrors {
		t.Fatalf("unexpected defaults: %+v", d)
	}
	set := d.FilteredWarningCodeSet()
	if !set["nullable-assignment"] || !set["nullable-member-access"] {
		t.Fatalf("expected default filtered warning codes, got %+v", set)
	}
}

func TestLoadOverridesPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("max_call_depth: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.MaxCallDepth != 8 {
		t.Fatalf("expected override to 8, got %d", got.MaxCallDepth)
	}
	if got.MaxExecutionTimeMs != 5000 {
		t.Fatalf("expected untouched field to keep default, got %d", got.MaxExecutionTimeMs)
	}
}
