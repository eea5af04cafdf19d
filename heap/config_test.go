package heap

import (
	"os"
	"path/filepath"
	"testing"
)

// ---------------------------------------------------------------------------
// Config loading tests
// ---------------------------------------------------------------------------

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadConfig on a missing file should not error, got %v", err)
	}
	if c.ObjectTableCapacity != defaultObjectTableCapacity {
		t.Errorf("ObjectTableCapacity = %d, want default %d", c.ObjectTableCapacity, defaultObjectTableCapacity)
	}
	if c.ClassTableCapacity != defaultClassTableCapacity {
		t.Errorf("ClassTableCapacity = %d, want default %d", c.ClassTableCapacity, defaultClassTableCapacity)
	}
	if c.WorklistCapacity != defaultWorklistCapacity {
		t.Errorf("WorklistCapacity = %d, want default %d", c.WorklistCapacity, defaultWorklistCapacity)
	}
}

func TestLoadConfigParsesPartialFileAndFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "heap.toml")
	writeFile(t, path, "object_table_capacity = 4096\n")

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if c.ObjectTableCapacity != 4096 {
		t.Errorf("ObjectTableCapacity = %d, want 4096", c.ObjectTableCapacity)
	}
	if c.ClassTableCapacity != defaultClassTableCapacity {
		t.Error("an unset field should still fall back to its default")
	}
}

func TestLoadConfigRejectsMalformedToml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "heap.toml")
	writeFile(t, path, "object_table_capacity = [not valid\n")

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig should surface a TOML parse error")
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed writing test fixture %s: %v", path, err)
	}
}
