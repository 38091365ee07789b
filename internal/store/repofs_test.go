package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestNewRepoFs(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "packages"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "packages", "foo.opm"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(filepath.Dir(root), "secret.txt"), []byte("s"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(filepath.Join(filepath.Dir(root), "secret.txt")) })

	fsys := NewRepoFs(root)

	data, err := afero.ReadFile(fsys, "packages/foo.opm")
	if err != nil || string(data) != "x" {
		t.Fatalf("Expected to read store file, got %q, %v", data, err)
	}

	if _, err := afero.ReadFile(fsys, "../secret.txt"); err == nil {
		t.Error("Expected reads outside the store root to fail")
	}

	if err := afero.WriteFile(fsys, "packages/new.opm", []byte("x"), 0644); err == nil {
		t.Error("Expected writes to fail on a read-only store")
	}
}
