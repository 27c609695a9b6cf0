package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFilesFindsNestedSQL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "users.sql"), "-- name: X :one\nSELECT 1;")
	writeFile(t, filepath.Join(dir, "nested", "orders.sql"), "-- name: Y :one\nSELECT 1;")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignore me")

	files, err := Files(dir, DefaultPattern)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %v, want 2 .sql files", files)
	}
}

func TestFilesSortedDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "z.sql"), "x")
	writeFile(t, filepath.Join(dir, "a.sql"), "x")

	files, err := Files(dir, DefaultPattern)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.sql" {
		t.Errorf("expected sorted order, got %v", files)
	}
}

func TestWalkInvokesCallbackWithContents(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.sql"), "SELECT 1;")

	var got string
	err := Walk(dir, DefaultPattern, func(path string, contents []byte) error {
		got = string(contents)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got != "SELECT 1;" {
		t.Errorf("got %q", got)
	}
}
