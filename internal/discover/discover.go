// Package discover walks a directory tree for .sql source files using the
// same doublestar matcher teleport's module graph uses for its file
// filters, so pgtc's --pattern flag supports the same "**/*.sql" glob
// syntax users of that ecosystem already expect.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches every .sql file in or below the root directory.
const DefaultPattern = "**/*.sql"

// Files returns every file under root matching pattern (a doublestar glob
// relative to root), sorted for deterministic processing order.
func Files(root, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("globbing %q under %s: %w", pattern, root, err)
	}

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(root, m)
	}
	sort.Strings(paths)
	return paths, nil
}

// WalkFunc is invoked once per matched file with its path and contents.
type WalkFunc func(path string, contents []byte) error

// Walk discovers files under root matching pattern and invokes fn for
// each one in sorted order, stopping at the first error.
func Walk(root, pattern string, fn WalkFunc) error {
	paths, err := Files(root, pattern)
	if err != nil {
		return err
	}
	for _, path := range paths {
		contents, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := fn(path, contents); err != nil {
			return err
		}
	}
	return nil
}
