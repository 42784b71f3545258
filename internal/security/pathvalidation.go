// Package security validates file names and paths supplied on the command
// line before the pipeline reads or writes them.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotBaseName is returned for source names that carry directory parts.
var ErrNotBaseName = errors.New("source must be a plain file name")

// ValidateSourceName checks that name refers to a file directly inside the
// raw data directory: no separators, no parent references, not empty.
func ValidateSourceName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%q: %w", name, ErrNotBaseName)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%q: %w", name, ErrNotBaseName)
	case filepath.Base(name) != name:
		return fmt.Errorf("%q: %w", name, ErrNotBaseName)
	}
	return nil
}

// ValidatePathWithinDirectory checks that filePath resolves inside safeDir.
// Symlinks are resolved for whichever prefix of the path exists, so a link
// inside safeDir that points elsewhere is rejected.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	absSafeDir, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory path: %w", err)
	}

	canonicalPath := resolveExisting(absPath)
	canonicalSafeDir := resolveExisting(absSafeDir)

	rel, err := filepath.Rel(canonicalSafeDir, canonicalPath)
	if err != nil {
		return fmt.Errorf("path is outside safe directory: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path traversal detected: %s attempts to escape %s", filePath, safeDir)
	}
	return nil
}

// resolveExisting evaluates symlinks on the longest existing prefix of p and
// re-attaches the rest.
func resolveExisting(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	for dir := p; ; {
		parent := filepath.Dir(dir)
		if parent == dir {
			return p
		}
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			rest, _ := filepath.Rel(parent, p)
			return filepath.Join(resolved, rest)
		}
		dir = parent
	}
}
