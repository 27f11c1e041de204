package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Dir resolves study-relative paths against a base data directory.
type Dir struct{ base string }

// NewDir returns a Dir rooted at base. An empty base means the working
// directory.
func NewDir(base string) Dir { return Dir{base: base} }

// Base returns the configured base directory.
func (d Dir) Base() string { return d.base }

// Resolve joins rel onto the base. Absolute paths are returned unchanged.
func (d Dir) Resolve(rel string) string {
	if filepath.IsAbs(rel) || d.base == "" {
		return filepath.Clean(rel)
	}
	return filepath.Join(d.base, rel)
}

// Local returns a Local source for rel.
func (d Dir) Local(rel string) *Local { return NewLocal(d.Resolve(rel)) }

// Glob expands pattern (filepath.Match syntax) under the base and returns
// sources in lexical order. No match is reported as an error wrapping
// os.ErrNotExist, like opening a missing file.
func (d Dir) Glob(pattern string) ([]*Local, error) {
	full := d.Resolve(pattern)
	matches, err := filepath.Glob(full)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", full, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("glob %s: %w", full, os.ErrNotExist)
	}
	sort.Strings(matches)
	out := make([]*Local, len(matches))
	for i, m := range matches {
		out[i] = NewLocal(m)
	}
	return out, nil
}
