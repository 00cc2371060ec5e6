// Package fileset resolves SQL source globs and loads the matched files
// with a size cap.
package fileset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrNoPatterns indicates that Resolve was invoked without any glob patterns.
var ErrNoPatterns = errors.New("fileset: no patterns provided")

// PatternError wraps a malformed glob pattern.
type PatternError struct {
	Pattern string
	Err     error
}

func (e PatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern %q: %v", e.Pattern, e.Err)
}

func (e PatternError) Unwrap() error { return e.Err }

// NoMatchError lists the patterns that matched nothing.
type NoMatchError struct {
	Patterns []string
}

func (e NoMatchError) Error() string {
	return "patterns matched no files: " + strings.Join(e.Patterns, ", ")
}

// Resolver expands glob patterns against an fs.FS. Matches are reported as
// slash-separated names relative to the filesystem root.
type Resolver struct {
	fsys    fs.FS
	display func(name string) string
}

// NewResolver returns a Resolver over fsys that displays names unchanged.
func NewResolver(fsys fs.FS) Resolver {
	return Resolver{fsys: fsys}
}

// NewOSResolver returns a Resolver rooted at base. Loaded sources carry
// OS paths joined onto base.
func NewOSResolver(base string) (Resolver, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return Resolver{}, fmt.Errorf("resolve base %q: %w", base, err)
	}
	info, err := os.Stat(absBase)
	if err != nil {
		return Resolver{}, fmt.Errorf("stat base %q: %w", absBase, err)
	}
	if !info.IsDir() {
		return Resolver{}, fmt.Errorf("base %q is not a directory", absBase)
	}
	return Resolver{
		fsys: os.DirFS(absBase),
		display: func(name string) string {
			return filepath.Join(absBase, filepath.FromSlash(name))
		},
	}, nil
}

// Resolve evaluates every pattern and returns the sorted, de-duplicated
// matches. All patterns that match nothing are reported together.
func (r Resolver) Resolve(patterns []string) ([]string, error) {
	if r.fsys == nil {
		return nil, errors.New("fileset: resolver has no filesystem")
	}
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}

	var matches, missing []string
	for _, pattern := range patterns {
		found, err := fs.Glob(r.fsys, filepath.ToSlash(pattern))
		if err != nil {
			return nil, PatternError{Pattern: pattern, Err: err}
		}
		if len(found) == 0 {
			missing = append(missing, pattern)
			continue
		}
		matches = append(matches, found...)
	}
	if len(missing) > 0 {
		return nil, NoMatchError{Patterns: missing}
	}

	slices.Sort(matches)
	return slices.Compact(matches), nil
}

// Load resolves patterns and reads every match, refusing files larger than
// limit bytes. A limit of zero or less disables the cap.
func (r Resolver) Load(patterns []string, limit int64) ([]Source, error) {
	names, err := r.Resolve(patterns)
	if err != nil {
		return nil, err
	}
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		path := r.displayName(name)
		f, err := r.fsys.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		data, err := readLimited(f, path, limit)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		sources = append(sources, Source{Path: path, Data: data})
	}
	return sources, nil
}

func (r Resolver) displayName(name string) string {
	if r.display == nil {
		return name
	}
	return r.display(name)
}
