// Package finder locates HAML template files on disk.
package finder

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// TemplateFinder is responsible for finding template files under a root.
type TemplateFinder interface {
	// FindTemplates returns the files under root matching any include glob
	// and no exclude glob. Paths are relative to root, sorted.
	FindTemplates(ctx context.Context, root string, include, exclude []string) ([]string, error)
}

// DefaultFinder is the default implementation of TemplateFinder.
type DefaultFinder struct {
	fs afero.Fs
}

// NewDefaultFinder creates a finder over the given filesystem; a nil
// filesystem means the OS filesystem.
func NewDefaultFinder(fsys afero.Fs) *DefaultFinder {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &DefaultFinder{fs: fsys}
}

// FindTemplates implements TemplateFinder.
func (f *DefaultFinder) FindTemplates(ctx context.Context, root string, include, exclude []string) ([]string, error) {
	for _, pattern := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid glob pattern %q", pattern)
		}
	}

	var found []string
	err := afero.Walk(f.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.Errorf("walking %s: %w", path, err)
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Errorf("relativizing %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		if !matchesAny(include, rel) || matchesAny(exclude, rel) {
			return nil
		}
		found = append(found, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(found)
	zerolog.Ctx(ctx).Debug().
		Str("root", root).
		Int("count", len(found)).
		Msg("found template files")
	return found, nil
}

func matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
