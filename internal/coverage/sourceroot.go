package coverage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/zjy-dev/apexreport/internal/logger"
)

// ErrNoSourceRoot is returned in strict mode when a unit cannot be placed
// under any configured source root.
var ErrNoSourceRoot = errors.New("no source root contains unit")

// SourceRoot is one package directory of the project.
type SourceRoot struct {
	Default bool   `mapstructure:"default"`
	Path    string `mapstructure:"path"`
}

// DefaultRoot returns the first root flagged as default.
func DefaultRoot(roots []SourceRoot) (SourceRoot, bool) {
	for _, r := range roots {
		if r.Default {
			return r, true
		}
	}
	return SourceRoot{}, false
}

// Resolver decides which source root holds a unit's file.
type Resolver struct {
	roots []SourceRoot
	fs    afero.Fs
}

// NewResolver creates a resolver probing fs for file existence.
// A nil fs means the host filesystem.
func NewResolver(roots []SourceRoot, fs afero.Fs) *Resolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Resolver{roots: roots, fs: fs}
}

// Resolve returns the root path for a unit. With a single root it is used
// as is. With several, the first root containing the file wins, then the
// default root, then the empty path.
func (r *Resolver) Resolve(s *Summary) string {
	root, ok := r.lookup(s)
	if !ok {
		logger.Warn("no source root found for %s, using empty path", s.FullName())
	}
	return root
}

// ResolveStrict behaves like Resolve but fails instead of falling back to
// the empty path.
func (r *Resolver) ResolveStrict(s *Summary) (string, error) {
	root, ok := r.lookup(s)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoSourceRoot, s.FullName())
	}
	return root, nil
}

func (r *Resolver) lookup(s *Summary) (string, bool) {
	switch len(r.roots) {
	case 0:
		return "", false
	case 1:
		return r.roots[0].Path, true
	}

	rel := filepath.FromSlash(s.RelativePath())
	for _, root := range r.roots {
		// a failed probe counts as a miss
		exists, err := afero.Exists(r.fs, filepath.Join(root.Path, rel))
		if err == nil && exists {
			return root.Path, true
		}
	}

	if def, ok := DefaultRoot(r.roots); ok {
		return def.Path, true
	}
	return "", false
}
