package coverage

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// ErrUnknownFormat is returned when no converter is registered under a key.
var ErrUnknownFormat = errors.New("unknown coverage format")

// Converter renders aggregated coverage into one report format.
type Converter interface {
	// Convert renders the set. Roots are used to build source file paths.
	Convert(set *Set, roots []SourceRoot) (string, error)
	// Filename is the suggested output file name.
	Filename() string
}

// Options configures converters created through the registry.
type Options struct {
	// Fs is probed when several source roots are configured. Nil means the
	// host filesystem.
	Fs afero.Fs
	// StrictRoots turns the empty-path fallback into ErrNoSourceRoot.
	StrictRoots bool
}

// Factory creates a converter from options.
type Factory func(opts Options) Converter

var (
	registry = make(map[string]Factory)
)

// Register adds a converter factory under a format key.
func Register(name string, factory Factory) {
	registry[name] = factory
}

// New creates the converter registered under name.
func New(name string, opts Options) (Converter, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
	return factory(opts), nil
}

// Validate reports whether a format key is registered.
func Validate(name string) error {
	if _, ok := registry[name]; !ok {
		return fmt.Errorf("%w: %q (valid: %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
	return nil
}

// Formats returns the registered keys, sorted.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
