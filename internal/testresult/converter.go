package testresult

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownFormat is returned when no converter is registered under a key.
var ErrUnknownFormat = errors.New("unknown test result format")

// Converter renders a run into one report format.
type Converter interface {
	Convert(run *Run, meta Metadata) (string, error)
	// Filename is the suggested output file name for the run.
	Filename(run *Run) string
}

var (
	registry = make(map[string]Converter)
)

// Register adds a converter under a format key.
func Register(name string, c Converter) {
	registry[name] = c
}

// Lookup returns the converter registered under name.
func Lookup(name string) (Converter, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
	return c, nil
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

// ReportFilename is the file name shared by the XML converters.
func ReportFilename(run *Run) string {
	return run.ID + "-test-results.xml"
}
