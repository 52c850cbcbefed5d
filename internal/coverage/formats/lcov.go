// Package formats holds the coverage report converters. Each converter
// registers itself with the coverage registry on import.
package formats

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/zjy-dev/apexreport/internal/coverage"
)

// LCOVFormat is the registry key of the LCOV tracefile converter.
const LCOVFormat = "lcov-text"

func init() {
	coverage.Register(LCOVFormat, func(opts coverage.Options) coverage.Converter {
		return NewLCOV(opts.Fs, opts.StrictRoots)
	})
}

// LCOV renders coverage as an LCOV tracefile.
type LCOV struct {
	fs     afero.Fs
	strict bool
}

// NewLCOV creates an LCOV converter. fs is only probed when more than one
// source root is configured; nil means the host filesystem.
func NewLCOV(fs afero.Fs, strict bool) *LCOV {
	return &LCOV{fs: fs, strict: strict}
}

// Convert emits one record per unit, in set order. A unit without lines
// still gets an SF/LF/LH block; an empty set renders as "".
func (l *LCOV) Convert(set *coverage.Set, roots []coverage.SourceRoot) (string, error) {
	if set.Len() == 0 {
		return "", nil
	}

	resolver := coverage.NewResolver(roots, l.fs)
	out := []string{"TN:"}

	for _, s := range set.Summaries() {
		var root string
		if l.strict {
			var err error
			root, err = resolver.ResolveStrict(s)
			if err != nil {
				return "", fmt.Errorf("failed to resolve source root: %w", err)
			}
		} else {
			root = resolver.Resolve(s)
		}

		out = append(out, "SF:"+path.Join(root, s.RelativePath()))
		for _, line := range s.SortedLines() {
			out = append(out, fmt.Sprintf("DA:%d,%d", line, s.Lines[line]))
		}
		out = append(out,
			fmt.Sprintf("LF:%d", s.LineCount()),
			fmt.Sprintf("LH:%d", s.CoveredLineCount()),
			"end_of_record",
		)
	}

	return strings.Join(out, "\n"), nil
}

// Filename returns "coverage.lcov".
func (l *LCOV) Filename() string {
	return "coverage.lcov"
}
