// Package coverage folds per-test Apex line coverage into per-unit summaries
// and renders them through pluggable report converters.
package coverage

import (
	"path"
	"sort"
)

// UnitKind identifies what sort of compilation unit a summary describes.
type UnitKind int

const (
	// Class is an Apex class (.cls).
	Class UnitKind = iota
	// Trigger is an Apex trigger (.trigger).
	Trigger
)

// String returns the lower-case kind name.
func (k UnitKind) String() string {
	if k == Trigger {
		return "trigger"
	}
	return "class"
}

// Extension returns the source file extension, without the dot.
func (k UnitKind) Extension() string {
	if k == Trigger {
		return "trigger"
	}
	return "cls"
}

// Directory returns the metadata folder the unit lives in.
func (k UnitKind) Directory() string {
	if k == Trigger {
		return "triggers"
	}
	return "classes"
}

// Summary holds the aggregated line hits of one class or trigger.
type Summary struct {
	ID            string
	Name          string
	Kind          UnitKind
	CoveringTests []string

	// Lines maps a line number to the number of tests that executed it.
	// A zero count means the line was only ever reported as uncovered.
	Lines map[int]int
}

// NewSummary creates an empty summary.
func NewSummary(id, name string, kind UnitKind) *Summary {
	return &Summary{
		ID:            id,
		Name:          name,
		Kind:          kind,
		CoveringTests: []string{},
		Lines:         make(map[int]int),
	}
}

// AddCoveringTest records a test method that touched this unit.
func (s *Summary) AddCoveringTest(name string) {
	s.CoveringTests = append(s.CoveringTests, name)
}

// AddCoveredLine increments the execution count of a line.
func (s *Summary) AddCoveredLine(line int) {
	s.Lines[line]++
}

// AddUncoveredLine registers a line with a zero count. A line that is
// already known, covered or not, is left untouched.
func (s *Summary) AddUncoveredLine(line int) {
	if _, ok := s.Lines[line]; !ok {
		s.Lines[line] = 0
	}
}

// LineCount returns the number of distinct lines ever recorded.
func (s *Summary) LineCount() int {
	return len(s.Lines)
}

// CoveredLineCount returns the number of lines executed at least once.
func (s *Summary) CoveredLineCount() int {
	covered := 0
	for _, hits := range s.Lines {
		if hits > 0 {
			covered++
		}
	}
	return covered
}

// SortedLines returns the recorded line numbers in ascending order.
func (s *Summary) SortedLines() []int {
	lines := make([]int, 0, len(s.Lines))
	for line := range s.Lines {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}

// FullName returns the source file name, e.g. "AccountService.cls".
func (s *Summary) FullName() string {
	return s.Name + "." + s.Kind.Extension()
}

// RelativePath returns the unit's path below a source root in the
// source format layout, e.g. "main/default/classes/AccountService.cls".
func (s *Summary) RelativePath() string {
	return path.Join("main", "default", s.Kind.Directory(), s.FullName())
}
