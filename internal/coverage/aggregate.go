package coverage

// Record is one raw ApexCodeCoverage row: the lines of a single unit that a
// single test method did and did not execute.
type Record struct {
	UnitID         string
	UnitName       string
	Kind           UnitKind
	TestMethodName string
	CoveredLines   []int
	UncoveredLines []int
}

// Set is an insertion-ordered mapping from unit name to summary.
type Set struct {
	names     []string
	summaries map[string]*Summary
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{summaries: make(map[string]*Summary)}
}

// Get returns the summary for a unit name.
func (s *Set) Get(name string) (*Summary, bool) {
	summary, ok := s.summaries[name]
	return summary, ok
}

// Put stores a summary, keeping the position of an existing entry.
func (s *Set) Put(summary *Summary) {
	if _, ok := s.summaries[summary.Name]; !ok {
		s.names = append(s.names, summary.Name)
	}
	s.summaries[summary.Name] = summary
}

// Len returns the number of units.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns unit names in first-seen order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Summaries returns the summaries in first-seen order.
func (s *Set) Summaries() []*Summary {
	if s == nil {
		return nil
	}
	out := make([]*Summary, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.summaries[name])
	}
	return out
}

// AggregateStats counts what happened while folding records.
type AggregateStats struct {
	Records int
	Skipped int
}

// Aggregator folds raw records into a Set, one record at a time.
type Aggregator struct {
	set   *Set
	stats AggregateStats
}

// NewAggregator creates an aggregator with an empty set.
func NewAggregator() *Aggregator {
	return &Aggregator{set: NewSet()}
}

// Add folds a single record. Records without a unit name are skipped.
func (a *Aggregator) Add(r Record) {
	if r.UnitName == "" {
		a.stats.Skipped++
		return
	}
	a.stats.Records++

	summary, ok := a.set.Get(r.UnitName)
	if !ok {
		summary = NewSummary(r.UnitID, r.UnitName, r.Kind)
		a.set.Put(summary)
	}
	summary.AddCoveringTest(r.TestMethodName)

	for _, line := range r.CoveredLines {
		summary.AddCoveredLine(line)
	}
	for _, line := range r.UncoveredLines {
		summary.AddUncoveredLine(line)
	}
}

// Set returns the aggregated set.
func (a *Aggregator) Set() *Set {
	return a.set
}

// Stats returns the record counters.
func (a *Aggregator) Stats() AggregateStats {
	return a.stats
}

// Aggregate folds records in order and returns the resulting set.
func Aggregate(records []Record) *Set {
	agg := NewAggregator()
	for _, r := range records {
		agg.Add(r)
	}
	return agg.Set()
}
