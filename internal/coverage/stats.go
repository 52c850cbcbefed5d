package coverage

// Stats holds org-wide line coverage totals for display.
type Stats struct {
	// Overall coverage percentage (0-100)
	CoveragePercentage float64

	Units             int
	TotalLines        int
	TotalCoveredLines int

	// Units with no covered line at all
	UncoveredUnits int
}

// ComputeStats sums the line counts of every summary in the set.
func ComputeStats(set *Set) Stats {
	var st Stats
	for _, s := range set.Summaries() {
		st.Units++
		lines := s.LineCount()
		covered := s.CoveredLineCount()
		st.TotalLines += lines
		st.TotalCoveredLines += covered
		if covered == 0 {
			st.UncoveredUnits++
		}
	}
	if st.TotalLines > 0 {
		st.CoveragePercentage = float64(st.TotalCoveredLines) * 100 / float64(st.TotalLines)
	}
	return st
}
