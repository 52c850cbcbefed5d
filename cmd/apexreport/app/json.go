package app

import (
	"fmt"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/zjy-dev/apexreport/internal/coverage"
	"github.com/zjy-dev/apexreport/internal/testresult"
)

// envelope is the shape sf prints for --json; results are set below result.
const envelope = `{"status":0,"result":{}}`

type lineHit struct {
	Line int `json:"line"`
	Hits int `json:"hits"`
}

type setter struct {
	doc string
	err error
}

func (s *setter) set(path string, value interface{}) {
	if s.err != nil {
		return
	}
	s.doc, s.err = sjson.Set(s.doc, path, value)
}

func (s *setter) result() (string, error) {
	if s.err != nil {
		return "", fmt.Errorf("failed to build JSON result: %w", s.err)
	}
	return string(pretty.Pretty([]byte(s.doc))), nil
}

// coverageJSON renders the aggregated summaries and org totals.
func coverageJSON(set *coverage.Set) (string, error) {
	st := coverage.ComputeStats(set)
	s := &setter{doc: envelope}
	s.set("result.summary.coverage", st.CoveragePercentage)
	s.set("result.summary.units", st.Units)
	s.set("result.summary.lines", st.TotalLines)
	s.set("result.summary.coveredLines", st.TotalCoveredLines)
	s.set("result.summary.uncoveredUnits", st.UncoveredUnits)
	s.set("result.units", []interface{}{})

	for i, sum := range set.Summaries() {
		path := fmt.Sprintf("result.units.%d", i)
		s.set(path+".id", sum.ID)
		s.set(path+".name", sum.Name)
		s.set(path+".type", sum.Kind.String())
		s.set(path+".coveringTests", sum.CoveringTests)

		hits := make([]lineHit, 0, sum.LineCount())
		for _, line := range sum.SortedLines() {
			hits = append(hits, lineHit{Line: line, Hits: sum.Lines[line]})
		}
		s.set(path+".lines", hits)
	}
	return s.result()
}

// runJSON renders the counters of a run and its failed tests.
func runJSON(run *testresult.Run) (string, error) {
	s := &setter{doc: envelope}
	s.set("result.id", run.ID)
	s.set("result.status", run.Status)
	s.set("result.startDate", run.StartTime)
	s.set("result.tests", run.TotalCount)
	s.set("result.passing", run.CompletedCount)
	s.set("result.failing", run.ErrorCount)
	s.set("result.time", testresult.Seconds(run.TotalTimeMillis))
	s.set("result.failures", []interface{}{})

	for i, f := range run.Failures {
		path := fmt.Sprintf("result.failures.%d", i)
		s.set(path+".className", f.ClassName)
		s.set(path+".methodName", f.MethodName)
		s.set(path+".message", f.Message)
		s.set(path+".stackTrace", f.StackTrace)
	}
	return s.result()
}
