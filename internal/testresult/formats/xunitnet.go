package formats

import (
	"encoding/xml"
	"math"

	"github.com/zjy-dev/apexreport/internal/testresult"
)

type netAssemblies struct {
	XMLName  xml.Name    `xml:"assemblies"`
	Assembly netAssembly `xml:"assembly"`
}

type netAssembly struct {
	Name        string          `xml:"name,attr"`
	Environment string          `xml:"environment,attr"`
	RunDate     string          `xml:"run-date,attr"`
	RunTime     string          `xml:"run-time,attr"`
	Total       int             `xml:"total,attr"`
	Passed      int             `xml:"passed,attr"`
	Failed      int             `xml:"failed,attr"`
	Errors      int             `xml:"errors,attr"`
	Skipped     int             `xml:"skipped,attr"`
	Time        string          `xml:"time,attr"`
	Collections []netCollection `xml:"collection"`
}

type netCollection struct {
	Name    string    `xml:"name,attr"`
	Total   int       `xml:"total,attr"`
	Passed  int       `xml:"passed,attr"`
	Failed  int       `xml:"failed,attr"`
	Skipped int       `xml:"skipped,attr"`
	Time    string    `xml:"time,attr"`
	Tests   []netTest `xml:"test"`
}

type netTest struct {
	Name    string      `xml:"name,attr"`
	Type    string      `xml:"type,attr"`
	Method  string      `xml:"method,attr"`
	Time    string      `xml:"time,attr"`
	Result  string      `xml:"result,attr"`
	Failure *netFailure `xml:"failure,omitempty"`
}

type netFailure struct {
	Message    string `xml:"message"`
	StackTrace cdata  `xml:"stack-trace"`
}

// XUnitNet renders a run as an xUnit.net v2 document with one collection
// per test class.
type XUnitNet struct{}

// Convert builds the assemblies document.
func (x *XUnitNet) Convert(run *testresult.Run, meta testresult.Metadata) (string, error) {
	assembly := netAssembly{
		Name:        suiteName,
		Environment: meta.EndpointHost,
		Total:       run.TotalCount,
		Passed:      run.CompletedCount,
		Failed:      run.ErrorCount,
		Time:        formatSeconds(run.TotalTimeMillis),
	}
	if started, ok := run.Started(); ok {
		local := started.Local()
		assembly.RunDate = local.Format("2006-01-02")
		assembly.RunTime = local.Format("15:04:05")
	}

	for _, group := range groupByClass(run.Tests()) {
		coll := netCollection{
			Name:  group.className,
			Total: len(group.tests),
		}
		totalTime := 0.0
		for _, t := range group.tests {
			seconds := testresult.Seconds(t.TimeMillis)
			totalTime += seconds

			test := netTest{
				Name:   t.MethodName,
				Type:   group.className,
				Method: t.MethodName,
				Time:   formatFloat(seconds),
				Result: "Pass",
			}
			if t.Failed() {
				test.Result = "Fail"
				test.Failure = &netFailure{Message: t.Message, StackTrace: cdata{Text: xmlText(t.StackTrace)}}
				coll.Failed++
			} else {
				coll.Passed++
			}
			coll.Tests = append(coll.Tests, test)
		}
		coll.Time = formatFloat(math.Round(totalTime*1000) / 1000)
		assembly.Collections = append(assembly.Collections, coll)
	}

	return marshalDocument(netAssemblies{Assembly: assembly})
}

// Filename returns "<run id>-test-results.xml".
func (x *XUnitNet) Filename(run *testresult.Run) string {
	return testresult.ReportFilename(run)
}

type classGroup struct {
	className string
	tests     []testresult.Test
}

// groupByClass keeps classes in first-seen order.
func groupByClass(tests []testresult.Test) []*classGroup {
	var groups []*classGroup
	index := make(map[string]*classGroup)
	for _, t := range tests {
		g, ok := index[t.ClassName]
		if !ok {
			g = &classGroup{className: t.ClassName}
			index[t.ClassName] = g
			groups = append(groups, g)
		}
		g.tests = append(g.tests, t)
	}
	return groups
}
