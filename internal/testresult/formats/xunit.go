// Package formats holds the test result converters. Each converter registers
// itself with the testresult registry on import.
package formats

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zjy-dev/apexreport/internal/testresult"
)

const (
	// XUnitFormat is the registry key of the JUnit style converter.
	XUnitFormat = "xunit"
	// XUnitNetFormat is the registry key of the xUnit.net converter.
	XUnitNetFormat = "xunitnet"

	suiteName = "force.apex"
)

func init() {
	testresult.Register(XUnitFormat, &XUnit{})
	testresult.Register(XUnitNetFormat, &XUnitNet{})
}

type cdata struct {
	Text string `xml:",cdata"`
}

// xmlText replaces characters XML 1.0 does not allow with U+FFFD. CDATA
// sections are written verbatim, so stack traces must be cleaned first.
func xmlText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r >= 0x20 && r <= 0xD7FF,
			r >= 0xE000 && r <= 0xFFFD,
			r >= 0x10000 && r <= 0x10FFFF:
			return r
		}
		return '\uFFFD'
	}, s)
}

type junitSuites struct {
	XMLName xml.Name   `xml:"testSuites"`
	Suite   junitSuite `xml:"testSuite"`
}

type junitSuite struct {
	Name       string          `xml:"name,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Hostname   string          `xml:"hostname,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Time       string          `xml:"time,attr"`
	Properties []junitProperty `xml:"properties>property"`
	Cases      []junitCase     `xml:"testcase"`
}

type junitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message    string `xml:"message,attr"`
	StackTrace string `xml:",cdata"`
}

// XUnit renders a run as a JUnit compatible document.
type XUnit struct{}

// Convert builds the testSuites document.
func (x *XUnit) Convert(run *testresult.Run, meta testresult.Metadata) (string, error) {
	suite := junitSuite{
		Name:      suiteName,
		Timestamp: run.StartTime,
		Hostname:  meta.EndpointHost,
		Tests:     run.TotalCount,
		Failures:  run.ErrorCount,
		Errors:    0,
		Time:      formatSeconds(run.TotalTimeMillis),
	}

	for _, s := range run.Successes {
		suite.Cases = append(suite.Cases, junitCase{
			Name:      s.MethodName,
			Classname: s.ClassName,
			Time:      formatSeconds(s.TimeMillis),
		})
	}
	for _, f := range run.Failures {
		suite.Cases = append(suite.Cases, junitCase{
			Name:      f.MethodName,
			Classname: f.ClassName,
			Time:      formatSeconds(f.TimeMillis),
			Failure:   &junitFailure{Message: f.Message, StackTrace: xmlText(f.StackTrace)},
		})
	}

	suite.Properties = runProperties(run, meta)

	return marshalDocument(junitSuites{Suite: suite})
}

// Filename returns "<run id>-test-results.xml".
func (x *XUnit) Filename(run *testresult.Run) string {
	return testresult.ReportFilename(run)
}

// runProperties lists the run level properties in their fixed order.
func runProperties(run *testresult.Run, meta testresult.Metadata) []junitProperty {
	props := []junitProperty{
		{Name: "outcome", Value: run.Status},
		{Name: "testsRan", Value: strconv.Itoa(run.TotalCount)},
		{Name: "passing", Value: strconv.Itoa(run.CompletedCount)},
		{Name: "failing", Value: strconv.Itoa(run.ErrorCount)},
		{Name: "skipped", Value: "0"},
	}
	if run.TotalCount > 0 {
		passRate := int(math.Round(100 * float64(run.CompletedCount) / float64(run.TotalCount)))
		props = append(props,
			junitProperty{Name: "passRate", Value: fmt.Sprintf("%d%%", passRate)},
			junitProperty{Name: "failRate", Value: fmt.Sprintf("%d%%", 100-passRate)},
		)
	}
	return append(props,
		junitProperty{Name: "hostname", Value: meta.EndpointHost},
		junitProperty{Name: "testRunId", Value: run.ID},
		junitProperty{Name: "userId", Value: run.CreatedBy},
	)
}

// formatSeconds converts milliseconds to seconds using the shortest
// representation, so 500 becomes "0.5" and 1000 becomes "1".
func formatSeconds(millis float64) string {
	return formatFloat(testresult.Seconds(millis))
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func marshalDocument(doc interface{}) (string, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return xml.Header + string(body), nil
}
