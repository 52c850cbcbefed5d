// Package testresult holds the normalized shape of an Apex test run and the
// converters that turn it into CI report formats.
package testresult

import "time"

// Success is a test method that passed.
type Success struct {
	ClassName  string
	MethodName string
	TimeMillis float64
}

// Failure is a test method that failed.
type Failure struct {
	ClassName  string
	MethodName string
	TimeMillis float64
	Message    string
	StackTrace string
}

// Run is one deploy or test run.
type Run struct {
	ID             string
	CreatedBy      string
	Status         string
	StartTime      string
	TotalCount     int
	CompletedCount int
	ErrorCount     int
	// TotalTimeMillis is the run duration reported by the org.
	TotalTimeMillis float64

	Successes []Success
	Failures  []Failure
}

// Metadata describes the org the run executed against.
type Metadata struct {
	EndpointHost string
}

// Test is a single outcome, passed or failed.
type Test struct {
	ClassName  string
	MethodName string
	TimeMillis float64
	Message    string
	StackTrace string
}

// Failed reports whether the test carries a failure message.
func (t Test) Failed() bool {
	return t.Message != ""
}

// Tests returns successes followed by failures.
func (r *Run) Tests() []Test {
	tests := make([]Test, 0, len(r.Successes)+len(r.Failures))
	for _, s := range r.Successes {
		tests = append(tests, Test{ClassName: s.ClassName, MethodName: s.MethodName, TimeMillis: s.TimeMillis})
	}
	for _, f := range r.Failures {
		tests = append(tests, Test{
			ClassName:  f.ClassName,
			MethodName: f.MethodName,
			TimeMillis: f.TimeMillis,
			Message:    f.Message,
			StackTrace: f.StackTrace,
		})
	}
	return tests
}

// ExecutedCount is the number of per-test entries actually present.
func (r *Run) ExecutedCount() int {
	return len(r.Successes) + len(r.Failures)
}

// Started parses StartTime. Salesforce returns ISO-8601 timestamps with
// millisecond precision.
func (r *Run) Started() (time.Time, bool) {
	if r.StartTime == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z0700"} {
		if t, err := time.Parse(layout, r.StartTime); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Seconds converts milliseconds to seconds.
func Seconds(millis float64) float64 {
	return millis / 1000
}
