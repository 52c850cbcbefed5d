// Package sfdx turns Salesforce CLI and API output into the coverage and
// test result models.
package sfdx

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/zjy-dev/apexreport/internal/coverage"
	"github.com/zjy-dev/apexreport/internal/testresult"
)

var (
	// ErrCommandFailed is returned when the sf CLI reports a failure.
	ErrCommandFailed = errors.New("sf command failed")
	// ErrNoDeployID is returned when no deploy id can be found.
	ErrNoDeployID = errors.New("deploy id could not be found")
	// ErrInvalidInput is returned for input that is not JSON or lacks the
	// expected structure.
	ErrInvalidInput = errors.New("invalid input")
)

var deployIDPattern = regexp.MustCompile(`0Af\w{12,15}`)

// ExtractDeployID returns the first deploy request id (0Af...) in text.
func ExtractDeployID(text string) string {
	return deployIDPattern.FindString(text)
}

// unwrap strips the {"status":..,"result":..} envelope printed by the sf
// CLI with --json. A non-zero status becomes ErrCommandFailed.
func unwrap(root gjson.Result) (gjson.Result, error) {
	status := root.Get("status")
	result := root.Get("result")
	// a deploy result carries a string status of its own
	if status.Type != gjson.Number || !(result.Exists() || root.Get("message").Exists()) {
		return root, nil
	}
	if status.Int() != 0 {
		msg := root.Get("message").String()
		if name := root.Get("name").String(); name != "" {
			msg = name + ": " + msg
		}
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrCommandFailed, msg)
	}
	return result, nil
}

func parse(data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%w: not valid JSON", ErrInvalidInput)
	}
	return unwrap(gjson.ParseBytes(data))
}

// asArray treats a single object as a one element list, which is how the
// SOAP based Metadata API serialises lists of length one.
func asArray(r gjson.Result) []gjson.Result {
	switch {
	case r.IsArray():
		return r.Array()
	case r.IsObject():
		return []gjson.Result{r}
	default:
		return nil
	}
}

func ints(r gjson.Result) []int {
	items := asArray(r)
	if len(items) == 0 && r.Type == gjson.Number {
		items = []gjson.Result{r}
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		out = append(out, int(item.Int()))
	}
	return out
}

// DecodeCoverageRecords decodes ApexCodeCoverage rows from a tooling query
// result, the sf CLI envelope around it, or a bare array of rows.
func DecodeCoverageRecords(data []byte) ([]coverage.Record, error) {
	root, err := parse(data)
	if err != nil {
		return nil, err
	}

	rows := root
	if !root.IsArray() {
		rows = root.Get("records")
		if !rows.Exists() {
			return nil, fmt.Errorf("%w: no records in query result", ErrInvalidInput)
		}
	}

	var records []coverage.Record
	for _, row := range asArray(rows) {
		records = append(records, coverage.Record{
			UnitID:         row.Get("ApexClassOrTriggerId").String(),
			UnitName:       row.Get("ApexClassOrTrigger.Name").String(),
			Kind:           unitKind(row),
			TestMethodName: row.Get("TestMethodName").String(),
			CoveredLines:   ints(row.Get("Coverage.coveredLines")),
			UncoveredLines: ints(row.Get("Coverage.uncoveredLines")),
		})
	}
	return records, nil
}

// unitKind reads the related record's url or type, then falls back to the
// key prefix of the id (01p classes, 01q triggers).
func unitKind(row gjson.Result) coverage.UnitKind {
	attrs := row.Get("ApexClassOrTrigger.attributes")
	if url := attrs.Get("url").String(); url != "" {
		if strings.Contains(url, "ApexClass") {
			return coverage.Class
		}
		return coverage.Trigger
	}
	switch attrs.Get("type").String() {
	case "ApexClass":
		return coverage.Class
	case "ApexTrigger":
		return coverage.Trigger
	}
	if strings.HasPrefix(row.Get("ApexClassOrTriggerId").String(), "01q") {
		return coverage.Trigger
	}
	return coverage.Class
}

// deployPayload returns the deploy result carried by an sf CLI envelope.
// A deploy with failing tests exits with a non-zero status but still
// prints the full result under "result" (or "data" on older CLIs).
func deployPayload(root gjson.Result) (gjson.Result, bool) {
	for _, key := range []string{"result", "data"} {
		if r := root.Get(key); r.IsObject() && r.Get("id").Exists() {
			return r, true
		}
	}
	return gjson.Result{}, false
}

// DecodeDeployResult decodes a deploy result (checkDeployStatus with
// details) directly or inside the sf CLI envelope, whatever the envelope
// status. Numbers may be encoded as strings. A missing
// details.runTestResult yields a run without tests.
func DecodeDeployResult(data []byte) (*testresult.Run, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidInput)
	}
	root, ok := deployPayload(gjson.ParseBytes(data))
	if !ok {
		var err error
		if root, err = unwrap(gjson.ParseBytes(data)); err != nil {
			return nil, err
		}
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: deploy result is not an object", ErrInvalidInput)
	}

	tests := root.Get("details.runTestResult")
	run := &testresult.Run{
		ID:              root.Get("id").String(),
		CreatedBy:       root.Get("createdBy").String(),
		Status:          root.Get("status").String(),
		StartTime:       root.Get("startDate").String(),
		TotalCount:      int(root.Get("numberTestsTotal").Int()),
		CompletedCount:  int(root.Get("numberTestsCompleted").Int()),
		ErrorCount:      int(root.Get("numberTestErrors").Int()),
		TotalTimeMillis: tests.Get("totalTime").Float(),
	}

	for _, s := range asArray(tests.Get("successes")) {
		run.Successes = append(run.Successes, testresult.Success{
			ClassName:  s.Get("name").String(),
			MethodName: s.Get("methodName").String(),
			TimeMillis: s.Get("time").Float(),
		})
	}
	for _, f := range asArray(tests.Get("failures")) {
		run.Failures = append(run.Failures, testresult.Failure{
			ClassName:  f.Get("name").String(),
			MethodName: f.Get("methodName").String(),
			TimeMillis: f.Get("time").Float(),
			Message:    f.Get("message").String(),
			StackTrace: f.Get("stackTrace").String(),
		})
	}
	return run, nil
}
