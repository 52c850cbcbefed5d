package formats

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjy-dev/apexreport/internal/testresult"
)

type parsedAssemblies struct {
	Assembly struct {
		Name        string `xml:"name,attr"`
		Environment string `xml:"environment,attr"`
		RunDate     string `xml:"run-date,attr"`
		RunTime     string `xml:"run-time,attr"`
		Total       string `xml:"total,attr"`
		Passed      string `xml:"passed,attr"`
		Failed      string `xml:"failed,attr"`
		Errors      string `xml:"errors,attr"`
		Skipped     string `xml:"skipped,attr"`
		Time        string `xml:"time,attr"`
		Collections []struct {
			Name    string `xml:"name,attr"`
			Total   string `xml:"total,attr"`
			Passed  string `xml:"passed,attr"`
			Failed  string `xml:"failed,attr"`
			Skipped string `xml:"skipped,attr"`
			Time    string `xml:"time,attr"`
			Tests   []struct {
				Name    string `xml:"name,attr"`
				Type    string `xml:"type,attr"`
				Method  string `xml:"method,attr"`
				Time    string `xml:"time,attr"`
				Result  string `xml:"result,attr"`
				Failure *struct {
					Message    string `xml:"message"`
					StackTrace string `xml:"stack-trace"`
				} `xml:"failure"`
			} `xml:"test"`
		} `xml:"collection"`
	} `xml:"assembly"`
}

func parseAssemblies(t *testing.T, out string) parsedAssemblies {
	t.Helper()
	var doc parsedAssemblies
	require.NoError(t, xml.Unmarshal([]byte(out), &doc))
	return doc
}

func TestXUnitNet_GroupsByClass(t *testing.T) {
	run := &testresult.Run{
		ID:             "testId",
		TotalCount:     2,
		CompletedCount: 2,
		Successes: []testresult.Success{
			{ClassName: "A", MethodName: "testOne", TimeMillis: 10},
			{ClassName: "B", MethodName: "testTwo", TimeMillis: 20},
		},
	}

	out, err := (&XUnitNet{}).Convert(run, meta)
	require.NoError(t, err)

	doc := parseAssemblies(t, out)
	require.Len(t, doc.Assembly.Collections, 2)
	for _, coll := range doc.Assembly.Collections {
		assert.Equal(t, "1", coll.Total)
		require.Len(t, coll.Tests, 1)
		assert.Equal(t, coll.Name, coll.Tests[0].Type)
	}
	assert.Equal(t, "A", doc.Assembly.Collections[0].Name)
	assert.Equal(t, "B", doc.Assembly.Collections[1].Name)
}

func TestXUnitNet_MixedRun(t *testing.T) {
	run := mixedRun()
	out, err := (&XUnitNet{}).Convert(run, meta)
	require.NoError(t, err)

	doc := parseAssemblies(t, out)
	a := doc.Assembly
	assert.Equal(t, "force.apex", a.Name)
	assert.Equal(t, meta.EndpointHost, a.Environment)
	assert.Equal(t, "3", a.Total)
	assert.Equal(t, "2", a.Passed)
	assert.Equal(t, "1", a.Failed)
	assert.Equal(t, "0", a.Errors)
	assert.Equal(t, "0", a.Skipped)
	assert.Equal(t, "1.5", a.Time)

	started, err := time.Parse(time.RFC3339Nano, run.StartTime)
	require.NoError(t, err)
	assert.Equal(t, started.Local().Format("2006-01-02"), a.RunDate)
	assert.Equal(t, started.Local().Format("15:04:05"), a.RunTime)

	require.Len(t, a.Collections, 2)
	account := a.Collections[0]
	assert.Equal(t, "AccountServiceTest", account.Name)
	assert.Equal(t, "2", account.Total)
	assert.Equal(t, "1", account.Passed)
	assert.Equal(t, "1", account.Failed)
	assert.Equal(t, "0", account.Skipped)
	assert.Equal(t, "1.5", account.Time)

	require.Len(t, account.Tests, 2)
	assert.Equal(t, "Pass", account.Tests[0].Result)
	assert.Nil(t, account.Tests[0].Failure)

	failed := account.Tests[1]
	assert.Equal(t, "testDelete", failed.Name)
	assert.Equal(t, "testDelete", failed.Method)
	assert.Equal(t, "1", failed.Time)
	assert.Equal(t, "Fail", failed.Result)
	require.NotNil(t, failed.Failure)
	assert.Equal(t, run.Failures[0].Message, failed.Failure.Message)
	assert.Equal(t, run.Failures[0].StackTrace, failed.Failure.StackTrace)

	contact := a.Collections[1]
	assert.Equal(t, "ContactServiceTest", contact.Name)
	assert.Equal(t, "0", contact.Time)
}

func TestXUnitNet_CollectionTimeRounding(t *testing.T) {
	run := &testresult.Run{
		ID: "testId",
		Successes: []testresult.Success{
			{ClassName: "A", MethodName: "a", TimeMillis: 0.4},
			{ClassName: "A", MethodName: "b", TimeMillis: 1.2},
		},
	}

	out, err := (&XUnitNet{}).Convert(run, meta)
	require.NoError(t, err)

	doc := parseAssemblies(t, out)
	require.Len(t, doc.Assembly.Collections, 1)
	assert.Equal(t, "0.002", doc.Assembly.Collections[0].Time)
}

func TestXUnitNet_FailureWithoutMessagePasses(t *testing.T) {
	run := &testresult.Run{
		ID:       "testId",
		Failures: []testresult.Failure{{ClassName: "A", MethodName: "a", StackTrace: "trace"}},
	}

	out, err := (&XUnitNet{}).Convert(run, meta)
	require.NoError(t, err)

	doc := parseAssemblies(t, out)
	require.Len(t, doc.Assembly.Collections, 1)
	assert.Equal(t, "Pass", doc.Assembly.Collections[0].Tests[0].Result)
	assert.Equal(t, "1", doc.Assembly.Collections[0].Passed)
}

func TestXUnitNet_InvalidStartTime(t *testing.T) {
	run := &testresult.Run{ID: "testId", StartTime: "yesterday"}

	out, err := (&XUnitNet{}).Convert(run, meta)
	require.NoError(t, err)

	doc := parseAssemblies(t, out)
	assert.Empty(t, doc.Assembly.RunDate)
	assert.Empty(t, doc.Assembly.RunTime)
	assert.Empty(t, doc.Assembly.Collections)
}

func TestXUnitNet_Idempotent(t *testing.T) {
	run := mixedRun()
	first, err := (&XUnitNet{}).Convert(run, meta)
	require.NoError(t, err)
	second, err := (&XUnitNet{}).Convert(run, meta)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
