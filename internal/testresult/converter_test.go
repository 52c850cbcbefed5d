package testresult

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idConverter struct{}

func (idConverter) Convert(run *Run, meta Metadata) (string, error) {
	return run.ID + "@" + meta.EndpointHost, nil
}

func (idConverter) Filename(run *Run) string {
	return ReportFilename(run)
}

func TestRegistry(t *testing.T) {
	Register("id", idConverter{})

	c, err := Lookup("id")
	require.NoError(t, err)
	out, err := c.Convert(&Run{ID: "r1"}, Metadata{EndpointHost: "host"})
	require.NoError(t, err)
	assert.Equal(t, "r1@host", out)
	assert.Contains(t, Formats(), "id")

	_, err = Lookup("tap")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), "id")
}

func TestReportFilename(t *testing.T) {
	assert.Equal(t, "testId-test-results.xml", ReportFilename(&Run{ID: "testId", Status: "Failed", TotalCount: 4}))
}
