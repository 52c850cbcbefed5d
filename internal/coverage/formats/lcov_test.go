package formats

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjy-dev/apexreport/internal/coverage"
)

func sampleSet() *coverage.Set {
	return coverage.Aggregate([]coverage.Record{
		{UnitID: "01p1", UnitName: "Class1", Kind: coverage.Class, TestMethodName: "testA",
			CoveredLines: []int{1, 2, 3}, UncoveredLines: []int{4, 5}},
		{UnitID: "01p1", UnitName: "Class1", Kind: coverage.Class, TestMethodName: "testB",
			CoveredLines: []int{1}, UncoveredLines: []int{2}},
	})
}

func TestLCOV_Convert(t *testing.T) {
	roots := []coverage.SourceRoot{{Path: "force-app", Default: true}}

	out, err := NewLCOV(afero.NewMemMapFs(), false).Convert(sampleSet(), roots)
	require.NoError(t, err)

	want := strings.Join([]string{
		"TN:",
		"SF:force-app/main/default/classes/Class1.cls",
		"DA:1,2",
		"DA:2,1",
		"DA:3,1",
		"DA:4,0",
		"DA:5,0",
		"LF:5",
		"LH:3",
		"end_of_record",
	}, "\n")
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("lcov output mismatch (-want +got):\n%s", diff)
	}
}

func TestLCOV_MultipleUnits(t *testing.T) {
	fs := afero.NewMemMapFs()
	triggerPath := filepath.Join("unpackaged", "main", "default", "triggers", "Trigger1.trigger")
	require.NoError(t, fs.MkdirAll(filepath.Dir(triggerPath), 0755))
	require.NoError(t, afero.WriteFile(fs, triggerPath, []byte("trigger Trigger1 on Account (before insert) {}"), 0644))

	set := coverage.Aggregate([]coverage.Record{
		{UnitName: "Trigger1", Kind: coverage.Trigger, TestMethodName: "t", CoveredLines: []int{2}, UncoveredLines: []int{1}},
		{UnitName: "Class1", Kind: coverage.Class, TestMethodName: "t", CoveredLines: []int{1}},
	})
	roots := []coverage.SourceRoot{{Path: "force-app", Default: true}, {Path: "unpackaged"}}

	out, err := NewLCOV(fs, false).Convert(set, roots)
	require.NoError(t, err)

	want := strings.Join([]string{
		"TN:",
		"SF:unpackaged/main/default/triggers/Trigger1.trigger",
		"DA:1,0",
		"DA:2,1",
		"LF:2",
		"LH:1",
		"end_of_record",
		"SF:force-app/main/default/classes/Class1.cls",
		"DA:1,1",
		"LF:1",
		"LH:1",
		"end_of_record",
	}, "\n")
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("lcov output mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, strings.Count(out, "TN:"))
}

func TestLCOV_SourceRoots(t *testing.T) {
	set := coverage.Aggregate([]coverage.Record{{UnitName: "Class1", CoveredLines: []int{1}}})

	tests := []struct {
		name  string
		roots []coverage.SourceRoot
		want  string
	}{
		{
			name:  "single root is used unconditionally",
			roots: []coverage.SourceRoot{{Path: "force-app"}},
			want:  "SF:force-app/main/default/classes/Class1.cls",
		},
		{
			name:  "missing file falls back to the default root",
			roots: []coverage.SourceRoot{{Path: "a"}, {Path: "b", Default: true}},
			want:  "SF:b/main/default/classes/Class1.cls",
		},
		{
			name:  "missing file without default root uses the empty path",
			roots: []coverage.SourceRoot{{Path: "a"}, {Path: "b"}},
			want:  "SF:main/default/classes/Class1.cls",
		},
		{
			name:  "no roots uses the empty path",
			roots: nil,
			want:  "SF:main/default/classes/Class1.cls",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewLCOV(afero.NewMemMapFs(), false).Convert(set, tt.roots)
			require.NoError(t, err)
			lines := strings.Split(out, "\n")
			require.GreaterOrEqual(t, len(lines), 2)
			assert.Equal(t, tt.want, lines[1])
		})
	}
}

func TestLCOV_Strict(t *testing.T) {
	set := coverage.Aggregate([]coverage.Record{{UnitName: "Class1", CoveredLines: []int{1}}})
	roots := []coverage.SourceRoot{{Path: "a"}, {Path: "b"}}

	_, err := NewLCOV(afero.NewMemMapFs(), true).Convert(set, roots)
	assert.ErrorIs(t, err, coverage.ErrNoSourceRoot)

	out, err := NewLCOV(afero.NewMemMapFs(), true).Convert(set, roots[:1])
	require.NoError(t, err)
	assert.Contains(t, out, "SF:a/main/default/classes/Class1.cls")
}

func TestLCOV_Empty(t *testing.T) {
	l := NewLCOV(afero.NewMemMapFs(), false)

	out, err := l.Convert(coverage.NewSet(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)

	out, err = l.Convert(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)

	out, err = l.Convert(coverage.Aggregate([]coverage.Record{{UnitName: "Empty"}}), nil)
	require.NoError(t, err)
	assert.Equal(t, "TN:\nSF:main/default/classes/Empty.cls\nLF:0\nLH:0\nend_of_record", out)
}

func TestLCOV_UnitWithoutLines(t *testing.T) {
	set := coverage.Aggregate([]coverage.Record{
		{UnitName: "Class1", Kind: coverage.Class, TestMethodName: "testA", CoveredLines: []int{1}},
		{UnitName: "NoLines", Kind: coverage.Trigger, TestMethodName: "testA"},
	})
	require.Equal(t, 2, set.Len())

	out, err := NewLCOV(nil, false).Convert(set, []coverage.SourceRoot{{Path: "force-app"}})
	require.NoError(t, err)

	want := strings.Join([]string{
		"TN:",
		"SF:force-app/main/default/classes/Class1.cls",
		"DA:1,1",
		"LF:1",
		"LH:1",
		"end_of_record",
		"SF:force-app/main/default/triggers/NoLines.trigger",
		"LF:0",
		"LH:0",
		"end_of_record",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestLCOV_Idempotent(t *testing.T) {
	set := sampleSet()
	roots := []coverage.SourceRoot{{Path: "force-app"}}
	l := NewLCOV(nil, false)

	first, err := l.Convert(set, roots)
	require.NoError(t, err)
	second, err := l.Convert(set, roots)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLCOV_Registered(t *testing.T) {
	c, err := coverage.New(LCOVFormat, coverage.Options{Fs: afero.NewMemMapFs()})
	require.NoError(t, err)
	assert.Equal(t, "coverage.lcov", c.Filename())
	assert.Contains(t, coverage.Formats(), "lcov-text")
}
