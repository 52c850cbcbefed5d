package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// Reporter defines the interface for persisting a rendered report.
type Reporter interface {
	// Save stores the content under name and returns where it went.
	Save(name, content string) (string, error)
}

// FileReporter writes reports into a directory, creating it when needed.
type FileReporter struct {
	fs        afero.Fs
	outputDir string
}

// NewFileReporter creates a FileReporter. A nil fs means the host filesystem.
func NewFileReporter(fs afero.Fs, outputDir string) *FileReporter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileReporter{fs: fs, outputDir: outputDir}
}

// Save writes the report to <outputDir>/<name>, replacing an existing file.
func (r *FileReporter) Save(name, content string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("report file name is empty")
	}
	if err := r.fs.MkdirAll(r.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	reportPath := filepath.Join(r.outputDir, name)
	if err := afero.WriteFile(r.fs, reportPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return reportPath, nil
}

// WriterReporter prints reports to a stream, e.g. stdout for --verbose.
type WriterReporter struct {
	w io.Writer
}

// NewWriterReporter creates a WriterReporter.
func NewWriterReporter(w io.Writer) *WriterReporter {
	return &WriterReporter{w: w}
}

// Save prints the content followed by a newline. The returned location is
// always empty.
func (r *WriterReporter) Save(name, content string) (string, error) {
	if _, err := fmt.Fprintln(r.w, content); err != nil {
		return "", fmt.Errorf("failed to print report %s: %w", name, err)
	}
	return "", nil
}
