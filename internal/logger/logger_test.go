package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetLogger() {
	defaultLogger = nil
	once = *new(sync.Once)
}

func TestLevelFiltering(t *testing.T) {
	resetLogger()
	var buf bytes.Buffer
	Init("warn")
	SetOutput(&buf)

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "[WARN] warn message")
	assert.Contains(t, out, "[ERROR] error message")
}

func TestSetLevel(t *testing.T) {
	resetLogger()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("debug")

	Debugf("value=%d", 42)
	assert.Contains(t, buf.String(), "[DEBUG] value=42")
	assert.Equal(t, DEBUG, GetLevel())
}

func TestNoColorForNonTerminal(t *testing.T) {
	resetLogger()
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("plain")
	assert.False(t, strings.Contains(buf.String(), "\033["), "buffer output should not carry ANSI codes")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warning", WARN},
		{"Warn", WARN},
		{"error", ERROR},
		{"", INFO},
		{"bogus", INFO},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}
