package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Level represents the logging level.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

var levelStyles = map[Level]lipgloss.Style{
	DEBUG: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	INFO:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	WARN:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	ERROR: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
}

// Logger is the main logger instance.
type Logger struct {
	mu          sync.Mutex
	level       Level
	output      io.Writer
	colorEnable bool
	prefix      string
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the default logger with the specified level. Output goes
// to stderr, colored when stderr is a terminal.
func Init(levelStr string) {
	once.Do(func() {
		defaultLogger = &Logger{
			level:       ParseLevel(levelStr),
			output:      os.Stderr,
			colorEnable: isTerminal(os.Stderr),
		}
	})
}

func ensure() *Logger {
	if defaultLogger == nil {
		Init("info")
	}
	return defaultLogger
}

// SetLevel sets the logging level for the default logger.
func SetLevel(levelStr string) {
	l := ensure()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = ParseLevel(levelStr)
}

// GetLevel returns the level of the default logger.
func GetLevel() Level {
	l := ensure()
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetOutput sets the output destination for the default logger. Color is
// re-evaluated for the new writer.
func SetOutput(w io.Writer) {
	l := ensure()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.colorEnable = isTerminal(w)
}

// SetColorEnable enables or disables color output.
func SetColorEnable(enable bool) {
	l := ensure()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colorEnable = enable
}

// ParseLevel converts a string to a Level. Unknown values map to INFO.
func ParseLevel(levelStr string) Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// log writes a log message if the level is sufficient.
func (l *Logger) log(level Level, format string, args ...interface{}) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	message := fmt.Sprintf(format, args...)
	label := "[" + levelNames[level] + "]"
	if l.colorEnable {
		label = levelStyles[level].Render(label)
	}

	log.New(l.output, l.prefix, log.LstdFlags).Println(label + " " + message)
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	ensure().log(DEBUG, format, args...)
}

// Debugf is an alias for Debug.
func Debugf(format string, args ...interface{}) {
	Debug(format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	ensure().log(INFO, format, args...)
}

// Infof is an alias for Info.
func Infof(format string, args ...interface{}) {
	Info(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	ensure().log(WARN, format, args...)
}

// Warnf is an alias for Warn.
func Warnf(format string, args ...interface{}) {
	Warn(format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	ensure().log(ERROR, format, args...)
}

// Errorf is an alias for Error.
func Errorf(format string, args ...interface{}) {
	Error(format, args...)
}
