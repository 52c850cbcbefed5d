package exec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// ExecutionResult holds the outcome of a command execution.
type ExecutionResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs external commands. The sf CLI client depends on this
// interface so tests can replace the real binary.
type Executor interface {
	Run(ctx context.Context, command string, args ...string) (*ExecutionResult, error)
}

// CommandExecutor runs commands on the host system.
type CommandExecutor struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
}

// NewCommandExecutor creates a new CommandExecutor.
func NewCommandExecutor() *CommandExecutor {
	return &CommandExecutor{}
}

// Run executes the command and waits for it. A non-zero exit status is
// reported through ExitCode, not as an error; errors are reserved for
// commands that could not be started or were cancelled.
func (e *CommandExecutor) Run(ctx context.Context, command string, args ...string) (*ExecutionResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = append(cmd.Environ(), e.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, err
	}

	return &ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}, nil
}

// CommandLine renders a command for log output.
func CommandLine(command string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, command)
	for _, a := range args {
		if strings.ContainsAny(a, " \t\"'") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
