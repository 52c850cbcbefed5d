// Package testutil provides mocks for the interfaces the CLI depends on.
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zjy-dev/apexreport/internal/exec"
)

// MockExecutor provides a mock implementation of exec.Executor.
// Expectations match on the command and the argument slice, e.g.
// .On("Run", "sf", []string{"force:org:display", "--json"}).
type MockExecutor struct {
	mock.Mock
}

// Run mocks the Run method.
func (m *MockExecutor) Run(ctx context.Context, command string, args ...string) (*exec.ExecutionResult, error) {
	called := m.Called(command, args)
	res, _ := called.Get(0).(*exec.ExecutionResult)
	return res, called.Error(1)
}

// SF returns a successful result printing stdout.
func SF(stdout string) *exec.ExecutionResult {
	return &exec.ExecutionResult{Stdout: stdout}
}
