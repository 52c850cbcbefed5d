package sfdx

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/zjy-dev/apexreport/internal/coverage"
	"github.com/zjy-dev/apexreport/internal/exec"
	"github.com/zjy-dev/apexreport/internal/logger"
	"github.com/zjy-dev/apexreport/internal/testresult"
)

// CoverageQuery selects the per-test coverage rows of the org.
const CoverageQuery = "SELECT Id, Coverage, ApexClassOrTriggerId, ApexClassOrTrigger.Name, TestMethodName " +
	"FROM ApexCodeCoverage ORDER BY ApexClassOrTriggerId"

// Client fetches raw results by running the Salesforce CLI.
type Client struct {
	executor exec.Executor
	binary   string
}

// NewClient creates a client running binary ("sf" or "sfdx").
func NewClient(executor exec.Executor, binary string) *Client {
	if binary == "" {
		binary = "sf"
	}
	return &Client{executor: executor, binary: binary}
}

func withOrg(args []string, org string) []string {
	if org != "" {
		args = append(args, "-u", org)
	}
	return args
}

func (c *Client) invoke(ctx context.Context, args ...string) (*exec.ExecutionResult, error) {
	logger.Debug("running %s", exec.CommandLine(c.binary, args...))
	res, err := c.executor.Run(ctx, c.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", c.binary, err)
	}
	return res, nil
}

// check verifies both the reported status and the exit code of a --json
// invocation and returns stdout.
func check(res *exec.ExecutionResult) ([]byte, error) {
	out := []byte(res.Stdout)
	if gjson.ValidBytes(out) {
		if _, err := unwrap(gjson.ParseBytes(out)); err != nil {
			return nil, err
		}
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: exit code %d: %s", ErrCommandFailed, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return out, nil
}

// QueryCoverage runs the ApexCodeCoverage tooling query against org.
func (c *Client) QueryCoverage(ctx context.Context, org string) ([]coverage.Record, error) {
	res, err := c.invoke(ctx, withOrg([]string{"force:data:soql:query", "-t", "--json", "-q", CoverageQuery}, org)...)
	if err != nil {
		return nil, err
	}
	out, err := check(res)
	if err != nil {
		return nil, fmt.Errorf("failed to query coverage: %w", err)
	}
	return DecodeCoverageRecords(out)
}

func deployReportCommand(source bool) string {
	if source {
		return "force:source:deploy:report"
	}
	return "force:mdapi:deploy:report"
}

// DeployReport fetches the result of deploy id, including test details.
// A deploy that failed makes the CLI exit non-zero, but the deploy result
// it prints is still returned.
func (c *Client) DeployReport(ctx context.Context, org, id string, source bool) (*testresult.Run, error) {
	res, err := c.invoke(ctx, withOrg([]string{deployReportCommand(source), "--json", "-i", id}, org)...)
	if err != nil {
		return nil, err
	}

	if out := []byte(res.Stdout); gjson.ValidBytes(out) {
		if _, ok := deployPayload(gjson.ParseBytes(out)); ok {
			return DecodeDeployResult(out)
		}
	}

	if _, err := check(res); err != nil {
		return nil, fmt.Errorf("failed to get deploy report %s: %w", id, err)
	}
	return nil, fmt.Errorf("%w: deploy report %s has no result", ErrInvalidInput, id)
}

// LatestDeployID returns the id of the most recent deploy known to the CLI.
func (c *Client) LatestDeployID(ctx context.Context, org string, source bool) (string, error) {
	res, err := c.invoke(ctx, withOrg([]string{deployReportCommand(source)}, org)...)
	if err != nil {
		return "", err
	}
	// failed deploys exit non-zero but still print the id
	id := ExtractDeployID(res.Stdout)
	if id == "" {
		id = ExtractDeployID(res.Stderr)
	}
	if id == "" {
		return "", ErrNoDeployID
	}
	return id, nil
}

// InstanceURL returns the instance URL of org, used as report host name.
func (c *Client) InstanceURL(ctx context.Context, org string) (string, error) {
	res, err := c.invoke(ctx, withOrg([]string{"force:org:display", "--json"}, org)...)
	if err != nil {
		return "", err
	}
	out, err := check(res)
	if err != nil {
		return "", fmt.Errorf("failed to display org: %w", err)
	}
	result, err := parse(out)
	if err != nil {
		return "", err
	}
	return result.Get("instanceUrl").String(), nil
}
