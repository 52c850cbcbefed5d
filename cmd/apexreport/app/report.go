package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/apexreport/internal/logger"
	"github.com/zjy-dev/apexreport/internal/sfdx"
	"github.com/zjy-dev/apexreport/internal/testresult"
)

// newReportCommand creates the "report" subcommand.
func newReportCommand(o *options) *cobra.Command {
	var (
		input    string
		deployID string
		latest   bool
		host     string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a test result report for a deploy.",
		Long: `Write the Apex test results of a deploy as JUnit (xunit) or xUnit.net
(xunitnet) XML. The file is named <deploy id>-test-results.xml.

The deploy result comes from a JSON file (--input), from the org for a given
deploy id (--deploy-id), or from the most recent deploy known to sf (--latest).

Examples:
  # Report the latest metadata deploy into ./test-results
  apexreport report -u ci --latest -d test-results

  # Report a source deploy in xUnit.net format
  apexreport report -u ci --deploy-id 0Af5w00000AbCdEFGH --source -f xunitnet -d test-results

  # Convert a saved deploy result
  apexreport report -i deploy.json -d test-results`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := o.setup(cmd, map[string]string{
				"report.format": "format",
				"report.source": "source",
				"output_dir":    "output-dir",
				"target_org":    "target-org",
			}); err != nil {
				return err
			}
			_, err := testresult.Lookup(o.cfg.Report.Format)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, o, input, deployID, latest, host)
		},
	}

	cmd.Flags().StringP("format", "f", "xunit", fmt.Sprintf("Test result format (%s)", strings.Join(testresult.Formats(), ", ")))
	cmd.Flags().StringP("output-dir", "d", "", "Directory to write the report to")
	cmd.Flags().StringP("target-org", "u", "", "Org alias or username passed to sf")
	cmd.Flags().BoolP("source", "s", false, "Look up source deploys instead of metadata API deploys")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Read the deploy result from a JSON file")
	cmd.Flags().StringVar(&deployID, "deploy-id", "", "Deploy id (0Af...) to report on")
	cmd.Flags().BoolVarP(&latest, "latest", "l", false, "Report on the most recent deploy")
	cmd.Flags().StringVar(&host, "host", "", "Host name written into the report (default: the org instance URL)")

	cmd.MarkFlagsMutuallyExclusive("input", "deploy-id", "latest")
	cmd.MarkFlagsOneRequired("input", "deploy-id", "latest")

	return cmd
}

func runReport(cmd *cobra.Command, o *options, input, deployID string, latest bool, host string) error {
	cfg := o.cfg
	ctx := cmd.Context()

	var run *testresult.Run
	if input != "" {
		data, err := readInput(o.fs, input)
		if err != nil {
			return err
		}
		if run, err = sfdx.DecodeDeployResult(data); err != nil {
			return fmt.Errorf("failed to decode %s: %w", input, err)
		}
	} else {
		client := o.client()
		if latest {
			id, err := client.LatestDeployID(ctx, cfg.TargetOrg, cfg.Report.Source)
			if err != nil {
				return err
			}
			logger.Info("latest deploy is %s", id)
			deployID = id
		}

		logger.Info("fetching deploy result %s", deployID)
		var err error
		if run, err = client.DeployReport(ctx, cfg.TargetOrg, deployID, cfg.Report.Source); err != nil {
			return err
		}

		if host == "" {
			if host, err = client.InstanceURL(ctx, cfg.TargetOrg); err != nil {
				logger.Warn("could not read the instance URL of %s: %v", orgName(cfg.TargetOrg), err)
			}
		}
	}

	conv, err := testresult.Lookup(cfg.Report.Format)
	if err != nil {
		return err
	}
	out, err := conv.Convert(run, testresult.Metadata{EndpointHost: host})
	if err != nil {
		return fmt.Errorf("failed to convert test results: %w", err)
	}

	logRunSummary(run)
	if err := o.save(cmd, conv.Filename(run), out); err != nil {
		return err
	}
	return o.printJSON(cmd, func() (string, error) { return runJSON(run) })
}

func logRunSummary(run *testresult.Run) {
	style := goodStyle
	if run.ErrorCount > 0 || len(run.Failures) > 0 {
		style = badStyle
	}
	logger.Info("deploy %s %s: %d of %d tests passed, %d failed",
		run.ID, style.Render(run.Status), run.CompletedCount, run.TotalCount, run.ErrorCount)
}
