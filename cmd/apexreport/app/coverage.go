package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zjy-dev/apexreport/internal/coverage"
	"github.com/zjy-dev/apexreport/internal/logger"
	"github.com/zjy-dev/apexreport/internal/sfdx"
)

var (
	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// minCoverage is the org-wide percentage required to deploy to production.
const minCoverage = 75.0

// newCoverageCommand creates the "coverage" subcommand.
func newCoverageCommand(o *options) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Write an Apex code coverage report.",
		Long: `Aggregate the per-test ApexCodeCoverage records of an org into one coverage
summary per class or trigger and write it in the chosen format.

Records are fetched with the tooling query
  ` + sfdx.CoverageQuery + `
unless --input names a file holding the JSON result of that query.

Source paths are resolved against the packageDirectories of sfdx-project.json.

Examples:
  # Write coverage.lcov for the default org into ./coverage
  apexreport coverage -d coverage

  # Convert a saved query result
  sf data query -t --json -q "SELECT ..." > query.json
  apexreport coverage -i query.json -d coverage`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := o.setup(cmd, map[string]string{
				"coverage.format": "format",
				"output_dir":      "output-dir",
				"target_org":      "target-org",
				"project_dir":     "project",
				"strict_roots":    "strict-roots",
			}); err != nil {
				return err
			}
			return coverage.Validate(o.cfg.Coverage.Format)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoverage(cmd, o, input)
		},
	}

	cmd.Flags().StringP("format", "f", "lcov-text", fmt.Sprintf("Coverage format (%s)", strings.Join(coverage.Formats(), ", ")))
	cmd.Flags().StringP("output-dir", "d", "", "Directory to write the report to")
	cmd.Flags().StringP("target-org", "u", "", "Org alias or username passed to sf")
	cmd.Flags().String("project", ".", "Directory holding sfdx-project.json")
	cmd.Flags().Bool("strict-roots", false, "Fail when a class cannot be placed under a package directory")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Read the coverage query result from a JSON file instead of the org")

	return cmd
}

func runCoverage(cmd *cobra.Command, o *options, input string) error {
	cfg := o.cfg

	var records []coverage.Record
	if input != "" {
		data, err := readInput(o.fs, input)
		if err != nil {
			return err
		}
		if records, err = sfdx.DecodeCoverageRecords(data); err != nil {
			return fmt.Errorf("failed to decode %s: %w", input, err)
		}
	} else {
		logger.Info("querying code coverage of %s", orgName(cfg.TargetOrg))
		var err error
		if records, err = o.client().QueryCoverage(cmd.Context(), cfg.TargetOrg); err != nil {
			return err
		}
	}

	agg := coverage.NewAggregator()
	for _, r := range records {
		agg.Add(r)
	}
	if st := agg.Stats(); st.Skipped > 0 {
		logger.Warn("skipped %d coverage records without a class or trigger name", st.Skipped)
	}
	set := agg.Set()
	logger.Debug("aggregated %d records into %d units", agg.Stats().Records, set.Len())

	pfs, err := projectFs(o.fs, cfg.ProjectDir)
	if err != nil {
		return err
	}
	roots, err := sfdx.LoadProject(pfs, ".")
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || cfg.StrictRoots {
			return err
		}
		logger.Warn("%s not found in %s, report paths will have no package directory", sfdx.ProjectFile, cfg.ProjectDir)
	}

	conv, err := coverage.New(cfg.Coverage.Format, coverage.Options{Fs: pfs, StrictRoots: cfg.StrictRoots})
	if err != nil {
		return err
	}
	out, err := conv.Convert(set, roots)
	if err != nil {
		return fmt.Errorf("failed to convert coverage: %w", err)
	}

	logCoverageSummary(coverage.ComputeStats(set))
	if err := o.save(cmd, conv.Filename(), out); err != nil {
		return err
	}
	return o.printJSON(cmd, func() (string, error) { return coverageJSON(set) })
}

// projectFs roots fs at the project directory so that package directory
// paths resolve the way sf reports them, relative to the project.
func projectFs(fs afero.Fs, dir string) (afero.Fs, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}
	return afero.NewBasePathFs(fs, abs), nil
}

func logCoverageSummary(st coverage.Stats) {
	style := goodStyle
	if st.CoveragePercentage < minCoverage {
		style = badStyle
	}
	logger.Info("coverage %s (%d/%d lines, %d classes and triggers, %d without coverage)",
		style.Render(fmt.Sprintf("%.2f%%", st.CoveragePercentage)),
		st.TotalCoveredLines, st.TotalLines, st.Units, st.UncoveredUnits)
}

func orgName(org string) string {
	if org == "" {
		return "the default org"
	}
	return org
}
