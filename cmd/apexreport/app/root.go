package app

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjy-dev/apexreport/internal/config"
	"github.com/zjy-dev/apexreport/internal/exec"
	"github.com/zjy-dev/apexreport/internal/logger"
	"github.com/zjy-dev/apexreport/internal/report"
	"github.com/zjy-dev/apexreport/internal/sfdx"
)

// options is shared by all subcommands.
type options struct {
	v          *viper.Viper
	configFile string
	verbose    bool
	quiet      bool
	json       bool

	executor exec.Executor
	fs       afero.Fs

	cfg *config.Config
}

// NewApexReportCommand creates the root command for the apexreport tool.
func NewApexReportCommand() *cobra.Command {
	return newRootCommand(&options{
		v:        config.New(),
		executor: exec.NewCommandExecutor(),
		fs:       afero.NewOsFs(),
	})
}

func newRootCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apexreport",
		Short: "Convert Apex test and coverage results into CI report formats.",
		Long: `apexreport turns the results of Apex test runs into reports that CI systems
understand: LCOV for code coverage, JUnit or xUnit.net XML for test results.

Raw results are read from JSON files or fetched through the Salesforce CLI (sf).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&o.configFile, "config", "", "Config file (default: apexreport.yaml in ., ./configs or ~/.config/apexreport)")
	cmd.PersistentFlags().BoolVar(&o.verbose, "verbose", false, "Print the report and debug logs")
	cmd.PersistentFlags().BoolVar(&o.quiet, "quiet", false, "Only log errors")
	cmd.PersistentFlags().BoolVar(&o.json, "json", false, "Print the result as JSON instead of the report")

	cmd.AddCommand(newCoverageCommand(o))
	cmd.AddCommand(newReportCommand(o))

	return cmd
}

// setup binds the flags of the running command to their config keys, loads
// the configuration and configures the logger. Bindings are made here rather
// than at construction because several commands share a key.
func (o *options) setup(cmd *cobra.Command, bindings map[string]string) error {
	for key, name := range bindings {
		if err := o.v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	cfg, err := config.Load(o.v, o.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	o.cfg = cfg

	level := cfg.LogLevel
	switch {
	case o.quiet:
		level = "error"
	case o.verbose:
		level = "debug"
	}
	logger.Init(level)
	logger.SetLevel(level)
	logger.SetOutput(cmd.ErrOrStderr())
	return nil
}

func (o *options) client() *sfdx.Client {
	return sfdx.NewClient(o.executor, o.cfg.SFBinary)
}

// reporters returns where a report goes: the output directory when one is
// set, stdout for --verbose or when there is no output directory. With
// --json stdout is reserved for the JSON result.
func (o *options) reporters(cmd *cobra.Command) []report.Reporter {
	var out []report.Reporter
	if !o.json && (o.verbose || o.cfg.OutputDir == "") {
		out = append(out, report.NewWriterReporter(cmd.OutOrStdout()))
	}
	if o.cfg.OutputDir != "" {
		out = append(out, report.NewFileReporter(o.fs, o.cfg.OutputDir))
	}
	return out
}

func (o *options) save(cmd *cobra.Command, name, content string) error {
	for _, r := range o.reporters(cmd) {
		path, err := r.Save(name, content)
		if err != nil {
			return err
		}
		if path != "" {
			logger.Info("report written to %s", path)
		}
	}
	return nil
}

// printJSON writes the --json result when requested.
func (o *options) printJSON(cmd *cobra.Command, render func() (string, error)) error {
	if !o.json {
		return nil
	}
	doc, err := render()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), doc)
	return err
}

func readInput(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}
