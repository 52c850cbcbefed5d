package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. APEXREPORT_TARGET_ORG.
const EnvPrefix = "APEXREPORT"

// ConfigName is the base name of the optional config file (apexreport.yaml).
const ConfigName = "apexreport"

// CoverageConfig holds defaults for the coverage command.
type CoverageConfig struct {
	Format string `mapstructure:"format"`
}

// ReportConfig holds defaults for the report command.
type ReportConfig struct {
	Format string `mapstructure:"format"`
	// Source selects the source deploy report instead of the mdapi one
	// when looking up the latest deploy.
	Source bool `mapstructure:"source"`
}

// Config is the resolved tool configuration.
type Config struct {
	TargetOrg   string `mapstructure:"target_org"`
	ProjectDir  string `mapstructure:"project_dir"`
	OutputDir   string `mapstructure:"output_dir"`
	SFBinary    string `mapstructure:"sf_binary"`
	LogLevel    string `mapstructure:"log_level"`
	StrictRoots bool   `mapstructure:"strict_roots"`

	Coverage CoverageConfig `mapstructure:"coverage"`
	Report   ReportConfig   `mapstructure:"report"`
}

// New returns a viper instance with defaults and environment overrides set.
func New() *viper.Viper {
	v := viper.New()
	// every key needs a default so AutomaticEnv values reach Unmarshal
	v.SetDefault("target_org", "")
	v.SetDefault("output_dir", "")
	v.SetDefault("project_dir", ".")
	v.SetDefault("sf_binary", "sf")
	v.SetDefault("log_level", "info")
	v.SetDefault("strict_roots", false)
	v.SetDefault("coverage.format", "lcov-text")
	v.SetDefault("report.format", "xunit")
	v.SetDefault("report.source", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and unmarshals the result. With an
// empty configFile, apexreport.yaml is searched in the working directory,
// ./configs and ~/.config/apexreport; a missing file is not an error. An
// explicit configFile must exist.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}
	return &cfg, nil
}
