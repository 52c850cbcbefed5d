package sfdx

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/zjy-dev/apexreport/internal/coverage"
)

// ProjectFile is the Salesforce DX project descriptor.
const ProjectFile = "sfdx-project.json"

// LoadProject reads the package directories of the project in dir, in
// declaration order.
func LoadProject(fs afero.Fs, dir string) ([]coverage.SourceRoot, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(filepath.Join(dir, ProjectFile))
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ProjectFile, err)
	}

	var roots []coverage.SourceRoot
	if err := v.UnmarshalKey("packageDirectories", &roots); err != nil {
		return nil, fmt.Errorf("failed to decode packageDirectories: %w", err)
	}
	return roots, nil
}
