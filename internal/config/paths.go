package config

import (
	"os"
	"path/filepath"

	"tsecli/internal/errors"
)

// PathsConfig holds the directory layout shared by the stages. The stage
// directory and the data lake are independent namespaces keyed by the same
// business date, so either artifact can be located by recomputing its name
// from the date.
type PathsConfig struct {
	// StageDir holds raw downloaded spreadsheets, one per business day.
	StageDir string `yaml:"stage_dir" envconfig:"STAGE_DIR" validate:"required"`
	// LakeDir holds normalized CSV tables, one per converted business day.
	LakeDir string `yaml:"lake_dir" envconfig:"LAKE_DIR" validate:"required"`
	// LogsDir holds the persistent log files.
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	// ReportPath is where the analysis stage writes its HTML report.
	ReportPath string `yaml:"report_path" envconfig:"REPORT_PATH" validate:"required"`
}

// DefaultPaths returns the directory layout relative to the working
// directory, mirroring the layout the stages expect by default.
func DefaultPaths() PathsConfig {
	return PathsConfig{
		StageDir:   "Stage",
		LakeDir:    "Datalake",
		LogsDir:    "Logs",
		ReportPath: "result.html",
	}
}

// EnsureDirectories creates every configured directory that does not exist
// yet. Pre-existing directories are reused untouched.
func (p PathsConfig) EnsureDirectories() error {
	dirs := []string{p.StageDir, p.LakeDir, p.LogsDir}
	if dir := filepath.Dir(p.ReportPath); dir != "." && dir != "" {
		dirs = append(dirs, dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.NewStorageError("failed to create directory "+dir, err)
		}
	}
	return nil
}

// StagedFile returns the stage path for the raw spreadsheet of the given
// date identifier.
func (p PathsConfig) StagedFile(date string) string {
	return filepath.Join(p.StageDir, date+".xlsx")
}

// LakeFile returns the data-lake path for the normalized table of the given
// date identifier.
func (p PathsConfig) LakeFile(date string) string {
	return filepath.Join(p.LakeDir, date+".csv")
}

// LogPath returns the path of a log file inside the logs directory.
func (p PathsConfig) LogPath(name string) string {
	return filepath.Join(p.LogsDir, name)
}
