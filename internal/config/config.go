// =============================================================================
// ISO8583 Trace Validator - Configuration Module
// =============================================================================
//
// Loads the application configuration from a YAML file, applies defaults and
// validates it. The configuration covers directory locations, the
// specification-table source, the regional rule profile and logging.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration, loaded from
// config.yaml.
type MainConfig struct {
	// InputDir is the directory scanned for trace files when no explicit
	// files are passed on the command line.
	// Default: "./traces"
	InputDir string `yaml:"input_dir"`

	// ReportDir is the directory where CSV/XLSX report exports are placed.
	// Default: "./reports"
	ReportDir string `yaml:"report_dir"`

	// SpecFile is the path to the data-element specification table.
	// Supported formats: .yaml/.yml and .xlsx. Empty means the built-in
	// Ghana table.
	SpecFile string `yaml:"spec_file"`

	// Profile selects the regional rule variant where specifications
	// conflict (DE 100). Valid values: "ghana", "international".
	// Default: "ghana"
	Profile string `yaml:"profile"`

	// TraceExtensions lists the file extensions treated as trace dumps
	// when scanning InputDir.
	// Default: [".txt", ".log", ".trc"]
	TraceExtensions []string `yaml:"trace_extensions"`

	// ReportNameFormat defines the file-name format for report exports.
	// Placeholders:
	//   {uuid}      - a random UUID
	//   {timestamp} - current timestamp (YYYYMMDD_HHMMSS)
	// Default: "report_{timestamp}_{uuid}"
	ReportNameFormat string `yaml:"report_name_format"`

	// LogLevel controls logging verbosity: "debug", "info", "warn",
	// "error". The --verbose flag forces "debug".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// MaxConcurrency is the maximum number of trace files processed
	// concurrently. Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Load reads the configuration from a YAML file. A missing file is not an
// error: the defaults describe a fully working setup.
func Load(configPath string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./traces"
	}
	if config.ReportDir == "" {
		config.ReportDir = "./reports"
	}
	if config.Profile == "" {
		config.Profile = "ghana"
	}
	if len(config.TraceExtensions) == 0 {
		config.TraceExtensions = []string{".txt", ".log", ".trc"}
	}
	if config.ReportNameFormat == "" {
		config.ReportNameFormat = "report_{timestamp}_{uuid}"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
}

// validate checks the configuration for consistency and makes sure any
// referenced spec file is usable.
func validate(config *MainConfig) error {
	switch config.Profile {
	case "ghana", "international", "intl":
	default:
		return fmt.Errorf("unknown profile %q (valid: ghana, international)", config.Profile)
	}

	if config.SpecFile != "" {
		switch strings.ToLower(filepath.Ext(config.SpecFile)) {
		case ".yaml", ".yml", ".xlsx":
		default:
			return fmt.Errorf("unsupported spec file format %q (valid: .yaml, .yml, .xlsx)", filepath.Ext(config.SpecFile))
		}
		if _, err := os.Stat(config.SpecFile); err != nil {
			return fmt.Errorf("spec file %s: %w", config.SpecFile, err)
		}
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}
	return nil
}
