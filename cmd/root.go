// =============================================================================
// ISO8583 Trace Validator - Root Command
// =============================================================================
//
// Defines the root command for the Cobra CLI. All other commands ('check',
// 'spec', 'version') are attached to it.
//
// COBRA CLI STRUCTURE:
//   tracecheck
//   ├── checkCmd   (tracecheck check)
//   ├── specCmd    (tracecheck spec)
//   └── versionCmd (tracecheck version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kboateng/tracecheck/internal/config"
	"github.com/kboateng/tracecheck/internal/spec"
)

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

// cfgFile holds the path to the main configuration file.
// Overridden with the --config flag.
var cfgFile string

// verbose forces debug-level logging when set.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tracecheck",
	Short: "ISO8583 trace validator - validate switch trace dumps against the data-element spec",
	Long: `tracecheck parses human-readable ISO8583 trace dumps produced by
payment-switch diagnostic tools, recovers the messages and their data
elements (including nested EMV/private composite fields), and validates
every message against a declarative data-element specification with
Visa/Mastercard-aware rules.

Key Features:
  - Lenient line-oriented trace parsing (unknown lines are skipped)
  - Spec tables from YAML, XLSX workbooks or the built-in Ghana table
  - Per-MTI mandatory-field resolution with scheme-specific exceptions
  - Regional profiles resolving conflicting DE 100 rules
  - Text, CSV and colored XLSX validation reports

Example Usage:
  tracecheck check                       # validate all traces in the input directory
  tracecheck check auth_20260831.log     # validate a single trace file
  tracecheck check --mti 0210 --xlsx     # validate responses only, export a workbook
  tracecheck spec                        # summarize the loaded specification table`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED SETUP HELPERS
// =============================================================================

// loadConfig reads the main configuration from the --config path.
func loadConfig() (*config.MainConfig, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from the configured level; --verbose
// forces debug.
func newLogger(cfg *config.MainConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

// loadSpecTable loads the configured specification table. An empty spec_file
// means the built-in Ghana table; otherwise the file extension picks the
// loader.
func loadSpecTable(cfg *config.MainConfig) (*spec.Table, error) {
	if cfg.SpecFile == "" {
		return spec.Builtin(), nil
	}
	switch strings.ToLower(filepath.Ext(cfg.SpecFile)) {
	case ".xlsx":
		return spec.LoadXLSX(cfg.SpecFile)
	default:
		return spec.LoadYAML(cfg.SpecFile)
	}
}
