// =============================================================================
// ISO8583 Trace Validator - Check Command
// =============================================================================
//
// The 'check' command is the main command: it discovers trace files (or takes
// them as arguments), runs each through the parse/validate pipeline, prints
// the per-file reports and optionally exports them as CSV or a colored XLSX
// workbook.
//
// PROCESSING PIPELINE:
//   1. Load configuration and the specification table
//   2. Discover trace files (arguments, or scan the input directory)
//   3. For each file (concurrently): parse messages, detect scheme, resolve
//      mandatory fields, validate each field
//   4. Print reports in input order
//   5. Export CSV/XLSX if requested
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kboateng/tracecheck/internal/report"
	"github.com/kboateng/tracecheck/internal/spec"
	"github.com/kboateng/tracecheck/internal/validate"
	"github.com/kboateng/tracecheck/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// inputDir overrides the configured trace directory.
var inputDir string

// mtiFilter restricts validation to the listed MTIs.
var mtiFilter []string

// profileOverride overrides the configured regional profile.
var profileOverride string

// exportCSV enables the CSV export of all verdicts.
var exportCSV bool

// exportXLSX enables the colored XLSX workbook export.
var exportXLSX bool

// =============================================================================
// CHECK COMMAND DEFINITION
// =============================================================================

// checkCmd represents the 'check' command.
var checkCmd = &cobra.Command{
	Use:   "check [trace files...]",
	Short: "Parse and validate ISO8583 trace files",
	Long: `The check command parses each trace file into structured messages and
validates every transactional message's mandatory data elements against the
loaded specification table.

Network management messages (0800/0810/0820) are counted but excluded from
mandatory-field accounting. Files are processed concurrently; reports are
printed in input order, so errors in one file never affect the others.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(args)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(
		&inputDir,
		"input-dir",
		"",
		"Directory to scan for trace files (overrides config)",
	)
	checkCmd.Flags().StringSliceVar(
		&mtiFilter,
		"mti",
		nil,
		"Only validate messages with these MTIs (repeatable)",
	)
	checkCmd.Flags().StringVar(
		&profileOverride,
		"profile",
		"",
		"Regional rule profile: ghana or international (overrides config)",
	)
	checkCmd.Flags().BoolVar(
		&exportCSV,
		"csv",
		false,
		"Export all verdicts as CSV into the report directory",
	)
	checkCmd.Flags().BoolVar(
		&exportXLSX,
		"xlsx",
		false,
		"Export a colored XLSX workbook into the report directory",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// fileResult pairs one input file with its report or failure.
type fileResult struct {
	index  int
	report *report.FileReport
	err    error
}

func runCheck(args []string) error {
	startTime := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Sync()

	table, err := loadSpecTable(cfg)
	if err != nil {
		return fmt.Errorf("failed to load spec table: %w", err)
	}

	profileName := cfg.Profile
	if profileOverride != "" {
		profileName = profileOverride
	}
	profile, err := spec.ParseProfile(profileName)
	if err != nil {
		return err
	}
	validator := validate.New(table, profile)

	logger.Info("specification table loaded",
		zap.Int("data_elements", table.Len()),
		zap.String("profile", profile.String()))

	// Explicit arguments win; otherwise scan the input directory.
	files := args
	if len(files) == 0 {
		dir := cfg.InputDir
		if inputDir != "" {
			dir = inputDir
		}
		files, err = utils.DiscoverTraceFiles(dir, cfg.TraceExtensions)
		if err != nil {
			return fmt.Errorf("failed to discover trace files: %w", err)
		}
	}
	if len(files) == 0 {
		fmt.Println("No trace files found.")
		return nil
	}

	logger.Info("processing trace files", zap.Int("count", len(files)))

	// Process files concurrently, bounded by max_concurrency; reports are
	// collected by input index so output order is deterministic.
	var wg sync.WaitGroup
	sem := make(chan struct{}, cfg.MaxConcurrency)
	results := make([]fileResult, len(files))

	for i, file := range files {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[index] = checkFile(index, path, validator, logger)
		}(i, file)
	}
	wg.Wait()

	// =====================================================================
	// PRINT REPORTS AND SUMMARY
	// =====================================================================

	var reports []*report.FileReport
	var failed int
	for _, res := range results {
		if res.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", filepath.Base(files[res.index]), res.err)
			continue
		}
		reports = append(reports, res.report)
		if err := report.Render(os.Stdout, res.report); err != nil {
			return err
		}
		fmt.Println()
	}

	var clean, withErrors int
	for _, fr := range reports {
		clean += fr.Clean
		withErrors += fr.WithErrors
	}
	fmt.Println("=== Processing Complete ===")
	fmt.Printf("Files processed: %d (%d failed to read)\n", len(files), failed)
	fmt.Printf("Clean messages:  %d\n", clean)
	fmt.Printf("With errors:     %d\n", withErrors)
	fmt.Printf("Time elapsed:    %s\n", time.Since(startTime))

	if err := writeExports(cfg.ReportDir, cfg.ReportNameFormat, reports, logger); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d trace file(s) could not be read", failed)
	}
	return nil
}

// checkFile runs the parse/validate pipeline for one file.
func checkFile(index int, path string, validator *validate.Validator, logger *zap.Logger) fileResult {
	f, err := os.Open(path)
	if err != nil {
		return fileResult{index: index, err: err}
	}
	defer f.Close()

	fr, err := report.BuildFromReader(filepath.Base(path), f, validator, report.Options{
		MTIFilter: mtiFilter,
		Logger:    logger,
	})
	if err != nil {
		return fileResult{index: index, err: err}
	}
	return fileResult{index: index, report: fr}
}

// writeExports writes the requested CSV/XLSX exports into the report
// directory.
func writeExports(reportDir, nameFormat string, reports []*report.FileReport, logger *zap.Logger) error {
	if (!exportCSV && !exportXLSX) || len(reports) == 0 {
		return nil
	}
	if err := utils.EnsureDir(reportDir); err != nil {
		return err
	}
	base := filepath.Join(reportDir, utils.GenerateReportFileName(nameFormat))

	if exportCSV {
		path := base + ".csv"
		if err := report.ExportCSV(path, reports); err != nil {
			return err
		}
		logger.Info("CSV report written", zap.String("path", path))
		fmt.Printf("CSV report:      %s\n", path)
	}
	if exportXLSX {
		path := base + ".xlsx"
		if err := report.ExportXLSX(path, reports); err != nil {
			return err
		}
		logger.Info("XLSX report written", zap.String("path", path))
		fmt.Printf("XLSX report:     %s\n", path)
	}
	return nil
}
