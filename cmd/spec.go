// =============================================================================
// ISO8583 Trace Validator - Spec Command
// =============================================================================
//
// The 'spec' command loads the configured specification table and prints a
// summary, which doubles as a sanity check of the spec file without
// processing any traces.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// specCmd represents the 'spec' command.
var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Load and summarize the data-element specification table",
	Long: `The spec command loads the configured specification table (YAML, XLSX or
the built-in Ghana table), validates that it parses cleanly and prints one
line per data element with its declared length, format and the MTIs for
which it is mandatory.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runSpec()
	},
}

func init() {
	rootCmd.AddCommand(specCmd)
}

func runSpec() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	table, err := loadSpecTable(cfg)
	if err != nil {
		return fmt.Errorf("failed to load spec table: %w", err)
	}

	source := cfg.SpecFile
	if source == "" {
		source = "built-in"
	}
	fmt.Printf("Specification table: %s (%d data elements, profile %s)\n\n", source, table.Len(), cfg.Profile)

	for _, num := range table.FieldNumbers() {
		rule := table.Rule(num)
		fmt.Printf("  DE %-4s %-40s len=%-6s fmt=%-3s mandatory=%s\n",
			num, rule.Name, rule.Length, rule.Format, usageSummary(rule.Usage))
	}
	return nil
}

// usageSummary renders the MTIs carrying the mandatory marker, or "-" when
// the element is never mandatory.
func usageSummary(usage map[string]string) string {
	var mtis []string
	if usage["all"] == "M" {
		return "all"
	}
	// Stable order for the common MTIs; anything else is appended as-is.
	for _, mti := range []string{"0100", "0110", "0200", "0210", "0400", "0410", "0420", "0430"} {
		if usage[mti] == "M" {
			mtis = append(mtis, mti)
		}
	}
	for mti, marker := range usage {
		if marker != "M" || mti == "all" {
			continue
		}
		known := false
		for _, k := range mtis {
			if k == mti {
				known = true
				break
			}
		}
		if !known {
			mtis = append(mtis, mti)
		}
	}
	if len(mtis) == 0 {
		return "-"
	}
	out := mtis[0]
	for _, mti := range mtis[1:] {
		out += "," + mti
	}
	return out
}
