// =============================================================================
// ISO8583 Trace Validator - CSV Export
// =============================================================================
//
// Flat CSV export of per-field verdicts across one or more file reports, for
// downstream spreadsheet triage. One row per mandatory field per validated
// message.
//
// =============================================================================

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// csvHeader is the fixed column layout of the export.
var csvHeader = []string{"file", "message", "mti", "scheme", "field", "name", "value", "status", "issue"}

// WriteCSV streams every verdict of the given reports to w as CSV.
func WriteCSV(w io.Writer, reports []*FileReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, fr := range reports {
		for _, mr := range fr.Messages {
			for _, v := range mr.Verdicts {
				status := "passed"
				if !v.Passed() {
					status = "failed"
				}
				value := v.Value
				if v.Nested {
					value = fmt.Sprintf("%d nested items", v.NestedCount)
				}
				row := []string{
					fr.File,
					fmt.Sprintf("%d", mr.Index),
					mr.MTI,
					mr.Scheme.String(),
					v.Field,
					v.Name,
					value,
					status,
					v.Issue,
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the CSV export to a file.
func ExportCSV(path string, reports []*FileReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV export: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, reports); err != nil {
		return fmt.Errorf("failed to write CSV export: %w", err)
	}
	return nil
}
