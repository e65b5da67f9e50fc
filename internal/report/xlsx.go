// =============================================================================
// ISO8583 Trace Validator - XLSX Export
// =============================================================================
//
// Workbook export of the validation report: one sheet per trace file, one row
// per mandatory field, with pass rows filled green and fail rows filled red
// the way the switch team's review spreadsheets are colored. A leading
// summary sheet carries the global clean/error totals.
//
// =============================================================================

package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

// ExportXLSX writes the reports as a colored workbook at path.
func ExportXLSX(path string, reports []*FileReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to set up workbook: %w", err)
	}

	passStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D4EDDA"}},
		Font: &excelize.Font{Color: "155724"},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	failStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F8D7DA"}},
		Font: &excelize.Font{Color: "721C24"},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := writeSummarySheet(f, reports); err != nil {
		return err
	}

	for i, fr := range reports {
		sheet := sheetNameFor(fr.File, i)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet for %s: %w", fr.File, err)
		}
		if err := writeFileSheet(f, sheet, fr, passStyle, failStyle); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, reports []*FileReport) error {
	rows := [][]interface{}{
		{"File", "Messages", "Transactional", "Clean", "With Errors"},
	}
	for _, fr := range reports {
		rows = append(rows, []interface{}{fr.File, fr.TotalMessages, fr.Transactional, fr.Clean, fr.WithErrors})
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	return nil
}

func writeFileSheet(f *excelize.File, sheet string, fr *FileReport, passStyle, failStyle int) error {
	header := []interface{}{"Message", "MTI", "Scheme", "Field", "Name", "Value", "Validation"}
	cell, _ := excelize.CoordinatesToCellName(1, 1)
	if err := f.SetSheetRow(sheet, cell, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rowNum := 2
	for _, mr := range fr.Messages {
		for _, v := range mr.Verdicts {
			row := []interface{}{
				mr.Index,
				mr.MTI,
				mr.Scheme.String(),
				"DE " + v.Field,
				v.Name,
				renderValue(v),
				renderStatus(v),
			}
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("failed to write verdict row: %w", err)
			}

			style := passStyle
			if !v.Passed() {
				style = failStyle
			}
			first, _ := excelize.CoordinatesToCellName(1, rowNum)
			last, _ := excelize.CoordinatesToCellName(len(row), rowNum)
			if err := f.SetCellStyle(sheet, first, last, style); err != nil {
				return fmt.Errorf("failed to style verdict row: %w", err)
			}
			rowNum++
		}
	}
	return nil
}

// sheetNameFor derives a legal, unique sheet name from a file name. Excel
// caps sheet names at 31 characters and forbids a handful of punctuation
// characters.
func sheetNameFor(file string, index int) string {
	name := file
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	for _, ch := range []string{":", "\\", "/", "?", "*", "[", "]"} {
		name = strings.ReplaceAll(name, ch, "_")
	}
	suffix := fmt.Sprintf(" (%d)", index+1)
	if name == "" || name == summarySheet {
		name = "trace"
	}
	if len(name)+len(suffix) > 31 {
		name = name[:31-len(suffix)]
	}
	return name + suffix
}
