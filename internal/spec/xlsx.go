// =============================================================================
// ISO8583 Trace Validator - XLSX Specification Loader
// =============================================================================
//
// Some teams keep the data-element spec as a spreadsheet rather than YAML.
// This loader reads the first sheet of an XLSX workbook laid out as:
//
//   | Field | Name                  | Length | Format | all | 0100 | 0110 | ... |
//   |-------|-----------------------|--------|--------|-----|------|------|-----|
//   | 039   | Response Code         | 2      | n      |     | M    | M    |     |
//   | 100   | Receiving Inst. ID    | LLVAR  | n      | M   |      |      |     |
//
// The first four columns are fixed; every remaining header is interpreted as
// a usage key (an MTI string or the wildcard "all") and each non-empty cell
// under it becomes that element's requirement marker for the key.
//
// =============================================================================

package spec

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Fixed column positions in the spec workbook (0-based).
const (
	xlsxFieldColumn  = 0
	xlsxNameColumn   = 1
	xlsxLengthColumn = 2
	xlsxFormatColumn = 3
	xlsxUsageStart   = 4
)

// LoadXLSX reads a specification table from an XLSX workbook.
func LoadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spec workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("spec workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("spec workbook %s has no data rows", path)
	}

	// Usage keys come from the header row, everything right of the fixed
	// columns. Each key keeps its absolute column index so that blank
	// spacer columns never shift later keys onto the wrong markers.
	type usageColumn struct {
		key string
		col int
	}
	header := rows[0]
	usageColumns := make([]usageColumn, 0, len(header))
	for i := xlsxUsageStart; i < len(header); i++ {
		key := strings.TrimSpace(header[i])
		if key != "" {
			usageColumns = append(usageColumns, usageColumn{key: key, col: i})
		}
	}

	getCell := func(row []string, index int) string {
		if index < len(row) {
			return strings.TrimSpace(row[index])
		}
		return ""
	}

	rules := make(map[string]*DataElementRule)
	order := make([]string, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		field := getCell(row, xlsxFieldColumn)
		if field == "" {
			continue
		}
		length, err := ParseLength(getCell(row, xlsxLengthColumn))
		if err != nil {
			return nil, fmt.Errorf("spec workbook %s: row %d: %w", path, i+1, err)
		}

		usage := make(map[string]string)
		for _, uc := range usageColumns {
			if marker := getCell(row, uc.col); marker != "" {
				usage[uc.key] = strings.ToUpper(marker)
			}
		}

		rules[field] = &DataElementRule{
			Name:   getCell(row, xlsxNameColumn),
			Length: length,
			Format: ParseFormat(getCell(row, xlsxFormatColumn)),
			Usage:  usage,
		}
		order = append(order, field)
	}

	if len(order) == 0 {
		return nil, fmt.Errorf("spec workbook %s defines no data elements", path)
	}
	return NewTable(rules, order), nil
}
