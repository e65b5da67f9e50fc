// =============================================================================
// ISO8583 Trace Validator - Text Rendering
// =============================================================================
//
// Plain-text rendering of a file report: MTI counts, a per-message verdict
// table, per-message summaries and the global clean/error summary. This is
// the terminal consumer of the core's output.
//
// =============================================================================

package report

import (
	"fmt"
	"io"

	"github.com/kboateng/tracecheck/internal/validate"
)

// Render writes a human-readable report to w.
func Render(w io.Writer, fr *FileReport) error {
	if _, err := fmt.Fprintf(w, "=== Results for %s ===\n", fr.File); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nMTI counts (%d messages):\n", fr.TotalMessages)
	for _, mti := range fr.MTIOrder {
		fmt.Fprintf(w, "  %s: %d\n", mti, fr.MTICounts[mti])
	}

	for _, mr := range fr.Messages {
		fmt.Fprintf(w, "\nMessage %d (MTI %s, Scheme %s)\n", mr.Index, mr.MTI, mr.Scheme)
		for _, verdict := range mr.Verdicts {
			fmt.Fprintf(w, "  DE %-4s %-22s %s\n", verdict.Field, renderValue(verdict), renderStatus(verdict))
		}
		fmt.Fprintf(w, "  Summary: %d mandatory fields; %d available, %d missing; %d passed, %d failed\n",
			len(mr.Verdicts), mr.Available, mr.Missing, mr.Passed, mr.Failed)
	}

	_, err := fmt.Fprintf(w, "\nGlobal summary: %d transactional messages; %d clean, %d with errors\n",
		fr.Transactional, fr.Clean, fr.WithErrors)
	return err
}

// renderValue shows the captured value, a nested-item count for composite
// captures, or a missing marker.
func renderValue(v validate.Verdict) string {
	switch {
	case v.Nested:
		return fmt.Sprintf("%d nested items", v.NestedCount)
	case !v.Present, v.Value == "":
		return "(missing)"
	default:
		return fmt.Sprintf("[%s]", v.Value)
	}
}

// renderStatus shows the pass/fail outcome with the issue text on failure.
func renderStatus(v validate.Verdict) string {
	if v.Passed() {
		if v.Nested {
			return "Passed (nested field captured)"
		}
		return "Passed"
	}
	return "FAILED: " + v.Issue
}
