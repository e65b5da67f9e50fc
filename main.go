// =============================================================================
// ISO8583 Trace Validator - Main Entry Point
// =============================================================================
//
// Entry point for the tracecheck CLI. It initializes the Cobra CLI framework
// and delegates command execution to the cmd package.
//
// USAGE:
//   tracecheck check       - Parse and validate trace files
//   tracecheck spec        - Load and summarize the specification table
//   tracecheck version     - Display the application version
//
// ARCHITECTURE:
//   cmd/         : CLI command definitions (Cobra)
//   internal/    : core parsing/validation logic (not for external import)
//   pkg/         : shared utilities
//
// =============================================================================

package main

import (
	"github.com/kboateng/tracecheck/cmd"
)

func main() {
	cmd.Execute()
}
