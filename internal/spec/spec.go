// =============================================================================
// ISO8583 Trace Validator - Specification Table
// =============================================================================
//
// This module defines the data-element specification table that drives all
// validation. Each entry describes one ISO8583 data element:
//   - Length: a fixed digit count, or variable (LLVAR-style)
//   - Format: numeric, alphanumeric, or unchecked
//   - Usage: per-MTI requirement markers (only "M" = mandatory is interpreted)
//
// The table is loaded once at startup (from YAML, from an XLSX workbook, or
// from the built-in Ghana table) and treated as immutable for the lifetime of
// the process. Switching regional profiles produces a fresh table rather than
// mutating the existing one, so validators may safely run concurrently across
// messages.
//
// =============================================================================

package spec

import (
	"fmt"
	"strconv"
	"strings"
)

// UsageAll is the wildcard usage key: a data element marked mandatory under
// this key is mandatory for every MTI.
const UsageAll = "all"

// MandatoryMarker is the only requirement marker this system interprets.
// Any other marker (or an absent entry) means "not mandatory".
const MandatoryMarker = "M"

// =============================================================================
// LENGTH
// =============================================================================

// Length describes the declared length of a data element: either a fixed
// digit count or the LLVAR sentinel for variable-length elements.
type Length struct {
	// Fixed is the exact character count for fixed-length elements.
	// Ignored when Variable is true.
	Fixed int

	// Variable marks LLVAR-style elements whose length is not checked
	// by the generic rule.
	Variable bool
}

// FixedLength returns a fixed Length of n characters.
func FixedLength(n int) Length {
	return Length{Fixed: n}
}

// LLVAR is the variable-length sentinel.
var LLVAR = Length{Variable: true}

// ParseLength parses a length token from a spec source. Numeric tokens become
// fixed lengths; "LLVAR" (any case) and "var" become the variable sentinel.
func ParseLength(token string) (Length, error) {
	token = strings.TrimSpace(token)
	switch strings.ToUpper(token) {
	case "LLVAR", "LLLVAR", "VAR", "VARIABLE":
		return LLVAR, nil
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return Length{}, fmt.Errorf("invalid length token %q", token)
	}
	return FixedLength(n), nil
}

// String renders the length the way spec sources write it.
func (l Length) String() string {
	if l.Variable {
		return "LLVAR"
	}
	return strconv.Itoa(l.Fixed)
}

// =============================================================================
// FORMAT
// =============================================================================

// Format is the declared character class of a data element.
type Format int

const (
	// FormatOther is the zero value: the generic rule performs no
	// character-class check for such elements.
	FormatOther Format = iota

	// FormatNumeric requires every character to be a decimal digit.
	FormatNumeric

	// FormatAlphanumeric requires every character to be a letter or digit.
	FormatAlphanumeric
)

// ParseFormat maps spec-source format tags onto Format values. The ISO8583
// shorthand "n" and "an" is accepted alongside spelled-out names; anything
// unrecognized is treated as unchecked.
func ParseFormat(tag string) Format {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "n", "numeric", "num":
		return FormatNumeric
	case "an", "alphanumeric", "alphanum":
		return FormatAlphanumeric
	default:
		return FormatOther
	}
}

// String returns the ISO8583 shorthand for the format.
func (f Format) String() string {
	switch f {
	case FormatNumeric:
		return "n"
	case FormatAlphanumeric:
		return "an"
	default:
		return "ans"
	}
}

// =============================================================================
// DATA ELEMENT RULE
// =============================================================================

// DataElementRule holds the specification entry for a single data element.
type DataElementRule struct {
	// Name is the human-readable element name, used in reports.
	Name string

	// Length is the declared length (fixed count or LLVAR).
	Length Length

	// Format is the declared character class.
	Format Format

	// Usage maps an MTI string (or the UsageAll wildcard) to a requirement
	// marker. Only MandatoryMarker is distinguished from everything else.
	Usage map[string]string
}

// MandatoryFor reports whether this element is marked mandatory for the given
// MTI, either directly or via the wildcard key.
func (r *DataElementRule) MandatoryFor(mti string) bool {
	if r.Usage == nil {
		return false
	}
	return r.Usage[UsageAll] == MandatoryMarker || r.Usage[mti] == MandatoryMarker
}

// =============================================================================
// TABLE
// =============================================================================

// Table is an immutable specification table keyed by normalized data-element
// number. The field order of the source is preserved so that mandatory-field
// resolution and reporting are deterministic.
type Table struct {
	rules map[string]*DataElementRule
	order []string
}

// NewTable builds a table from rules in the given field order. Field numbers
// are normalized (leading zeros stripped) on insertion; duplicate numbers keep
// the first occurrence's position but the last occurrence's rule.
func NewTable(rules map[string]*DataElementRule, order []string) *Table {
	t := &Table{rules: make(map[string]*DataElementRule, len(rules))}
	for _, num := range order {
		rule, ok := rules[num]
		if !ok {
			continue
		}
		key := NormalizeFieldNumber(num)
		if _, seen := t.rules[key]; !seen {
			t.order = append(t.order, key)
		}
		t.rules[key] = rule
	}
	return t
}

// Rule returns the rule for a field number, or nil if the table has none.
// Field numbers are normalized before lookup, so "007" and "7" are the same
// element.
func (t *Table) Rule(fieldNum string) *DataElementRule {
	return t.rules[NormalizeFieldNumber(fieldNum)]
}

// FieldNumbers returns the table's field numbers in source order. The returned
// slice is a copy; the table itself is never mutated after construction.
func (t *Table) FieldNumbers() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of data elements in the table.
func (t *Table) Len() int {
	return len(t.order)
}

// NormalizeFieldNumber strips leading zeros from a numeric field token via
// numeric reinterpretation, so "007" becomes "7". Non-numeric tokens (such as
// the reserved "MTI" pseudo-field key) pass through unchanged, and
// normalizing an already-normalized key is a no-op.
func NormalizeFieldNumber(token string) string {
	token = strings.TrimSpace(token)
	n, err := strconv.Atoi(token)
	if err != nil {
		return token
	}
	return strconv.Itoa(n)
}
