// =============================================================================
// ISO8583 Trace Validator - Field Rule Strategies
// =============================================================================
//
// Field-specific correctness rules, one strategy per data element, dispatched
// by field number with the generic length/format rule as the default. Each
// strategy implements the same contract: given the captured value and the
// validation context, return an issue description or "" on pass. Keeping each
// special case behind the common contract makes it independently testable and
// avoids an ever-growing conditional chain.
//
// =============================================================================

package validate

import (
	"fmt"
	"strings"

	"github.com/kboateng/tracecheck/internal/spec"
	"github.com/kboateng/tracecheck/internal/trace"
)

// Context carries everything a field strategy may consult. Strategies are
// pure: they read the context and return a verdict string.
type Context struct {
	// MTI of the message under validation.
	MTI string

	// Scheme of the message (Visa or Mastercard).
	Scheme Scheme

	// Profile selects regional rule variants (DE 100).
	Profile spec.Profile

	// Message gives access to sibling fields for cross-field rules
	// (DE 38 consults the response code).
	Message *trace.Message

	// Rule is the spec-table entry for the field being validated.
	Rule *spec.DataElementRule
}

// StrategyFunc is the common contract every field strategy implements.
type StrategyFunc func(value string, ctx Context) string

// fieldStrategies dispatches by normalized field number. Fields without an
// entry fall through to genericRule.
var fieldStrategies = map[string]StrategyFunc{
	"12":  validateLocalTime,
	"13":  validateLocalDate,
	"22":  validatePOSEntryMode,
	"25":  validatePOSConditionCode,
	"38":  validateAuthIDResponse,
	"42":  validateCardAcceptorID,
	"100": validateReceivingInstitution,
}

// =============================================================================
// FIELD-SPECIFIC STRATEGIES
// =============================================================================

// validateCardAcceptorID (DE 42): the terminals pad this element with
// whitespace, so the only check is non-empty after trim. No length or format
// constraint applies.
func validateCardAcceptorID(value string, _ Context) string {
	if strings.TrimSpace(value) == "" {
		return "Missing mandatory field 42"
	}
	return ""
}

// validateLocalTime (DE 12): traces sometimes prefix the hhmmss time with
// separators or a date fragment. Discard non-digits, keep the trailing six
// digits and require exactly six to remain.
func validateLocalTime(value string, _ Context) string {
	digits := trailingDigits(value, 6)
	if len(digits) != 6 {
		return "Invalid local transaction time: expected 6 digits (hhmmss)"
	}
	return ""
}

// validateLocalDate (DE 13): same recovery as DE 12 with a trailing MMDD.
func validateLocalDate(value string, _ Context) string {
	digits := trailingDigits(value, 4)
	if len(digits) != 4 {
		return "Invalid local transaction date: expected 4 digits (MMDD)"
	}
	return ""
}

// validatePOSEntryMode (DE 22): some switches emit a trailing filler
// character. Take the leading 3-4 characters and require an all-digit run of
// length 3 or 4; leading zeros are allowed.
func validatePOSEntryMode(value string, _ Context) string {
	v := value
	if len(v) > 4 {
		v = v[:4]
	}
	if !isDigits(v) {
		return "Invalid format: expected numeric"
	}
	if len(v) < 3 {
		return fmt.Sprintf("Invalid length: expected 3 or 4, got %d", len(value))
	}
	return ""
}

// validatePOSConditionCode (DE 25): take the leading two characters; a single
// leftover digit is left-padded with a zero. Exactly two digits must result.
func validatePOSConditionCode(value string, _ Context) string {
	v := value
	if len(v) > 2 {
		v = v[:2]
	}
	if len(v) == 1 && isDigits(v) {
		v = "0" + v
	}
	if len(v) != 2 || !isDigits(v) {
		return "Invalid POS condition code: expected 2 digits"
	}
	return ""
}

// validateAuthIDResponse (DE 38) is scheme-conditional. Visa only populates
// the authorization identification response on approved responses, so the
// 6-alphanumeric check is enforced only for approval-carrying MTIs with an
// approved response code; every other Visa case passes even when the element
// is absent. Mastercard always requires exactly 6 alphanumeric characters.
func validateAuthIDResponse(value string, ctx Context) string {
	if ctx.Scheme == Visa {
		if !de38ApprovalMTIs[ctx.MTI] || responseCode(ctx.Message) != approvedResponseCode {
			return ""
		}
	}
	if len(value) != 6 || !isAlphanumeric(value) {
		return "Invalid authorization identification response: expected 6 alphanumeric characters"
	}
	return ""
}

// validateReceivingInstitution (DE 100) is the profile-dependent rule: the
// Ghana national spec declares a numeric LLVAR of 1-11 digits, the
// international variant allows up to 15 alphanumeric characters.
func validateReceivingInstitution(value string, ctx Context) string {
	if strings.TrimSpace(value) == "" {
		return "Missing mandatory field 100"
	}
	switch ctx.Profile {
	case spec.ProfileInternational:
		if !isAlphanumeric(value) {
			return "Invalid format: expected alphanumeric"
		}
		if len(value) > 15 {
			return fmt.Sprintf("Invalid length: expected at most 15, got %d", len(value))
		}
	default:
		if !isDigits(value) {
			return "Invalid format: expected numeric"
		}
		if len(value) < 1 || len(value) > 11 {
			return fmt.Sprintf("Invalid length: expected 1-11, got %d", len(value))
		}
	}
	return ""
}

// =============================================================================
// GENERIC FALLBACK RULE
// =============================================================================

// genericRule applies the spec-table declaration directly: exact length for
// fixed-length elements, then the declared character class. DE 39 carries an
// extra closed-set check on top of the generic rule.
func genericRule(fieldNum, value string, ctx Context) string {
	rule := ctx.Rule

	if !rule.Length.Variable && len(value) != rule.Length.Fixed {
		return fmt.Sprintf("Invalid length: expected %d, got %d", rule.Length.Fixed, len(value))
	}

	switch rule.Format {
	case spec.FormatNumeric:
		if !isDigits(value) {
			return "Invalid format: expected numeric"
		}
	case spec.FormatAlphanumeric:
		if !isAlphanumeric(value) {
			return "Invalid format: expected alphanumeric"
		}
	}

	if fieldNum == "39" && !knownResponseCodes[value] {
		return fmt.Sprintf("Invalid response code: %s", value)
	}
	return ""
}

// =============================================================================
// CHARACTER HELPERS
// =============================================================================

// isDigits reports whether s is non-empty and all decimal digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isAlphanumeric reports whether s is non-empty and all ASCII letters or
// digits.
func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}

// trailingDigits strips every non-digit character from s and returns at most
// the last n digits of what remains.
func trailingDigits(s string, n int) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > n {
		digits = digits[len(digits)-n:]
	}
	return digits
}
