// =============================================================================
// ISO8583 Trace Validator - Validation Engine
// =============================================================================
//
// Determines which data elements are mandatory for a message (per MTI, card
// scheme and already-captured fields) and checks each one against a layered
// rule set: a baseline missing-field check, a dispatch table of
// field-specific strategies, and a generic length/format fallback.
//
// Validation failures are values, not errors: each check produces a Verdict
// whose Issue string is empty on success. No validator call has side effects,
// and all state a check needs is passed in through Context, so messages can
// be validated concurrently.
//
// =============================================================================

package validate

import (
	"fmt"

	"github.com/kboateng/tracecheck/internal/spec"
	"github.com/kboateng/tracecheck/internal/trace"
)

// Response-code semantics shared by the resolver and the field rules.
const approvedResponseCode = "00"

// knownResponseCodes is the closed set of response codes the switch emits.
var knownResponseCodes = map[string]bool{
	"00": true,
	"01": true,
	"02": true,
}

// de126MandatoryMTIs are the response/advice MTIs for which DE 126 is
// mandatory (Mastercard private data). For every other MTI the element is
// never mandatory, even if the spec sheet marks it "all"/M.
var de126MandatoryMTIs = map[string]bool{
	"0110": true,
	"0210": true,
	"0430": true,
}

// de38ApprovalMTIs are the approval-carrying MTIs for which Visa requires
// DE 38 (authorization identification response).
var de38ApprovalMTIs = map[string]bool{
	"0110": true,
	"0210": true,
}

// networkManagementMTIs are administrative heartbeat types excluded from
// mandatory-field accounting entirely.
var networkManagementMTIs = map[string]bool{
	"0800": true,
	"0810": true,
	"0820": true,
}

// IsNetworkManagement reports whether an MTI belongs to the network
// management exclusion set.
func IsNetworkManagement(mti string) bool {
	return networkManagementMTIs[mti]
}

// =============================================================================
// VERDICT
// =============================================================================

// Verdict is the validation outcome for one mandatory data element of one
// message.
type Verdict struct {
	// Field is the normalized data-element number.
	Field string

	// Name is the element name from the spec table, if known.
	Name string

	// Value is the captured scalar value. Empty when the field is missing
	// or nested.
	Value string

	// Present reports whether the element was captured at all.
	Present bool

	// Nested reports whether the element was captured as a composite tag
	// map. Nested captures always pass.
	Nested bool

	// NestedCount is the number of captured sub-tags when Nested.
	NestedCount int

	// Issue is empty on success, otherwise a human-readable description of
	// the failure.
	Issue string
}

// Passed reports whether the verdict is a pass.
func (v Verdict) Passed() bool { return v.Issue == "" }

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator applies a specification table, under a regional profile, to
// parsed trace messages. The table is immutable, so a single Validator is
// safe for concurrent use.
type Validator struct {
	table   *spec.Table
	profile spec.Profile
}

// New builds a Validator over an immutable spec table.
func New(table *spec.Table, profile spec.Profile) *Validator {
	return &Validator{table: table, profile: profile}
}

// Table returns the validator's spec table.
func (v *Validator) Table() *spec.Table { return v.table }

// Profile returns the validator's regional profile.
func (v *Validator) Profile() spec.Profile { return v.profile }

// =============================================================================
// MANDATORY-FIELD RESOLUTION
// =============================================================================

// MandatoryFields computes the ordered set of data elements that must be
// present for the given MTI and scheme. The already-captured fields
// participate (DE 38 is response-code conditional for Visa), so the resolver
// is re-evaluated per message and never cached.
func (v *Validator) MandatoryFields(mti string, scheme Scheme, msg *trace.Message) []string {
	var mandatory []string
	for _, num := range v.table.FieldNumbers() {
		rule := v.table.Rule(num)
		if rule == nil || !rule.MandatoryFor(mti) {
			continue
		}

		switch num {
		case "126":
			// Mandatory only for the fixed response/advice set, whatever
			// the spec sheet's usage says.
			if !de126MandatoryMTIs[mti] {
				continue
			}
		case "38":
			// Visa requires the authorization identification response only
			// when the captured response code says approved. Mastercard
			// follows the spec sheet unconditionally.
			if scheme == Visa && responseCode(msg) != approvedResponseCode {
				continue
			}
		}

		mandatory = append(mandatory, num)
	}
	return mandatory
}

// responseCode returns the captured DE 39 scalar, or "" if absent or nested.
func responseCode(msg *trace.Message) string {
	fv, ok := msg.Field("39")
	if !ok || fv.Kind() != trace.KindScalar {
		return ""
	}
	return fv.Scalar()
}

// =============================================================================
// MESSAGE VALIDATION
// =============================================================================

// ValidateMessage resolves the mandatory fields for a message and produces
// one Verdict per mandatory element, in spec-table order.
func (v *Validator) ValidateMessage(msg *trace.Message) []Verdict {
	scheme := DetectScheme(msg)
	mandatory := v.MandatoryFields(msg.MTI, scheme, msg)

	verdicts := make([]Verdict, 0, len(mandatory))
	for _, num := range mandatory {
		verdicts = append(verdicts, v.validateMandatory(num, msg, scheme))
	}
	return verdicts
}

func (v *Validator) validateMandatory(num string, msg *trace.Message, scheme Scheme) Verdict {
	verdict := Verdict{Field: num}
	if rule := v.table.Rule(num); rule != nil {
		verdict.Name = rule.Name
	}

	fv, ok := msg.Field(num)
	if !ok {
		verdict.Issue = fmt.Sprintf("Missing mandatory field %s", num)
		return verdict
	}
	verdict.Present = true

	// Composite captures count as passed; their sub-fields are displayed,
	// not validated.
	if fv.Kind() == trace.KindNested {
		verdict.Nested = true
		verdict.NestedCount = fv.Nested().Len()
		return verdict
	}

	verdict.Value = fv.Scalar()
	if verdict.Value == "" {
		verdict.Issue = fmt.Sprintf("Missing mandatory field %s", num)
		return verdict
	}

	verdict.Issue = v.ValidateField(num, verdict.Value, msg.MTI, scheme, msg)
	return verdict
}

// ValidateField checks a single captured value against the layered rule set
// and returns an issue description, or "" when the value passes. Dispatch
// order, first match wins:
//
//  1. no rule for the field -> display-only, always passes;
//  2. mandatory-and-empty -> missing-field issue;
//  3. field-specific strategy from the dispatch table;
//  4. generic length/format fallback.
func (v *Validator) ValidateField(fieldNum, value, mti string, scheme Scheme, msg *trace.Message) string {
	fieldNum = spec.NormalizeFieldNumber(fieldNum)
	rule := v.table.Rule(fieldNum)
	if rule == nil {
		return ""
	}

	if rule.MandatoryFor(mti) && value == "" {
		return fmt.Sprintf("Missing mandatory field %s", fieldNum)
	}

	ctx := Context{
		MTI:     mti,
		Scheme:  scheme,
		Profile: v.profile,
		Message: msg,
		Rule:    rule,
	}

	if strategy, ok := fieldStrategies[fieldNum]; ok {
		return strategy(value, ctx)
	}
	return genericRule(fieldNum, value, ctx)
}
