// =============================================================================
// ISO8583 Trace Validator - Card Scheme Detection
// =============================================================================

package validate

import "github.com/kboateng/tracecheck/internal/trace"

// Scheme is the card network whose formatting conventions govern certain
// field rules.
type Scheme int

const (
	// Visa is the default scheme.
	Visa Scheme = iota

	// Mastercard is detected by the presence of DE 126.
	Mastercard
)

// String returns the display name of the scheme.
func (s Scheme) String() string {
	if s == Mastercard {
		return "Mastercard"
	}
	return "Visa"
}

// DetectScheme classifies a message as Visa or Mastercard. DE 126 is the
// single signal: Visa does not use it, so its presence (regardless of value)
// means Mastercard. Pure function of the message's captured fields.
func DetectScheme(msg *trace.Message) Scheme {
	if msg.Has("126") {
		return Mastercard
	}
	return Visa
}
