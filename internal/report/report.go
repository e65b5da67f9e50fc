// =============================================================================
// ISO8583 Trace Validator - Validation Report
// =============================================================================
//
// Aggregates parser output and validation verdicts into the structured report
// consumed by the presentation and export layers. The builder runs the full
// per-message pipeline:
//
//   Parser -> scheme detection -> mandatory-field resolution -> field verdicts
//
// Network-management messages (0800/0810/0820) appear in the MTI counts but
// are excluded from mandatory-field accounting. Messages whose MTI is outside
// an optional filter are likewise counted but not validated.
//
// =============================================================================

package report

import (
	"io"

	"go.uber.org/zap"

	"github.com/kboateng/tracecheck/internal/trace"
	"github.com/kboateng/tracecheck/internal/validate"
)

// =============================================================================
// REPORT MODEL
// =============================================================================

// MessageReport holds the validation outcome for one transactional message.
type MessageReport struct {
	// Index is the 1-based position among the validated messages of the
	// file.
	Index int

	// MTI is the message type indicator.
	MTI string

	// Scheme is the detected card scheme.
	Scheme validate.Scheme

	// Verdicts holds one entry per mandatory data element, in spec order.
	Verdicts []validate.Verdict

	// Mandatory-field accounting. Available + Missing and Passed + Failed
	// both equal len(Verdicts).
	Available int
	Missing   int
	Passed    int
	Failed    int
}

// Clean reports whether every mandatory field passed.
func (m *MessageReport) Clean() bool { return m.Failed == 0 }

// FileReport is the full validation report for one trace file.
type FileReport struct {
	// File is the source file name (or any caller-supplied label).
	File string

	// TotalMessages counts every parsed message, validated or not.
	TotalMessages int

	// MTICounts counts parsed messages per MTI; MTIOrder preserves first
	// appearance order.
	MTICounts map[string]int
	MTIOrder  []string

	// Messages holds the per-message reports for validated messages only.
	Messages []*MessageReport

	// Transactional is the number of validated messages; Clean and
	// WithErrors partition it.
	Transactional int
	Clean         int
	WithErrors    int
}

// =============================================================================
// BUILDER
// =============================================================================

// Options controls report construction.
type Options struct {
	// MTIFilter restricts validation to the listed MTIs. Empty means all.
	MTIFilter []string

	// Logger receives per-message debug logging. Nil disables logging.
	Logger *zap.Logger
}

// BuildFromReader parses a trace stream and builds its report in one pass.
func BuildFromReader(name string, r io.Reader, v *validate.Validator, opts Options) (*FileReport, error) {
	messages, err := trace.Parse(r)
	if err != nil {
		return nil, err
	}
	return Build(name, messages, v, opts), nil
}

// Build assembles the report for an already-parsed message sequence.
func Build(name string, messages []*trace.Message, v *validate.Validator, opts Options) *FileReport {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	filter := make(map[string]bool, len(opts.MTIFilter))
	for _, mti := range opts.MTIFilter {
		filter[mti] = true
	}

	fr := &FileReport{
		File:          name,
		TotalMessages: len(messages),
		MTICounts:     make(map[string]int),
	}

	for _, msg := range messages {
		if fr.MTICounts[msg.MTI] == 0 {
			fr.MTIOrder = append(fr.MTIOrder, msg.MTI)
		}
		fr.MTICounts[msg.MTI]++

		if len(filter) > 0 && !filter[msg.MTI] {
			continue
		}
		// Administrative heartbeats carry no mandatory-field obligations.
		if validate.IsNetworkManagement(msg.MTI) {
			logger.Debug("skipping network management message",
				zap.String("file", name),
				zap.String("mti", msg.MTI))
			continue
		}

		mr := buildMessageReport(msg, v)
		mr.Index = len(fr.Messages) + 1
		fr.Messages = append(fr.Messages, mr)

		fr.Transactional++
		if mr.Clean() {
			fr.Clean++
		} else {
			fr.WithErrors++
		}

		logger.Debug("validated message",
			zap.String("file", name),
			zap.String("mti", msg.MTI),
			zap.String("scheme", mr.Scheme.String()),
			zap.Int("mandatory", len(mr.Verdicts)),
			zap.Int("failed", mr.Failed))
	}

	return fr
}

func buildMessageReport(msg *trace.Message, v *validate.Validator) *MessageReport {
	mr := &MessageReport{
		MTI:    msg.MTI,
		Scheme: validate.DetectScheme(msg),
	}
	mr.Verdicts = v.ValidateMessage(msg)

	for _, verdict := range mr.Verdicts {
		if verdict.Present && (verdict.Nested || verdict.Value != "") {
			mr.Available++
		} else {
			mr.Missing++
		}
		if verdict.Passed() {
			mr.Passed++
		} else {
			mr.Failed++
		}
	}
	return mr
}
