// =============================================================================
// ISO8583 Trace Validator - Trace Line Parser
// =============================================================================
//
// Recovers message boundaries, flat fields and nested sub-fields from the
// line-oriented trace dumps produced by switch diagnostic tools. The input is
// free-form and whitespace-variable, so the parser is deliberately lenient:
// lines that match none of the known shapes are skipped silently, and a
// malformed line at worst omits one field from the report.
//
// The parser is an explicit finite-state machine:
//
//   Idle ──header──▶ InMessage ──nested start──▶ InNestedField(n)
//     ▲                  │  ▲                          │
//     └──────────────────┘  └───────flat field─────────┘
//
// All scan state (mode, current message, active nested field) lives on the
// Parser value and is threaded through ParseLine, which makes individual
// transitions unit-testable against literal line sequences.
//
// LINE SHAPES:
//   header        ... M.T.I ... [0200]
//   flat field    FLD (039) (2) [00]        (length may be LLVAR)
//   nested start  FLD (055) (120)           (only DE 55/62/63; length may be LLVAR)
//   continuation  > (9F26) ... : [A1B2C3]
//
// =============================================================================

package trace

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// headerMarker identifies a message-header line.
const headerMarker = "M.T.I"

// Line patterns, mirroring the diagnostic tool's output shapes.
var (
	// flat field: FLD (<num>) (<len>|LLVAR) [<value>]
	fieldPattern = regexp.MustCompile(`FLD\s+\((\d+)\)\s+\((\d+|LLVAR)\)\s+\[(.*?)\]`)

	// nested start: FLD (<num>) (<len>|LLVAR) with no bracketed value required
	nestedStartPattern = regexp.MustCompile(`FLD\s+\((\d+)\)\s+\((?:\d+|LLVAR)\)`)

	// continuation: (<tag>) ... : [<value>]
	nestedLinePattern = regexp.MustCompile(`\((.*?)\).*?:\s+\[(.*?)\]`)

	// bracketed MTI on a header line
	mtiPattern = regexp.MustCompile(`\[(\d+)\]`)
)

// nestedCapableFields are the composite bitmap elements whose values are
// captured as tag maps rather than scalars.
var nestedCapableFields = map[string]bool{
	"55": true,
	"62": true,
	"63": true,
}

// mode is the parser's FSM state tag.
type mode int

const (
	modeIdle mode = iota
	modeInMessage
	modeInNestedField
)

// =============================================================================
// PARSER
// =============================================================================

// Parser converts a sequence of raw trace lines into an ordered sequence of
// Messages. The zero value is not usable; call NewParser.
type Parser struct {
	mode        mode
	current     *Message
	nestedField string
	messages    []*Message
}

// NewParser returns a parser in the Idle state with no messages captured.
func NewParser() *Parser {
	return &Parser{mode: modeIdle}
}

// Parse scans an entire trace stream and returns the parsed messages in
// input order. Any open message is implicitly finalized at end of input.
// Decode anomalies are recovered internally, so the only possible error is a
// read failure from the underlying reader.
func Parse(r io.Reader) ([]*Message, error) {
	p := NewParser()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.ParseLine(DecodeLine(scanner.Bytes()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.Messages(), nil
}

// Messages returns the messages captured so far, in input order.
func (p *Parser) Messages() []*Message {
	return p.messages
}

// ParseLine feeds one decoded line through the state machine.
func (p *Parser) ParseLine(line string) {
	line = strings.TrimSpace(line)

	// A header line always starts a new message, whatever the current
	// state, and resets nested-field tracking.
	if strings.Contains(line, headerMarker) {
		if m := mtiPattern.FindStringSubmatch(line); m != nil {
			p.current = newMessage(m[1])
			p.messages = append(p.messages, p.current)
			p.nestedField = ""
			p.mode = modeInMessage
		}
		return
	}

	// Field lines before any header have no message to attach to.
	if p.current == nil {
		return
	}

	// Start of a composite bitmap field: register it as nested with an
	// empty sub-map. The line itself contributes no scalar value.
	if num, ok := matchNestedStart(line); ok {
		p.current.setField(num, NestedFieldValue())
		p.nestedField = num
		p.mode = modeInNestedField
		return
	}

	// Continuation line inside a nested field.
	if strings.HasPrefix(line, ">") {
		if p.mode != modeInNestedField {
			// Orphan continuation line: nothing active to attach to.
			return
		}
		if m := nestedLinePattern.FindStringSubmatch(line); m != nil {
			tag, value := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
			if fv, ok := p.current.Field(p.nestedField); ok && fv.Kind() == KindNested {
				fv.Nested().Set(tag, value)
			}
		}
		return
	}

	// Any other FLD line ends nesting and is reprocessed as a normal
	// field line in the same pass.
	if strings.Contains(line, "FLD") {
		p.nestedField = ""
		p.mode = modeInMessage
	}

	if m := fieldPattern.FindStringSubmatch(line); m != nil {
		num := normalizeToken(m[1])
		p.current.setField(num, ScalarValue(strings.TrimSpace(m[3])))
		// Declared length is kept as metadata; it is never cross-checked
		// against the captured value.
		p.current.declared[num] = m[2]
	}
}

// matchNestedStart reports whether the line opens one of the nested-capable
// composite fields, returning the normalized field number.
func matchNestedStart(line string) (string, bool) {
	m := nestedStartPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	num := normalizeToken(m[1])
	if !nestedCapableFields[num] {
		return "", false
	}
	return num, true
}

// normalizeToken strips leading zeros from a numeric field token ("007" -> "7").
func normalizeToken(token string) string {
	trimmed := strings.TrimLeft(token, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// =============================================================================
// LINE DECODING
// =============================================================================

// DecodeLine decodes one line of raw trace bytes. UTF-8 is tried first; on
// failure every byte is widened as Latin-1, which accepts any byte value, so
// decoding can never abort the scan.
func DecodeLine(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes)
}
