// =============================================================================
// ISO8583 Trace Validator - Built-in Specification Table
// =============================================================================
//
// Default table used when no external spec file is configured. It covers the
// data elements exercised by authorization and financial traffic on the Ghana
// switch; usage markers follow the national spec sheet. Composite EMV/private
// elements (55/62/63) carry usage only, since their sub-fields are captured
// as nested tag maps and never length-checked as scalars.
//
// =============================================================================

package spec

// builtinEntry keeps the literal table below readable.
type builtinEntry struct {
	num    string
	name   string
	length Length
	format Format
	usage  map[string]string
}

var builtinEntries = []builtinEntry{
	{"2", "Primary Account Number", LLVAR, FormatNumeric, map[string]string{"all": "M"}},
	{"3", "Processing Code", FixedLength(6), FormatNumeric, map[string]string{"all": "M"}},
	{"4", "Amount, Transaction", FixedLength(12), FormatNumeric, map[string]string{"all": "M"}},
	{"7", "Transmission Date and Time", FixedLength(10), FormatNumeric, map[string]string{"all": "M"}},
	{"11", "System Trace Audit Number", FixedLength(6), FormatNumeric, map[string]string{"all": "M"}},
	{"12", "Time, Local Transaction", FixedLength(6), FormatNumeric, map[string]string{"all": "M"}},
	{"13", "Date, Local Transaction", FixedLength(4), FormatNumeric, map[string]string{"all": "M"}},
	{"14", "Date, Expiration", FixedLength(4), FormatNumeric, map[string]string{"0100": "M", "0200": "M"}},
	{"18", "Merchant Type", FixedLength(4), FormatNumeric, map[string]string{"0100": "M", "0200": "M"}},
	{"22", "POS Entry Mode", FixedLength(3), FormatNumeric, map[string]string{"0100": "M", "0200": "M"}},
	{"25", "POS Condition Code", FixedLength(2), FormatNumeric, map[string]string{"all": "M"}},
	{"32", "Acquiring Institution ID Code", LLVAR, FormatNumeric, map[string]string{"all": "M"}},
	{"35", "Track 2 Data", LLVAR, FormatOther, map[string]string{"0100": "M", "0200": "M"}},
	{"37", "Retrieval Reference Number", FixedLength(12), FormatAlphanumeric, map[string]string{"all": "M"}},
	{"38", "Authorization Identification Response", FixedLength(6), FormatAlphanumeric, map[string]string{"0110": "M", "0210": "M"}},
	{"39", "Response Code", FixedLength(2), FormatNumeric, map[string]string{"0110": "M", "0210": "M", "0410": "M", "0430": "M"}},
	{"41", "Card Acceptor Terminal ID", FixedLength(8), FormatAlphanumeric, map[string]string{"all": "M"}},
	{"42", "Card Acceptor Identification Code", FixedLength(15), FormatAlphanumeric, map[string]string{"all": "M"}},
	{"49", "Currency Code, Transaction", FixedLength(3), FormatNumeric, map[string]string{"all": "M"}},
	{"55", "ICC System Related Data", LLVAR, FormatOther, map[string]string{"0100": "M", "0200": "M"}},
	{"62", "Private Use Data", LLVAR, FormatOther, map[string]string{}},
	{"63", "Private Use Data 2", LLVAR, FormatOther, map[string]string{}},
	{"100", "Receiving Institution ID Code", LLVAR, FormatNumeric, map[string]string{"0200": "M", "0210": "M"}},
	{"126", "Private Data", LLVAR, FormatOther, map[string]string{"all": "M"}},
}

// Builtin returns a fresh copy of the built-in specification table. Each call
// builds a new Table so that callers can never observe shared mutable state.
func Builtin() *Table {
	rules := make(map[string]*DataElementRule, len(builtinEntries))
	order := make([]string, 0, len(builtinEntries))
	for _, e := range builtinEntries {
		usage := make(map[string]string, len(e.usage))
		for k, v := range e.usage {
			usage[k] = v
		}
		rules[e.num] = &DataElementRule{
			Name:   e.name,
			Length: e.length,
			Format: e.format,
			Usage:  usage,
		}
		order = append(order, e.num)
	}
	return NewTable(rules, order)
}
