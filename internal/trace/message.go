// =============================================================================
// ISO8583 Trace Validator - Trace Message Model
// =============================================================================
//
// Structured form of one ISO8583 message recovered from a trace dump. A
// message owns a map of captured data elements keyed by normalized field
// number; each value is either a flat scalar or a nested tag map (for the
// composite bitmap elements such as DE 55/62/63). Consumers pattern-match on
// the value kind rather than probing the shape.
//
// =============================================================================

package trace

// MTIFieldKey is the reserved pseudo-field key under which a message's MTI is
// recorded, so downstream validation can reference it like any other field.
const MTIFieldKey = "MTI"

// =============================================================================
// FIELD VALUE
// =============================================================================

// FieldKind tags the two shapes a captured data element can take.
type FieldKind int

const (
	// KindScalar is a flat trimmed string value.
	KindScalar FieldKind = iota

	// KindNested is an ordered tag -> value sub-map, used only for the
	// composite bitmap elements.
	KindNested
)

// FieldValue is a tagged union: either a scalar string or a nested sub-map.
// Once a field is recorded as nested it is never reinterpreted as scalar
// within the same message.
type FieldValue struct {
	kind   FieldKind
	scalar string
	nested *NestedValue
}

// ScalarValue builds a scalar field value.
func ScalarValue(s string) FieldValue {
	return FieldValue{kind: KindScalar, scalar: s}
}

// NestedFieldValue builds an empty nested field value.
func NestedFieldValue() FieldValue {
	return FieldValue{kind: KindNested, nested: newNestedValue()}
}

// Kind returns the shape tag of the value.
func (v FieldValue) Kind() FieldKind { return v.kind }

// Scalar returns the flat value. Meaningful only when Kind is KindScalar.
func (v FieldValue) Scalar() string { return v.scalar }

// Nested returns the sub-map. Meaningful only when Kind is KindNested.
func (v FieldValue) Nested() *NestedValue { return v.nested }

// =============================================================================
// NESTED VALUE
// =============================================================================

// NestedValue is a tag -> value sub-map that preserves the insertion order of
// its tags, matching the order sub-fields appeared in the trace.
type NestedValue struct {
	tags   []string
	values map[string]string
}

func newNestedValue() *NestedValue {
	return &NestedValue{values: make(map[string]string)}
}

// Set inserts or replaces a sub-tag value. A tag keeps its original position
// when overwritten.
func (n *NestedValue) Set(tag, value string) {
	if _, seen := n.values[tag]; !seen {
		n.tags = append(n.tags, tag)
	}
	n.values[tag] = value
}

// Get returns a sub-tag value and whether it is present.
func (n *NestedValue) Get(tag string) (string, bool) {
	v, ok := n.values[tag]
	return v, ok
}

// Tags returns the sub-tags in insertion order.
func (n *NestedValue) Tags() []string {
	out := make([]string, len(n.tags))
	copy(out, n.tags)
	return out
}

// Len returns the number of captured sub-tags.
func (n *NestedValue) Len() int { return len(n.tags) }

// =============================================================================
// MESSAGE
// =============================================================================

// Message is one parsed trace message. It is created when a header line is
// seen, populated incrementally while it is the current message, and never
// mutated after its successor begins.
type Message struct {
	// MTI is the 4-digit message type indicator. Non-empty for every
	// message the parser emits.
	MTI string

	// fields maps normalized field numbers (and the MTI pseudo-key) to
	// captured values.
	fields map[string]FieldValue

	// order records field keys in capture order.
	order []string

	// declared keeps the raw length token from each flat field line. It is
	// metadata only and is never cross-checked against the value.
	declared map[string]string
}

func newMessage(mti string) *Message {
	m := &Message{
		MTI:      mti,
		fields:   make(map[string]FieldValue),
		declared: make(map[string]string),
	}
	m.setField(MTIFieldKey, ScalarValue(mti))
	return m
}

func (m *Message) setField(key string, v FieldValue) {
	if existing, ok := m.fields[key]; ok {
		// A nested field is never downgraded back to scalar.
		if existing.Kind() == KindNested && v.Kind() == KindScalar {
			return
		}
	} else {
		m.order = append(m.order, key)
	}
	m.fields[key] = v
}

// Field returns the captured value for a normalized field number.
func (m *Message) Field(key string) (FieldValue, bool) {
	v, ok := m.fields[key]
	return v, ok
}

// Has reports whether a field number was captured.
func (m *Message) Has(key string) bool {
	_, ok := m.fields[key]
	return ok
}

// FieldKeys returns the captured field keys in capture order.
func (m *Message) FieldKeys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// DeclaredLength returns the raw length token seen on the field's trace line,
// if any. Informational only.
func (m *Message) DeclaredLength(key string) (string, bool) {
	v, ok := m.declared[key]
	return v, ok
}
