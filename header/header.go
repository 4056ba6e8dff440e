// Package header implements the Header Table data model and the Header
// Tokenizer (HT): a byte-oriented state machine that walks raw RFC 5322
// header bytes, extracts name/separator/value triples, unfolds continuation
// lines, counts newline styles, and records per-header byte ranges. No
// regex; the scanner has to keep byte-exact bookkeeping for downstream
// hashing and signature verification.
package header

// Type is a bitmask drawn from the well-known header classifications the
// engine assigns while recognizing special fields.
type Type uint32

const (
	To Type = 1 << iota
	Cc
	Bcc
	From
	Sender
	Rcpt
	Subject
	MessageID
	ReturnPath
	DeliveredTo
	Received
	Unique
)

func (t Type) Has(flag Type) bool { return t&flag != 0 }

// NewlineStyle is the dominant line-ending style observed across a header
// block, tallied when counting is enabled.
type NewlineStyle int

const (
	NewlineUnknown NewlineStyle = iota
	NewlineLF
	NewlineCR
	NewlineCRLF
)

func (n NewlineStyle) String() string {
	switch n {
	case NewlineLF:
		return "LF"
	case NewlineCR:
		return "CR"
	case NewlineCRLF:
		return "CRLF"
	}
	return "unknown"
}

// Header is one Name: Value line (possibly folded) from the header block.
// RawValue and RawLen preserve byte-exact offsets for downstream hashing
// and signature verification; Decoded is the RFC 2047-decoded, UTF-8-valid
// string. Both are carried per the source's documented need for each.
type Header struct {
	// Name is the canonical lower-cased header name.
	Name string
	// OriginalName preserves the casing as it appeared on the wire.
	OriginalName string
	// RawValue is the raw bytes from the start of the name through the end
	// of the value, excluding the terminating newline of the last line
	// (interior fold CR/LF bytes included, unlike Decoded).
	RawValue []byte
	// RawLen is len(RawValue), kept as an explicit field since downstream
	// consumers may want the length without holding the slice.
	RawLen int
	// Separator is the bytes between ':' and the value, typically " ".
	Separator []byte
	// TabSeparated is true when Separator contains a tab.
	TabSeparated bool
	// EmptySeparator is true when no whitespace at all followed ':'.
	EmptySeparator bool
	// Decoded is the unfolded, RFC 2047-decoded, UTF-8-valid value.
	Decoded string
	// Order is this header's position in arrival order, dense in [0, N).
	Order int
	// Type is the SFR-assigned classification bitmask.
	Type Type
}

// Table holds two synchronized views over the same Headers: a mapping from
// lower-case name to the ordered sequence of occurrences, and a single
// global arrival-order sequence. Both views reference the same Header
// objects, so mutating Type through one is observable through the other.
type Table struct {
	byName map[string][]*Header
	all    []*Header
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{byName: make(map[string][]*Header)}
}

// Insert appends h to both views, assigning no Order (the caller — the
// Tokenizer — owns Order assignment since it tracks the running counter).
func (t *Table) Insert(h *Header) {
	t.all = append(t.all, h)
	t.byName[h.Name] = append(t.byName[h.Name], h)
}

// ByName returns every occurrence of name (case-insensitive), in arrival
// order, or nil if the header was never seen.
func (t *Table) ByName(name string) []*Header {
	return t.byName[lower(name)]
}

// First is a convenience for the common "first occurrence wins" contract
// SFR applies to UNIQUE-tagged fields.
func (t *Table) First(name string) (*Header, bool) {
	hs := t.ByName(name)
	if len(hs) == 0 {
		return nil, false
	}
	return hs[0], true
}

// All returns every Header in wire order.
func (t *Table) All() []*Header {
	return t.all
}

// Count returns the total number of headers stored.
func (t *Table) Count() int {
	return len(t.all)
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
