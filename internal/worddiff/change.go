// Package worddiff parses porcelain word-diff output into structured change
// records positioned in the current (new-file) document, and can synthesize
// porcelain output for two in-memory texts.
package worddiff

// Kind classifies a Change.
type Kind int

// Change kinds, from old text to new text.
const (
	KindInsert Kind = iota
	KindDelete
	KindChange
)

func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	case KindChange:
		return "change"
	default:
		return "unknown"
	}
}

// Change is one word-level difference between the reference revision and the
// current document. All offsets are rune offsets into the current document
// ("new file" coordinates).
//
// Variants:
//   - KindInsert: text in [Start, End) exists only in the new document.
//     Previous is empty.
//   - KindDelete: Previous existed immediately before Start in the old
//     document and is absent from the new one. Start == End (zero width).
//   - KindChange: text in [Start, End) replaces Previous.
//
// Invariants (see Validate):
//   - End > Start for KindInsert and KindChange; End == Start for KindDelete.
//   - A parse emits changes in non-decreasing position order, non-overlapping.
type Change struct {
	Kind     Kind
	Start    int
	End      int
	Previous string
}
