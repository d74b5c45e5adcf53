// Package token holds the source-position value types shared by every
// downstream package. The core never constructs these from raw text
// itself — they arrive attached to the parsed syntax tree the core
// consumes (see ast.Node), but the core frequently builds derived spans
// (e.g. for a narrowed sub-expression) and always reports spans in this
// shape, so the type lives independently of the parser and the AST.
package token

import "fmt"

// Position is a zero-based line, zero-based column (UTF-8 byte offset
// within the line), paired with the absolute byte offset into the file.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Span is a half-open byte range [Start, End) with resolved line/column
// endpoints, as required by the diagnostic wire format in spec §6.
type Span struct {
	Start Position
	End   Position
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// Contains reports whether pos falls within the half-open range.
func (s Span) Contains(pos Position) bool {
	if pos.Offset < s.Start.Offset {
		return false
	}
	return pos.Offset < s.End.Offset
}

// Less orders spans by starting offset, the order diagnostics must be
// emitted in per spec §5 ("Ordering guarantees").
func (s Span) Less(o Span) bool {
	return s.Start.Offset < o.Start.Offset
}

// Zero is the span used for synthetic nodes that have no source text.
var Zero = Span{}
