// Package ast models the parsed-syntax-tree contract the core consumes.
// Producing this tree is the surface-syntax parser's job (an external
// collaborator, §1 non-goals); this package exists only so the core has
// a concrete shape to type-check against and so tests can hand-build
// small trees without a real Lua parser.
package ast

import "github.com/takeshiD/typua/internal/token"

// Node is the base interface for every tree element, statement or
// expression alike.
type Node interface {
	Span() token.Span
	// LeadingTrivia returns the comment trivia immediately preceding
	// this node in source order, verbatim, as required by the
	// Annotation Extractor's association algorithm (§4.1).
	LeadingTrivia() []Comment
}

// Statement is a Node that can appear in a Block.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that yields a value (or a multi-value tuple).
type Expression interface {
	Node
	expressionNode()
}

// Comment is one line of trivia as preserved verbatim by the parser,
// per §6 ("leading and trailing comment trivia preserved verbatim").
// Text holds the content after the leading dashes, trailing newline
// stripped; Long marks a `--[[ ... ]]` block comment (needed to
// recognise the inline `--[[@as T]]` directive, spec §4.1).
type Comment struct {
	Text        string
	DashCount   int // number of leading '-' characters, e.g. 3 for "---"
	Long        bool
	CommentSpan token.Span
}

// IsAnnotationComment reports whether this comment opens an
// annotation block per spec §4.1's association algorithm: exactly
// three leading dashes, then zero or more ASCII spaces, then '@'.
func (c Comment) IsAnnotationComment() bool {
	if c.DashCount != 3 {
		return false
	}
	i := 0
	for i < len(c.Text) && c.Text[i] == ' ' {
		i++
	}
	return i < len(c.Text) && c.Text[i] == '@'
}

// Block is an ordered sequence of statements sharing one lexical scope,
// the unit the Binder (§4.4) uses to introduce scopes for do/while/for/
// repeat/function bodies.
type Block struct {
	Statements []Statement
	BlockSpan  token.Span
}

func (b *Block) Span() token.Span          { return b.BlockSpan }
func (b *Block) LeadingTrivia() []Comment  { return nil }

// base embeds the common span+trivia bookkeeping every concrete node
// needs; it is not itself a Node.
type base struct {
	NodeSpan token.Span
	Trivia   []Comment
}

func (b base) Span() token.Span         { return b.NodeSpan }
func (b base) LeadingTrivia() []Comment { return b.Trivia }

// Chunk is the root node produced for one source file: the sequence of
// top-level statements plus any trivia trailing the last statement,
// which the Annotation Extractor attaches to the file itself (§4.1,
// "used for standalone class/alias/enum declarations").
type Chunk struct {
	base
	File          string
	Body          *Block
	TrailingTrivia []Comment
}
