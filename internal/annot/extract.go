package annot

import (
	"strings"

	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/config"
	"github.com/takeshiD/typua/internal/token"
)

// Extractor walks a Chunk's comment trivia and produces the ordered
// Block sequence of spec §4.1.
type Extractor struct {
	Lowerer Lowerer
}

// NewExtractor builds an Extractor for the given dialect.
func NewExtractor(syntax config.Syntax) Extractor {
	return Extractor{Lowerer: Lowerer{Syntax: syntax}}
}

// Extract produces one Block per statement that has leading annotation
// comments (and, for standalone
// declarations, one file-level Block) plus any directive-parse errors
// encountered along the way (spec §4.1 "Contract").
func (ex Extractor) Extract(chunk *ast.Chunk) ([]Block, []Error) {
	var blocks []Block
	var errs []Error

	for _, stmt := range ast.Statements(chunk) {
		annotComments := filterAnnotationComments(stmt.LeadingTrivia())
		if len(annotComments) == 0 {
			continue
		}
		records, blockErrs := ex.parseComments(annotComments)
		errs = append(errs, blockErrs...)
		if len(records) == 0 {
			continue
		}
		blocks = append(blocks, Block{
			Records:   records,
			Statement: stmt,
			Span:      spanOf(annotComments),
		})
	}

	// File-level block: trivia trailing the last statement, attached to
	// the file itself (spec §4.1, "used for standalone class/alias/enum
	// declarations").
	if fileComments := filterAnnotationComments(chunk.TrailingTrivia); len(fileComments) > 0 {
		records, blockErrs := ex.parseComments(fileComments)
		errs = append(errs, blockErrs...)
		if len(records) > 0 {
			blocks = append(blocks, Block{
				Records:   records,
				Statement: nil,
				Span:      spanOf(fileComments),
			})
		}
	}

	return blocks, errs
}

// TopLevelBlocks returns the subset of blocks whose Statement is a
// direct top-level statement of chunk (or the file-level block with a
// nil Statement) — the scope the Type Registry's Collect pass draws
// class/alias/enum declarations from (spec §4.3 "Scan every file's
// top-level class, alias, enum annotations").
func TopLevelBlocks(chunk *ast.Chunk, blocks []Block) []Block {
	top := make(map[ast.Statement]bool, len(chunk.Body.Statements))
	for _, s := range chunk.Body.Statements {
		top[s] = true
	}
	var out []Block
	for _, b := range blocks {
		if b.Statement == nil || top[b.Statement] {
			out = append(out, b)
		}
	}
	return out
}

func filterAnnotationComments(comments []ast.Comment) []ast.Comment {
	var out []ast.Comment
	for _, c := range comments {
		if c.IsAnnotationComment() {
			out = append(out, c)
		}
	}
	return out
}

func spanOf(comments []ast.Comment) token.Span {
	if len(comments) == 0 {
		return token.Zero
	}
	return token.Span{
		Start: comments[0].CommentSpan.Start,
		End:   comments[len(comments)-1].CommentSpan.End,
	}
}

// parseComments parses each annotation comment's directive tail into a
// Record. A directive whose tail fails to parse contributes an Error
// at that comment's span but does not prevent later comments in the
// same block from being parsed (spec §4.1 "Failures ... do not halt
// extraction of following directives").
func (ex Extractor) parseComments(comments []ast.Comment) ([]Record, []Error) {
	var records []Record
	var errs []Error
	for _, c := range comments {
		body := stripAtPrefix(c.Text)
		rec, err := ex.parseDirective(body, c.CommentSpan)
		if err != nil {
			errs = append(errs, Error{Span: c.CommentSpan, Message: err.Error()})
			continue
		}
		if rec != nil {
			rec.Span = c.CommentSpan
			records = append(records, *rec)
		}
	}
	return records, errs
}

// stripAtPrefix removes the leading spaces and '@' that IsAnnotationComment
// already verified are present, leaving "directiveName tail...".
func stripAtPrefix(text string) string {
	i := 0
	for i < len(text) && text[i] == ' ' {
		i++
	}
	if i < len(text) && text[i] == '@' {
		i++
	}
	return strings.TrimLeft(text[i:], " ")
}
