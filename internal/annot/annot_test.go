package annot

import (
	"testing"

	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/config"
	"github.com/takeshiD/typua/internal/types"
)

func doc(texts ...string) []ast.Comment {
	out := make([]ast.Comment, len(texts))
	for i, t := range texts {
		out[i] = ast.Comment{Text: t, DashCount: 3}
	}
	return out
}

func TestIsAnnotationCommentRequiresThreeDashes(t *testing.T) {
	yes := ast.Comment{Text: "@type number", DashCount: 3}
	no := ast.Comment{Text: "@type number", DashCount: 2}
	plain := ast.Comment{Text: "just a comment", DashCount: 3}
	if !yes.IsAnnotationComment() {
		t.Error("three dashes + '@' should be recognised")
	}
	if no.IsAnnotationComment() {
		t.Error("two dashes should not be recognised as an annotation block opener")
	}
	if plain.IsAnnotationComment() {
		t.Error("a plain comment with no '@' should not be recognised")
	}
}

func TestExtractAssociatesBlockWithFollowingStatement(t *testing.T) {
	local := &ast.LocalStmt{Names: []string{"x"}}
	local.Trivia = doc("@type number")
	chunk := &ast.Chunk{Body: &ast.Block{Statements: []ast.Statement{local}}}

	ex := NewExtractor(config.Lua54)
	blocks, errs := ex.Extract(chunk)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Statement != local {
		t.Error("block should associate with the following local statement")
	}
	if len(blocks[0].Records) != 1 || blocks[0].Records[0].Kind != KindType {
		t.Fatalf("expected a single KindType record, got %v", blocks[0].Records)
	}
	if !types.Equal(blocks[0].Records[0].Type, types.Number) {
		t.Errorf("lowered type = %v, want number", blocks[0].Records[0].Type)
	}
}

func TestExtractFileLevelBlockForTrailingTrivia(t *testing.T) {
	chunk := &ast.Chunk{
		Body:           &ast.Block{},
		TrailingTrivia: doc("@class Widget"),
	}
	ex := NewExtractor(config.Lua54)
	blocks, _ := ex.Extract(chunk)
	if len(blocks) != 1 || blocks[0].Statement != nil {
		t.Fatalf("expected one file-level block with nil Statement, got %v", blocks)
	}
}

func TestExtractDirectiveErrorDoesNotHaltFollowingDirectives(t *testing.T) {
	local := &ast.LocalStmt{Names: []string{"x"}}
	local.Trivia = doc("@bogus-directive", "@type string")
	chunk := &ast.Chunk{Body: &ast.Block{Statements: []ast.Statement{local}}}

	ex := NewExtractor(config.Lua54)
	blocks, errs := ex.Extract(chunk)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one directive-parse error, got %d: %v", len(errs), errs)
	}
	if len(blocks) != 1 || len(blocks[0].Records) != 1 || blocks[0].Records[0].Kind != KindType {
		t.Fatalf("the valid @type directive should still be extracted, got %v", blocks)
	}
}

func TestTopLevelBlocksFiltersNestedStatements(t *testing.T) {
	inner := &ast.LocalStmt{Names: []string{"y"}}
	inner.Trivia = doc("@type string")
	doStmt := &ast.DoStmt{Body: &ast.Block{Statements: []ast.Statement{inner}}}
	top := &ast.LocalStmt{Names: []string{"x"}}
	top.Trivia = doc("@type number")
	chunk := &ast.Chunk{Body: &ast.Block{Statements: []ast.Statement{top, doStmt}}}

	ex := NewExtractor(config.Lua54)
	blocks, _ := ex.Extract(chunk)
	topOnly := TopLevelBlocks(chunk, blocks)
	if len(topOnly) != 1 || topOnly[0].Statement != top {
		t.Fatalf("TopLevelBlocks should keep only the chunk's direct statements, got %v", topOnly)
	}
}

// TestLowerRoundTripLaw is spec §8's round-trip law: lowering then
// pretty-printing a recognised type expression yields a textually
// equivalent expression modulo whitespace and redundant parentheses.
func TestLowerRoundTripLaw(t *testing.T) {
	lw := Lowerer{Syntax: config.Lua54}
	cases := []string{"number", "string|nil", "number[]", "{[string]: number}", "fun(x: number): string"}
	for _, src := range cases {
		res := lw.Lower(src, 0)
		if len(res.Errors) != 0 {
			t.Fatalf("Lower(%q) errored: %v", src, res.Errors)
		}
		reprinted := types.Canon(res.Type).String()
		res2 := lw.Lower(reprinted, 0)
		if len(res2.Errors) != 0 {
			t.Fatalf("re-lowering %q errored: %v", reprinted, res2.Errors)
		}
		if !types.Equal(res.Type, res2.Type) {
			t.Errorf("round trip of %q: first=%v second(%q)=%v", src, res.Type, reprinted, res2.Type)
		}
	}
}

func TestLowerIntegerDialectSensitivity(t *testing.T) {
	lua54 := Lowerer{Syntax: config.Lua54}
	if got := lua54.Lower("integer", 0).Type; !types.Equal(got, types.Integer) {
		t.Errorf("Lua5.4 integer = %v, want integer", got)
	}
	lua51 := Lowerer{Syntax: config.Lua51}
	if got := lua51.Lower("integer", 0).Type; !types.Equal(got, types.Number) {
		t.Errorf("Lua5.1 integer = %v, want number (no integer subtype)", got)
	}
}

func TestLowerOptionalSuffix(t *testing.T) {
	lw := Lowerer{Syntax: config.Lua54}
	got := lw.Lower("string?", 0).Type
	want := types.Optional(types.String)
	if !types.Equal(got, want) {
		t.Errorf("Lower(string?) = %v, want %v", got, want)
	}
}

func TestParseDirectiveUnrecognisedIsAnError(t *testing.T) {
	ex := NewExtractor(config.Lua54)
	_, err := ex.parseDirective("bogus foo", ast.Comment{}.CommentSpan)
	if err == nil {
		t.Fatal("expected an error for an unrecognised directive name")
	}
}

func TestParseClassDirectiveExactAndParent(t *testing.T) {
	ex := NewExtractor(config.Lua54)
	rec, err := ex.parseClassDirective("(exact) Derived : Base")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.Exact || rec.Name != "Derived" || rec.Parent != "Base" {
		t.Errorf("parseClassDirective = %+v", rec)
	}
}

func TestParseDiagnosticDirectiveCodes(t *testing.T) {
	ex := NewExtractor(config.Lua54)
	rec, err := ex.parseDiagnosticDirective("disable=unknown-name,arity-mismatch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.DiagAction != DiagDisable || len(rec.DiagCodes) != 2 {
		t.Errorf("parseDiagnosticDirective = %+v", rec)
	}
}
