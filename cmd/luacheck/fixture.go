// Package main implements a thin example front-end that wires the
// Annotation Extractor, Type Registry, Binder, and Checker together to
// prove the core is usable end to end (spec's non-goal "surface-syntax
// parser" collaborator is not implemented here — see demoChunk).
package main

import (
	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/token"
)

// demoSource is the annotated Lua this front-end checks. Since parsing
// Lua source text is an explicit non-goal collaborator, demoChunk below
// builds the equivalent syntax tree by hand instead of lexing this
// string; it is kept here only so the printed report can show the
// reader what they're looking at.
const demoSource = `---@class Point
---@field x number
---@field y number
---@param p Point
---@param scale number
---@return number
local function magnitude(p, scale)
  return p.x * scale
end

---@type Point
local origin = { x = 0, y = "oops" }

magnitude(origin, 2)
magnitude(origin)
`

// seq hands out monotonically increasing synthetic spans, one source
// line per call; there is no real underlying text to measure against
// (demoChunk is hand-built, not parsed), so precise columns aren't
// meaningful here — only ordering is.
type seq struct {
	line, off int
}

func (s *seq) span(width int) token.Span {
	start := token.Position{Line: s.line, Column: 0, Offset: s.off}
	s.off += width
	end := token.Position{Line: s.line, Column: width, Offset: s.off}
	s.line++
	return token.Span{Start: start, End: end}
}

func (s *seq) comment(text string) ast.Comment {
	return ast.Comment{Text: text, DashCount: 3, CommentSpan: s.span(len(text) + 4)}
}

// demoChunk builds the syntax tree demoSource represents, the shape a
// real Lua parser would hand the core (ast package doc comment, "Producing
// this tree is the surface-syntax parser's job").
func demoChunk() *ast.Chunk {
	s := &seq{}

	magnitudeDoc := []ast.Comment{
		s.comment("@class Point"),
		s.comment("@field x number"),
		s.comment("@field y number"),
		s.comment("@param p Point"),
		s.comment("@param scale number"),
		s.comment("@return number"),
	}

	pParam := ast.Param{Name: "p", NameSpan: s.span(1)}
	scaleParam := ast.Param{Name: "scale", NameSpan: s.span(5)}

	pRef := &ast.Identifier{Name: "p"}
	pDotX := &ast.FieldExpr{Target: pRef, Name: "x", NameSpan: s.span(1)}
	scaleRef := &ast.Identifier{Name: "scale"}
	mulExpr := &ast.BinaryExpr{Op: ast.OpMul, OpSpan: s.span(1), Left: pDotX, Right: scaleRef}
	returnStmt := &ast.ReturnStmt{Exprs: []ast.Expression{mulExpr}}
	fnBody := &ast.Block{Statements: []ast.Statement{returnStmt}, BlockSpan: s.span(20)}

	fn := &ast.FunctionExpr{Params: []ast.Param{pParam, scaleParam}, Body: fnBody}
	magnitudeStmt := &ast.LocalFunctionDeclStmt{Name: "magnitude", Fn: fn}
	magnitudeStmt.Trivia = magnitudeDoc
	magnitudeStmt.NodeSpan = s.span(len("local function magnitude(p, scale)"))

	originDoc := []ast.Comment{s.comment("@type Point")}
	xField := ast.TableField{Key: &ast.StringLit{Value: "x"}, Value: &ast.NumberLit{Raw: "0", IsInt: true}, FieldSpan: s.span(5)}
	yField := ast.TableField{Key: &ast.StringLit{Value: "y"}, Value: &ast.StringLit{Value: "oops"}, FieldSpan: s.span(12)}
	originTable := &ast.TableConstructorExpr{Fields: []ast.TableField{xField, yField}}
	originStmt := &ast.LocalStmt{Names: []string{"origin"}, Exprs: []ast.Expression{originTable}}
	originStmt.Trivia = originDoc
	originStmt.NodeSpan = s.span(len(`local origin = { x = 0, y = "oops" }`))

	callOK := &ast.CallStmt{Call: &ast.CallExpr{
		Callee: &ast.Identifier{Name: "magnitude"},
		Args:   []ast.Expression{&ast.Identifier{Name: "origin"}, &ast.NumberLit{Raw: "2", IsInt: true}},
	}}
	callOK.NodeSpan = s.span(len("magnitude(origin, 2)"))

	callMissingArg := &ast.CallStmt{Call: &ast.CallExpr{
		Callee: &ast.Identifier{Name: "magnitude"},
		Args:   []ast.Expression{&ast.Identifier{Name: "origin"}},
	}}
	callMissingArg.NodeSpan = s.span(len("magnitude(origin)"))

	body := &ast.Block{
		Statements: []ast.Statement{magnitudeStmt, originStmt, callOK, callMissingArg},
		BlockSpan:  token.Span{Start: token.Position{}, End: token.Position{Line: s.line}},
	}

	chunk := &ast.Chunk{File: "demo.lua", Body: body}
	return chunk
}
