package checker

import (
	"context"
	"testing"

	"github.com/takeshiD/typua/internal/annot"
	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/config"
	"github.com/takeshiD/typua/internal/diagnostics"
	"github.com/takeshiD/typua/internal/registry"
	"github.com/takeshiD/typua/internal/token"
	"github.com/takeshiD/typua/internal/types"
)

// sp builds a distinct, strictly increasing span so the hand-built trees
// below exercise span-ordered diagnostics (spec §8 invariant 6) the same
// way a real parser's output would.
func sp(n int) token.Span {
	return token.Span{
		Start: token.Position{Line: n, Column: 0, Offset: n * 10},
		End:   token.Position{Line: n, Column: 5, Offset: n*10 + 5},
	}
}

func chunkOf(stmts ...ast.Statement) *ast.Chunk {
	return &ast.Chunk{Body: &ast.Block{Statements: stmts}}
}

func newChecker(reg *registry.Registry) *Checker {
	return New(reg, config.Default())
}

func TestCheckS1AssignmentMismatch(t *testing.T) {
	// ---@type number
	// local x = 1
	// x = "hello"
	xLocal := &ast.LocalStmt{Names: []string{"x"}, Exprs: []ast.Expression{&ast.NumberLit{Raw: "1", IsInt: true}}}
	xLocal.NodeSpan = sp(1)
	badAssign := &ast.AssignStmt{
		Targets: []ast.Expression{&ast.Identifier{Name: "x"}},
		Exprs:   []ast.Expression{&ast.StringLit{Value: "hello"}},
	}
	badAssign.NodeSpan = sp(2)
	badAssign.Exprs[0].(*ast.StringLit).NodeSpan = sp(3)

	chunk := chunkOf(xLocal, badAssign)
	ann := map[ast.Statement][]annot.Record{
		xLocal: {{Kind: annot.KindType, Type: types.Number}},
	}

	c := newChecker(nil)
	report := c.Check(context.Background(), "s1.lua", chunk, ann)

	if len(report.Diagnostics) != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %d: %v", len(report.Diagnostics), report.Diagnostics)
	}
	d := report.Diagnostics[0]
	if d.Code != "assign-type-mismatch" {
		t.Errorf("Code = %s, want assign-type-mismatch", d.Code)
	}
	if d.Span != sp(3) {
		t.Errorf("diagnostic span should be the RHS string literal's span, got %v", d.Span)
	}
}

func TestCheckS2OptionalNilNarrowing(t *testing.T) {
	// ---@type string?
	// local s
	// if s ~= nil then local r = s end
	sLocal := &ast.LocalStmt{Names: []string{"s"}}
	sLocal.NodeSpan = sp(1)

	sRefInBody := &ast.Identifier{Name: "s"}
	sRefInBody.NodeSpan = sp(5)
	innerLocal := &ast.LocalStmt{Names: []string{"r"}, Exprs: []ast.Expression{sRefInBody}}
	innerLocal.NodeSpan = sp(6)

	cond := &ast.BinaryExpr{Op: ast.OpNeq, Left: &ast.Identifier{Name: "s"}, Right: &ast.NilLit{}}
	cond.NodeSpan = sp(2)

	ifStmt := &ast.IfStmt{
		Clauses: []ast.IfClause{{Condition: cond, Body: &ast.Block{Statements: []ast.Statement{innerLocal}}}},
	}
	ifStmt.NodeSpan = sp(3)

	chunk := chunkOf(sLocal, ifStmt)
	ann := map[ast.Statement][]annot.Record{
		sLocal: {{Kind: annot.KindType, Type: types.Optional(types.String)}},
	}

	c := newChecker(nil)
	report := c.Check(context.Background(), "s2.lua", chunk, ann)

	if len(report.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", report.Diagnostics)
	}
	got, ok := report.TypeOf(sRefInBody)
	if !ok {
		t.Fatal("expected a recorded type for s inside the then-branch")
	}
	if !types.Equal(got, types.String) {
		t.Errorf("s inside the then-branch = %v, want string (narrowed, nil removed)", got)
	}
}

func TestCheckS3TypeGuardNarrowing(t *testing.T) {
	// ---@type number|string
	// local v = 1
	// if type(v) == "string" then local a = v else local b = v end
	vLocal := &ast.LocalStmt{Names: []string{"v"}, Exprs: []ast.Expression{&ast.NumberLit{Raw: "1", IsInt: true}}}
	vLocal.NodeSpan = sp(1)

	typeCall := &ast.CallExpr{Callee: &ast.Identifier{Name: "type"}, Args: []ast.Expression{&ast.Identifier{Name: "v"}}}
	typeCall.NodeSpan = sp(2)
	cond := &ast.BinaryExpr{Op: ast.OpEq, Left: typeCall, Right: &ast.StringLit{Value: "string"}}
	cond.NodeSpan = sp(3)

	aRef := &ast.Identifier{Name: "v"}
	aRef.NodeSpan = sp(5)
	aLocal := &ast.LocalStmt{Names: []string{"a"}, Exprs: []ast.Expression{aRef}}
	aLocal.NodeSpan = sp(6)

	bRef := &ast.Identifier{Name: "v"}
	bRef.NodeSpan = sp(7)
	bLocal := &ast.LocalStmt{Names: []string{"b"}, Exprs: []ast.Expression{bRef}}
	bLocal.NodeSpan = sp(8)

	ifStmt := &ast.IfStmt{
		Clauses: []ast.IfClause{{Condition: cond, Body: &ast.Block{Statements: []ast.Statement{aLocal}}}},
		Else:    &ast.Block{Statements: []ast.Statement{bLocal}},
	}
	ifStmt.NodeSpan = sp(4)

	chunk := chunkOf(vLocal, ifStmt)
	ann := map[ast.Statement][]annot.Record{
		vLocal: {{Kind: annot.KindType, Type: types.Canon(types.Union{Members: []types.Type{types.Number, types.String}})}},
	}

	c := newChecker(nil)
	report := c.Check(context.Background(), "s3.lua", chunk, ann)

	if len(report.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", report.Diagnostics)
	}
	gotA, _ := report.TypeOf(aRef)
	gotB, _ := report.TypeOf(bRef)
	if !types.Equal(gotA, types.String) {
		t.Errorf("v in the then-branch (type(v)==\"string\") = %v, want string", gotA)
	}
	if !types.Equal(gotB, types.Number) {
		t.Errorf("v in the else-branch = %v, want number", gotB)
	}
}

func TestCheckS4SealedRecordUnknownField(t *testing.T) {
	// ---@class (exact) P
	// ---@field x number
	// ---@field y number
	// local p = {}
	// p.x = 1
	// p.y = 2
	// p.z = 3
	fileID := registry.NewFileID("s4.lua")
	b := registry.NewBuilder()
	b.CollectFile(fileID, []annot.Block{{Records: []annot.Record{
		{Kind: annot.KindClass, Name: "P", Exact: true},
		{Kind: annot.KindField, Name: "x", Type: types.Number},
		{Kind: annot.KindField, Name: "y", Type: types.Number},
	}}})
	reg := b.Resolve()
	if len(reg.Diagnostics) != 0 {
		t.Fatalf("unexpected registry diagnostics: %v", reg.Diagnostics)
	}

	pLocal := &ast.LocalStmt{Names: []string{"p"}, Exprs: []ast.Expression{&ast.TableConstructorExpr{}}}
	pLocal.NodeSpan = sp(1)

	fieldAssign := func(n int, field string, val int) *ast.AssignStmt {
		target := &ast.FieldExpr{Target: &ast.Identifier{Name: "p"}, Name: field}
		target.NameSpan = sp(n)
		s := &ast.AssignStmt{
			Targets: []ast.Expression{target},
			Exprs:   []ast.Expression{&ast.NumberLit{Raw: "0", IsInt: true}},
		}
		s.NodeSpan = sp(n)
		return s
	}
	assignX := fieldAssign(2, "x", 1)
	assignY := fieldAssign(3, "y", 2)
	assignZ := fieldAssign(4, "z", 3)

	chunk := chunkOf(pLocal, assignX, assignY, assignZ)
	ann := map[ast.Statement][]annot.Record{
		pLocal: {
			{Kind: annot.KindClass, Name: "P", Exact: true},
			{Kind: annot.KindField, Name: "x", Type: types.Number},
			{Kind: annot.KindField, Name: "y", Type: types.Number},
		},
	}

	c := newChecker(reg)
	report := c.Check(context.Background(), "s4.lua", chunk, ann)

	if len(report.Diagnostics) != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %d: %v", len(report.Diagnostics), report.Diagnostics)
	}
	d := report.Diagnostics[0]
	if d.Code != "field-type-mismatch" {
		t.Errorf("Code = %s, want field-type-mismatch", d.Code)
	}
	wantSpan := assignZ.Targets[0].(*ast.FieldExpr).NameSpan
	if d.Span != wantSpan {
		t.Errorf("diagnostic span = %v, want the span of p.z = %v", d.Span, wantSpan)
	}
}

func TestCheckS5GenericIdentity(t *testing.T) {
	// ---@generic T
	// ---@param x T
	// ---@return T
	// local function id(x) return x end
	// local a = id(1)
	// local b = id("hi")
	// local qa = a  -- indirection so the inferred type is observable via TypeOf
	// local qb = b
	xParam := ast.Param{Name: "x"}
	retIdent := &ast.Identifier{Name: "x"}
	fnBody := &ast.Block{Statements: []ast.Statement{&ast.ReturnStmt{Exprs: []ast.Expression{retIdent}}}}
	fn := &ast.FunctionExpr{Params: []ast.Param{xParam}, Body: fnBody}
	idStmt := &ast.LocalFunctionDeclStmt{Name: "id", Fn: fn}
	idStmt.NodeSpan = sp(1)

	callA := &ast.CallExpr{Callee: &ast.Identifier{Name: "id"}, Args: []ast.Expression{&ast.NumberLit{Raw: "1", IsInt: true}}}
	aLocal := &ast.LocalStmt{Names: []string{"a"}, Exprs: []ast.Expression{callA}}
	aLocal.NodeSpan = sp(2)

	callB := &ast.CallExpr{Callee: &ast.Identifier{Name: "id"}, Args: []ast.Expression{&ast.StringLit{Value: "hi"}}}
	bLocal := &ast.LocalStmt{Names: []string{"b"}, Exprs: []ast.Expression{callB}}
	bLocal.NodeSpan = sp(3)

	aRef := &ast.Identifier{Name: "a"}
	aRef.NodeSpan = sp(4)
	qaLocal := &ast.LocalStmt{Names: []string{"qa"}, Exprs: []ast.Expression{aRef}}
	qaLocal.NodeSpan = sp(5)

	bRef := &ast.Identifier{Name: "b"}
	bRef.NodeSpan = sp(6)
	qbLocal := &ast.LocalStmt{Names: []string{"qb"}, Exprs: []ast.Expression{bRef}}
	qbLocal.NodeSpan = sp(7)

	chunk := chunkOf(idStmt, aLocal, bLocal, qaLocal, qbLocal)
	ann := map[ast.Statement][]annot.Record{
		idStmt: {
			{Kind: annot.KindGeneric, GenericVars: []string{"T"}},
			{Kind: annot.KindParam, Name: "x", Type: types.Alias{Name: "T"}},
			{Kind: annot.KindReturn, Type: types.Alias{Name: "T"}},
		},
	}

	c := newChecker(nil)
	report := c.Check(context.Background(), "s5.lua", chunk, ann)

	if len(report.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", report.Diagnostics)
	}
	gotA, _ := report.TypeOf(aRef)
	gotB, _ := report.TypeOf(bRef)
	if !types.Equal(gotA, types.Integer) {
		t.Errorf("a = %v, want integer", gotA)
	}
	if !types.Equal(gotB, types.String) {
		t.Errorf("b = %v, want string", gotB)
	}
}

func TestCheckS6MultiReturnDestructuring(t *testing.T) {
	// ---@return number?, string?
	// local function f() return 1, nil end
	// local v, e = f()
	retExprs := []ast.Expression{&ast.NumberLit{Raw: "1", IsInt: true}, &ast.NilLit{}}
	fnBody := &ast.Block{Statements: []ast.Statement{&ast.ReturnStmt{Exprs: retExprs}}}
	fn := &ast.FunctionExpr{Body: fnBody}
	fStmt := &ast.LocalFunctionDeclStmt{Name: "f", Fn: fn}
	fStmt.NodeSpan = sp(1)

	call := &ast.CallExpr{Callee: &ast.Identifier{Name: "f"}}
	veLocal := &ast.LocalStmt{Names: []string{"v", "e"}, Exprs: []ast.Expression{call}}
	veLocal.NodeSpan = sp(2)

	vRef := &ast.Identifier{Name: "v"}
	vRef.NodeSpan = sp(3)
	qv := &ast.LocalStmt{Names: []string{"qv"}, Exprs: []ast.Expression{vRef}}
	qv.NodeSpan = sp(4)

	eRef := &ast.Identifier{Name: "e"}
	eRef.NodeSpan = sp(5)
	qe := &ast.LocalStmt{Names: []string{"qe"}, Exprs: []ast.Expression{eRef}}
	qe.NodeSpan = sp(6)

	chunk := chunkOf(fStmt, veLocal, qv, qe)
	ann := map[ast.Statement][]annot.Record{
		fStmt: {
			{Kind: annot.KindReturn, Type: types.Optional(types.Number)},
			{Kind: annot.KindReturn, Type: types.Optional(types.String)},
		},
	}

	c := newChecker(nil)
	report := c.Check(context.Background(), "s6.lua", chunk, ann)

	if len(report.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", report.Diagnostics)
	}
	gotV, _ := report.TypeOf(vRef)
	gotE, _ := report.TypeOf(eRef)
	if !types.Equal(gotV, types.Optional(types.Number)) {
		t.Errorf("v = %v, want number?", gotV)
	}
	if !types.Equal(gotE, types.Optional(types.String)) {
		t.Errorf("e = %v, want string?", gotE)
	}
}

// TestOverloadPreferredOverPrimaryOnTie exercises the review fix to
// resolveCall: when a primary signature and an @overload both accept
// the same arguments, the overload's result wins (spec §9).
func TestOverloadPreferredOverPrimaryOnTie(t *testing.T) {
	// ---@overload fun(x: number): boolean
	// local function f(x) return "s" end
	xParam := ast.Param{Name: "x"}
	fnBody := &ast.Block{Statements: []ast.Statement{&ast.ReturnStmt{Exprs: []ast.Expression{&ast.StringLit{Value: "s"}}}}}
	fn := &ast.FunctionExpr{Params: []ast.Param{xParam}, Body: fnBody}
	fStmt := &ast.LocalFunctionDeclStmt{Name: "f", Fn: fn}
	fStmt.NodeSpan = sp(1)

	call := &ast.CallExpr{Callee: &ast.Identifier{Name: "f"}, Args: []ast.Expression{&ast.NumberLit{Raw: "1", IsInt: true}}}
	call.NodeSpan = sp(2)
	rLocal := &ast.LocalStmt{Names: []string{"r"}, Exprs: []ast.Expression{call}}
	rLocal.NodeSpan = sp(3)

	rRef := &ast.Identifier{Name: "r"}
	rRef.NodeSpan = sp(4)
	qr := &ast.LocalStmt{Names: []string{"qr"}, Exprs: []ast.Expression{rRef}}
	qr.NodeSpan = sp(5)

	chunk := chunkOf(fStmt, rLocal, qr)
	ann := map[ast.Statement][]annot.Record{
		fStmt: {
			{Kind: annot.KindParam, Name: "x", Type: types.Number},
			{Kind: annot.KindReturn, Type: types.String},
			{Kind: annot.KindOverload, OverloadSig: types.Function{
				Params:  []types.Param{{Name: "x", Type: types.Number}},
				Returns: types.Tuple{Elems: []types.Type{types.Boolean}},
			}},
		},
	}

	c := newChecker(nil)
	report := c.Check(context.Background(), "overload.lua", chunk, ann)

	gotR, _ := report.TypeOf(rRef)
	if !types.Equal(gotR, types.Boolean) {
		t.Errorf("r = %v, want boolean (the overload's return, preferred on a tie)", gotR)
	}

	foundAmbiguous := false
	for _, d := range report.Diagnostics {
		if d.Code == "overload-ambiguous" {
			foundAmbiguous = true
		}
	}
	if !foundAmbiguous {
		t.Error("expected an overload-ambiguous diagnostic since both the primary and the overload matched")
	}
}

// TestDiagnosticsSortedBySpanThenCode is spec §8 invariant 6, and
// specifically the review fix adding Code as the tie-break for two
// diagnostics that share a span. Drives finish() directly, since
// engineering the full checking pipeline into producing an exact
// span collision is fragile and obscures what's actually under test.
func TestDiagnosticsSortedBySpanThenCode(t *testing.T) {
	shared := sp(1)
	earlier := sp(0)

	c := newChecker(nil)
	c.file = "order.lua"
	c.diags = map[string]*diagnostics.DiagnosticError{}
	c.suppr = diagnostics.NewSuppression()

	// Added out of order and with codes that would sort backwards
	// alphabetically if Span were the only key.
	c.addDiag(diagnostics.UnknownName, shared, "second by code, first is span-tied")
	c.addDiag(diagnostics.ArityMismatch, earlier, "should sort first, earliest span")
	c.addDiag(diagnostics.AssignTypeMismatch, shared, "first by code among the span-tied pair")

	report := c.finish()

	if len(report.Diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d: %v", len(report.Diagnostics), report.Diagnostics)
	}
	if report.Diagnostics[0].Code != diagnostics.ArityMismatch {
		t.Errorf("Diagnostics[0].Code = %s, want %s (earliest span)", report.Diagnostics[0].Code, diagnostics.ArityMismatch)
	}
	if report.Diagnostics[1].Code != diagnostics.AssignTypeMismatch || report.Diagnostics[2].Code != diagnostics.UnknownName {
		t.Errorf("span-tied pair not ordered by Code: got %s then %s, want %s then %s",
			report.Diagnostics[1].Code, report.Diagnostics[2].Code, diagnostics.AssignTypeMismatch, diagnostics.UnknownName)
	}
}

// TestCheckDeterministicRerun is spec §8 invariant 7: running the
// checker twice on the same input yields byte-identical diagnostics.
func TestCheckDeterministicRerun(t *testing.T) {
	build := func() (*ast.Chunk, map[ast.Statement][]annot.Record) {
		xLocal := &ast.LocalStmt{Names: []string{"x"}, Exprs: []ast.Expression{&ast.NumberLit{Raw: "1", IsInt: true}}}
		xLocal.NodeSpan = sp(1)
		assign := &ast.AssignStmt{
			Targets: []ast.Expression{&ast.Identifier{Name: "x"}},
			Exprs:   []ast.Expression{&ast.StringLit{Value: "hello"}},
		}
		assign.NodeSpan = sp(2)
		assign.Exprs[0].(*ast.StringLit).NodeSpan = sp(3)
		ann := map[ast.Statement][]annot.Record{
			xLocal: {{Kind: annot.KindType, Type: types.Number}},
		}
		return chunkOf(xLocal, assign), ann
	}

	chunk1, ann1 := build()
	c1 := newChecker(nil)
	r1 := c1.Check(context.Background(), "det.lua", chunk1, ann1)

	chunk2, ann2 := build()
	c2 := newChecker(nil)
	r2 := c2.Check(context.Background(), "det.lua", chunk2, ann2)

	if len(r1.Diagnostics) != len(r2.Diagnostics) {
		t.Fatalf("diagnostic counts differ across runs: %d vs %d", len(r1.Diagnostics), len(r2.Diagnostics))
	}
	for i := range r1.Diagnostics {
		a, b := r1.Diagnostics[i], r2.Diagnostics[i]
		if a.Code != b.Code || a.Span != b.Span || a.Message != b.Message {
			t.Errorf("diagnostic %d differs across reruns: %+v vs %+v", i, a, b)
		}
	}
}

func TestCheckEmptyFileProducesNoDiagnosticsOrTypeInfo(t *testing.T) {
	chunk := chunkOf()
	c := newChecker(nil)
	report := c.Check(context.Background(), "empty.lua", chunk, nil)
	if len(report.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics for an empty file, got %v", report.Diagnostics)
	}
	if len(report.TypeInfos) != 0 {
		t.Errorf("expected no type info for an empty file, got %v", report.TypeInfos)
	}
}
