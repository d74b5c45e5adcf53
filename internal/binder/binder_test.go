package binder

import (
	"testing"

	"github.com/takeshiD/typua/internal/annot"
	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/types"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func chunkOf(stmts ...ast.Statement) *ast.Chunk {
	return &ast.Chunk{Body: &ast.Block{Statements: stmts}}
}

func TestBindLocalDeclaresSymbol(t *testing.T) {
	local := &ast.LocalStmt{Names: []string{"x"}}
	chunk := chunkOf(local)
	b := New(nil)
	info := b.BindChunk(chunk)
	sym, ok := info.Scope.Find("x")
	if !ok {
		t.Fatal("expected x to be declared")
	}
	if sym.Kind != KindLocal {
		t.Errorf("kind = %v, want KindLocal", sym.Kind)
	}
}

func TestBindLocalUsesTypeAnnotation(t *testing.T) {
	local := &ast.LocalStmt{Names: []string{"x"}}
	chunk := chunkOf(local)

	withoutAnnotations := New(nil)
	info := withoutAnnotations.BindChunk(chunk)
	sym, _ := info.Scope.Find("x")
	if sym.DeclaredType != nil {
		t.Errorf("expected no declared type without annotations, got %v", sym.DeclaredType)
	}

	annotations := map[ast.Statement][]annot.Record{
		local: {{Kind: annot.KindType, Type: types.String}},
	}
	withAnnotations := New(annotations)
	info2 := withAnnotations.BindChunk(chunk)
	sym2, _ := info2.Scope.Find("x")
	if !types.Equal(sym2.DeclaredType, types.String) {
		t.Errorf("declared type = %v, want string", sym2.DeclaredType)
	}
}

func TestGlobalFallback(t *testing.T) {
	assign := &ast.AssignStmt{Targets: []ast.Expression{ident("g")}, Exprs: []ast.Expression{&ast.NilLit{}}}
	chunk := chunkOf(assign)
	b := New(nil)
	b.BindChunk(chunk)
	sym, ok := b.Global.FindLocal("g")
	if !ok {
		t.Fatal("expected g to become a global symbol")
	}
	if sym.Kind != KindGlobal {
		t.Errorf("kind = %v, want KindGlobal", sym.Kind)
	}
}

func TestShadowing(t *testing.T) {
	outer := &ast.LocalStmt{Names: []string{"x"}}
	doStmt := &ast.DoStmt{Body: &ast.Block{Statements: []ast.Statement{
		&ast.LocalStmt{Names: []string{"x"}},
	}}}
	chunk := chunkOf(outer, doStmt)
	b := New(nil)
	info := b.BindChunk(chunk)
	outerSym, _ := info.Scope.Find("x")
	innerInfo := info.Branches[0]
	innerSym, _ := innerInfo.Scope.Find("x")
	if outerSym == innerSym {
		t.Fatal("inner local should shadow, not reuse, the outer symbol")
	}
	if _, ok := innerInfo.Scope.FindLocal("x"); !ok {
		t.Fatal("inner scope should declare its own x")
	}
}

func TestNumericForVarIsNumber(t *testing.T) {
	forStmt := &ast.NumericForStmt{
		Var:   "i",
		Start: &ast.NumberLit{IsInt: true, Raw: "1"},
		Stop:  &ast.NumberLit{IsInt: true, Raw: "10"},
		Body:  &ast.Block{},
	}
	chunk := chunkOf(forStmt)
	b := New(nil)
	info := b.BindChunk(chunk)
	loopInfo := info.Branches[0]
	sym, ok := loopInfo.Scope.Find("i")
	if !ok {
		t.Fatal("expected loop variable i")
	}
	if !types.Equal(sym.InferredType, types.Number) {
		t.Errorf("loop var type = %v, want number", sym.InferredType)
	}
	if !loopInfo.IsLoop {
		t.Error("expected loop body block to be marked IsLoop")
	}
}

func TestIfBranchesProduceSiblingBlocks(t *testing.T) {
	ifStmt := &ast.IfStmt{
		Clauses: []ast.IfClause{
			{Condition: ident("cond"), Body: &ast.Block{Statements: []ast.Statement{&ast.LocalStmt{Names: []string{"a"}}}}},
		},
		Else: &ast.Block{Statements: []ast.Statement{&ast.LocalStmt{Names: []string{"b"}}}},
	}
	chunk := chunkOf(ifStmt)
	b := New(nil)
	info := b.BindChunk(chunk)
	if len(info.Branches) != 2 {
		t.Fatalf("expected 2 branch blocks (then + else), got %d", len(info.Branches))
	}
	if _, ok := info.Branches[0].Scope.FindLocal("a"); !ok {
		t.Error("then-branch should declare a")
	}
	if _, ok := info.Branches[1].Scope.FindLocal("b"); !ok {
		t.Error("else-branch should declare b")
	}
}

func TestTypeEnvironmentForkAndJoin(t *testing.T) {
	sym := &Symbol{Name: "x", InferredType: types.Unknown}
	base := NewTypeEnvironment()
	thenEnv := base.Fork().With(sym, types.String)
	elseEnv := base.Fork().With(sym, types.Number)
	joined := Join(base, thenEnv, elseEnv)
	got := joined.Get(sym)
	want := types.Canon(types.Union{Members: []types.Type{types.String, types.Number}})
	if !types.Equal(got, want) {
		t.Errorf("joined type = %v, want %v", got, want)
	}
}

func TestTypeEnvironmentImmutability(t *testing.T) {
	sym := &Symbol{Name: "x", InferredType: types.Unknown}
	base := NewTypeEnvironment()
	narrowed := base.With(sym, types.String)
	if !types.Equal(base.Get(sym), types.Unknown) {
		t.Error("base environment must not be mutated by With")
	}
	if !types.Equal(narrowed.Get(sym), types.String) {
		t.Error("narrowed environment should see the new type")
	}
}

func TestFunctionParamsDeclaredFromAnnotations(t *testing.T) {
	fn := &ast.FunctionExpr{Params: []ast.Param{{Name: "n"}}, Body: &ast.Block{}}
	decl := &ast.LocalFunctionDeclStmt{Name: "f", Fn: fn}
	chunk := chunkOf(decl)
	annotations := map[ast.Statement][]annot.Record{
		decl: {{Kind: annot.KindParam, Name: "n", Type: types.Integer}},
	}
	b := New(annotations)
	info := b.BindChunk(chunk)
	sym, ok := info.Scope.Find("f")
	if !ok {
		t.Fatal("expected f to be declared in the enclosing scope")
	}
	if sym.Kind != KindLocal {
		t.Errorf("kind = %v, want KindLocal", sym.Kind)
	}

	fnInfo, ok := b.Functions[fn]
	if !ok {
		t.Fatal("expected function literal to be recorded in Functions")
	}
	paramSym, ok := fnInfo.Scope.FindLocal("n")
	if !ok {
		t.Fatal("expected param n in the function's own scope")
	}
	if !types.Equal(paramSym.DeclaredType, types.Integer) {
		t.Errorf("param declared type = %v, want integer", paramSym.DeclaredType)
	}
}
