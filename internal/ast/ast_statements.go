package ast

import "github.com/takeshiD/typua/internal/token"

// LocalStmt is `local a, b, c = e1, e2`. Names and Exprs are positional;
// an excess name with no matching expression binds to Nil (§4.4).
type LocalStmt struct {
	base
	Names []string
	Attribs []string // Lua 5.4 <const>/<close>, empty string when absent
	Exprs []Expression
}

func (*LocalStmt) statementNode() {}

// AssignStmt is `a, b = e1, e2` for already-bound targets.
type AssignStmt struct {
	base
	Targets []Expression // Identifier, IndexExpr, or FieldExpr
	Exprs   []Expression
}

func (*AssignStmt) statementNode() {}

// CallStmt is a call expression used as a statement.
type CallStmt struct {
	base
	Call Expression // CallExpr or MethodCallExpr
}

func (*CallStmt) statementNode() {}

// DoStmt introduces a bare scope, `do ... end`.
type DoStmt struct {
	base
	Body *Block
}

func (*DoStmt) statementNode() {}

// IfStmt is `if c then b elseif c2 then b2 else b3 end`, modeled as a
// condition/block pair list plus an optional trailing else block, so
// the Binder can fork one TypeEnvironment per clause (§4.5 narrowing).
type IfClause struct {
	Cond token.Span // span of the condition expression, kept for narrowing diagnostics
	Condition Expression
	Body *Block
}

type IfStmt struct {
	base
	Clauses []IfClause
	Else    *Block // nil if no else branch
}

func (*IfStmt) statementNode() {}

// WhileStmt is `while c do b end`.
type WhileStmt struct {
	base
	Condition Expression
	Body      *Block
}

func (*WhileStmt) statementNode() {}

// RepeatStmt is `repeat b until c`; c is scoped inside b per Lua rules.
type RepeatStmt struct {
	base
	Body      *Block
	Condition Expression
}

func (*RepeatStmt) statementNode() {}

// NumericForStmt is `for i = start, stop, step do b end`.
type NumericForStmt struct {
	base
	Var   string
	Start Expression
	Stop  Expression
	Step  Expression // nil if omitted (defaults to 1)
	Body  *Block
}

func (*NumericForStmt) statementNode() {}

// GenericForStmt is `for k, v in iter do b end`.
type GenericForStmt struct {
	base
	Names []string
	Exprs []Expression
	Body  *Block
}

func (*GenericForStmt) statementNode() {}

// FunctionDeclStmt is `function name(...) ... end` or
// `function tbl.name(...)`/`function tbl:name(...)` (method sugar,
// IsMethod adds an implicit leading `self` parameter).
type FunctionDeclStmt struct {
	base
	Name     Expression // Identifier, or FieldExpr for dotted/method names
	IsMethod bool
	Fn       *FunctionExpr
}

func (*FunctionDeclStmt) statementNode() {}

// LocalFunctionDeclStmt is `local function name(...) ... end`; unlike
// LocalStmt the name is in scope inside its own body (for recursion).
type LocalFunctionDeclStmt struct {
	base
	Name string
	Fn   *FunctionExpr
}

func (*LocalFunctionDeclStmt) statementNode() {}

// ReturnStmt returns zero or more expressions; the last, if a call or
// vararg, expands in multi-value context (§4.5 "Multi-return propagation").
type ReturnStmt struct {
	base
	Exprs []Expression
}

func (*ReturnStmt) statementNode() {}

// BreakStmt exits the nearest enclosing loop.
type BreakStmt struct {
	base
}

func (*BreakStmt) statementNode() {}

// GotoStmt and LabelStmt are modeled but not given flow-sensitive
// treatment beyond being ordinary statements; the Binder does not
// synthesize extra control-flow edges for them (out of scope: full
// graph construction, §4.4).
type GotoStmt struct {
	base
	Label string
}

func (*GotoStmt) statementNode() {}

type LabelStmt struct {
	base
	Name string
}

func (*LabelStmt) statementNode() {}
