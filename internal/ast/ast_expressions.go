package ast

import "github.com/takeshiD/typua/internal/token"

// Identifier is a bare name reference, resolved by the Binder against
// the lexical scope chain, falling back to a global symbol (§4.4).
type Identifier struct {
	base
	Name string
}

func (*Identifier) expressionNode() {}

// NilLit, BoolLit, NumberLit, StringLit are the literal forms of §4.5
// ("Expression typing"). IsInt distinguishes an Integer literal (no
// decimal point, no exponent) from a Number literal, per the same
// section; Raw preserves the literal's original lexeme for hover text.
type NilLit struct{ base }

func (*NilLit) expressionNode() {}

type BoolLit struct {
	base
	Value bool
}

func (*BoolLit) expressionNode() {}

type NumberLit struct {
	base
	Raw   string
	IsInt bool
}

func (*NumberLit) expressionNode() {}

type StringLit struct {
	base
	Value string
}

func (*StringLit) expressionNode() {}

// VarargExpr is `...` inside a vararg function.
type VarargExpr struct{ base }

func (*VarargExpr) expressionNode() {}

// BinaryExpr covers arithmetic, comparison, equality, concatenation,
// and the logical connectives (§4.5 "Binary operators").
type BinOp string

const (
	OpAdd    BinOp = "+"
	OpSub    BinOp = "-"
	OpMul    BinOp = "*"
	OpDiv    BinOp = "/"
	OpIDiv   BinOp = "//"
	OpMod    BinOp = "%"
	OpPow    BinOp = "^"
	OpConcat BinOp = ".."
	OpEq     BinOp = "=="
	OpNeq    BinOp = "~="
	OpLt     BinOp = "<"
	OpLe     BinOp = "<="
	OpGt     BinOp = ">"
	OpGe     BinOp = ">="
	OpAnd    BinOp = "and"
	OpOr     BinOp = "or"
	OpBAnd   BinOp = "&"
	OpBOr    BinOp = "|"
	OpBXor   BinOp = "~"
	OpShl    BinOp = "<<"
	OpShr    BinOp = ">>"
)

type BinaryExpr struct {
	base
	Op          BinOp
	OpSpan      token.Span
	Left, Right Expression
}

func (*BinaryExpr) expressionNode() {}

type UnOp string

const (
	OpNeg UnOp = "-"
	OpNot UnOp = "not"
	OpLen UnOp = "#"
	OpBNot UnOp = "~"
)

type UnaryExpr struct {
	base
	Op      UnOp
	Operand Expression
}

func (*UnaryExpr) expressionNode() {}

// IndexExpr is `t[k]`.
type IndexExpr struct {
	base
	Target Expression
	Key    Expression
}

func (*IndexExpr) expressionNode() {}

// FieldExpr is `t.name`, sugar for IndexExpr with a string-literal key,
// kept distinct because field names narrow (type guards) and annotate
// (sealed-record checks) differently from computed indices (§4.5).
type FieldExpr struct {
	base
	Target   Expression
	Name     string
	NameSpan token.Span
}

func (*FieldExpr) expressionNode() {}

// CallExpr is `f(a1, a2, ...)`.
type CallExpr struct {
	base
	Callee Expression
	Args   []Expression
}

func (*CallExpr) expressionNode() {}

// MethodCallExpr is `obj:method(a1, ...)`, sugar that passes obj as an
// implicit first argument at call-check time (§4.5 "Calls").
type MethodCallExpr struct {
	base
	Receiver Expression
	Method   string
	MethodSpan token.Span
	Args     []Expression
}

func (*MethodCallExpr) expressionNode() {}

// FunctionExpr is `function(params) body end`, also the payload of
// FunctionDeclStmt/LocalFunctionDeclStmt. Annotations (@param/@return/
// @generic/@overload/@vararg) are attached to the enclosing statement
// by the Annotation Extractor, not stored here.
type Param struct {
	Name string
	NameSpan token.Span
}

type FunctionExpr struct {
	base
	Params   []Param
	HasVararg bool
	Body     *Block
}

func (*FunctionExpr) expressionNode() {}

// TableField is one entry of a TableConstructorExpr: positional
// (Key == nil), named (`name = v`, Key is a synthetic StringLit), or
// computed (`[k] = v`).
type TableField struct {
	Key   Expression // nil for a positional array-style entry
	Value Expression
	FieldSpan token.Span
}

type TableConstructorExpr struct {
	base
	Fields []TableField
}

func (*TableConstructorExpr) expressionNode() {}

// ParenExpr truncates a multi-value expression to its first result,
// per Lua semantics and §4.5 "Multi-return propagation".
type ParenExpr struct {
	base
	Inner Expression
}

func (*ParenExpr) expressionNode() {}

// CastExpr is the inline `--[[@as T]]` annotation attached to the
// expression immediately preceding the comment (§4.1 directive list).
// The parser is expected to fold the trivia into this node directly
// since it sits inside an expression rather than before a statement.
type CastExpr struct {
	base
	Inner Expression
	TypeExpr string
	TypeExprSpan token.Span
}

func (*CastExpr) expressionNode() {}
