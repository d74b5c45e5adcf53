package checker

import (
	"context"
	"sort"

	"github.com/takeshiD/typua/internal/annot"
	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/binder"
	"github.com/takeshiD/typua/internal/config"
	"github.com/takeshiD/typua/internal/diagnostics"
	"github.com/takeshiD/typua/internal/registry"
	"github.com/takeshiD/typua/internal/token"
	"github.com/takeshiD/typua/internal/types"
)

// Checker drives one `check(file)` pass: bind, then walk the block
// tree typing every expression and statement (spec §4.5).
type Checker struct {
	reg  *registry.Registry
	opts config.Options
	sub  types.Options

	file    string
	b       *binder.Binder
	diags   map[string]*diagnostics.DiagnosticError
	infos   []TypeInfo
	byNode  map[ast.Node]types.Type
	hints   []InlayHint
	suppr   *diagnostics.Suppression
	bud     *budget
	nodiscd map[ast.Expression]bool // calls marked @nodiscard; initialised per Check, not read by any check

	lw annot.Lowerer // lowers inline `--[[@as T]]` cast targets (spec §4.1, §4.2)

	overloads map[*binder.Symbol][]types.Function

	currentReturn     *types.Tuple
	currentReturnSpan token.Span
}

// New creates a Checker against a frozen registry and runtime options.
func New(reg *registry.Registry, opts config.Options) *Checker {
	return &Checker{
		reg:  reg,
		opts: opts,
		sub: types.Options{
			CastNumberToInteger: opts.CastNumberToInteger,
			WeakUnionCheck:      opts.WeakUnionCheck,
			WeakNilCheck:        opts.WeakNilCheck,
		},
		lw: annot.Lowerer{Syntax: opts.Syntax},
	}
}

func (c *Checker) lowerer() annot.Lowerer { return c.lw }

// Check type-checks chunk, whose statement-to-annotation mapping is
// ann (as produced by annot.Extractor.Extract, keyed by statement
// identity). ctx governs the cooperative check-budget cancellation of
// spec §5.
func (c *Checker) Check(ctx context.Context, file string, chunk *ast.Chunk, ann map[ast.Statement][]annot.Record) *CheckReport {
	c.file = file
	c.b = binder.New(ann)
	c.diags = map[string]*diagnostics.DiagnosticError{}
	c.byNode = map[ast.Node]types.Type{}
	c.suppr = diagnostics.NewSuppression()
	c.bud = newBudget(ctx, c.opts)
	c.nodiscd = map[ast.Expression]bool{}
	c.overloads = map[*binder.Symbol][]types.Function{}
	c.currentReturn = nil

	root := c.b.BindChunk(chunk)

	env := binder.NewTypeEnvironment()
	c.checkBlock(root, env)

	return c.finish()
}

func (c *Checker) finish() *CheckReport {
	report := &CheckReport{File: c.file, TypeInfos: c.infos, InlayHints: c.hints, byNode: c.byNode}
	for _, d := range c.diags {
		report.Diagnostics = append(report.Diagnostics, d)
	}
	sort.Slice(report.Diagnostics, func(i, j int) bool {
		a, b := report.Diagnostics[i], report.Diagnostics[j]
		if a.Span.Less(b.Span) {
			return true
		}
		if b.Span.Less(a.Span) {
			return false
		}
		return a.Code < b.Code
	})
	return report
}

// addDiag records a diagnostic, deduplicating by "line:col:code" (spec
// §5 "deterministic dedup") and honouring the active suppression stack
// (spec §4.1 "@diagnostic (disable|enable|push|pop)").
func (c *Checker) addDiag(code diagnostics.Code, span token.Span, message string) {
	if c.suppr.Suppressed(code) {
		return
	}
	d := diagnostics.New(code, span, c.file, message)
	c.diags[d.Key()] = d
}

func (c *Checker) addDiagFrom(d *diagnostics.DiagnosticError) {
	if c.suppr.Suppressed(d.Code) {
		return
	}
	c.diags[d.Key()] = d
}

// recordType stores the inferred type of node, the bookkeeping every
// typing rule performs exactly once per node (spec invariant 1).
func (c *Checker) recordType(node ast.Node, t types.Type) types.Type {
	c.infos = append(c.infos, TypeInfo{Node: node, Type: t, Span: node.Span()})
	c.byNode[node] = t
	return t
}

// resolver adapts the registry to types.Resolver (nil registry, for
// tests constructing a Checker without one, resolves nothing).
func (c *Checker) resolver() types.Resolver {
	if c.reg == nil {
		return nil
	}
	return c.reg
}

func (c *Checker) subtype(sub, sup types.Type) bool {
	return types.Subtype(sub, sup, c.sub, c.resolver())
}

// applyDirectives applies any @diagnostic controls attached to stmt to
// the suppression stack, in the order they were written, immediately
// before stmt itself is checked — so suppression state tracks source
// order exactly as the walk proceeds (spec §4.1, §7 "Suppression").
func (c *Checker) applyDirectives(stmt ast.Statement) {
	for _, rec := range c.b.Annotations[stmt] {
		if rec.Kind != annot.KindDiagnostic {
			continue
		}
		switch rec.DiagAction {
		case annot.DiagPush:
			c.suppr.Push()
		case annot.DiagPop:
			c.suppr.Pop()
		case annot.DiagDisable:
			for _, code := range rec.DiagCodes {
				c.suppr.Disable(diagnostics.Code(code))
			}
		case annot.DiagEnable:
			for _, code := range rec.DiagCodes {
				c.suppr.Enable(diagnostics.Code(code))
			}
		}
	}
}
