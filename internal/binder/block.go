package binder

import "github.com/takeshiD/typua/internal/ast"

// BlockKind distinguishes the control-flow role of a BlockInfo node.
type BlockKind int

const (
	BlockSequential BlockKind = iota // straight-line body: do, function, chunk
	BlockBranch                      // one arm of an if/elseif/else
	BlockLoopBody                    // while/repeat/for body, has a back-edge to itself
)

// BlockInfo is one node of the Binder's block-structured control-flow
// representation (spec §4.4 "Output"): a block-tree enriched with
// edges for conditional branches and loop back-edges, deliberately
// short of a full control-flow graph ("The block-tree suffices for
// this spec; a full graph is not required").
type BlockInfo struct {
	Block    *ast.Block
	Scope    *Scope
	Kind     BlockKind
	Branches []*BlockInfo // child blocks of this block's compound statements (do bodies, if arms, loop bodies), in source order
	Loop     *BlockInfo   // the last loop body among those children, or nil if there is none
	IsLoop   bool         // true if Block is a loop body (back-edge to its own start)
}
