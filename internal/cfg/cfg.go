package cfg

import (
	"fmt"

	"github.com/pycfg-go/pycfg/internal/parser"
)

// EdgeKey identifies a directed edge by its endpoints. At most one edge
// exists between any ordered pair.
type EdgeKey struct {
	From BlockId
	To   BlockId
}

// Param is a function parameter name paired with its default-value
// expression, or a nil Default when the parameter has none.
type Param struct {
	Name    string
	Default *parser.Node
}

// FuncEntry is what a CFG records about a nested function definition: its
// parameter list (with defaults) and the CFG built for its body. It is
// never spliced into the parent graph.
type FuncEntry struct {
	Parameters []Param
	CFG        *CFG
}

// CFG is a built control-flow graph for a module, function, method,
// lambda, or class body.
type CFG struct {
	Name string

	// Start is the initial entry block. It has no predecessors.
	Start *BasicBlock

	// FinalBlocks are blocks ending in a return statement or a failing
	// assert - the terminal exits of this CFG.
	FinalBlocks []*BasicBlock

	// Blocks owns every block reachable or not, keyed by ID.
	Blocks map[BlockId]*BasicBlock

	// Edges maps an ordered block pair to its guard expression, or nil
	// for an unconditional edge.
	Edges map[EdgeKey]*parser.Node

	// Flows mirrors the edge-map key set for consumers that only want the
	// relation, not the guards.
	Flows map[EdgeKey]struct{}

	// FuncCFGs and ClassCFGs hold nested CFGs keyed by declared name,
	// scoped to whatever is directly nested in this CFG (not recursively
	// flattened).
	FuncCFGs  map[string]FuncEntry
	ClassCFGs map[string]*CFG

	// FuncBlocks tags the blocks holding a nested function/method
	// declaration with its name and parameters, for renderers; CallBlocks
	// tags the blocks the nested-call desugaring gave a dedicated
	// return-point block, for the same reason. Both are a subset of
	// Blocks, not a separate storage tier.
	FuncBlocks map[BlockId]*FuncBlock
	CallBlocks map[BlockId]*CallBlock
}

// newCFG allocates an empty CFG with a single start block.
func newCFG(name string) *CFG {
	c := &CFG{
		Name:       name,
		Blocks:     make(map[BlockId]*BasicBlock),
		Edges:      make(map[EdgeKey]*parser.Node),
		Flows:      make(map[EdgeKey]struct{}),
		FuncCFGs:   make(map[string]FuncEntry),
		ClassCFGs:  make(map[string]*CFG),
		FuncBlocks: make(map[BlockId]*FuncBlock),
		CallBlocks: make(map[BlockId]*CallBlock),
	}
	c.Start = c.newBlock()
	return c
}

// newBlock allocates a fresh block, registers it, and returns it.
func (c *CFG) newBlock() *BasicBlock {
	b := newBasicBlock(newBlockID())
	c.Blocks[b.ID] = b
	return b
}

// newFuncBlock allocates a fresh FuncBlock and registers its embedded
// BasicBlock.
func (c *CFG) newFuncBlock(name string, params []string) *FuncBlock {
	fb := &FuncBlock{
		BasicBlock:     *newBasicBlock(newBlockID()),
		Name:           name,
		ParameterNames: params,
	}
	c.Blocks[fb.ID] = &fb.BasicBlock
	c.FuncBlocks[fb.ID] = fb
	return fb
}

// newCallBlock allocates a fresh CallBlock and registers its embedded
// BasicBlock. exitID is filled in by the caller once the return-point
// block exists.
func (c *CFG) newCallBlock(argDisplay string) *CallBlock {
	cb := &CallBlock{
		BasicBlock: *newBasicBlock(newBlockID()),
		ArgDisplay: argDisplay,
	}
	cb.CallID = cb.ID
	c.Blocks[cb.ID] = &cb.BasicBlock
	c.CallBlocks[cb.ID] = cb
	return cb
}

// addEdge links from->to, recording guard (nil for unconditional). Ties
// are left-biased: a second write to an existing (from,to) pair leaves
// the first guard in place.
func (c *CFG) addEdge(from, to *BasicBlock, guard *parser.Node) {
	if from == nil || to == nil {
		return
	}
	key := EdgeKey{From: from.ID, To: to.ID}
	if _, exists := c.Edges[key]; exists {
		return
	}
	from.Successors = append(from.Successors, to.ID)
	to.Predecessors = append(to.Predecessors, from.ID)
	c.Edges[key] = guard
	c.Flows[key] = struct{}{}
}

// removeEdge erases the (from,to) edge and keeps Flows in sync. It does
// not touch the blocks' predecessor/successor slices - callers that need
// that (the compaction pass) rewrite those slices themselves.
func (c *CFG) removeEdge(from, to BlockId) *parser.Node {
	key := EdgeKey{From: from, To: to}
	guard := c.Edges[key]
	delete(c.Edges, key)
	delete(c.Flows, key)
	return guard
}

// addStmt appends stmt to block's statement list.
func (c *CFG) addStmt(block *BasicBlock, stmt *parser.Node) {
	if block == nil || stmt == nil {
		return
	}
	block.Statements = append(block.Statements, stmt)
}

// markFinal records block as a terminal exit (return or failing assert).
func (c *CFG) markFinal(block *BasicBlock) {
	for _, fb := range c.FinalBlocks {
		if fb == block {
			return
		}
	}
	c.FinalBlocks = append(c.FinalBlocks, block)
}

// GetBlock retrieves a block by ID, or nil if it is not part of this CFG.
func (c *CFG) GetBlock(id BlockId) *BasicBlock {
	return c.Blocks[id]
}

// Guard returns the guard expression on edge (from,to), and whether that
// edge exists at all.
func (c *CFG) Guard(from, to BlockId) (*parser.Node, bool) {
	g, ok := c.Edges[EdgeKey{From: from, To: to}]
	return g, ok
}

// Size returns the number of blocks currently tracked, reachable or not.
func (c *CFG) Size() int {
	return len(c.Blocks)
}

func (c *CFG) String() string {
	return fmt.Sprintf("CFG(%s): %d blocks, %d edges", c.Name, len(c.Blocks), len(c.Edges))
}

// Reachable returns the set of block IDs reachable from Start by
// following Successors. Used by the compaction pass and by tests
// checking that every live block stays reachable.
func (c *CFG) Reachable() map[BlockId]bool {
	seen := make(map[BlockId]bool)
	if c.Start == nil {
		return seen
	}
	stack := []BlockId{c.Start.ID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		blk := c.Blocks[id]
		if blk == nil {
			continue
		}
		for _, s := range blk.Successors {
			if !seen[s] {
				stack = append(stack, s)
			}
		}
	}
	return seen
}
