package cfg

import "github.com/pycfg-go/pycfg/internal/parser"

// compact implements empty-block elimination: a post-order walk
// from Start, erasing every reachable block with no statements by wiring
// its predecessors directly to its successors and ANDing the guards
// along the way. It is idempotent and guard-merge is associative because
// each block is visited and spliced out at most once, in a fixed
// post-order, regardless of how many times the pass runs or which empty
// block among several is processed first. Blocks that are not reachable
// from Start (scaffolding left past a break, continue, or return) first
// lose their outgoing edges, so they stay behind only as edge-less orphans.
func (c *CFG) compact() {
	reachable := c.Reachable()
	for id, block := range c.Blocks {
		if reachable[id] {
			continue
		}
		for _, s := range dedupeIDs(block.Successors) {
			c.removeEdge(id, s)
			if succ := c.Blocks[s]; succ != nil {
				removeID(&succ.Predecessors, id)
			}
		}
		block.Successors = nil
	}

	visited := make(map[BlockId]bool)
	order := make([]BlockId, 0, len(c.Blocks))
	c.postOrder(c.Start.ID, visited, &order)

	for _, id := range order {
		block := c.Blocks[id]
		if block == nil || block.ID == c.Start.ID {
			continue
		}
		if !block.IsEmpty() {
			continue
		}
		if len(block.Successors) == 0 {
			// Terminal empty block (e.g. past an unconditional break): not
			// spliceable, so it is left in place as an orphan.
			continue
		}
		c.spliceOut(block)
	}
}

func (c *CFG) postOrder(id BlockId, visited map[BlockId]bool, order *[]BlockId) {
	if visited[id] {
		return
	}
	visited[id] = true
	block := c.Blocks[id]
	if block == nil {
		return
	}
	for _, succ := range block.Successors {
		c.postOrder(succ, visited, order)
	}
	*order = append(*order, id)
}

// spliceOut removes an empty block, reconnecting each of its
// predecessors to each of its successors with the AND of the two edges'
// guards flanking the removed block.
func (c *CFG) spliceOut(block *BasicBlock) {
	preds := dedupeIDs(block.Predecessors)
	succs := dedupeIDs(block.Successors)

	for _, p := range preds {
		inGuard := c.removeEdge(p, block.ID)
		removeID(&c.Blocks[p].Successors, block.ID)

		for _, s := range succs {
			outGuard, ok := c.Guard(block.ID, s)
			if !ok {
				continue
			}
			merged := andGuards(inGuard, outGuard)
			c.addEdge(c.Blocks[p], c.Blocks[s], merged)
		}
	}

	for _, s := range succs {
		c.removeEdge(block.ID, s)
		removeID(&c.Blocks[s].Predecessors, block.ID)
	}

	// A call's return point that is spliced out moves on to the block
	// control reaches next.
	for _, cb := range c.CallBlocks {
		if cb.ExitID == block.ID && len(succs) == 1 {
			cb.ExitID = succs[0]
		}
	}

	delete(c.Blocks, block.ID)
	delete(c.FuncBlocks, block.ID)
	delete(c.CallBlocks, block.ID)
}

// andGuards conjoins two optional guards; either side being none leaves
// the other as the surviving guard.
func andGuards(a, b *parser.Node) *parser.Node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	n := parser.NewNode(parser.NodeBoolOp)
	n.Op = "and"
	n.AddChild(a)
	n.AddChild(b)
	return n
}

func dedupeIDs(ids []BlockId) []BlockId {
	seen := make(map[BlockId]bool, len(ids))
	out := make([]BlockId, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func removeID(ids *[]BlockId, target BlockId) {
	out := (*ids)[:0]
	for _, id := range *ids {
		if id != target {
			out = append(out, id)
		}
	}
	*ids = out
}
