package cfg

import (
	"fmt"
	"sort"
	"strings"
)

// RenderDOT renders the graph in the Graphviz DOT language. It is purely a
// display sink and is never consulted while constructing the graph.
func (c *CFG) RenderDOT() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph %q {\n", c.Name)
	sb.WriteString("  node [shape=box, fontname=\"monospace\"];\n")

	ids := make([]BlockId, 0, len(c.Blocks))
	for id := range c.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	final := make(map[BlockId]bool, len(c.FinalBlocks))
	for _, fb := range c.FinalBlocks {
		final[fb.ID] = true
	}

	for _, id := range ids {
		block := c.Blocks[id]
		label := blockLabel(block)
		shape := "box"
		switch {
		case id == c.Start.ID:
			shape = "box, style=bold"
		case final[id]:
			shape = "box, style=filled, fillcolor=lightgray"
		}
		if _, ok := c.FuncBlocks[id]; ok {
			shape = "box, style=dashed"
		}
		if _, ok := c.CallBlocks[id]; ok {
			shape = "box, style=rounded"
		}
		fmt.Fprintf(&sb, "  n%d [label=%q, %s];\n", id, label, shape)
	}

	edgeKeys := make([]EdgeKey, 0, len(c.Edges))
	for k := range c.Edges {
		edgeKeys = append(edgeKeys, k)
	}
	sort.Slice(edgeKeys, func(i, j int) bool {
		if edgeKeys[i].From != edgeKeys[j].From {
			return edgeKeys[i].From < edgeKeys[j].From
		}
		return edgeKeys[i].To < edgeKeys[j].To
	})

	for _, k := range edgeKeys {
		guard := c.Edges[k]
		if guard == nil {
			fmt.Fprintf(&sb, "  n%d -> n%d;\n", k.From, k.To)
		} else {
			fmt.Fprintf(&sb, "  n%d -> n%d [label=%q];\n", k.From, k.To, toSource(guard))
		}
	}

	// Nested CFGs are written as subgraphs: DOT does not allow a digraph
	// inside another one.
	for name, entry := range c.FuncCFGs {
		sb.WriteString("subgraph" + strings.TrimPrefix(entry.CFG.RenderDOT(), "digraph"))
		_ = name
	}
	for _, nested := range c.ClassCFGs {
		sb.WriteString("subgraph" + strings.TrimPrefix(nested.RenderDOT(), "digraph"))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func blockLabel(block *BasicBlock) string {
	if block.IsEmpty() {
		return fmt.Sprintf("bb%d", block.ID)
	}
	return strings.Join(block.StatementLines(), "\\n")
}

// StatementLines renders each recorded statement as a short source-like
// string, in visitation order. Used by DOT labels and by renderers that
// want to show per-block statement text outside the graph itself.
func (b *BasicBlock) StatementLines() []string {
	lines := make([]string, 0, len(b.Statements))
	for _, s := range b.Statements {
		lines = append(lines, toSource(s))
	}
	return lines
}
