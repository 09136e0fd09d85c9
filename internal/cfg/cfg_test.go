package cfg

import (
	"context"
	"testing"

	"github.com/pycfg-go/pycfg/internal/parser"
	"github.com/stretchr/testify/require"
)

// parseModule parses Python source into an AST Module node, the same way
// service.ParseCache does for a real file.
func parseModule(t *testing.T, source string) *parser.Node {
	t.Helper()
	p := parser.New()
	result, err := p.Parse(context.Background(), []byte(source))
	require.NoError(t, err, "parse %q", source)

	builder := parser.NewASTBuilder([]byte(source))
	module, err := builder.Build(result.Tree)
	require.NoError(t, err, "build AST for %q", source)
	return module
}

// buildCFG parses source and builds its module-level CFG.
func buildCFG(t *testing.T, source string) *CFG {
	t.Helper()
	module := parseModule(t, source)
	built, err := NewBuilder().Build("<module>", module)
	require.NoError(t, err, "build CFG for %q", source)
	return built
}

// assertWellFormed checks the structural invariants every built CFG must
// hold regardless of what it encodes: edges only ever reference registered
// blocks, predecessor/successor lists agree with the edge set, and every
// block still present is reachable from Start (compaction never leaves an
// unreachable non-start block behind).
func assertWellFormed(t *testing.T, c *CFG) {
	t.Helper()

	for id, block := range c.Blocks {
		require.Equal(t, id, block.ID, "block stored under wrong key")
	}

	for key := range c.Edges {
		_, hasFrom := c.Blocks[key.From]
		_, hasTo := c.Blocks[key.To]
		require.True(t, hasFrom, "edge %v references unregistered from-block", key)
		require.True(t, hasTo, "edge %v references unregistered to-block", key)
	}

	for id, block := range c.Blocks {
		for _, succ := range block.Successors {
			_, ok := c.Edges[EdgeKey{From: id, To: succ}]
			require.True(t, ok, "block %d lists successor %d with no matching edge", id, succ)
		}
		for _, pred := range block.Predecessors {
			_, ok := c.Edges[EdgeKey{From: pred, To: id}]
			require.True(t, ok, "block %d lists predecessor %d with no matching edge", id, pred)
		}
	}

	reachable := c.Reachable()
	for id := range c.Blocks {
		if id == c.Start.ID {
			continue
		}
		if len(c.Blocks[id].Successors) == 0 && len(c.Blocks[id].Predecessors) == 0 {
			// An orphaned terminal empty block left by compact() - fine, it's
			// documented as not spliceable.
			continue
		}
		require.True(t, reachable[id], "block %d is not reachable from Start", id)
	}
}

func TestBuild_EmptyModule(t *testing.T) {
	c := buildCFG(t, "")
	require.NotNil(t, c.Start)
	require.Equal(t, "<module>", c.Name)
	assertWellFormed(t, c)
}

func TestBuild_StraightLineCode(t *testing.T) {
	c := buildCFG(t, `
x = 1
y = 2
print(x + y)
`)
	assertWellFormed(t, c)
	require.GreaterOrEqual(t, c.Size(), 3)
}

func TestBuild_BlockIDsAreProcessUnique(t *testing.T) {
	first := buildCFG(t, "x = 1")
	second := buildCFG(t, "y = 2")

	for id := range second.Blocks {
		_, collides := first.Blocks[id]
		require.False(t, collides, "block id %d reused across separate CFGs built in the same process", id)
	}
}

func TestBuild_NilNode(t *testing.T) {
	_, err := NewBuilder().Build("x", nil)
	require.Error(t, err)
}
