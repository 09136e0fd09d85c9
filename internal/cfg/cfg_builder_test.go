package cfg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuild_SimpleAssignment(t *testing.T) {
	c := buildCFG(t, "x = 1\n")
	assertWellFormed(t, c)

	var found bool
	for _, b := range c.Blocks {
		for _, s := range b.Statements {
			if s.Targets != nil {
				found = true
			}
		}
	}
	require.True(t, found, "expected an Assign statement to be recorded in some block")
}

func TestBuild_CallGetsDedicatedCallBlock(t *testing.T) {
	c := buildCFG(t, "print(x)\n")
	assertWellFormed(t, c)
	require.NotEmpty(t, c.CallBlocks, "expected the bare call statement to produce a CallBlock")

	for _, cb := range c.CallBlocks {
		require.Equal(t, cb.ID, cb.CallID)
		_, ok := c.Blocks[cb.ExitID]
		require.True(t, ok, "CallBlock.ExitID must reference a real block")
	}
}

func TestBuild_NestedCallArgumentIsHoisted(t *testing.T) {
	// f(g(x)) should lower to tmp = g(x); f(tmp), giving two call blocks
	// instead of one, each a single call.
	c := buildCFG(t, "f(g(x))\n")
	assertWellFormed(t, c)
	require.GreaterOrEqual(t, len(c.CallBlocks), 2, "nested call argument should be hoisted into its own call statement")
}

func TestBuild_NonCallNonTrivialArgumentIsHoisted(t *testing.T) {
	// f(g(), x + 1) should hoist both the nested call and the binary
	// expression into their own tmp = ... assignments, so the addition
	// becomes an explicit node rather than staying inline in the call.
	c := buildCFG(t, "f(g(), x + 1)\n")
	assertWellFormed(t, c)

	var sawHoistedBinOp bool
	for _, b := range c.Blocks {
		for _, s := range b.Statements {
			if len(s.Targets) == 0 {
				continue
			}
			val := asNode(s.Value)
			if val != nil && val.Type == "BinOp" {
				sawHoistedBinOp = true
			}
		}
	}
	require.True(t, sawHoistedBinOp, "a non-trivial, non-call argument should still be hoisted to tmp = arg")
}

func TestBuild_Return_MarksFinalBlock(t *testing.T) {
	c := buildCFG(t, `
def f():
    return 1
`)
	fn, ok := c.FuncCFGs["f"]
	require.True(t, ok)
	assertWellFormed(t, fn.CFG)
	require.NotEmpty(t, fn.CFG.FinalBlocks, "a function ending in return must record a final block")
}

func TestBuild_Assert_MarksFinalAndGuardsSuccess(t *testing.T) {
	c := buildCFG(t, "assert x > 0\n")
	assertWellFormed(t, c)
	require.NotEmpty(t, c.FinalBlocks, "a failing assert is a terminal exit")

	var guarded bool
	for key, guard := range c.Edges {
		if guard != nil && key.From == c.FinalBlocks[0].ID {
			guarded = true
		}
	}
	require.True(t, guarded, "the success edge out of an assert must carry the test as its guard")
}

func TestBuild_NestedFunctionDef_GetsOwnCFGAndFuncBlock(t *testing.T) {
	c := buildCFG(t, `
def outer(a, b):
    return a + b
`)
	require.Len(t, c.FuncBlocks, 1)
	entry, ok := c.FuncCFGs["outer"]
	require.True(t, ok)
	require.Equal(t, []Param{{Name: "a"}, {Name: "b"}}, entry.Parameters)
	assertWellFormed(t, entry.CFG)

	for _, fb := range c.FuncBlocks {
		require.Equal(t, "outer", fb.Name)
		require.Equal(t, []string{"a", "b"}, fb.ParameterNames)
	}
}

func TestBuild_ClassDef_GetsOwnCFG(t *testing.T) {
	c := buildCFG(t, `
class C:
    def method(self):
        return self
`)
	classCFG, ok := c.ClassCFGs["C"]
	require.True(t, ok)
	assertWellFormed(t, classCFG)

	_, hasMethod := classCFG.FuncCFGs["method"]
	require.True(t, hasMethod, "a method defined in a class body should be a nested FuncCFG on the class's own CFG")
}

func TestBuild_BlockIDCounterNeverResetsAcrossNesting(t *testing.T) {
	c := buildCFG(t, `
def outer():
    def inner():
        return 1
    return inner
`)
	outerIDs := map[BlockId]bool{}
	for id := range c.Blocks {
		outerIDs[id] = true
	}
	inner := c.FuncCFGs["outer"].CFG.FuncCFGs["inner"].CFG
	for id := range inner.Blocks {
		require.False(t, outerIDs[id], "nested CFG reused a block id from its enclosing CFG")
	}
}
