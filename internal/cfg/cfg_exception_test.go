package cfg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuild_TryExcept_HandlerBranchesFromAfterTry(t *testing.T) {
	c := buildCFG(t, `
try:
    risky()
except ValueError:
    handle()
done = 1
`)
	assertWellFormed(t, c)
	require.NotEmpty(t, c.CallBlocks, "risky() and handle() should each get a CallBlock")
}

func TestBuild_TryExcept_MultipleHandlersEachGetOwnGuardedEdge(t *testing.T) {
	c := buildCFG(t, `
try:
    risky()
except ValueError:
    handle_value()
except TypeError:
    handle_type()
`)
	assertWellFormed(t, c)

	var guardedEdges int
	for _, guard := range c.Edges {
		if guard != nil {
			guardedEdges++
		}
	}
	require.GreaterOrEqual(t, guardedEdges, 2, "each except clause should add a guarded edge out of the post-try merge point")
}

func TestBuild_TryExcept_BareExceptUsesSentinelGuard(t *testing.T) {
	c := buildCFG(t, `
try:
    risky()
except:
    handle()
`)
	assertWellFormed(t, c)

	var sawSentinel bool
	for _, guard := range c.Edges {
		if guard != nil && guard.Type == "Constant" && guard.Value == "Error" {
			sawSentinel = true
		}
	}
	require.True(t, sawSentinel, "a bare except clause should guard its edge with the literal Error sentinel")
}

func TestBuild_TryExceptElse_ElseRunsOnlyWithoutException(t *testing.T) {
	c := buildCFG(t, `
try:
    risky()
except ValueError:
    handle()
else:
    commit()
`)
	assertWellFormed(t, c)

	var sawNoErrorGuard bool
	for _, guard := range c.Edges {
		if guard != nil && guard.Value == "No Error" {
			sawNoErrorGuard = true
		}
	}
	require.True(t, sawNoErrorGuard, "the try/else branch must be guarded by the No Error sentinel")
}

func TestBuild_HandlerBody_EndsWithEndExceptSentinel(t *testing.T) {
	c := buildCFG(t, `
try:
    risky()
except ValueError:
    handle()
after = 1
`)
	assertWellFormed(t, c)

	var sawEndExcept bool
	for _, b := range c.Blocks {
		for _, s := range b.Statements {
			inner := asNode(s.Value)
			if inner != nil && inner.Value == "end except" {
				sawEndExcept = true
			}
		}
	}
	require.True(t, sawEndExcept, "a handler body should flow through an end-except sentinel block before rejoining after-try")
}
