package cfg

import (
	"fmt"

	"github.com/pycfg-go/pycfg/internal/parser"
)

// BasicBlock is a maximal run of statements with a single entry and a
// single logical exit. Predecessor and successor lists are ordered and,
// once the empty-block elimination pass has run, free of duplicates.
type BasicBlock struct {
	ID BlockId

	// Statements holds the AST nodes recorded in this block, in the order
	// they were visited. May be empty for scaffolding blocks (loop
	// headers before their statement is attached, merge points, etc.).
	Statements []*parser.Node

	Predecessors []BlockId
	Successors   []BlockId

	// Calls holds display strings for call sites inside this block, used
	// only by renderers; analyses should not depend on its contents.
	Calls []string
}

func newBasicBlock(id BlockId) *BasicBlock {
	return &BasicBlock{ID: id}
}

// IsEmpty reports whether the block has no recorded statements.
func (b *BasicBlock) IsEmpty() bool {
	return len(b.Statements) == 0
}

func (b *BasicBlock) String() string {
	return fmt.Sprintf("bb%d(%d stmts)", b.ID, len(b.Statements))
}

// FuncBlock marks a block whose sole job is to record that a nested
// function was declared at this point in the enclosing CFG.
type FuncBlock struct {
	BasicBlock
	Name           string
	ParameterNames []string
}

// CallBlock marks a call site that has been given a dedicated
// return-point block by the nested-call desugaring (see desugar.go). The
// call itself happens in CallID's block; ExitID is where control resumes
// once the call returns.
type CallBlock struct {
	BasicBlock
	ArgDisplay string
	CallID     BlockId
	ExitID     BlockId
}
