package cfg

import (
	"fmt"

	"github.com/pycfg-go/pycfg/internal/parser"
)

// Builder walks an AST and emits a CFG as it goes. It is not safe for
// concurrent use by multiple goroutines on the same instance; build one
// nested CFG per Builder, as Build does recursively for every function,
// method, lambda, and class body it encounters.
type Builder struct {
	cfg     *CFG
	current *BasicBlock

	// loopExitStack holds break targets; topmost is the innermost loop.
	loopExitStack []BlockId
	// loopGuardStack holds continue targets (the loop header/guard block).
	loopGuardStack []BlockId

	// Desugaring context stacks, LIFO, one push/pop pair per
	// comprehension/generator/lambda visit.
	listCompStack []string
	setCompStack  []string
	dictCompStack []string
	genExpStack   []string
	lambdaStack   []string

	ifExpressionActive bool
}

// NewBuilder creates a builder ready for a single Build call.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build constructs a CFG from an AST root. node may be a Module,
// FunctionDef/AsyncFunctionDef, ClassDef, or (for building a single
// nested scope directly) any statement.
func (b *Builder) Build(name string, node *parser.Node) (*CFG, error) {
	if node == nil {
		return nil, fmt.Errorf("cfg: cannot build from nil node")
	}

	b.cfg = newCFG(name)
	b.current = b.cfg.Start

	var body []*parser.Node
	switch node.Type {
	case parser.NodeModule, parser.NodeFunctionDef, parser.NodeAsyncFunctionDef, parser.NodeClassDef:
		body = node.Body
	default:
		body = []*parser.Node{node}
	}

	for _, stmt := range body {
		if err := b.visitStmt(stmt); err != nil {
			return nil, err
		}
	}

	b.cfg.compact()
	return b.cfg, nil
}

// appendAndAdvance is the default lowering for a statement that does not
// affect control flow: record it in the current block, open a fresh
// successor block, link them unconditionally, and make the new block
// current. This is what produces the one-statement-per-block shape for
// straight-line code.
func (b *Builder) appendAndAdvance(stmt *parser.Node) {
	b.cfg.addStmt(b.current, stmt)
	next := b.cfg.newBlock()
	b.cfg.addEdge(b.current, next, nil)
	b.current = next
}

func (b *Builder) visitBody(stmts []*parser.Node) error {
	for _, s := range stmts {
		if err := b.visitStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) visitStmt(stmt *parser.Node) error {
	if stmt == nil {
		return nil
	}

	switch stmt.Type {
	case parser.NodeImport, parser.NodeImportFrom, parser.NodeAugAssign,
		parser.NodePass, parser.NodeGlobal, parser.NodeNonlocal,
		parser.NodeDelete, parser.NodeYield, parser.NodeYieldFrom:
		b.appendAndAdvance(stmt)
		return nil

	case parser.NodeAssign, parser.NodeAnnAssign:
		return b.visitAssign(stmt)

	case parser.NodeExpr:
		return b.visitExprStmt(stmt)

	case parser.NodeIf:
		return b.visitIf(stmt)

	case parser.NodeFor, parser.NodeAsyncFor:
		return b.visitFor(stmt)

	case parser.NodeWhile:
		return b.visitWhile(stmt)

	case parser.NodeBreak:
		return b.visitBreak(stmt)

	case parser.NodeContinue:
		return b.visitContinue(stmt)

	case parser.NodeReturn:
		return b.visitReturn(stmt)

	case parser.NodeRaise:
		b.appendAndAdvance(stmt)
		return nil

	case parser.NodeAssert:
		return b.visitAssert(stmt)

	case parser.NodeFunctionDef, parser.NodeAsyncFunctionDef:
		return b.visitFunctionDef(stmt)

	case parser.NodeClassDef:
		return b.visitClassDef(stmt)

	case parser.NodeTry:
		return b.visitTry(stmt)

	default:
		// Unsupported construct (e.g. With, Match): record it verbatim, still
		// advancing, so downstream consumers at least see it happened.
		// Its nested bodies and sub-expressions are not separately walked.
		b.appendAndAdvance(stmt)
		return nil
	}
}

func (b *Builder) visitIf(stmt *parser.Node) error {
	conditionBlock := b.current
	b.cfg.addStmt(conditionBlock, stmt)

	afterIf := b.cfg.newBlock()
	ifBody := b.cfg.newBlock()
	// The true/false guards are not stored on the edge: the If node kept
	// in conditionBlock.Statements already carries the test.
	b.cfg.addEdge(conditionBlock, ifBody, nil)

	if len(stmt.Orelse) > 0 {
		elseEntry := b.cfg.newBlock()
		b.cfg.addEdge(conditionBlock, elseEntry, nil)
		b.current = elseEntry
		if err := b.visitBody(stmt.Orelse); err != nil {
			return err
		}
		b.cfg.addEdge(b.current, afterIf, nil)
	} else {
		b.cfg.addEdge(conditionBlock, afterIf, nil)
	}

	b.current = ifBody
	if err := b.visitBody(stmt.Body); err != nil {
		return err
	}
	b.cfg.addEdge(b.current, afterIf, nil)

	b.current = afterIf
	return nil
}

func (b *Builder) visitWhile(stmt *parser.Node) error {
	loopGuard := b.current
	// Start is never reused: the loop's back edge would give it a predecessor.
	if loopGuard == b.cfg.Start || !loopGuard.IsEmpty() || len(loopGuard.Successors) > 0 {
		loopGuard = b.cfg.newBlock()
		b.cfg.addEdge(b.current, loopGuard, nil)
	}
	b.cfg.addStmt(loopGuard, stmt)

	b.loopGuardStack = append(b.loopGuardStack, loopGuard.ID)
	afterWhile := b.cfg.newBlock()
	b.loopExitStack = append(b.loopExitStack, afterWhile.ID)

	if len(stmt.Orelse) > 0 {
		orElse := b.cfg.newBlock()
		b.cfg.addEdge(loopGuard, orElse, nil)
		bodyEntry := b.cfg.newBlock()
		b.cfg.addEdge(loopGuard, bodyEntry, nil)

		b.current = bodyEntry
		if err := b.visitBody(stmt.Body); err != nil {
			return err
		}
		b.cfg.addEdge(b.current, loopGuard, nil)

		b.current = orElse
		if err := b.visitBody(stmt.Orelse); err != nil {
			return err
		}
		b.cfg.addEdge(b.current, afterWhile, nil)
	} else {
		b.cfg.addEdge(loopGuard, afterWhile, nil)
		bodyEntry := b.cfg.newBlock()
		b.cfg.addEdge(loopGuard, bodyEntry, nil)

		b.current = bodyEntry
		if err := b.visitBody(stmt.Body); err != nil {
			return err
		}
		b.cfg.addEdge(b.current, loopGuard, nil)
	}

	b.loopGuardStack = b.loopGuardStack[:len(b.loopGuardStack)-1]
	b.loopExitStack = b.loopExitStack[:len(b.loopExitStack)-1]
	b.current = afterWhile
	return nil
}

func (b *Builder) visitFor(stmt *parser.Node) error {
	if isComprehension(stmt.Iter) {
		tmp := newTempName("iter")
		assign := makeAssign(makeName(tmp), stmt.Iter)
		if err := b.visitStmt(assign); err != nil {
			return err
		}
		hoisted := *stmt
		hoisted.Iter = makeName(tmp)
		stmt = &hoisted
	}

	loopGuard := b.cfg.newBlock()
	b.cfg.addEdge(b.current, loopGuard, nil)
	b.cfg.addStmt(loopGuard, stmt)

	b.loopGuardStack = append(b.loopGuardStack, loopGuard.ID)
	afterFor := b.cfg.newBlock()
	b.loopExitStack = append(b.loopExitStack, afterFor.ID)

	bodyEntry := b.cfg.newBlock()
	b.cfg.addEdge(loopGuard, bodyEntry, nil)

	if len(stmt.Orelse) > 0 {
		orElse := b.cfg.newBlock()
		b.cfg.addEdge(loopGuard, orElse, nil)

		b.current = bodyEntry
		if err := b.visitBody(stmt.Body); err != nil {
			return err
		}
		b.cfg.addEdge(b.current, loopGuard, nil)

		b.current = orElse
		if err := b.visitBody(stmt.Orelse); err != nil {
			return err
		}
		b.cfg.addEdge(b.current, afterFor, nil)
	} else {
		b.cfg.addEdge(loopGuard, afterFor, nil)

		b.current = bodyEntry
		if err := b.visitBody(stmt.Body); err != nil {
			return err
		}
		b.cfg.addEdge(b.current, loopGuard, nil)
	}

	b.loopGuardStack = b.loopGuardStack[:len(b.loopGuardStack)-1]
	b.loopExitStack = b.loopExitStack[:len(b.loopExitStack)-1]
	b.current = afterFor
	return nil
}

func (b *Builder) visitBreak(stmt *parser.Node) error {
	if len(b.loopExitStack) == 0 {
		return &StructuralError{Kind: "break"}
	}
	b.cfg.addStmt(b.current, stmt)
	target := b.cfg.GetBlock(b.loopExitStack[len(b.loopExitStack)-1])
	b.cfg.addEdge(b.current, target, nil)
	b.current = b.cfg.newBlock() // unreachable past this point
	return nil
}

func (b *Builder) visitContinue(stmt *parser.Node) error {
	if len(b.loopGuardStack) == 0 {
		return &StructuralError{Kind: "continue"}
	}
	b.cfg.addStmt(b.current, stmt)
	target := b.cfg.GetBlock(b.loopGuardStack[len(b.loopGuardStack)-1])
	b.cfg.addEdge(b.current, target, nil)
	b.current = b.cfg.newBlock() // unreachable past this point
	return nil
}

func (b *Builder) visitReturn(stmt *parser.Node) error {
	if ifexp := asNode(stmt.Value); ifexp != nil && ifexp.Type == parser.NodeIfExp {
		return b.visitReturnIfExp(stmt, ifexp)
	}
	b.cfg.addStmt(b.current, stmt)
	b.cfg.markFinal(b.current)
	b.current = b.cfg.newBlock() // unreachable past a return
	return nil
}

func (b *Builder) visitAssert(stmt *parser.Node) error {
	b.cfg.addStmt(b.current, stmt)
	b.cfg.markFinal(b.current) // failing assert is a terminal exit
	success := b.cfg.newBlock()
	b.cfg.addEdge(b.current, success, stmt.Test)
	b.current = success
	return nil
}

func (b *Builder) visitFunctionDef(stmt *parser.Node) error {
	params := make([]Param, 0, len(stmt.Args))
	names := make([]string, 0, len(stmt.Args))
	for _, a := range stmt.Args {
		params = append(params, Param{Name: a.Name, Default: asNode(a.Value)})
		names = append(names, a.Name)
	}

	funcBlock := b.cfg.newFuncBlock(stmt.Name, names)
	b.cfg.addStmt(&funcBlock.BasicBlock, stmt)
	b.cfg.addEdge(b.current, &funcBlock.BasicBlock, nil)

	nested := NewBuilder()
	nestedCFG, err := nested.Build(stmt.Name, stmt)
	if err != nil {
		return fmt.Errorf("cfg: building nested function %q: %w", stmt.Name, err)
	}
	b.cfg.FuncCFGs[stmt.Name] = FuncEntry{Parameters: params, CFG: nestedCFG}

	next := b.cfg.newBlock()
	b.cfg.addEdge(&funcBlock.BasicBlock, next, nil)
	b.current = next
	return nil
}

func (b *Builder) visitClassDef(stmt *parser.Node) error {
	b.cfg.addStmt(b.current, stmt)

	nested := NewBuilder()
	nestedCFG, err := nested.Build(stmt.Name, stmt)
	if err != nil {
		return fmt.Errorf("cfg: building nested class %q: %w", stmt.Name, err)
	}
	b.cfg.ClassCFGs[stmt.Name] = nestedCFG

	next := b.cfg.newBlock()
	b.cfg.addEdge(b.current, next, nil)
	b.current = next
	return nil
}

// errorSentinel builds a placeholder AST leaf used as a synthetic
// statement marker (e.g. "handle errors", "end except") inside the
// try-construct lowering.
func errorSentinel(text string) *parser.Node {
	n := parser.NewNode(parser.NodeExpr)
	n.Value = &parser.Node{Type: parser.NodeConstant, Value: text}
	return n
}

// exceptionSentinel builds a literal guard placeholder for the try-construct
// edges: "Error" for a handler with no declared exception type, "No Error"
// for the else branch, and "Finally" for the finally branch.
func exceptionSentinel(text string) *parser.Node {
	n := parser.NewNode(parser.NodeConstant)
	n.Value = text
	return n
}

func (b *Builder) visitTry(stmt *parser.Node) error {
	guard := b.cfg.newBlock()
	b.cfg.addEdge(b.current, guard, nil)
	b.cfg.addStmt(guard, stmt)

	afterTry := b.cfg.newBlock()
	b.cfg.addStmt(afterTry, errorSentinel("handle errors"))

	b.current = guard
	if err := b.visitBody(stmt.Body); err != nil {
		return err
	}
	b.cfg.addEdge(b.current, afterTry, nil)

	for _, handler := range stmt.Handlers {
		guardExpr := asNode(handler.Value)
		var handlerGuard *parser.Node
		if guardExpr != nil {
			handlerGuard = guardExpr
		} else {
			handlerGuard = exceptionSentinel("Error")
		}
		handlerEntry := b.cfg.newBlock()
		b.cfg.addEdge(afterTry, handlerEntry, handlerGuard)

		handlerExit := b.cfg.newBlock()
		b.cfg.addStmt(handlerExit, errorSentinel("end except"))

		b.current = handlerEntry
		if err := b.visitBody(handler.Body); err != nil {
			return err
		}
		b.cfg.addEdge(b.current, handlerExit, nil)
		b.cfg.addEdge(handlerExit, afterTry, nil)
	}

	if len(stmt.Orelse) > 0 {
		elseEntry := b.cfg.newBlock()
		b.cfg.addEdge(afterTry, elseEntry, exceptionSentinel("No Error"))

		elseExit := b.cfg.newBlock()
		b.cfg.addStmt(elseExit, errorSentinel("end no error"))

		b.current = elseEntry
		if err := b.visitBody(stmt.Orelse); err != nil {
			return err
		}
		b.cfg.addEdge(b.current, elseExit, nil)
		b.cfg.addEdge(elseExit, afterTry, nil)
	}

	finallyBlock := b.cfg.newBlock()
	if len(stmt.Finalbody) > 0 {
		b.cfg.addEdge(afterTry, finallyBlock, exceptionSentinel("Finally"))
		b.current = finallyBlock
		if err := b.visitBody(stmt.Finalbody); err != nil {
			return err
		}
		afterFinally := b.cfg.newBlock()
		b.cfg.addEdge(b.current, afterFinally, nil)
		b.current = afterFinally
	} else {
		b.cfg.addEdge(afterTry, finallyBlock, nil)
		b.current = finallyBlock
	}

	return nil
}
