package cfg

import "github.com/pycfg-go/pycfg/internal/parser"

// This file rewrites comprehensions, generator expressions, conditional
// expressions, lambdas, and nested calls into equivalent statement
// sequences before the ordinary statement visitors in builder.go ever see
// them, so every side-effecting evaluation ends up as an explicit node in
// some block.

func isComprehension(n *parser.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type {
	case parser.NodeListComp, parser.NodeSetComp, parser.NodeDictComp, parser.NodeGeneratorExp:
		return true
	default:
		return false
	}
}

func makeName(name string) *parser.Node {
	n := parser.NewNode(parser.NodeName)
	n.Name = name
	return n
}

func makeAssign(target, value *parser.Node) *parser.Node {
	n := parser.NewNode(parser.NodeAssign)
	n.Targets = []*parser.Node{target}
	n.Value = value
	return n
}

// nameHint extracts a readable fragment from a target expression to seed
// a generated temporary/generator/lambda name; falls back to a generic
// hint when the target isn't a plain Name.
func nameHint(target *parser.Node) string {
	if target != nil && target.Type == parser.NodeName && target.Name != "" {
		return target.Name
	}
	return "val"
}

func emptyLiteral(compKind parser.NodeType) *parser.Node {
	if compKind == parser.NodeDictComp {
		return parser.NewNode(parser.NodeDict)
	}
	return parser.NewNode(parser.NodeList) // ListComp
}

func emptySetLiteral() *parser.Node {
	call := parser.NewNode(parser.NodeCall)
	call.Value = makeName("set")
	return call
}

// compClauses reads the NodeComprehension clauses attached as generic
// Children by the parser's comprehension builder (ListComp / SetComp /
// DictComp / GeneratorExp).
func compClauses(comp *parser.Node) []*parser.Node {
	var clauses []*parser.Node
	for _, c := range comp.Children {
		if c != nil && c.Type == parser.NodeComprehension {
			clauses = append(clauses, c)
		}
	}
	return clauses
}

// buildForTree nests the comprehension's for/if clauses right-to-left so
// that `[e for a in A for b in B if p]` becomes, innermost first,
// `for a in A: for b in B: if p: <innermost>`. When a single for-clause
// carries more than one if-clause, the parser has already folded them into
// one BoolOp "and" node on Test, so this just reads Test as a single
// condition.
func buildForTree(clauses []*parser.Node, idx int, innermost *parser.Node) *parser.Node {
	if idx >= len(clauses) {
		return innermost
	}
	clause := clauses[idx]
	body := buildForTree(clauses, idx+1, innermost)
	if clause.Test != nil {
		ifNode := parser.NewNode(parser.NodeIf)
		ifNode.Test = clause.Test
		ifNode.Body = []*parser.Node{body}
		body = ifNode
	}
	forNode := parser.NewNode(parser.NodeFor)
	if len(clause.Targets) > 0 {
		forNode.Targets = clause.Targets
	}
	forNode.Iter = clause.Iter
	forNode.Body = []*parser.Node{body}
	return forNode
}

// accumulateStmt builds the innermost statement of a comprehension's
// lowered for-tree: append/add/subscript-assign into the accumulator
// named by tmpName, or a bare expression statement when stack is empty
// (malformed comprehension - discard and continue with a side-effect-only
// statement).
func accumulateStmt(compKind parser.NodeType, tmpName string, comp *parser.Node) *parser.Node {
	if tmpName == "" {
		return bareExprStmt(comp)
	}
	switch compKind {
	case parser.NodeListComp:
		return callMethodStmt(tmpName, "append", asNode(comp.Value))
	case parser.NodeSetComp:
		return callMethodStmt(tmpName, "add", asNode(comp.Value))
	case parser.NodeDictComp:
		pair := asNode(comp.Value)
		var key, val *parser.Node
		if pair != nil {
			kv := pair.GetChildren()
			if len(kv) > 0 {
				key = kv[0]
			}
			if len(kv) > 1 {
				val = kv[1]
			}
		}
		sub := parser.NewNode(parser.NodeSubscript)
		sub.Value = makeName(tmpName)
		if key != nil {
			sub.AddChild(key)
		}
		return makeAssign(sub, val)
	default:
		return bareExprStmt(asNode(comp.Value))
	}
}

func bareExprStmt(expr *parser.Node) *parser.Node {
	n := parser.NewNode(parser.NodeExpr)
	n.Value = expr
	return n
}

func callMethodStmt(recv, method string, arg *parser.Node) *parser.Node {
	attr := parser.NewNode(parser.NodeAttribute)
	attr.Value = makeName(recv)
	attr.Name = method
	call := parser.NewNode(parser.NodeCall)
	call.Value = attr
	if arg != nil {
		call.Args = []*parser.Node{arg}
	}
	return bareExprStmt(call)
}

// lowerComprehensionAssign lowers an assignment whose value is a
// list/set/dict comprehension: tmp = <empty>; for-tree writing into
// tmp; target = tmp.
func (b *Builder) lowerComprehensionAssign(stmt *parser.Node, comp *parser.Node) error {
	if len(stmt.Targets) == 0 {
		return nil
	}
	target := stmt.Targets[0]
	tmp := newTempName(nameHint(target))

	switch comp.Type {
	case parser.NodeListComp:
		b.listCompStack = append(b.listCompStack, tmp)
	case parser.NodeSetComp:
		b.setCompStack = append(b.setCompStack, tmp)
	case parser.NodeDictComp:
		b.dictCompStack = append(b.dictCompStack, tmp)
	}

	var lit *parser.Node
	if comp.Type == parser.NodeSetComp {
		lit = emptySetLiteral()
	} else {
		lit = emptyLiteral(comp.Type)
	}
	if err := b.visitStmt(makeAssign(makeName(tmp), lit)); err != nil {
		return err
	}

	body := accumulateStmt(comp.Type, tmp, comp)
	forTree := buildForTree(compClauses(comp), 0, body)
	if err := b.visitStmt(forTree); err != nil {
		return err
	}

	switch comp.Type {
	case parser.NodeListComp:
		b.listCompStack = popStack(b.listCompStack)
	case parser.NodeSetComp:
		b.setCompStack = popStack(b.setCompStack)
	case parser.NodeDictComp:
		b.dictCompStack = popStack(b.dictCompStack)
	}

	return b.visitStmt(makeAssign(target, makeName(tmp)))
}

// lowerComprehensionSideEffect handles a comprehension used purely for
// its side effects (an expression statement, no accumulator in scope).
func (b *Builder) lowerComprehensionSideEffect(comp *parser.Node) error {
	body := bareExprStmt(asNode(comp.Value))
	forTree := buildForTree(compClauses(comp), 0, body)
	return b.visitStmt(forTree)
}

// lowerGeneratorAssign lowers a generator-expression assignment to a
// synthetic function definition yielding the elements, then
// target = gen_name().
func (b *Builder) lowerGeneratorAssign(stmt *parser.Node, genexp *parser.Node) error {
	var target *parser.Node
	if len(stmt.Targets) > 0 {
		target = stmt.Targets[0]
	}
	genName := newGeneratorName(nameHint(target))
	b.genExpStack = append(b.genExpStack, genName)

	yieldStmt := parser.NewNode(parser.NodeYield)
	yieldStmt.Value = asNode(genexp.Value)
	forTree := buildForTree(compClauses(genexp), 0, yieldStmt)

	funcDef := parser.NewNode(parser.NodeFunctionDef)
	funcDef.Name = genName
	funcDef.Body = []*parser.Node{forTree}
	if err := b.visitStmt(funcDef); err != nil {
		return err
	}

	b.genExpStack = popStack(b.genExpStack)

	if target == nil {
		return nil
	}
	call := parser.NewNode(parser.NodeCall)
	call.Value = makeName(genName)
	return b.visitStmt(makeAssign(target, call))
}

// lowerLambdaAssign lifts a lambda to a synthesized function definition
// named after the lambda-stack accumulator (here, the assignment's own
// target name).
func (b *Builder) lowerLambdaAssign(stmt *parser.Node, lambda *parser.Node) error {
	if len(stmt.Targets) == 0 {
		return nil
	}
	target := stmt.Targets[0]
	name := nameHint(target)
	b.lambdaStack = append(b.lambdaStack, name)
	defer func() { b.lambdaStack = popStack(b.lambdaStack) }()

	funcDef := parser.NewNode(parser.NodeFunctionDef)
	funcDef.Name = name
	funcDef.Args = lambda.Args
	var bodyExpr *parser.Node
	if len(lambda.Body) > 0 {
		bodyExpr = lambda.Body[0]
	}
	ret := parser.NewNode(parser.NodeReturn)
	ret.Value = bodyExpr
	funcDef.Body = []*parser.Node{ret}

	return b.visitStmt(funcDef)
}

// isTrivialArg reports whether an argument expression is simple enough to
// leave inline rather than hoist to a temporary - a bare name or numeric
// literal, mirroring the original compiler's ast.Name/ast.Num exemption.
func isTrivialArg(n *parser.Node) bool {
	if n == nil {
		return true
	}
	switch n.Type {
	case parser.NodeName:
		return true
	case parser.NodeConstant:
		switch n.Value.(type) {
		case int64, float64:
			return true
		}
	}
	return false
}

// lowerCallArgs implements call-argument lowering, shared by assignment
// and expression-statement visitors: every non-trivial argument (anything
// but a bare name or numeric literal - calls, binary/bool ops, attribute
// and subscript accesses, literals, and the rest) becomes `tmp = arg`,
// visited recursively so nested calls and compound expressions unwind one
// level per pass and every side-effecting evaluation ends up as its own
// node.
func (b *Builder) lowerCallArgs(call *parser.Node) (*parser.Node, error) {
	hasNonTrivial := false
	for _, a := range call.Args {
		if !isTrivialArg(a) {
			hasNonTrivial = true
			break
		}
	}
	if !hasNonTrivial {
		return call, nil
	}

	newArgs := make([]*parser.Node, len(call.Args))
	for i, a := range call.Args {
		if !isTrivialArg(a) {
			tmp := newTempName("arg")
			if err := b.visitStmt(makeAssign(makeName(tmp), a)); err != nil {
				return nil, err
			}
			newArgs[i] = makeName(tmp)
		} else {
			newArgs[i] = a
		}
	}
	rewritten := *call
	rewritten.Args = newArgs
	return &rewritten, nil
}

// appendCallAndAdvance is appendAndAdvance's counterpart for a statement
// whose whole job is a call: it gets a CallBlock instead of a plain
// BasicBlock, so renderers can show the call's argument text and find
// its return point without re-parsing the statement.
func (b *Builder) appendCallAndAdvance(stmt *parser.Node, call *parser.Node) {
	callBlock := b.cfg.newCallBlock(toSource(call))
	b.cfg.addStmt(&callBlock.BasicBlock, stmt)
	b.cfg.addEdge(b.current, &callBlock.BasicBlock, nil)

	next := b.cfg.newBlock()
	b.cfg.addEdge(&callBlock.BasicBlock, next, nil)
	callBlock.ExitID = next.ID
	b.current = next
}

func popStack(s []string) []string {
	if len(s) == 0 {
		return s
	}
	return s[:len(s)-1]
}

// visitAssign handles every form of assignment statement.
func (b *Builder) visitAssign(stmt *parser.Node) error {
	value := asNode(stmt.Value)
	if value == nil {
		b.appendAndAdvance(stmt)
		return nil
	}

	switch value.Type {
	case parser.NodeListComp, parser.NodeSetComp, parser.NodeDictComp:
		return b.lowerComprehensionAssign(stmt, value)
	case parser.NodeGeneratorExp:
		return b.lowerGeneratorAssign(stmt, value)
	case parser.NodeLambda:
		return b.lowerLambdaAssign(stmt, value)
	case parser.NodeCall:
		rewritten, err := b.lowerCallArgs(value)
		if err != nil {
			return err
		}
		out := *stmt
		out.Value = rewritten
		b.appendCallAndAdvance(&out, rewritten)
		return nil
	default:
		b.appendAndAdvance(stmt)
		return nil
	}
}

// visitExprStmt recurses to trigger call/comprehension lowering,
// recording the bare expression only when nothing else already recorded
// it.
func (b *Builder) visitExprStmt(stmt *parser.Node) error {
	inner := asNode(stmt.Value)
	if inner == nil {
		b.appendAndAdvance(stmt)
		return nil
	}

	switch inner.Type {
	case parser.NodeCall:
		rewritten, err := b.lowerCallArgs(inner)
		if err != nil {
			return err
		}
		out := *stmt
		out.Value = rewritten
		b.appendCallAndAdvance(&out, rewritten)
		return nil
	case parser.NodeListComp, parser.NodeSetComp, parser.NodeDictComp:
		return b.lowerComprehensionSideEffect(inner)
	case parser.NodeGeneratorExp:
		throwaway := makeName(newTempName("gen_target"))
		return b.lowerGeneratorAssign(&parser.Node{Type: parser.NodeAssign, Targets: []*parser.Node{throwaway}}, inner)
	default:
		b.appendAndAdvance(stmt)
		return nil
	}
}

// visitReturnIfExp rewrites a conditional expression in a return to
// `if test: return body else: return orelse`, recursing when orelse is
// itself conditional.
func (b *Builder) visitReturnIfExp(stmt *parser.Node, ifexp *parser.Node) error {
	b.ifExpressionActive = true
	defer func() { b.ifExpressionActive = false }()

	var thenExpr, elseExpr *parser.Node
	if len(ifexp.Body) > 0 {
		thenExpr = ifexp.Body[0]
	}
	if len(ifexp.Orelse) > 0 {
		elseExpr = ifexp.Orelse[0]
	}

	thenReturn := parser.NewNode(parser.NodeReturn)
	thenReturn.Value = thenExpr
	elseReturn := parser.NewNode(parser.NodeReturn)
	elseReturn.Value = elseExpr

	ifNode := parser.NewNode(parser.NodeIf)
	ifNode.Test = ifexp.Test
	ifNode.Body = []*parser.Node{thenReturn}
	ifNode.Orelse = []*parser.Node{elseReturn}

	return b.visitIf(ifNode)
}
