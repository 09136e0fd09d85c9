package cfg

import (
	"fmt"
	"strings"

	"github.com/pycfg-go/pycfg/internal/parser"
)

// toSource renders a small, source-like string for an AST node, used only
// for display (edge guard labels, call-site arg text, DOT rendering) and
// never consulted by the builder's control-flow decisions.
func toSource(n *parser.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case parser.NodeName:
		return n.Name
	case parser.NodeConstant:
		return fmt.Sprintf("%v", n.Value)
	case parser.NodeAttribute:
		return toSource(asNode(n.Value)) + "." + n.Name
	case parser.NodeCall:
		args := make([]string, 0, len(n.Args))
		for _, a := range n.Args {
			args = append(args, toSource(a))
		}
		return toSource(asNode(n.Value)) + "(" + strings.Join(args, ", ") + ")"
	case parser.NodeBinOp:
		return toSource(n.Left) + " " + n.Op + " " + toSource(n.Right)
	case parser.NodeUnaryOp:
		return n.Op + toSource(asNode(n.Value))
	case parser.NodeCompare:
		// Best-effort: comparisons are stored via generic children.
		children := n.GetChildren()
		parts := make([]string, 0, len(children))
		for _, c := range children {
			parts = append(parts, toSource(c))
		}
		return strings.Join(parts, " "+n.Op+" ")
	case parser.NodeBoolOp:
		children := n.GetChildren()
		parts := make([]string, 0, len(children))
		for _, c := range children {
			parts = append(parts, toSource(c))
		}
		sep := " " + n.Op + " "
		if n.Op == "" {
			sep = " and "
		}
		return strings.Join(parts, sep)
	case parser.NodeSubscript:
		return toSource(asNode(n.Value)) + "[...]"
	default:
		if n.Name != "" {
			return n.Name
		}
		return string(n.Type)
	}
}

// asNode type-asserts the generic Value field to *parser.Node, returning
// nil on mismatch. Many Node fields store a *parser.Node in Value, some
// store plain strings (type annotations); this keeps call sites terse.
func asNode(v interface{}) *parser.Node {
	if n, ok := v.(*parser.Node); ok {
		return n
	}
	return nil
}
