package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	exprast "github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	stateffect "github.com/stateffect/stateffect-go"
	"github.com/stateffect/stateffect-go/path"
)

// evaluateExpr evaluates an expr-lang boolean expression whose variables
// are document fields, e.g. `health > 5 && status == "active"`.
//
// Residual detection works on the parsed AST: every identifier and
// member chain the expression references is checked against the
// document first, and evaluation only runs once all of them exist.
// Without this step an absent field would flow into the expression as
// nil and silently compare as false, which is exactly what three-valued
// evaluation forbids.
func evaluateExpr(expression string, doc stateffect.Document) (Outcome, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return Outcome{}, fmt.Errorf("parsing condition expression: %w", err)
	}

	referenced := make(map[string]struct{})
	collectPaths(tree.Node, referenced)

	var missing []string
	for p := range referenced {
		parts := strings.Split(p, ".")
		segments := make([]any, len(parts))
		for i, part := range parts {
			segments[i] = part
		}
		if _, ok := path.GetIn(doc, segments); !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return residual(missing...), nil
	}

	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return Outcome{}, fmt.Errorf("compiling condition expression: %w", err)
	}
	result, err := expr.Run(program, map[string]any(doc))
	if err != nil {
		return Outcome{}, fmt.Errorf("running condition expression: %w", err)
	}
	holds, ok := result.(bool)
	if !ok {
		return Outcome{}, fmt.Errorf("condition expression evaluated to %T, not bool", result)
	}
	if holds {
		return satisfied(), nil
	}
	return conflicted(), nil
}

// collectPaths walks the parsed expression and records every referenced
// variable as a dotted path. Callee identifiers of function calls are
// skipped; they name functions, not document fields.
func collectPaths(node exprast.Node, out map[string]struct{}) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *exprast.IdentifierNode:
		out[n.Value] = struct{}{}
	case *exprast.MemberNode:
		if p, ok := memberPath(n); ok {
			out[p] = struct{}{}
			return
		}
		collectPaths(n.Node, out)
		collectPaths(n.Property, out)
	case *exprast.UnaryNode:
		collectPaths(n.Node, out)
	case *exprast.BinaryNode:
		collectPaths(n.Left, out)
		collectPaths(n.Right, out)
	case *exprast.CallNode:
		if _, plainFn := n.Callee.(*exprast.IdentifierNode); !plainFn {
			collectPaths(n.Callee, out)
		}
		for _, arg := range n.Arguments {
			collectPaths(arg, out)
		}
	case *exprast.BuiltinNode:
		for _, arg := range n.Arguments {
			collectPaths(arg, out)
		}
	case *exprast.ArrayNode:
		for _, item := range n.Nodes {
			collectPaths(item, out)
		}
	case *exprast.MapNode:
		for _, pair := range n.Pairs {
			collectPaths(pair, out)
		}
	case *exprast.PairNode:
		collectPaths(n.Key, out)
		collectPaths(n.Value, out)
	case *exprast.SliceNode:
		collectPaths(n.Node, out)
		collectPaths(n.From, out)
		collectPaths(n.To, out)
	case *exprast.ConditionalNode:
		collectPaths(n.Cond, out)
		collectPaths(n.Exp1, out)
		collectPaths(n.Exp2, out)
	}
}

// memberPath flattens a member chain like health or stats.defense.base
// into a dotted path. Chains with computed segments do not flatten.
func memberPath(n *exprast.MemberNode) (string, bool) {
	prop, ok := n.Property.(*exprast.StringNode)
	if !ok {
		return "", false
	}
	switch base := n.Node.(type) {
	case *exprast.IdentifierNode:
		return base.Value + "." + prop.Value, true
	case *exprast.MemberNode:
		if p, ok := memberPath(base); ok {
			return p + "." + prop.Value, true
		}
	}
	return "", false
}
