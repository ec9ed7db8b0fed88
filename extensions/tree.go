package extensions

import (
	"fmt"

	"github.com/m1gwings/treedrawer/tree"

	scoped "github.com/pumped-fn/scoped-go"
)

// RenderTree draws s and its live descendants. Each scope node lists its own
// slots followed by its child scopes.
func RenderTree(s *scoped.Scope) string {
	root := tree.NewTree(tree.NodeString(scopeNodeLabel(s)))

	type frame struct {
		node  *tree.Tree
		scope *scoped.Scope
	}

	// Explicit stack; scope trees can be deeper than is comfortable to recurse
	stack := []frame{{node: root, scope: s}}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, info := range current.scope.Slots() {
			current.node.AddChild(tree.NodeString(slotNodeLabel(info)))
		}
		for _, child := range current.scope.Children() {
			node := current.node.AddChild(tree.NodeString(scopeNodeLabel(child)))
			stack = append(stack, frame{node: node, scope: child})
		}
	}

	return root.String()
}

func scopeNodeLabel(s *scoped.Scope) string {
	id := s.ID()
	if len(id) > 8 {
		id = id[:8]
	}
	label := "scope " + id
	if !s.Mounted() {
		label += " (disposed)"
	}
	return label
}

func slotNodeLabel(info scoped.SlotInfo) string {
	if !info.Built {
		return fmt.Sprintf("#%d %s: (empty)", info.Index, info.Provider)
	}
	return fmt.Sprintf("#%d %s: %v", info.Index, info.Provider, info.Value)
}
