package apex

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// WalkState is the contextual accumulator threaded through a traversal: the
// current loop nesting depth and the name of the enclosing method. It is a
// value type, so every branch of the recursion carries its own copy and no
// state leaks across sibling subtrees or across scans.
type WalkState struct {
	LoopDepth  int
	MethodName string
}

// Walk performs a depth-first traversal of the parsed tree, invoking fn for
// every named node together with the walk state valid at that node. Loop
// depth increments only for loop bodies: a query in a for-each header runs
// once and is not loop-nested.
func (f *File) Walk(fn func(node *sitter.Node, state WalkState)) {
	f.walk(f.Root, WalkState{}, fn)
}

func (f *File) walk(node *sitter.Node, state WalkState, fn func(node *sitter.Node, state WalkState)) {
	switch node.Type() {
	case "method_declaration", "constructor_declaration":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			state.MethodName = nameNode.Content(f.masked)
		}
	}

	fn(node, state)

	var loopBody *sitter.Node
	switch node.Type() {
	case "for_statement", "enhanced_for_statement", "while_statement", "do_statement":
		loopBody = node.ChildByFieldName("body")
	}

	for i := uint32(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(int(i))
		childState := state
		if loopBody != nil && child.StartByte() == loopBody.StartByte() && child.EndByte() == loopBody.EndByte() {
			childState.LoopDepth++
		}
		f.walk(child, childState, fn)
	}
}

// NodeContent returns the masked-source text of a node. Outside query
// literals the masked text is byte-identical to the original source.
func (f *File) NodeContent(node *sitter.Node) string {
	return node.Content(f.masked)
}
