package syntax

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Node is a tree-sitter syntax node
type Node = tree_sitter.Node

// Action tells Walk how to continue after visiting a node
type Action int

const (
	// Continue descends into the node's children
	Continue Action = iota
	// SkipChildren moves on to the next sibling
	SkipChildren
	// Stop ends the whole walk
	Stop
)

// VisitFunc is called for a node and decides how the walk proceeds
type VisitFunc func(n *Node) Action

// Visitor dispatches on node kind. Enter runs for every node (named or not)
// before kind dispatch; Kinds handlers run for named nodes only, since
// anonymous tokens share kind names with named nodes ("class", "function").
type Visitor struct {
	Enter VisitFunc
	Kinds map[string]VisitFunc
}

// Walk traverses the subtree rooted at n depth-first, top-down.
// It returns Stop if a visitor stopped the walk.
func Walk(n *Node, v Visitor) Action {
	if n == nil {
		return Continue
	}

	action := Continue
	if v.Enter != nil {
		action = v.Enter(n)
	}
	if action == Continue && n.IsNamed() {
		if fn, ok := v.Kinds[n.Kind()]; ok {
			action = fn(n)
		}
	}

	switch action {
	case Stop:
		return Stop
	case SkipChildren:
		return Continue
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		if Walk(n.Child(i), v) == Stop {
			return Stop
		}
	}
	return Continue
}

// FindAncestor returns the first node, starting at n itself and moving up,
// that satisfies pred
func FindAncestor(n *Node, pred func(*Node) bool) *Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

// FindParent is FindAncestor starting at n's parent
func FindParent(n *Node, pred func(*Node) bool) *Node {
	if n == nil {
		return nil
	}
	return FindAncestor(n.Parent(), pred)
}

// SameNode reports whether a and b are the same tree node
func SameNode(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Id() == b.Id()
}
