// Package taproot implements the Taproot (BIP341) compilation pass: it
// picks an internal key out of a concrete spending policy, decomposes the
// remainder into a probability-weighted Huffman TapTree of compiled
// Miniscripts, and assembles the result into a real scriptPubKey and
// address via btcsuite/btcd/txscript.
package taproot

import "github.com/klingon-exchange/taprootpolicy/miniscript"

// TapTree is a binary tree of compiled Miniscript leaves: a leaf node
// (Leaf set, Left/Right nil) or an internal branch (Left/Right set, Leaf
// nil). A single-leaf tree — the whole tree is one Leaf — arises whenever
// a policy's pruned remainder reduces to exactly one tapscript.
type TapTree[Pk comparable] struct {
	Leaf        miniscript.Node[Pk]
	Left, Right *TapTree[Pk]
}

func leafNode[Pk comparable](n miniscript.Node[Pk]) *TapTree[Pk] {
	return &TapTree[Pk]{Leaf: n}
}

func branchNode[Pk comparable](left, right *TapTree[Pk]) *TapTree[Pk] {
	return &TapTree[Pk]{Left: left, Right: right}
}

// IsLeaf reports whether t is a leaf (as opposed to a branch).
func (t *TapTree[Pk]) IsLeaf() bool {
	return t.Left == nil && t.Right == nil
}

// TapLeaf pairs a tree leaf with its depth from the root, as yielded by
// Leaves.
type TapLeaf[Pk comparable] struct {
	Depth int
	Node  miniscript.Node[Pk]
}

// Leaves returns every leaf of t in left-to-right order together with its
// depth, using an explicit stack rather than recursion so it composes
// with this module's other pull-style walks (see miniscript.NodeIter,
// keyexpr.Leaves).
func (t *TapTree[Pk]) Leaves() []TapLeaf[Pk] {
	if t == nil {
		return nil
	}
	type frame struct {
		node  *TapTree[Pk]
		depth int
	}
	var out []TapLeaf[Pk]
	stack := []frame{{t, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node.IsLeaf() {
			out = append(out, TapLeaf[Pk]{Depth: f.depth, Node: f.node.Leaf})
			continue
		}
		// Push right first so the left child pops (and is visited) first.
		stack = append(stack, frame{f.node.Right, f.depth + 1})
		stack = append(stack, frame{f.node.Left, f.depth + 1})
	}
	return out
}
