package miniscript

import "github.com/klingon-exchange/taprootpolicy/keyexpr"

// NodeIter walks a Node[Pk] tree depth-first, left to right, yielding
// each node as it is first reached (preorder). It holds an explicit
// stack of (children, next-index) frames rather than recursing, so a
// caller can abandon the walk early without unwinding call frames — the
// same pull style keyexpr.leafIter uses for KeyExpr trees.
type NodeIter[Pk comparable] struct {
	stack []nodeFrame[Pk]
	next  Node[Pk]
}

type nodeFrame[Pk comparable] struct {
	children []Node[Pk]
	idx      int
}

// NewNodeIter starts a preorder walk rooted at root.
func NewNodeIter[Pk comparable](root Node[Pk]) *NodeIter[Pk] {
	return &NodeIter[Pk]{next: root}
}

// Next returns the next node in preorder, or (nil, false) once the walk
// is exhausted.
func (it *NodeIter[Pk]) Next() (Node[Pk], bool) {
	for {
		if it.next == nil {
			if len(it.stack) == 0 {
				return nil, false
			}
			frame := &it.stack[len(it.stack)-1]
			if frame.idx >= len(frame.children) {
				it.stack = it.stack[:len(it.stack)-1]
				continue
			}
			it.next = frame.children[frame.idx]
			frame.idx++
			continue
		}

		n := it.next
		it.next = nil
		if children := Branches(n); len(children) > 0 {
			it.stack = append(it.stack, nodeFrame[Pk]{children: children})
		}
		return n, true
	}
}

// keyOrHashEmit is one item produced by a leaf node: either a known key,
// a hash commitment, or (for PkH) both, in that order.
type keyOrHashEmit[Pk comparable] struct {
	pk     Pk
	hash   [20]byte
	isHash bool
}

func emitKeys[Pk comparable](n Node[Pk]) []keyOrHashEmit[Pk] {
	switch v := n.(type) {
	case PkK[Pk]:
		return []keyOrHashEmit[Pk]{{pk: v.Key}}
	case PkH[Pk]:
		return []keyOrHashEmit[Pk]{{pk: v.Key}, {hash: v.Hash, isHash: true}}
	case RawPkH[Pk]:
		return []keyOrHashEmit[Pk]{{hash: v.Hash, isHash: true}}
	case Multi[Pk]:
		out := make([]keyOrHashEmit[Pk], len(v.Keys))
		for i, k := range v.Keys {
			out[i] = keyOrHashEmit[Pk]{pk: k}
		}
		return out
	case MultiA[Pk]:
		out := make([]keyOrHashEmit[Pk], len(v.Keys))
		for i, k := range v.Keys {
			out[i] = keyOrHashEmit[Pk]{pk: k}
		}
		return out
	default:
		return nil
	}
}

// baseKeyIter is the one stepping routine shared by PkIter, PkhIter, and
// PkPkhIter below: it walks the node tree and flattens each leaf's
// emitted (key, hash) pairs into a single pending queue, so the three
// public iterators differ only in which items from that queue they pass
// through.
type baseKeyIter[Pk comparable] struct {
	nodes      *NodeIter[Pk]
	pending    []keyOrHashEmit[Pk]
	pendingIdx int
}

func newBaseKeyIter[Pk comparable](root Node[Pk]) *baseKeyIter[Pk] {
	return &baseKeyIter[Pk]{nodes: NewNodeIter(root)}
}

func (it *baseKeyIter[Pk]) next() (keyOrHashEmit[Pk], bool) {
	for {
		if it.pendingIdx < len(it.pending) {
			v := it.pending[it.pendingIdx]
			it.pendingIdx++
			return v, true
		}
		node, ok := it.nodes.Next()
		if !ok {
			return keyOrHashEmit[Pk]{}, false
		}
		it.pending = emitKeys(node)
		it.pendingIdx = 0
	}
}

// PkIter yields every known key, skipping hash-only commitments.
type PkIter[Pk comparable] struct{ base *baseKeyIter[Pk] }

// NewPkIter starts a PkIter rooted at root.
func NewPkIter[Pk comparable](root Node[Pk]) *PkIter[Pk] {
	return &PkIter[Pk]{base: newBaseKeyIter(root)}
}

// Next returns the next known key, or (zero, false) once exhausted.
func (it *PkIter[Pk]) Next() (Pk, bool) {
	for {
		v, ok := it.base.next()
		if !ok {
			var zero Pk
			return zero, false
		}
		if !v.isHash {
			return v.pk, true
		}
	}
}

// PkhIter yields every hash commitment, whether or not the underlying
// key is known.
type PkhIter[Pk comparable] struct{ base *baseKeyIter[Pk] }

// NewPkhIter starts a PkhIter rooted at root.
func NewPkhIter[Pk comparable](root Node[Pk]) *PkhIter[Pk] {
	return &PkhIter[Pk]{base: newBaseKeyIter(root)}
}

// Next returns the next hash commitment, or (zero, false) once exhausted.
func (it *PkhIter[Pk]) Next() ([20]byte, bool) {
	for {
		v, ok := it.base.next()
		if !ok {
			return [20]byte{}, false
		}
		if v.isHash {
			return v.hash, true
		}
	}
}

// KeyOrHash is one item from a PkPkhIter: either a known key or a hash
// commitment, tagged by IsHash.
type KeyOrHash[Pk comparable] struct {
	Pk     Pk
	Hash   [20]byte
	IsHash bool
}

// PkPkhIter yields every key and every hash commitment, in the order the
// tree emits them (a PkH node yields its key immediately followed by its
// hash).
type PkPkhIter[Pk comparable] struct{ base *baseKeyIter[Pk] }

// NewPkPkhIter starts a PkPkhIter rooted at root.
func NewPkPkhIter[Pk comparable](root Node[Pk]) *PkPkhIter[Pk] {
	return &PkPkhIter[Pk]{base: newBaseKeyIter(root)}
}

// Next returns the next item, or (zero, false) once exhausted.
func (it *PkPkhIter[Pk]) Next() (KeyOrHash[Pk], bool) {
	v, ok := it.base.next()
	if !ok {
		return KeyOrHash[Pk]{}, false
	}
	return KeyOrHash[Pk]{Pk: v.pk, Hash: v.hash, IsHash: v.isHash}, true
}

// PkOnly drains it, collecting every plain key in order. If any hash-only
// commitment (a RawPkH, or a PkH's trailing hash) is encountered along the
// way, the whole walk is discarded and PkOnly returns nil rather than a
// partial list — a caller asking "is this entire tree plain keys" wants a
// clean no, not a silently truncated yes. This agrees with PkOnly (the
// package-level PkIter drain) exactly when neither a RawPkH nor a PkH is
// reachable from root; a reachable PkH makes this method return nil.
func (it *PkPkhIter[Pk]) PkOnly() []Pk {
	var out []Pk
	for {
		v, ok := it.Next()
		if !ok {
			return out
		}
		if v.IsHash {
			return nil
		}
		out = append(out, v.Pk)
	}
}

// NthPk returns the n'th known key in a PkIter walk of root (0-indexed).
func NthPk[Pk comparable](root Node[Pk], n int) (Pk, bool) {
	it := NewPkIter(root)
	for i := 0; ; i++ {
		v, ok := it.Next()
		if !ok {
			var zero Pk
			return zero, false
		}
		if i == n {
			return v, true
		}
	}
}

// NthPkHash returns the n'th hash commitment in a PkhIter walk of root.
// Per Open Question 2, PkK and MultiA leaves never contribute to this
// walk (they carry no hash commitment at all), the same way NthPk
// returns nothing for RawPkH.
func NthPkHash[Pk comparable](root Node[Pk], n int) ([20]byte, bool) {
	it := NewPkhIter(root)
	for i := 0; ; i++ {
		v, ok := it.Next()
		if !ok {
			return [20]byte{}, false
		}
		if i == n {
			return v, true
		}
	}
}

// NthPkOrHash returns the n'th item of a PkPkhIter walk of root.
func NthPkOrHash[Pk comparable](root Node[Pk], n int) (KeyOrHash[Pk], bool) {
	it := NewPkPkhIter(root)
	for i := 0; ; i++ {
		v, ok := it.Next()
		if !ok {
			return KeyOrHash[Pk]{}, false
		}
		if i == n {
			return v, true
		}
	}
}

// PkOnly drains a PkIter over root into a slice.
func PkOnly[Pk comparable](root Node[Pk]) []Pk {
	it := NewPkIter(root)
	var out []Pk
	for {
		v, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// FlattenKeys composes PkOnly with keyexpr.Leaves: when a miniscript
// tree's key type is itself a key expression (plain key or MuSig
// aggregate), this is the walk that reduces the whole tree down to the
// ordered sequence of underlying base keys, flattening any MuSig nesting
// along the way. Kept here rather than in keyexpr so that package stays
// ignorant of Miniscript's node shapes.
func FlattenKeys[Pk comparable](root Node[keyexpr.KeyExpr[Pk]]) []Pk {
	var out []Pk
	for _, ke := range PkOnly(root) {
		out = append(out, keyexpr.Leaves(ke)...)
	}
	return out
}
