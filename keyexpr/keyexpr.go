// Package keyexpr implements key expressions: a single key, or a MuSig2
// aggregate of other key expressions (which may themselves be
// aggregates), used as the leaves of a miniscript.Node[Pk] tree so a
// descriptor can embed either a plain pubkey or a MuSig2-aggregated one
// wherever a key is expected.
package keyexpr

import "fmt"

// KeyExpr is either a SingleKey or a MuSig aggregate over other KeyExprs.
type KeyExpr[Pk comparable] interface {
	isKeyExpr()
}

// SingleKey is a single, unaggregated key.
type SingleKey[Pk comparable] struct {
	Key Pk
}

func (SingleKey[Pk]) isKeyExpr() {}

// MuSig is the MuSig2 aggregate of two or more key expressions. A member
// may itself be a MuSig, nesting aggregates (musig(C,musig(D,E))).
type MuSig[Pk comparable] struct {
	Members []KeyExpr[Pk]
}

func (MuSig[Pk]) isKeyExpr() {}

// NewMuSig builds a MuSig over the given members, requiring at least two.
func NewMuSig[Pk comparable](members ...KeyExpr[Pk]) (KeyExpr[Pk], error) {
	if len(members) < 2 {
		return nil, fmt.Errorf("%w: musig needs at least 2 members, got %d", ErrTooFewMembers, len(members))
	}
	return MuSig[Pk]{Members: members}, nil
}

// Leaves returns every SingleKey's Pk reachable from e, in left-to-right
// order, flattening any nested MuSig aggregates. It drains a pull
// iterator with an explicit stack (see leafIter) rather than recursing,
// matching how the miniscript package walks its own AST; the whole walk
// always runs and the result is returned as one slice.
func Leaves[Pk comparable](e KeyExpr[Pk]) []Pk {
	it := newLeafIter(e)
	var out []Pk
	for {
		pk, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, pk)
	}
	return out
}

// leafIter walks a KeyExpr tree depth-first, left to right, yielding one
// Pk per SingleKey. The stack holds, for each ancestor MuSig still being
// walked, the index of the next member to descend into.
type leafIter[Pk comparable] struct {
	stack []musigFrame[Pk]
	next  KeyExpr[Pk]
	done  bool
}

type musigFrame[Pk comparable] struct {
	members []KeyExpr[Pk]
	idx     int
}

func newLeafIter[Pk comparable](e KeyExpr[Pk]) *leafIter[Pk] {
	return &leafIter[Pk]{next: e}
}

// Next returns the next leaf key, or (zero, false) once exhausted.
func (it *leafIter[Pk]) Next() (Pk, bool) {
	for {
		if it.next == nil {
			if len(it.stack) == 0 {
				var zero Pk
				return zero, false
			}
			frame := &it.stack[len(it.stack)-1]
			if frame.idx >= len(frame.members) {
				it.stack = it.stack[:len(it.stack)-1]
				continue
			}
			it.next = frame.members[frame.idx]
			frame.idx++
			continue
		}

		switch n := it.next.(type) {
		case SingleKey[Pk]:
			it.next = nil
			return n.Key, true
		case MuSig[Pk]:
			it.stack = append(it.stack, musigFrame[Pk]{members: n.Members})
			it.next = nil
		default:
			it.next = nil
		}
	}
}
