// Package policy implements the concrete spending-policy algebra that
// feeds a Taproot compilation: an immutable tree of key and timelock
// conditions combined with and/or/threshold combinators, parameterized
// over the key type Pk so callers can plug in their own key
// representation (raw bytes, an xpub, a wallet descriptor fragment...).
package policy

// Policy is a spending condition tree. The concrete node types below are
// the only implementations; callers switch on the dynamic type to walk a
// tree (see ForEachKey, Keys, and the validators in validate.go for the
// canonical traversal pattern).
type Policy[Pk comparable] interface {
	isPolicy()
}

// Unsatisfiable never has a satisfying witness.
type Unsatisfiable[Pk comparable] struct{}

func (Unsatisfiable[Pk]) isPolicy() {}

// Trivial is satisfied by an empty witness.
type Trivial[Pk comparable] struct{}

func (Trivial[Pk]) isPolicy() {}

// KeyNode requires a signature under Key.
type KeyNode[Pk comparable] struct {
	Key Pk
}

func (KeyNode[Pk]) isPolicy() {}

// After requires nLockTime >= N (an absolute timelock, BIP65/CLTV).
type After[Pk comparable] struct {
	N uint32
}

func (After[Pk]) isPolicy() {}

// Older requires nSequence encode a relative timelock of at least N
// (BIP68/CSV).
type Older[Pk comparable] struct {
	N uint32
}

func (Older[Pk]) isPolicy() {}

// Sha256 requires a preimage of a 32-byte SHA256 digest.
type Sha256[Pk comparable] struct {
	Hash [32]byte
}

func (Sha256[Pk]) isPolicy() {}

// Hash256 requires a preimage of a 32-byte double-SHA256 digest.
type Hash256[Pk comparable] struct {
	Hash [32]byte
}

func (Hash256[Pk]) isPolicy() {}

// Ripemd160 requires a preimage of a 20-byte RIPEMD160 digest.
type Ripemd160[Pk comparable] struct {
	Hash [20]byte
}

func (Ripemd160[Pk]) isPolicy() {}

// Hash160 requires a preimage of a 20-byte HASH160 digest.
type Hash160[Pk comparable] struct {
	Hash [20]byte
}

func (Hash160[Pk]) isPolicy() {}

// And requires both subpolicies to be satisfied.
type And[Pk comparable] struct {
	Subs [2]Policy[Pk]
}

func (And[Pk]) isPolicy() {}

// OrBranch is one side of an Or: Weight is the relative probability this
// branch is the one exercised at spend time, used to bias compilation
// toward cheaper scripts for the likelier branch.
type OrBranch[Pk comparable] struct {
	Weight uint32
	Sub    Policy[Pk]
}

// Or requires exactly one of two weighted subpolicies.
type Or[Pk comparable] struct {
	Subs [2]OrBranch[Pk]
}

func (Or[Pk]) isPolicy() {}

// Threshold requires at least K of len(Subs) subpolicies, 1 <= K <=
// len(Subs).
type Threshold[Pk comparable] struct {
	K    int
	Subs []Policy[Pk]
}

func (Threshold[Pk]) isPolicy() {}

// NewAnd builds an And node.
func NewAnd[Pk comparable](a, b Policy[Pk]) Policy[Pk] {
	return And[Pk]{Subs: [2]Policy[Pk]{a, b}}
}

// NewOr builds an Or node from two (weight, subpolicy) branches.
func NewOr[Pk comparable](weightA uint32, a Policy[Pk], weightB uint32, b Policy[Pk]) Policy[Pk] {
	return Or[Pk]{Subs: [2]OrBranch[Pk]{{Weight: weightA, Sub: a}, {Weight: weightB, Sub: b}}}
}

// NewThreshold builds a Threshold node.
func NewThreshold[Pk comparable](k int, subs ...Policy[Pk]) Policy[Pk] {
	return Threshold[Pk]{K: k, Subs: subs}
}

// Equal reports whether a and b describe the same policy tree.
func Equal[Pk comparable](a, b Policy[Pk]) bool {
	switch av := a.(type) {
	case Unsatisfiable[Pk]:
		_, ok := b.(Unsatisfiable[Pk])
		return ok
	case Trivial[Pk]:
		_, ok := b.(Trivial[Pk])
		return ok
	case KeyNode[Pk]:
		bv, ok := b.(KeyNode[Pk])
		return ok && av.Key == bv.Key
	case After[Pk]:
		bv, ok := b.(After[Pk])
		return ok && av.N == bv.N
	case Older[Pk]:
		bv, ok := b.(Older[Pk])
		return ok && av.N == bv.N
	case Sha256[Pk]:
		bv, ok := b.(Sha256[Pk])
		return ok && av.Hash == bv.Hash
	case Hash256[Pk]:
		bv, ok := b.(Hash256[Pk])
		return ok && av.Hash == bv.Hash
	case Ripemd160[Pk]:
		bv, ok := b.(Ripemd160[Pk])
		return ok && av.Hash == bv.Hash
	case Hash160[Pk]:
		bv, ok := b.(Hash160[Pk])
		return ok && av.Hash == bv.Hash
	case And[Pk]:
		bv, ok := b.(And[Pk])
		return ok && Equal(av.Subs[0], bv.Subs[0]) && Equal(av.Subs[1], bv.Subs[1])
	case Or[Pk]:
		bv, ok := b.(Or[Pk])
		if !ok {
			return false
		}
		for i := 0; i < 2; i++ {
			if av.Subs[i].Weight != bv.Subs[i].Weight || !Equal(av.Subs[i].Sub, bv.Subs[i].Sub) {
				return false
			}
		}
		return true
	case Threshold[Pk]:
		bv, ok := b.(Threshold[Pk])
		if !ok || av.K != bv.K || len(av.Subs) != len(bv.Subs) {
			return false
		}
		for i := range av.Subs {
			if !Equal(av.Subs[i], bv.Subs[i]) {
				return false
			}
		}
		return true
	}
	return false
}
