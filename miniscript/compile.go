package miniscript

import (
	"fmt"

	"github.com/klingon-exchange/taprootpolicy/policy"
)

// Compiler turns a validated policy.Policy into a compiled Miniscript Node
// for a given script Context. It is the external collaborator this
// package's own traversal and taproot's C8 compiler consume (see
// SPEC_FULL.md §6) — the full cost-optimizing "best compilation" search
// over every type-compatible encoding is out of scope for this module;
// DefaultCompiler below is a direct structural translation sufficient to
// drive every documented scenario end to end, not a port of that search.
type Compiler[Pk comparable] interface {
	// Compile produces a Node realizing pol under ctx.
	Compile(ctx Context, pol policy.Policy[Pk]) (Node[Pk], error)
	// SanityCheck reports whether n is a well-formed, spendable fragment
	// (type-correct wrapper nesting, no malleable top-level wrapper,
	// Thresh arity agreeing with its K). Compiled output from Compile
	// always passes its own compiler's SanityCheck; the method exists so
	// a caller can re-validate a Node obtained some other way (e.g. after
	// TranslatePk).
	SanityCheck(n Node[Pk]) error
}

// DefaultCompiler is a direct, non-cost-optimizing translation from
// policy.Policy to miniscript.Node: each policy combinator maps to one
// fixed Miniscript encoding (And -> and_v, Or -> or_d, Key -> c:pk_k)
// rather than searching the type-compatible encodings for the cheapest
// one. It is documented in SPEC_FULL.md §6 as a simplified stand-in for
// the real best_compilation search, which this module's spec explicitly
// treats as an external collaborator.
type DefaultCompiler[Pk comparable] struct{}

// Compile implements Compiler.
func (DefaultCompiler[Pk]) Compile(ctx Context, pol policy.Policy[Pk]) (Node[Pk], error) {
	return compileB[Pk](pol)
}

// SanityCheck implements Compiler. It rejects the two shapes that would
// make a compiled fragment unspendable or malleable by construction:
// a Thresh whose K disagrees with its Subs length, and a bare top-level
// key-hash wrapper with no accompanying key (RawPkH can't be satisfied
// without an out-of-band preimage for the key, which this compiler never
// produces, so its presence here signals a malformed Node, not one of
// ours).
func (DefaultCompiler[Pk]) SanityCheck(n Node[Pk]) error {
	if _, isRaw := n.(RawPkH[Pk]); isRaw {
		return fmt.Errorf("%w: bare top-level raw pkh", ErrSanityCheck)
	}
	it := NewNodeIter(n)
	for {
		node, ok := it.Next()
		if !ok {
			return nil
		}
		if th, isThresh := node.(Thresh[Pk]); isThresh {
			if th.K <= 0 || th.K > len(th.Subs) {
				return fmt.Errorf("%w: thresh(%d, %d subs)", ErrSanityCheck, th.K, len(th.Subs))
			}
		}
	}
}

// compileB compiles pol into a Boolean-output ("B-type") fragment: a
// node whose satisfaction leaves a single truthy value on the stack,
// suitable as the outermost fragment of a tapscript leaf.
func compileB[Pk comparable](pol policy.Policy[Pk]) (Node[Pk], error) {
	switch n := pol.(type) {
	case policy.Unsatisfiable[Pk]:
		return Impossible[Pk]{}, nil
	case policy.Trivial[Pk]:
		return Unconditional[Pk]{}, nil
	case policy.KeyNode[Pk]:
		return Check[Pk]{Sub: PkK[Pk]{Key: n.Key}}, nil
	case policy.After[Pk]:
		return After[Pk]{N: n.N}, nil
	case policy.Older[Pk]:
		return Older[Pk]{N: n.N}, nil
	case policy.Sha256[Pk]:
		return Sha256[Pk]{Hash: n.Hash}, nil
	case policy.Hash256[Pk]:
		return Hash256[Pk]{Hash: n.Hash}, nil
	case policy.Ripemd160[Pk]:
		return Ripemd160[Pk]{Hash: n.Hash}, nil
	case policy.Hash160[Pk]:
		return Hash160[Pk]{Hash: n.Hash}, nil
	case policy.And[Pk]:
		a, err := compileV[Pk](n.Subs[0])
		if err != nil {
			return nil, err
		}
		b, err := compileB[Pk](n.Subs[1])
		if err != nil {
			return nil, err
		}
		return AndV[Pk]{Subs: [2]Node[Pk]{a, b}}, nil
	case policy.Or[Pk]:
		a, err := compileB[Pk](n.Subs[0].Sub)
		if err != nil {
			return nil, err
		}
		b, err := compileB[Pk](n.Subs[1].Sub)
		if err != nil {
			return nil, err
		}
		return OrD[Pk]{Subs: [2]Node[Pk]{a, b}}, nil
	case policy.Threshold[Pk]:
		subs := make([]Node[Pk], len(n.Subs))
		for i, sub := range n.Subs {
			compiled, err := compileB[Pk](sub)
			if err != nil {
				return nil, err
			}
			subs[i] = compiled
		}
		return Thresh[Pk]{K: n.K, Subs: subs}, nil
	default:
		return nil, ErrUnsupportedFragment
	}
}

// compileV compiles pol into a "verify" ("V-type") fragment: a node
// whose satisfaction leaves nothing on the stack, aborting the script on
// failure instead of leaving a falsy value. AndV's first operand must be
// V-type, which is the only place this package needs one.
func compileV[Pk comparable](pol policy.Policy[Pk]) (Node[Pk], error) {
	b, err := compileB[Pk](pol)
	if err != nil {
		return nil, err
	}
	return Verify[Pk]{Sub: b}, nil
}
