package taproot

import (
	"github.com/klingon-exchange/taprootpolicy/keyexpr"
	"github.com/klingon-exchange/taprootpolicy/policy"
)

// probPolicy pairs a sub-policy with the probability it is the branch
// actually exercised at spend time, as produced by tapleafProb.
type probPolicy[Pk comparable] struct {
	Prob   float64
	Policy policy.Policy[Pk]
}

// tapleafProb flattens every Or (and every 1-of-n Threshold, which is
// just an Or over uniformly-weighted branches) reachable from pol without
// descending into any other combinator, distributing prob across
// branches in proportion to their relative weight. The result is the flat
// candidate list C6's internal-key scoring and C8's leaf compilation both
// work from.
func tapleafProb[Pk comparable](pol policy.Policy[Pk], prob float64) []probPolicy[Pk] {
	switch n := pol.(type) {
	case policy.Or[Pk]:
		w0 := float64(n.Subs[0].Weight)
		w1 := float64(n.Subs[1].Weight)
		total := w0 + w1
		out := tapleafProb(n.Subs[0].Sub, prob*w0/total)
		out = append(out, tapleafProb(n.Subs[1].Sub, prob*w1/total)...)
		return out
	case policy.Threshold[Pk]:
		if n.K == 1 && len(n.Subs) > 0 {
			share := prob / float64(len(n.Subs))
			var out []probPolicy[Pk]
			for _, sub := range n.Subs {
				out = append(out, tapleafProb(sub, share)...)
			}
			return out
		}
		return []probPolicy[Pk]{{Prob: prob, Policy: pol}}
	default:
		return []probPolicy[Pk]{{Prob: prob, Policy: pol}}
	}
}

// extractRecursive collects the key-vector a candidate sub-policy would
// contribute to a MuSig internal key, or nil if pol cannot contribute one
// at all (§4.5 step 2).
func extractRecursive[Pk comparable](pol policy.Policy[Pk]) []Pk {
	switch n := pol.(type) {
	case policy.KeyNode[Pk]:
		return []Pk{n.Key}

	case policy.And[Pk]:
		a, aok := n.Subs[0].(policy.KeyNode[Pk])
		b, bok := n.Subs[1].(policy.KeyNode[Pk])
		if !aok || !bok {
			return nil
		}
		return []Pk{a.Key, b.Key}

	case policy.Threshold[Pk]:
		if n.K == len(n.Subs) {
			var out []Pk
			for _, sub := range n.Subs {
				keys := extractRecursive(sub)
				if len(keys) == 0 {
					return nil
				}
				out = append(out, keys...)
			}
			return out
		}
		var out []Pk
		found := 0
		for _, sub := range n.Subs {
			keys := extractRecursive(sub)
			if len(keys) == 0 {
				continue
			}
			out = append(out, keys...)
			found++
			if found == n.K {
				break
			}
		}
		if found < n.K {
			return nil
		}
		return out

	case policy.Or[Pk]:
		w0, w1 := n.Subs[0].Weight, n.Subs[1].Weight
		ra := extractRecursive(n.Subs[0].Sub)
		rb := extractRecursive(n.Subs[1].Sub)
		switch {
		case w0 > w1:
			if len(ra) == 0 {
				return rb
			}
			return ra
		case w1 > w0:
			if len(rb) == 0 {
				return ra
			}
			return rb
		case len(ra) == 0:
			return rb
		case len(rb) == 0:
			return ra
		case len(ra) <= len(rb):
			return ra
		default:
			return rb
		}

	default:
		return nil
	}
}

// selectInternalKey implements §4.5 steps 2-3: among the candidate leaves
// whose root is Key/And/Threshold and whose extractRecursive is
// non-empty, pick the highest-probability one, breaking ties by shorter
// key-vector and then by first appearance in leaves.
func selectInternalKey[Pk comparable](leaves []probPolicy[Pk]) (bestPol policy.Policy[Pk], bestKeys []Pk, ok bool) {
	bestProbVal := 0.0
	for _, leaf := range leaves {
		switch leaf.Policy.(type) {
		case policy.KeyNode[Pk], policy.And[Pk], policy.Threshold[Pk]:
		default:
			continue
		}
		keys := extractRecursive(leaf.Policy)
		if len(keys) == 0 {
			continue
		}
		if !ok {
			bestPol, bestKeys, bestProbVal, ok = leaf.Policy, keys, leaf.Prob, true
			continue
		}
		switch {
		case leaf.Prob > bestProbVal:
			bestPol, bestKeys, bestProbVal = leaf.Policy, keys, leaf.Prob
		case leaf.Prob == bestProbVal && len(keys) < len(bestKeys):
			bestPol, bestKeys = leaf.Policy, keys
		}
	}
	return bestPol, bestKeys, ok
}

// newInternalKey wraps keys as a MuSig expression, or as a bare SingleKey
// when there is exactly one — keyexpr.NewMuSig requires at least two
// members, and a lone candidate key (e.g. a bare Key(pk) leaf) has
// nothing to aggregate with.
func newInternalKey[Pk comparable](keys []Pk) keyexpr.KeyExpr[Pk] {
	if len(keys) == 1 {
		return keyexpr.SingleKey[Pk]{Key: keys[0]}
	}
	members := make([]keyexpr.KeyExpr[Pk], len(keys))
	for i, k := range keys {
		members[i] = keyexpr.SingleKey[Pk]{Key: k}
	}
	expr, err := keyexpr.NewMuSig(members...)
	if err != nil {
		// len(keys) >= 2 is guaranteed by the caller; NewMuSig cannot
		// fail on that precondition.
		panic(err)
	}
	return expr
}

// ExtractKey implements C6: it chooses the internal key for pol (§4.5
// steps 1-4) and returns the pruned policy with the selected candidate's
// sub-tree rewritten to Unsatisfiable (step 5) so it is not duplicated as
// a tapscript leaf. When the candidate is the whole policy, nothing is
// left for a script path and the pruned policy is Trivial.
func ExtractKey[Pk comparable](pol policy.Policy[Pk], unspendable *Pk) (keyexpr.KeyExpr[Pk], policy.Policy[Pk], error) {
	leaves := tapleafProb[Pk](pol, 1.0)
	bestPol, bestKeys, ok := selectInternalKey(leaves)

	if ok {
		pruned := pruneUnsatisfiable[Pk](pol, bestPol)
		if _, whole := pruned.(policy.Unsatisfiable[Pk]); whole {
			pruned = policy.Trivial[Pk]{}
		}
		return newInternalKey(bestKeys), pruned, nil
	}

	if unspendable != nil {
		allKeys := policy.Keys(pol)
		if len(allKeys) > 0 {
			return newInternalKey(allKeys), pol, nil
		}
		return keyexpr.SingleKey[Pk]{Key: *unspendable}, pol, nil
	}

	return nil, nil, ErrNoViableInternalKey
}

// pruneUnsatisfiable implements §4.5 step 5: it rewrites the sub-tree
// structurally equal to bestPol to Unsatisfiable, except a partial
// Threshold (k != len(subs)) which is kept verbatim since its
// satisfaction is not exhausted merely by having its keys folded into the
// internal key. It recurses into Or branches and 1-of-n Threshold subs,
// mirroring tapleafProb's own flattening so pruning reaches every leaf
// tapleafProb would otherwise re-surface.
func pruneUnsatisfiable[Pk comparable](pol, bestPol policy.Policy[Pk]) policy.Policy[Pk] {
	if policy.Equal(pol, bestPol) {
		if th, isThresh := pol.(policy.Threshold[Pk]); isThresh && th.K != len(th.Subs) {
			return pol
		}
		return policy.Unsatisfiable[Pk]{}
	}

	switch n := pol.(type) {
	case policy.Or[Pk]:
		return policy.Or[Pk]{Subs: [2]policy.OrBranch[Pk]{
			{Weight: n.Subs[0].Weight, Sub: pruneUnsatisfiable(n.Subs[0].Sub, bestPol)},
			{Weight: n.Subs[1].Weight, Sub: pruneUnsatisfiable(n.Subs[1].Sub, bestPol)},
		}}
	case policy.Threshold[Pk]:
		if n.K != 1 {
			return pol
		}
		subs := make([]policy.Policy[Pk], len(n.Subs))
		for i, sub := range n.Subs {
			subs[i] = pruneUnsatisfiable(sub, bestPol)
		}
		return policy.Threshold[Pk]{K: 1, Subs: subs}
	default:
		return pol
	}
}
