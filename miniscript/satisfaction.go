package miniscript

// Satisfaction describes the cheapest witness-stack shape known to
// satisfy a Node: how many stack elements it pushes, and their combined
// byte length. It underlies taproot.Descriptor's max-satisfaction-weight
// accounting (SPEC_FULL.md §4.9) the same way the compiled Node itself
// underlies the script. Costs below follow the conventional Miniscript
// accounting: a Schnorr signature with an explicit (non-default) sighash
// byte is budgeted at 65 bytes, the worst case a witness must have room
// for even though a default-sighash signature is only 64.
type Satisfaction struct {
	Elements int
	Bytes    int
}

func (s Satisfaction) add(o Satisfaction) Satisfaction {
	return Satisfaction{Elements: s.Elements + o.Elements, Bytes: s.Bytes + o.Bytes}
}

const schnorrSigCost = 65

// MaxSatisfactionSize computes an upper bound on the witness shape of n's
// cheapest satisfaction: where n offers alternative paths (or-fragments,
// andor, thresh) the cheapest one is taken, and each signature on it is
// budgeted at its 65-byte maximum. ok is false for a node with no
// accountable satisfaction (Impossible, or a combinator whose every path
// is itself unaccountable).
func MaxSatisfactionSize[Pk comparable](n Node[Pk]) (Satisfaction, bool) {
	switch t := n.(type) {
	case Impossible[Pk]:
		return Satisfaction{}, false
	case Unconditional[Pk]:
		return Satisfaction{}, true
	case PkK[Pk]:
		return Satisfaction{Elements: 1, Bytes: schnorrSigCost}, true
	case PkH[Pk]:
		return Satisfaction{Elements: 2, Bytes: schnorrSigCost + 32}, true
	case RawPkH[Pk]:
		return Satisfaction{}, false
	case Multi[Pk]:
		return Satisfaction{Elements: t.K + 1, Bytes: t.K*schnorrSigCost + 1}, true
	case MultiA[Pk]:
		dummies := len(t.Keys) - t.K
		return Satisfaction{Elements: len(t.Keys), Bytes: t.K*schnorrSigCost + dummies}, true
	case After[Pk], Older[Pk]:
		return Satisfaction{}, true
	case Sha256[Pk]:
		return Satisfaction{Elements: 1, Bytes: 32}, true
	case Hash256[Pk]:
		return Satisfaction{Elements: 1, Bytes: 32}, true
	case Ripemd160[Pk]:
		return Satisfaction{Elements: 1, Bytes: 20}, true
	case Hash160[Pk]:
		return Satisfaction{Elements: 1, Bytes: 20}, true
	case Alt[Pk]:
		return MaxSatisfactionSize[Pk](t.Sub)
	case Swap[Pk]:
		return MaxSatisfactionSize[Pk](t.Sub)
	case Check[Pk]:
		return MaxSatisfactionSize[Pk](t.Sub)
	case DupIf[Pk]:
		sub, ok := MaxSatisfactionSize[Pk](t.Sub)
		if !ok {
			return Satisfaction{}, false
		}
		return sub.add(Satisfaction{Elements: 1, Bytes: 1}), true
	case Verify[Pk]:
		return MaxSatisfactionSize[Pk](t.Sub)
	case NonZero[Pk]:
		return MaxSatisfactionSize[Pk](t.Sub)
	case ZeroNotEqual[Pk]:
		return MaxSatisfactionSize[Pk](t.Sub)
	case AndV[Pk]:
		return andSatisfaction[Pk](t.Subs[0], t.Subs[1])
	case AndB[Pk]:
		return andSatisfaction[Pk](t.Subs[0], t.Subs[1])
	case OrB[Pk]:
		return orSatisfaction[Pk](t.Subs[0], t.Subs[1])
	case OrD[Pk]:
		return orSatisfaction[Pk](t.Subs[0], t.Subs[1])
	case OrC[Pk]:
		return orSatisfaction[Pk](t.Subs[0], t.Subs[1])
	case OrI[Pk]:
		left, lok := MaxSatisfactionSize[Pk](t.Subs[0])
		right, rok := MaxSatisfactionSize[Pk](t.Subs[1])
		// or_i's IF/ELSE wrapper costs one extra selector byte per path.
		if lok {
			left = left.add(Satisfaction{Elements: 1, Bytes: 1})
		}
		if rok {
			right = right.add(Satisfaction{Elements: 1, Bytes: 1})
		}
		return pickCheaper(left, lok, right, rok)
	case AndOr[Pk]:
		thenSat, thenOk := MaxSatisfactionSize[Pk](t.Subs[1])
		elseSat, elseOk := MaxSatisfactionSize[Pk](t.Subs[2])
		ifCond, _ := MaxSatisfactionSize[Pk](t.Subs[0])
		happy := ifCond.add(thenSat)
		sad := elseSat
		return pickCheaper(happy, thenOk, sad, elseOk)
	case Thresh[Pk]:
		return threshSatisfaction[Pk](t.K, t.Subs)
	default:
		return Satisfaction{}, false
	}
}

func andSatisfaction[Pk comparable](a, b Node[Pk]) (Satisfaction, bool) {
	as, aok := MaxSatisfactionSize[Pk](a)
	bs, bok := MaxSatisfactionSize[Pk](b)
	if !aok || !bok {
		return Satisfaction{}, false
	}
	return as.add(bs), true
}

func orSatisfaction[Pk comparable](a, b Node[Pk]) (Satisfaction, bool) {
	as, aok := MaxSatisfactionSize[Pk](a)
	bs, bok := MaxSatisfactionSize[Pk](b)
	return pickCheaper(as, aok, bs, bok)
}

func pickCheaper(a Satisfaction, aok bool, b Satisfaction, bok bool) (Satisfaction, bool) {
	switch {
	case aok && bok:
		if a.Bytes <= b.Bytes {
			return a, true
		}
		return b, true
	case aok:
		return a, true
	case bok:
		return b, true
	default:
		return Satisfaction{}, false
	}
}

// threshSatisfaction picks the K cheapest satisfiable subs to actually
// satisfy and budgets one dissatisfaction element per remaining sub (the
// conventional OP_0 placeholder a Thresh child pushes when its own
// condition is not being exercised on this path).
func threshSatisfaction[Pk comparable](k int, subs []Node[Pk]) (Satisfaction, bool) {
	costs := make([]int, 0, len(subs))
	total := Satisfaction{}
	for _, sub := range subs {
		total.Elements++
		total.Bytes++ // dissatisfaction placeholder, overwritten below for the chosen K
		sat, ok := MaxSatisfactionSize[Pk](sub)
		if !ok {
			continue
		}
		costs = append(costs, sat.Bytes)
	}
	if len(costs) < k {
		return Satisfaction{}, false
	}
	sorted := append([]int(nil), costs...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j] < sorted[i] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	extra := 0
	for i := 0; i < k; i++ {
		extra += sorted[i] - 1 // replace that sub's placeholder byte with its real cost
	}
	total.Bytes += extra
	return total, true
}

// ScriptSize is not separately implemented: this module never serializes
// a Node to actual Bitcoin script bytes (txscript, an external
// collaborator per §6, owns real byte-level encoding). Descriptor's
// max-satisfaction-weight accounting instead derives a leaf's on-chain
// script length from the script bytes the taproot package emits for the
// leaf (scriptOf in taproot/script.go), not from this package.
