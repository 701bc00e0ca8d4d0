package policy

// TranslatePk rebuilds pol with every key leaf passed through translate,
// changing the key type from Pk to Q. Used to go from a parsed textual
// key representation to a compiler's internal key type, or vice versa.
func TranslatePk[Pk, Q comparable](pol Policy[Pk], translate func(Pk) (Q, error)) (Policy[Q], error) {
	switch n := pol.(type) {
	case Unsatisfiable[Pk]:
		return Unsatisfiable[Q]{}, nil
	case Trivial[Pk]:
		return Trivial[Q]{}, nil
	case KeyNode[Pk]:
		q, err := translate(n.Key)
		if err != nil {
			return nil, err
		}
		return KeyNode[Q]{Key: q}, nil
	case After[Pk]:
		return After[Q]{N: n.N}, nil
	case Older[Pk]:
		return Older[Q]{N: n.N}, nil
	case Sha256[Pk]:
		return Sha256[Q]{Hash: n.Hash}, nil
	case Hash256[Pk]:
		return Hash256[Q]{Hash: n.Hash}, nil
	case Ripemd160[Pk]:
		return Ripemd160[Q]{Hash: n.Hash}, nil
	case Hash160[Pk]:
		return Hash160[Q]{Hash: n.Hash}, nil
	case And[Pk]:
		a, err := TranslatePk(n.Subs[0], translate)
		if err != nil {
			return nil, err
		}
		b, err := TranslatePk(n.Subs[1], translate)
		if err != nil {
			return nil, err
		}
		return And[Q]{Subs: [2]Policy[Q]{a, b}}, nil
	case Or[Pk]:
		a, err := TranslatePk(n.Subs[0].Sub, translate)
		if err != nil {
			return nil, err
		}
		b, err := TranslatePk(n.Subs[1].Sub, translate)
		if err != nil {
			return nil, err
		}
		return Or[Q]{Subs: [2]OrBranch[Q]{
			{Weight: n.Subs[0].Weight, Sub: a},
			{Weight: n.Subs[1].Weight, Sub: b},
		}}, nil
	case Threshold[Pk]:
		subs := make([]Policy[Q], len(n.Subs))
		for i, sub := range n.Subs {
			q, err := TranslatePk(sub, translate)
			if err != nil {
				return nil, err
			}
			subs[i] = q
		}
		return Threshold[Q]{K: n.K, Subs: subs}, nil
	default:
		return nil, ErrUnknownHead
	}
}

// TranslateUnsatisfiablePk behaves like TranslatePk, but instead of
// failing when translate can't produce a Q for some key, it replaces
// that single leaf with Unsatisfiable[Q]. The Taproot extractor uses
// this to prune the key chosen as the internal key out of the leaf
// policies it compiles into tapscripts, without having to special-case
// every combinator.
func TranslateUnsatisfiablePk[Pk, Q comparable](pol Policy[Pk], translate func(Pk) (Q, bool)) Policy[Q] {
	return translateUnsatisfiableRec(pol, translate)
}

func translateUnsatisfiableRec[Pk, Q comparable](pol Policy[Pk], translate func(Pk) (Q, bool)) Policy[Q] {
	switch n := pol.(type) {
	case Unsatisfiable[Pk]:
		return Unsatisfiable[Q]{}
	case Trivial[Pk]:
		return Trivial[Q]{}
	case KeyNode[Pk]:
		if q, ok := translate(n.Key); ok {
			return KeyNode[Q]{Key: q}
		}
		return Unsatisfiable[Q]{}
	case After[Pk]:
		return After[Q]{N: n.N}
	case Older[Pk]:
		return Older[Q]{N: n.N}
	case Sha256[Pk]:
		return Sha256[Q]{Hash: n.Hash}
	case Hash256[Pk]:
		return Hash256[Q]{Hash: n.Hash}
	case Ripemd160[Pk]:
		return Ripemd160[Q]{Hash: n.Hash}
	case Hash160[Pk]:
		return Hash160[Q]{Hash: n.Hash}
	case And[Pk]:
		return And[Q]{Subs: [2]Policy[Q]{
			translateUnsatisfiableRec(n.Subs[0], translate),
			translateUnsatisfiableRec(n.Subs[1], translate),
		}}
	case Or[Pk]:
		return Or[Q]{Subs: [2]OrBranch[Q]{
			{Weight: n.Subs[0].Weight, Sub: translateUnsatisfiableRec(n.Subs[0].Sub, translate)},
			{Weight: n.Subs[1].Weight, Sub: translateUnsatisfiableRec(n.Subs[1].Sub, translate)},
		}}
	case Threshold[Pk]:
		subs := make([]Policy[Q], len(n.Subs))
		for i, sub := range n.Subs {
			subs[i] = translateUnsatisfiableRec(sub, translate)
		}
		return Threshold[Q]{K: n.K, Subs: subs}
	default:
		return Unsatisfiable[Q]{}
	}
}
