package policy

// Validate checks structural invariants that Parse enforces while reading
// text but that a caller building a Policy tree by hand (via NewAnd,
// NewOr, NewThreshold, struct literals...) can bypass. Call it before
// compiling a hand-built tree.
func Validate[Pk comparable](pol Policy[Pk]) error {
	switch n := pol.(type) {
	case And[Pk]:
		if err := Validate(n.Subs[0]); err != nil {
			return err
		}
		if err := Validate(n.Subs[1]); err != nil {
			return err
		}
	case Or[Pk]:
		if err := Validate(n.Subs[0].Sub); err != nil {
			return err
		}
		if err := Validate(n.Subs[1].Sub); err != nil {
			return err
		}
	case Threshold[Pk]:
		if n.K < 1 || n.K > len(n.Subs) {
			return ErrIncorrectThresh
		}
		for _, sub := range n.Subs {
			if err := Validate(sub); err != nil {
				return err
			}
		}
	case After[Pk]:
		if n.N == 0 {
			return ErrZeroTime
		}
		if n.N >= 1<<31 {
			return ErrTimeTooFar
		}
	case Older[Pk]:
		if n.N == 0 {
			return ErrZeroTime
		}
		if n.N >= 1<<31 {
			return ErrTimeTooFar
		}
	}

	if err := CheckDuplicateKeys(pol); err != nil {
		return err
	}
	return CheckTimelocks(pol)
}

// lockTimeThreshold is the nLockTime boundary between a height-based and
// a time-based absolute timelock: After values below it are block
// heights, values at or above it are UNIX timestamps. Older values are
// classified by the BIP68 type flag instead (sequenceTypeFlag).
const lockTimeThreshold = 500000000

// sequenceTypeFlag is BIP68's nSequence bit 22: set, a relative timelock
// counts 512-second intervals; unset, it counts blocks.
const sequenceTypeFlag = 1 << 22

type timelockInfo struct {
	height bool
	time   bool
	combo  bool
}

func (a timelockInfo) merge(b timelockInfo) timelockInfo {
	return timelockInfo{
		height: a.height || b.height,
		time:   a.time || b.time,
		combo:  a.combo || b.combo,
	}
}

func analyzeTimelocks[Pk comparable](pol Policy[Pk]) timelockInfo {
	switch n := pol.(type) {
	case After[Pk]:
		if n.N >= lockTimeThreshold {
			return timelockInfo{time: true}
		}
		return timelockInfo{height: true}
	case Older[Pk]:
		if n.N&sequenceTypeFlag != 0 {
			return timelockInfo{time: true}
		}
		return timelockInfo{height: true}
	case And[Pk]:
		a := analyzeTimelocks(n.Subs[0])
		b := analyzeTimelocks(n.Subs[1])
		combo := a.combo || b.combo || (a.height && b.time) || (a.time && b.height)
		return timelockInfo{height: a.height || b.height, time: a.time || b.time, combo: combo}
	case Or[Pk]:
		a := analyzeTimelocks(n.Subs[0].Sub)
		b := analyzeTimelocks(n.Subs[1].Sub)
		return a.merge(b)
	case Threshold[Pk]:
		// With k >= 2, any two children may be required together, so a
		// height lock in one child and a time lock in another conflict.
		var agg timelockInfo
		for _, sub := range n.Subs {
			t := analyzeTimelocks(sub)
			if n.K >= 2 && ((agg.height && t.time) || (agg.time && t.height)) {
				agg.combo = true
			}
			agg = agg.merge(t)
		}
		return agg
	default:
		return timelockInfo{}
	}
}

// CheckTimelocks rejects a policy that requires both a height-based and a
// time-based timelock be satisfied together on the same spending path,
// which BIP68/BIP112 make unsatisfiable (a single nSequence value can
// only encode one kind).
func CheckTimelocks[Pk comparable](pol Policy[Pk]) error {
	if analyzeTimelocks(pol).combo {
		return ErrHeightTimelockCombination
	}
	return nil
}

// CheckDuplicateKeys rejects a policy in which the same key appears in
// more than one leaf: Taproot key-aggregation and leaf-script reuse both
// assume distinct keys, and a repeated key usually signals a copy-paste
// mistake building the tree rather than deliberate design.
func CheckDuplicateKeys[Pk comparable](pol Policy[Pk]) error {
	seen := make(map[Pk]struct{})
	dup := false
	ForEachKey(pol, func(k Pk) bool {
		if _, ok := seen[k]; ok {
			dup = true
			return false
		}
		seen[k] = struct{}{}
		return true
	})
	if dup {
		return ErrDuplicatePubKeys
	}
	return nil
}

// Keys returns every key leaf in pol, in pre-order.
func Keys[Pk comparable](pol Policy[Pk]) []Pk {
	var out []Pk
	ForEachKey(pol, func(k Pk) bool {
		out = append(out, k)
		return true
	})
	return out
}

// ForEachKey visits every key leaf in pre-order, stopping early if fn
// returns false. It reports whether every visit returned true.
func ForEachKey[Pk comparable](pol Policy[Pk], fn func(Pk) bool) bool {
	switch n := pol.(type) {
	case KeyNode[Pk]:
		return fn(n.Key)
	case And[Pk]:
		return ForEachKey(n.Subs[0], fn) && ForEachKey(n.Subs[1], fn)
	case Or[Pk]:
		return ForEachKey(n.Subs[0].Sub, fn) && ForEachKey(n.Subs[1].Sub, fn)
	case Threshold[Pk]:
		for _, sub := range n.Subs {
			if !ForEachKey(sub, fn) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// IsSafeNonMalleable reports whether pol is "safe" (no satisfying branch
// can be taken without involving at least one key, so a participant
// holding no keys can never unilaterally spend) and "non-malleable" (no
// satisfying branch can be taken with literally any witness, which would
// let a third party rewrite the spending transaction's witness without
// invalidating it). Both are counting arguments over Threshold: a node
// is safe/non-malleable if enough of its children are, so that every
// size-K satisfying subset is forced to include one.
func IsSafeNonMalleable[Pk comparable](pol Policy[Pk]) (safe bool, nonMalleable bool) {
	switch n := pol.(type) {
	case Unsatisfiable[Pk]:
		return true, true
	case Trivial[Pk]:
		return true, true
	case KeyNode[Pk]:
		return true, true
	case After[Pk], Older[Pk]:
		return false, true
	case Sha256[Pk], Hash256[Pk], Ripemd160[Pk], Hash160[Pk]:
		return false, true
	case And[Pk]:
		aSafe, aNonMall := IsSafeNonMalleable(n.Subs[0])
		bSafe, bNonMall := IsSafeNonMalleable(n.Subs[1])
		return aSafe || bSafe, aNonMall && bNonMall
	case Or[Pk]:
		aSafe, aNonMall := IsSafeNonMalleable(n.Subs[0].Sub)
		bSafe, bNonMall := IsSafeNonMalleable(n.Subs[1].Sub)
		return aSafe && bSafe, (aSafe || bSafe) && aNonMall && bNonMall
	case Threshold[Pk]:
		safeCount, nonMallCount := 0, 0
		for _, sub := range n.Subs {
			s, nm := IsSafeNonMalleable(sub)
			if s {
				safeCount++
			}
			if nm {
				nonMallCount++
			}
		}
		total := len(n.Subs)
		return safeCount >= total-n.K+1, nonMallCount == total && safeCount >= total-n.K
	default:
		return false, false
	}
}
