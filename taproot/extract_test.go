package taproot

import (
	"testing"

	"github.com/klingon-exchange/taprootpolicy/keyexpr"
	"github.com/klingon-exchange/taprootpolicy/policy"
)

func TestExtractRecursiveAndRequiresBothKeys(t *testing.T) {
	both := policy.NewAnd[string](policy.KeyNode[string]{Key: "A"}, policy.KeyNode[string]{Key: "B"})
	if got := extractRecursive[string](both); len(got) != 2 {
		t.Errorf("extractRecursive(and(key,key)) = %v, want 2 keys", got)
	}

	mixed := policy.NewAnd[string](policy.KeyNode[string]{Key: "A"}, policy.Older[string]{N: 9})
	if got := extractRecursive[string](mixed); got != nil {
		t.Errorf("extractRecursive(and(key,older)) = %v, want nil", got)
	}
}

func TestExtractRecursivePartialThreshold(t *testing.T) {
	// thresh(2, pk(A), pk(B), older(9)): k < n, only 2 of 3 subs extract
	// keys; the first k non-empty sub-results (in order) are taken.
	pol := policy.NewThreshold[string](2,
		policy.KeyNode[string]{Key: "A"},
		policy.KeyNode[string]{Key: "B"},
		policy.Older[string]{N: 9},
	)
	got := extractRecursive[string](pol)
	want := []string{"A", "B"}
	if len(got) != len(want) {
		t.Fatalf("extractRecursive = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("extractRecursive[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestExtractRecursivePartialThresholdNotEnoughCandidates(t *testing.T) {
	// thresh(2, pk(A), older(9), older(10)): only 1 of 3 subs contributes
	// keys, short of K=2, so the whole threshold fails to score.
	pol := policy.NewThreshold[string](2,
		policy.KeyNode[string]{Key: "A"},
		policy.Older[string]{N: 9},
		policy.Older[string]{N: 10},
	)
	if got := extractRecursive[string](pol); got != nil {
		t.Errorf("extractRecursive = %v, want nil", got)
	}
}

func TestExtractRecursiveOrTieBreakAsymmetry(t *testing.T) {
	// Open Question 4: equal weights favor the shorter non-empty
	// key-vector; unequal weights always favor the heavier side even if
	// its key-vector is longer.
	shortSide := policy.KeyNode[string]{Key: "A"}
	longSide := policy.NewThreshold[string](2, policy.KeyNode[string]{Key: "B"}, policy.KeyNode[string]{Key: "C"})

	tied := policy.NewOr[string](1, shortSide, 1, longSide)
	if got := extractRecursive[string](tied); len(got) != 1 || got[0] != "A" {
		t.Errorf("tied weights: extractRecursive = %v, want [A] (shorter side)", got)
	}

	heavyLong := policy.NewOr[string](1, shortSide, 2, longSide)
	if got := extractRecursive[string](heavyLong); len(got) != 2 {
		t.Errorf("unequal weights: extractRecursive = %v, want the heavier (longer) side", got)
	}
}

// TestExtractRecursiveOrFallsBackWhenHeavierSideEmpty covers the case
// where the strictly-heavier Or branch scores no candidate at all (e.g.
// it's a bare timelock): extractRecursive must still fall back to the
// lighter side's non-empty result rather than returning nil outright.
func TestExtractRecursiveOrFallsBackWhenHeavierSideEmpty(t *testing.T) {
	heavyButEmpty := policy.NewOr[string](99, policy.Older[string]{N: 9}, 1, policy.KeyNode[string]{Key: "A"})
	got := extractRecursive[string](heavyButEmpty)
	if len(got) != 1 || got[0] != "A" {
		t.Errorf("extractRecursive(or(99@older(9),1@pk(A))) = %v, want [A]", got)
	}

	lightButEmpty := policy.NewOr[string](1, policy.KeyNode[string]{Key: "A"}, 99, policy.Older[string]{N: 9})
	got = extractRecursive[string](lightButEmpty)
	if len(got) != 1 || got[0] != "A" {
		t.Errorf("extractRecursive(or(1@pk(A),99@older(9))) = %v, want [A]", got)
	}
}

func TestExtractKeySelectsHighestProbabilityCandidate(t *testing.T) {
	pol, err := policy.Parse[string](
		"or(99@thresh(2,pk(hA),pk(S)),1@or(99@pk(Ca),1@and(pk(In),older(9))))",
		keyParseString,
	)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	internalKey, pruned, err := ExtractKey[string](pol, nil)
	if err != nil {
		t.Fatalf("ExtractKey: %v", err)
	}
	gotKeys := keyexpr.Leaves[string](internalKey)
	if len(gotKeys) != 2 || gotKeys[0] != "hA" || gotKeys[1] != "S" {
		t.Errorf("internal key leaves = %v, want [hA S]", gotKeys)
	}

	// The selected sub-policy must no longer appear verbatim in the
	// pruned tree: its two keys (hA, S) are consumed by the internal
	// key, not left available as a script-path spend too.
	remainingKeys := policy.Keys(pruned)
	for _, k := range remainingKeys {
		if k == "hA" || k == "S" {
			t.Errorf("pruned policy still contains %s, should have been replaced with Unsatisfiable", k)
		}
	}
}

func TestExtractKeyFallbackToUnspendableWhenNoKeys(t *testing.T) {
	// A bare hash condition scores no Key/And/Threshold candidate at all;
	// with no keys anywhere either, only the raw fallback key applies.
	pol := policy.Sha256[string]{Hash: [32]byte{1}}
	fallback := "UNSPENDABLE"
	internalKey, pruned, err := ExtractKey[string](pol, &fallback)
	if err != nil {
		t.Fatalf("ExtractKey: %v", err)
	}
	single, ok := internalKey.(keyexpr.SingleKey[string])
	if !ok || single.Key != fallback {
		t.Errorf("internalKey = %+v, want SingleKey{%s}", internalKey, fallback)
	}
	if !policy.Equal[string](pruned, pol) {
		t.Error("pruned policy should be unchanged when falling back to the unspendable key")
	}
}

func TestExtractKeyFallbackWithOneKeyPresent(t *testing.T) {
	// and(pk(A), sha256(h)): the And candidate rule requires *both*
	// children to be Key nodes, so this scores no candidate even though
	// it has exactly one Key leaf. The fallback path then aggregates
	// policy.Keys(pol) — here just [A] — which newInternalKey renders as
	// a bare SingleKey (MuSig requires 2+ members to mean anything).
	pol := policy.NewAnd[string](policy.KeyNode[string]{Key: "A"}, policy.Sha256[string]{Hash: [32]byte{2}})
	fallback := "UNSPENDABLE"
	internalKey, pruned, err := ExtractKey[string](pol, &fallback)
	if err != nil {
		t.Fatalf("ExtractKey: %v", err)
	}
	single, ok := internalKey.(keyexpr.SingleKey[string])
	if !ok || single.Key != "A" {
		t.Errorf("internalKey = %+v, want SingleKey{A} (the policy's one Key leaf)", internalKey)
	}
	if !policy.Equal[string](pruned, pol) {
		t.Error("pruned policy should be unchanged: the fallback path never prunes")
	}
}

func TestExtractKeyFallbackAggregatesMultipleKeys(t *testing.T) {
	// and(pk(A), and(pk(B), sha256(h))): no Key/And/Threshold candidate
	// scores (the outer And's second child isn't a bare Key), but the
	// policy has two Key leaves, so the fallback path aggregates both
	// into a MuSig internal key.
	inner := policy.NewAnd[string](policy.KeyNode[string]{Key: "B"}, policy.Sha256[string]{Hash: [32]byte{3}})
	pol := policy.NewAnd[string](policy.KeyNode[string]{Key: "A"}, inner)
	fallback := "UNSPENDABLE"
	internalKey, pruned, err := ExtractKey[string](pol, &fallback)
	if err != nil {
		t.Fatalf("ExtractKey: %v", err)
	}
	musig, ok := internalKey.(keyexpr.MuSig[string])
	if !ok {
		t.Fatalf("internalKey = %T, want keyexpr.MuSig", internalKey)
	}
	got := keyexpr.Leaves[string](musig)
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("aggregated keys = %v, want [A B]", got)
	}
	if !policy.Equal[string](pruned, pol) {
		t.Error("pruned policy should be unchanged: the fallback path never prunes")
	}
}

func TestExtractKeyNoViableInternalKeyWithoutFallback(t *testing.T) {
	pol := policy.Sha256[string]{Hash: [32]byte{3}}
	if _, _, err := ExtractKey[string](pol, nil); err == nil {
		t.Error("expected ErrNoViableInternalKey")
	}
}

func TestPruneUnsatisfiableKeepsPartialThreshold(t *testing.T) {
	// thresh(2, pk(A), pk(B), pk(C)) is a *partial* threshold
	// (k=2 < len(subs)=3): even when it is itself the selected
	// candidate, §4.5 step 5 keeps it verbatim instead of replacing it
	// with Unsatisfiable, since folding its keys into the internal key
	// doesn't exhaust its own satisfaction (a script-path spend could
	// still use any 2-of-3 combination).
	partial := policy.NewThreshold[string](2,
		policy.KeyNode[string]{Key: "A"},
		policy.KeyNode[string]{Key: "B"},
		policy.KeyNode[string]{Key: "C"},
	)
	got := pruneUnsatisfiable[string](partial, partial)
	if !policy.Equal[string](got, partial) {
		t.Errorf("pruneUnsatisfiable should leave a partial threshold unchanged, got %+v", got)
	}
}

func TestPruneUnsatisfiableReplacesFullThreshold(t *testing.T) {
	// thresh(2, pk(A), pk(B)) is a *full* threshold (k == len(subs)):
	// when selected as the internal-key candidate it is replaced by
	// Unsatisfiable, since its only satisfaction path is exactly the
	// internal key's musig.
	full := policy.NewThreshold[string](2,
		policy.KeyNode[string]{Key: "A"},
		policy.KeyNode[string]{Key: "B"},
	)
	got := pruneUnsatisfiable[string](full, full)
	if _, ok := got.(policy.Unsatisfiable[string]); !ok {
		t.Errorf("pruneUnsatisfiable(full threshold) = %+v, want Unsatisfiable", got)
	}
}
