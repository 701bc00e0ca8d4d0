package taproot

import (
	"errors"
	"testing"

	"github.com/klingon-exchange/taprootpolicy/internal/config"
	"github.com/klingon-exchange/taprootpolicy/keyexpr"
	"github.com/klingon-exchange/taprootpolicy/miniscript"
	"github.com/klingon-exchange/taprootpolicy/policy"
)

func keyParseString(s string) (string, error) { return s, nil }

// s4Policy builds the §8 S4 fixture:
// or(99@thresh(2,pk(hA),pk(S)),1@or(99@pk(Ca),1@and(pk(In),older(9))))
func s4Policy(t *testing.T) policy.Policy[string] {
	t.Helper()
	pol, err := policy.Parse[string](
		"or(99@thresh(2,pk(hA),pk(S)),1@or(99@pk(Ca),1@and(pk(In),older(9))))",
		keyParseString,
	)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return pol
}

func TestCompileTrS4InternalKeyAndTapTree(t *testing.T) {
	pol := s4Policy(t)
	unspendable := "UNSPENDABLE_KEY"

	desc, err := CompileTr[string](pol, &unspendable, miniscript.DefaultCompiler[string]{}, nil, nil)
	if err != nil {
		t.Fatalf("CompileTr: %v", err)
	}

	musig, ok := desc.InternalKey.(keyexpr.MuSig[string])
	if !ok {
		t.Fatalf("InternalKey = %T, want keyexpr.MuSig", desc.InternalKey)
	}
	gotKeys := keyexpr.Leaves[string](musig)
	wantKeys := []string{"hA", "S"}
	if len(gotKeys) != len(wantKeys) {
		t.Fatalf("internal key leaves = %v, want %v", gotKeys, wantKeys)
	}
	for i := range wantKeys {
		if gotKeys[i] != wantKeys[i] {
			t.Errorf("internal key leaf[%d] = %s, want %s", i, gotKeys[i], wantKeys[i])
		}
	}

	if desc.Tree == nil {
		t.Fatal("expected a non-nil TapTree (pruned policy is not Trivial)")
	}
	leaves := desc.Tree.Leaves()
	if len(leaves) != 2 {
		t.Fatalf("got %d tap leaves, want 2", len(leaves))
	}

	identityKeyString := func(s string) string { return s }
	gotFirst := miniscript.Format[string](leaves[0].Node, identityKeyString)
	gotSecond := miniscript.Format[string](leaves[1].Node, identityKeyString)
	if leaves[0].Depth != 1 || gotFirst != "and_v(vc:pk_k(In),older(9))" {
		t.Errorf("leaf[0] = depth %d %q, want depth 1 \"and_v(vc:pk_k(In),older(9))\"", leaves[0].Depth, gotFirst)
	}
	if leaves[1].Depth != 1 || gotSecond != "pk(Ca)" {
		t.Errorf("leaf[1] = depth %d %q, want depth 1 \"pk(Ca)\"", leaves[1].Depth, gotSecond)
	}
}

func TestCompileTrKeyPathOnlyWhenPrunedTrivial(t *testing.T) {
	// A bare Key policy: the whole policy is consumed as the internal key
	// candidate and the pruned remainder collapses to Trivial (the entire
	// tree was the selected candidate, so nothing is left to script).
	pol := policy.KeyNode[string]{Key: "A"}
	desc, err := CompileTr[string](pol, nil, miniscript.DefaultCompiler[string]{}, nil, nil)
	if err != nil {
		t.Fatalf("CompileTr: %v", err)
	}
	if desc.Tree != nil {
		t.Errorf("expected a key-path-only descriptor, got a non-nil TapTree")
	}
	single, ok := desc.InternalKey.(keyexpr.SingleKey[string])
	if !ok || single.Key != "A" {
		t.Errorf("InternalKey = %+v, want SingleKey{A}", desc.InternalKey)
	}
}

func TestCompileTrRejectsInvalidPolicy(t *testing.T) {
	// and() must be strictly binary; a hand-built 3-ary And is impossible
	// via the real type ([2]Policy[Pk]), so exercise invalidity a
	// different way: a Threshold with K outside [1, len(Subs)].
	pol := policy.Threshold[string]{K: 0, Subs: []policy.Policy[string]{policy.KeyNode[string]{Key: "A"}}}
	if _, err := CompileTr[string](pol, nil, miniscript.DefaultCompiler[string]{}, nil, nil); err == nil {
		t.Error("expected CompileTr to reject an invalid policy")
	}
}

func TestCompileTrRejectsNonSafe(t *testing.T) {
	// A bare timelock has a satisfying branch that needs no key: unsafe.
	pol := policy.Older[string]{N: 100}
	if _, err := CompileTr[string](pol, nil, miniscript.DefaultCompiler[string]{}, nil, nil); err == nil {
		t.Error("expected CompileTr to reject a non-safe policy")
	}
}

func TestCompileTrNoViableInternalKeyWithoutFallback(t *testing.T) {
	// A bare hash-preimage condition scores no internal-key candidate and
	// is also not safe, so under the default config it is rejected at the
	// earlier safety gate. With that gate disabled, CompileTr reaches the
	// internal-key step and fails there without a fallback key; ExtractKey
	// alone fails the same way.
	pol := policy.Sha256[string]{Hash: [32]byte{1}}
	if _, _, err := ExtractKey[string](pol, nil); err == nil {
		t.Error("expected ErrNoViableInternalKey")
	}
	cfg := config.Default()
	cfg.Safety.RequireSafe = false
	if _, err := CompileTr[string](pol, nil, miniscript.DefaultCompiler[string]{}, cfg, nil); !errors.Is(err, ErrNoViableInternalKey) {
		t.Errorf("CompileTr: got %v, want ErrNoViableInternalKey", err)
	}
}
