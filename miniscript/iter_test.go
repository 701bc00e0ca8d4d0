package miniscript

import (
	"testing"

	"github.com/klingon-exchange/taprootpolicy/keyexpr"
)

func ke(k string) keyexpr.KeyExpr[string] { return keyexpr.SingleKey[string]{Key: k} }

func mustMuSig(t *testing.T, members ...keyexpr.KeyExpr[string]) keyexpr.KeyExpr[string] {
	t.Helper()
	e, err := keyexpr.NewMuSig(members...)
	if err != nil {
		t.Fatalf("NewMuSig: %v", err)
	}
	return e
}

// s6Node builds the S6 fixture: or_b(pk(musig(A1,A2)),
// a:multi_a(1,B,musig(C,musig(D,E)))).
func s6Node(t *testing.T) Node[keyexpr.KeyExpr[string]] {
	t.Helper()
	a1a2 := mustMuSig(t, ke("A1"), ke("A2"))
	de := mustMuSig(t, ke("D"), ke("E"))
	cde := mustMuSig(t, ke("C"), de)
	return OrB[keyexpr.KeyExpr[string]]{Subs: [2]Node[keyexpr.KeyExpr[string]]{
		Check[keyexpr.KeyExpr[string]]{Sub: PkK[keyexpr.KeyExpr[string]]{Key: a1a2}},
		Alt[keyexpr.KeyExpr[string]]{Sub: MultiA[keyexpr.KeyExpr[string]]{K: 1, Keys: []keyexpr.KeyExpr[string]{ke("B"), cde}}},
	}}
}

func TestS6PkIterFlattensMusigInsideMultiA(t *testing.T) {
	root := s6Node(t)
	got := FlattenKeys[string](root)
	want := []string{"A1", "A2", "B", "C", "D", "E"}
	if len(got) != len(want) {
		t.Fatalf("FlattenKeys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FlattenKeys[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNodeIterPreorder(t *testing.T) {
	// and_v(v:pk(A),older(9)) — preorder: AndV, Verify, Check, PkK, Older.
	leaf := AndV[string]{Subs: [2]Node[string]{
		Verify[string]{Sub: Check[string]{Sub: PkK[string]{Key: "A"}}},
		Older[string]{N: 9},
	}}
	it := NewNodeIter[string](leaf)
	var kinds []string
	for {
		n, ok := it.Next()
		if !ok {
			break
		}
		switch n.(type) {
		case AndV[string]:
			kinds = append(kinds, "AndV")
		case Verify[string]:
			kinds = append(kinds, "Verify")
		case Check[string]:
			kinds = append(kinds, "Check")
		case PkK[string]:
			kinds = append(kinds, "PkK")
		case Older[string]:
			kinds = append(kinds, "Older")
		default:
			t.Fatalf("unexpected node kind %T", n)
		}
	}
	want := []string{"AndV", "Verify", "Check", "PkK", "Older"}
	if len(kinds) != len(want) {
		t.Fatalf("preorder = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("preorder[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestBranchesArityByKind(t *testing.T) {
	if got := Branches[string](PkK[string]{Key: "A"}); got != nil {
		t.Errorf("Branches(PkK) = %v, want nil", got)
	}
	if got := Branches[string](Check[string]{Sub: PkK[string]{Key: "A"}}); len(got) != 1 {
		t.Errorf("Branches(Check) has %d children, want 1", len(got))
	}
	if got := Branches[string](AndV[string]{Subs: [2]Node[string]{PkK[string]{Key: "A"}, PkK[string]{Key: "B"}}}); len(got) != 2 {
		t.Errorf("Branches(AndV) has %d children, want 2", len(got))
	}
	andOr := AndOr[string]{Subs: [3]Node[string]{PkK[string]{Key: "A"}, PkK[string]{Key: "B"}, PkK[string]{Key: "C"}}}
	if got := Branches[string](andOr); len(got) != 3 {
		t.Errorf("Branches(AndOr) has %d children, want 3", len(got))
	}
	thresh := Thresh[string]{K: 2, Subs: []Node[string]{PkK[string]{Key: "A"}, PkK[string]{Key: "B"}, PkK[string]{Key: "C"}}}
	if got := Branches[string](thresh); len(got) != 3 {
		t.Errorf("Branches(Thresh) has %d children, want 3", len(got))
	}
}

func TestPkIterAndPkPkhIterAgreeWithoutRawPkh(t *testing.T) {
	root := Multi[string]{K: 2, Keys: []string{"A", "B", "C"}}
	plain := PkOnly[string](root)
	it := NewPkPkhIter[string](root)
	tagged := it.PkOnly()
	if len(plain) != len(tagged) {
		t.Fatalf("PkOnly = %v, tagged PkOnly = %v", plain, tagged)
	}
	for i := range plain {
		if plain[i] != tagged[i] {
			t.Errorf("index %d: PkOnly=%s tagged=%s", i, plain[i], tagged[i])
		}
	}
}

func TestTaggedPkOnlyEmptyOnRawPkh(t *testing.T) {
	root := AndV[string]{Subs: [2]Node[string]{
		Check[string]{Sub: PkK[string]{Key: "A"}},
		RawPkH[string]{Hash: [20]byte{1, 2, 3}},
	}}
	it := NewPkPkhIter[string](root)
	if got := it.PkOnly(); got != nil {
		t.Errorf("PkOnly() with a RawPkH present = %v, want nil", got)
	}
}

func TestPkPkhIterPkHKeyThenHash(t *testing.T) {
	// A PkH node yields its key immediately followed by its own hash in
	// the combined stream.
	root := PkH[string]{Key: "A", Hash: [20]byte{9}}
	it := NewPkPkhIter[string](root)
	first, ok := it.Next()
	if !ok || first.IsHash || first.Pk != "A" {
		t.Fatalf("first item = %+v, want plain key A", first)
	}
	second, ok := it.Next()
	if !ok || !second.IsHash || second.Hash != ([20]byte{9}) {
		t.Fatalf("second item = %+v, want hash commitment", second)
	}
	if _, ok := it.Next(); ok {
		t.Error("expected iterator exhausted after key+hash pair")
	}
}

func TestNthPkAndNthPkHash(t *testing.T) {
	root := Multi[string]{K: 2, Keys: []string{"A", "B", "C"}}
	if k, ok := NthPk[string](root, 1); !ok || k != "B" {
		t.Errorf("NthPk(1) = %v,%v want B,true", k, ok)
	}
	if _, ok := NthPk[string](root, 5); ok {
		t.Error("NthPk(5) should be out of range")
	}

	// Open Question 2: PkK/MultiA contribute no hash commitments.
	pkkRoot := PkK[string]{Key: "A"}
	if _, ok := NthPkHash[string](pkkRoot, 0); ok {
		t.Error("NthPkHash on a bare PkK should be empty")
	}
	multiARoot := MultiA[string]{K: 1, Keys: []string{"A", "B"}}
	if _, ok := NthPkHash[string](multiARoot, 0); ok {
		t.Error("NthPkHash on a bare MultiA should be empty")
	}

	rawRoot := RawPkH[string]{Hash: [20]byte{7}}
	hash, ok := NthPkHash[string](rawRoot, 0)
	if !ok || hash != ([20]byte{7}) {
		t.Errorf("NthPkHash(RawPkH) = %v,%v, want the raw hash", hash, ok)
	}
}
