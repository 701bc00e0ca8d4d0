package taproot

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"

	"github.com/klingon-exchange/taprootpolicy/keyexpr"
	"github.com/klingon-exchange/taprootpolicy/miniscript"
)

// scriptOf serializes a compiled Node into the Tapscript byte sequence it
// represents, following the conventional Miniscript-to-script encoding
// table (the same one rust-miniscript's Tapscript backend implements).
// It covers the fragment set this module's own DefaultCompiler produces
// plus the handful of sibling combinators a hand-built Node tree might
// reasonably use; it is not a general-purpose Miniscript-to-script
// compiler (that full backend, including script-size optimization across
// alternative encodings, is out of scope per this module's purpose — see
// SPEC_FULL.md §1), only the rendering step a compiled Node still needs
// to become a real TapLeaf.
func scriptOf[Pk comparable](n miniscript.Node[Pk], keyOf keyexpr.PubKeyOf[Pk]) ([]byte, error) {
	b := txscript.NewScriptBuilder()
	if err := appendNode(b, n, keyOf); err != nil {
		return nil, err
	}
	return b.Script()
}

func appendNode[Pk comparable](b *txscript.ScriptBuilder, n miniscript.Node[Pk], keyOf keyexpr.PubKeyOf[Pk]) error {
	switch t := n.(type) {
	case miniscript.Impossible[Pk]:
		b.AddOp(txscript.OP_0)
	case miniscript.Unconditional[Pk]:
		b.AddOp(txscript.OP_1)

	case miniscript.PkK[Pk]:
		xonly, err := xOnlyBytes(t.Key, keyOf)
		if err != nil {
			return err
		}
		b.AddData(xonly)
	case miniscript.PkH[Pk]:
		b.AddOp(txscript.OP_DUP)
		b.AddOp(txscript.OP_HASH160)
		hash := t.Hash
		b.AddData(hash[:])
		b.AddOp(txscript.OP_EQUALVERIFY)
	case miniscript.RawPkH[Pk]:
		b.AddOp(txscript.OP_DUP)
		b.AddOp(txscript.OP_HASH160)
		hash := t.Hash
		b.AddData(hash[:])
		b.AddOp(txscript.OP_EQUALVERIFY)

	case miniscript.Multi[Pk]:
		b.AddInt64(int64(t.K))
		for _, k := range t.Keys {
			xonly, err := xOnlyBytes(k, keyOf)
			if err != nil {
				return err
			}
			b.AddData(xonly)
		}
		b.AddInt64(int64(len(t.Keys)))
		b.AddOp(txscript.OP_CHECKMULTISIG)
	case miniscript.MultiA[Pk]:
		for i, k := range t.Keys {
			xonly, err := xOnlyBytes(k, keyOf)
			if err != nil {
				return err
			}
			b.AddData(xonly)
			if i == 0 {
				b.AddOp(txscript.OP_CHECKSIG)
			} else {
				b.AddOp(txscript.OP_CHECKSIGADD)
			}
		}
		b.AddInt64(int64(t.K))
		b.AddOp(txscript.OP_NUMEQUAL)

	case miniscript.After[Pk]:
		b.AddInt64(int64(t.N))
		b.AddOp(txscript.OP_CHECKLOCKTIMEVERIFY)
	case miniscript.Older[Pk]:
		b.AddInt64(int64(t.N))
		b.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)

	case miniscript.Sha256[Pk]:
		appendHashCheck(b, txscript.OP_SHA256, t.Hash[:])
	case miniscript.Hash256[Pk]:
		appendHashCheck(b, txscript.OP_HASH256, t.Hash[:])
	case miniscript.Ripemd160[Pk]:
		appendHashCheck(b, txscript.OP_RIPEMD160, t.Hash[:])
	case miniscript.Hash160[Pk]:
		appendHashCheck(b, txscript.OP_HASH160, t.Hash[:])

	case miniscript.Alt[Pk]:
		b.AddOp(txscript.OP_TOALTSTACK)
		if err := appendNode(b, t.Sub, keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_FROMALTSTACK)
	case miniscript.Swap[Pk]:
		b.AddOp(txscript.OP_SWAP)
		return appendNode(b, t.Sub, keyOf)
	case miniscript.Check[Pk]:
		if err := appendNode(b, t.Sub, keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_CHECKSIG)
	case miniscript.DupIf[Pk]:
		b.AddOp(txscript.OP_DUP)
		b.AddOp(txscript.OP_IF)
		if err := appendNode(b, t.Sub, keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_ENDIF)
	case miniscript.Verify[Pk]:
		if err := appendNode(b, t.Sub, keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_VERIFY)
	case miniscript.NonZero[Pk]:
		b.AddOp(txscript.OP_SIZE)
		b.AddOp(txscript.OP_0NOTEQUAL)
		b.AddOp(txscript.OP_IF)
		if err := appendNode(b, t.Sub, keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_ENDIF)
	case miniscript.ZeroNotEqual[Pk]:
		if err := appendNode(b, t.Sub, keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_0NOTEQUAL)

	case miniscript.AndV[Pk]:
		if err := appendNode(b, t.Subs[0], keyOf); err != nil {
			return err
		}
		return appendNode(b, t.Subs[1], keyOf)
	case miniscript.AndB[Pk]:
		if err := appendNode(b, t.Subs[0], keyOf); err != nil {
			return err
		}
		if err := appendNode(b, t.Subs[1], keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_BOOLAND)
	case miniscript.OrB[Pk]:
		if err := appendNode(b, t.Subs[0], keyOf); err != nil {
			return err
		}
		if err := appendNode(b, t.Subs[1], keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_BOOLOR)
	case miniscript.OrD[Pk]:
		if err := appendNode(b, t.Subs[0], keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_IFDUP)
		b.AddOp(txscript.OP_NOTIF)
		if err := appendNode(b, t.Subs[1], keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_ENDIF)
	case miniscript.OrC[Pk]:
		if err := appendNode(b, t.Subs[0], keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_NOTIF)
		if err := appendNode(b, t.Subs[1], keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_ENDIF)
	case miniscript.OrI[Pk]:
		b.AddOp(txscript.OP_IF)
		if err := appendNode(b, t.Subs[0], keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_ELSE)
		if err := appendNode(b, t.Subs[1], keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_ENDIF)
	case miniscript.AndOr[Pk]:
		if err := appendNode(b, t.Subs[0], keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_NOTIF)
		if err := appendNode(b, t.Subs[2], keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_ELSE)
		if err := appendNode(b, t.Subs[1], keyOf); err != nil {
			return err
		}
		b.AddOp(txscript.OP_ENDIF)

	case miniscript.Thresh[Pk]:
		for i, sub := range t.Subs {
			if err := appendNode(b, sub, keyOf); err != nil {
				return err
			}
			if i > 0 {
				b.AddOp(txscript.OP_ADD)
			}
		}
		b.AddInt64(int64(t.K))
		b.AddOp(txscript.OP_EQUAL)

	default:
		return fmt.Errorf("taproot: no script encoding for node type %T", n)
	}
	return nil
}

func appendHashCheck(b *txscript.ScriptBuilder, hashOp byte, digest []byte) {
	b.AddOp(txscript.OP_SIZE)
	b.AddInt64(32)
	b.AddOp(txscript.OP_EQUALVERIFY)
	b.AddOp(hashOp)
	b.AddData(digest)
	b.AddOp(txscript.OP_EQUAL)
}

// xOnlyBytes resolves k to its 32-byte x-only Schnorr encoding.
func xOnlyBytes[Pk comparable](k Pk, keyOf keyexpr.PubKeyOf[Pk]) ([]byte, error) {
	pub, err := keyOf(k)
	if err != nil {
		return nil, fmt.Errorf("resolving key for script emission: %w", err)
	}
	return schnorr.SerializePubKey(pub), nil
}
