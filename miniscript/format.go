package miniscript

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// KeyStringer renders a Pk back into the text a caller's key parser would
// accept, mirroring policy.KeyStringer.
type KeyStringer[Pk comparable] func(Pk) string

// Format renders n in the wrapper-letter grammar Miniscript fragments are
// conventionally printed in (and_v(...), older(9), pk(A)...). It exists
// for diagnostics and for taproot.Descriptor's own String() — the
// grammar itself is not reparsed anywhere in this module (§1: the
// Miniscript text grammar/decoder is an external concern), so this
// function only needs to be internally consistent, not a byte-for-byte
// match of any other implementation's printer.
func Format[Pk comparable](n Node[Pk], keyString KeyStringer[Pk]) string {
	return formatNode(n, keyString)
}

// wrapperLetter is the single-character code a unary wrapper prints as
// when chained with its neighbors (a:s:c:... before the terminal
// fragment's own parens).
func wrapperLetter[Pk comparable](n Node[Pk]) (byte, Node[Pk], bool) {
	switch v := n.(type) {
	case Alt[Pk]:
		return 'a', v.Sub, true
	case Swap[Pk]:
		return 's', v.Sub, true
	case Check[Pk]:
		return 'c', v.Sub, true
	case DupIf[Pk]:
		return 'd', v.Sub, true
	case Verify[Pk]:
		return 'v', v.Sub, true
	case NonZero[Pk]:
		return 'j', v.Sub, true
	case ZeroNotEqual[Pk]:
		return 'n', v.Sub, true
	default:
		return 0, nil, false
	}
}

func formatNode[Pk comparable](n Node[Pk], keyString KeyStringer[Pk]) string {
	if _, _, isWrapper := wrapperLetter(n); isWrapper {
		var letters strings.Builder
		cur := n
		for {
			l, sub, ok := wrapperLetter(cur)
			if !ok {
				break
			}
			letters.WriteByte(l)
			cur = sub
		}
		// The bare "c:pk_k(...)"/"c:pk_h(...)" chain is conventionally
		// shortened to "pk(...)"/"pkh(...)" — but only when "c" is the
		// *entire* wrapper chain, not a suffix of a longer one (a
		// wrapped "vc:pk_k(x)" prints verbosely, it does not collapse to
		// "v:pk(x)").
		if letters.String() == "c" {
			switch t := cur.(type) {
			case PkK[Pk]:
				return fmt.Sprintf("pk(%s)", keyString(t.Key))
			case PkH[Pk]:
				return fmt.Sprintf("pkh(%s)", keyString(t.Key))
			}
		}
		return letters.String() + ":" + formatNode(cur, keyString)
	}

	switch t := n.(type) {
	case PkK[Pk]:
		return fmt.Sprintf("pk_k(%s)", keyString(t.Key))
	case PkH[Pk]:
		return fmt.Sprintf("pk_h(%s)", keyString(t.Key))
	case RawPkH[Pk]:
		return fmt.Sprintf("expr_raw_pkh(%s)", hex.EncodeToString(t.Hash[:]))
	case Multi[Pk]:
		parts := make([]string, len(t.Keys))
		for i, k := range t.Keys {
			parts[i] = keyString(k)
		}
		return fmt.Sprintf("multi(%d,%s)", t.K, strings.Join(parts, ","))
	case MultiA[Pk]:
		parts := make([]string, len(t.Keys))
		for i, k := range t.Keys {
			parts[i] = keyString(k)
		}
		return fmt.Sprintf("multi_a(%d,%s)", t.K, strings.Join(parts, ","))
	case After[Pk]:
		return fmt.Sprintf("after(%d)", t.N)
	case Older[Pk]:
		return fmt.Sprintf("older(%d)", t.N)
	case Sha256[Pk]:
		return fmt.Sprintf("sha256(%s)", hex.EncodeToString(t.Hash[:]))
	case Hash256[Pk]:
		return fmt.Sprintf("hash256(%s)", hex.EncodeToString(t.Hash[:]))
	case Ripemd160[Pk]:
		return fmt.Sprintf("ripemd160(%s)", hex.EncodeToString(t.Hash[:]))
	case Hash160[Pk]:
		return fmt.Sprintf("hash160(%s)", hex.EncodeToString(t.Hash[:]))
	case Impossible[Pk]:
		return "0"
	case Unconditional[Pk]:
		return "1"
	case AndV[Pk]:
		return fmt.Sprintf("and_v(%s,%s)", formatNode(t.Subs[0], keyString), formatNode(t.Subs[1], keyString))
	case AndB[Pk]:
		return fmt.Sprintf("and_b(%s,%s)", formatNode(t.Subs[0], keyString), formatNode(t.Subs[1], keyString))
	case OrB[Pk]:
		return fmt.Sprintf("or_b(%s,%s)", formatNode(t.Subs[0], keyString), formatNode(t.Subs[1], keyString))
	case OrD[Pk]:
		return fmt.Sprintf("or_d(%s,%s)", formatNode(t.Subs[0], keyString), formatNode(t.Subs[1], keyString))
	case OrC[Pk]:
		return fmt.Sprintf("or_c(%s,%s)", formatNode(t.Subs[0], keyString), formatNode(t.Subs[1], keyString))
	case OrI[Pk]:
		return fmt.Sprintf("or_i(%s,%s)", formatNode(t.Subs[0], keyString), formatNode(t.Subs[1], keyString))
	case AndOr[Pk]:
		return fmt.Sprintf("andor(%s,%s,%s)", formatNode(t.Subs[0], keyString), formatNode(t.Subs[1], keyString), formatNode(t.Subs[2], keyString))
	case Thresh[Pk]:
		parts := make([]string, len(t.Subs))
		for i, sub := range t.Subs {
			parts[i] = formatNode(sub, keyString)
		}
		return fmt.Sprintf("thresh(%d,%s)", t.K, strings.Join(parts, ","))
	default:
		return "0"
	}
}
