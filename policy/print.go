package policy

import (
	"fmt"
	"strings"
)

// KeyStringer renders a Pk back into the text Parse's KeyParser would
// accept, so Format and Parse round-trip.
type KeyStringer[Pk comparable] func(Pk) string

// Format renders a policy tree as text in the same grammar Parse accepts.
func Format[Pk comparable](pol Policy[Pk], keyString KeyStringer[Pk]) string {
	var b strings.Builder
	writePolicy(&b, pol, keyString)
	return b.String()
}

func writePolicy[Pk comparable](b *strings.Builder, pol Policy[Pk], keyString KeyStringer[Pk]) {
	switch n := pol.(type) {
	case Unsatisfiable[Pk]:
		b.WriteString("UNSATISFIABLE()")
	case Trivial[Pk]:
		b.WriteString("TRIVIAL()")
	case KeyNode[Pk]:
		fmt.Fprintf(b, "pk(%s)", keyString(n.Key))
	case After[Pk]:
		fmt.Fprintf(b, "after(%d)", n.N)
	case Older[Pk]:
		fmt.Fprintf(b, "older(%d)", n.N)
	case Sha256[Pk]:
		fmt.Fprintf(b, "sha256(%x)", n.Hash)
	case Hash256[Pk]:
		fmt.Fprintf(b, "hash256(%x)", n.Hash)
	case Ripemd160[Pk]:
		fmt.Fprintf(b, "ripemd160(%x)", n.Hash)
	case Hash160[Pk]:
		fmt.Fprintf(b, "hash160(%x)", n.Hash)
	case And[Pk]:
		b.WriteString("and(")
		writePolicy(b, n.Subs[0], keyString)
		b.WriteByte(',')
		writePolicy(b, n.Subs[1], keyString)
		b.WriteByte(')')
	case Or[Pk]:
		b.WriteString("or(")
		fmt.Fprintf(b, "%d@", n.Subs[0].Weight)
		writePolicy(b, n.Subs[0].Sub, keyString)
		b.WriteByte(',')
		fmt.Fprintf(b, "%d@", n.Subs[1].Weight)
		writePolicy(b, n.Subs[1].Sub, keyString)
		b.WriteByte(')')
	case Threshold[Pk]:
		fmt.Fprintf(b, "thresh(%d", n.K)
		for _, sub := range n.Subs {
			b.WriteByte(',')
			writePolicy(b, sub, keyString)
		}
		b.WriteByte(')')
	default:
		b.WriteString("UNSATISFIABLE()")
	}
}
