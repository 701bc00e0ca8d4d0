package miniscript

// Context names the script context a Node is compiled for. The wrapper
// letters, opcodes, and key-size rules a Miniscript fragment compiles to
// all vary by context (an x-only Schnorr key in Tap differs from a
// compressed ECDSA key in Legacy), but this package only needs the tag
// itself: the actual per-context encoding rules live with whatever
// external compiler implements Compiler.
type Context int

const (
	// ContextLegacy is bare/P2PKH script (no segwit).
	ContextLegacy Context = iota
	// ContextP2sh is P2SH-wrapped bare script.
	ContextP2sh
	// ContextSegwitV0 is P2WSH / P2SH-P2WSH.
	ContextSegwitV0
	// ContextTap is a Tapscript leaf (BIP342), the only context this
	// module's own compiler and compiler actually drive end to end.
	ContextTap
)

func (c Context) String() string {
	switch c {
	case ContextLegacy:
		return "legacy"
	case ContextP2sh:
		return "p2sh"
	case ContextSegwitV0:
		return "segwitv0"
	case ContextTap:
		return "tap"
	default:
		return "unknown"
	}
}
