package taproot

import "errors"

var (
	// ErrEmptyCompilation is returned by BuildHuffmanTapTree when given no
	// leaves to arrange into a tree.
	ErrEmptyCompilation = errors.New("taproot: cannot build a tap tree from zero leaves")

	// ErrNoViableInternalKey is returned by ExtractKey when no candidate
	// sub-policy scores as a usable internal key and no fallback
	// unspendable key was supplied.
	ErrNoViableInternalKey = errors.New("taproot: no viable internal key and no fallback key supplied")

	// ErrTopLevelNonSafe is returned by CompileTr when the policy's root
	// is not "safe" (some satisfying branch needs no key at all).
	ErrTopLevelNonSafe = errors.New("taproot: policy is not safe at the top level")

	// ErrImpossibleNonMalleableCompilation is returned by CompileTr when
	// the policy is not non-malleable (some satisfying branch can be
	// taken with an arbitrary witness).
	ErrImpossibleNonMalleableCompilation = errors.New("taproot: policy admits a malleable satisfaction")

	// ErrNoOutputKey is returned by Descriptor.Output when the internal
	// key cannot be aggregated into a usable secp256k1 public key.
	ErrNoOutputKey = errors.New("taproot: unable to resolve descriptor internal key")

	// ErrUnknownNetwork is returned by Descriptor.Output when asked to
	// derive an address for a network internal/chain has no Params for.
	ErrUnknownNetwork = errors.New("taproot: unknown network")
)
