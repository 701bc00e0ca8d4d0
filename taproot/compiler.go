package taproot

import (
	"fmt"
	"io"

	"github.com/klingon-exchange/taprootpolicy/internal/config"
	"github.com/klingon-exchange/taprootpolicy/keyexpr"
	"github.com/klingon-exchange/taprootpolicy/miniscript"
	"github.com/klingon-exchange/taprootpolicy/pkg/logging"
	"github.com/klingon-exchange/taprootpolicy/policy"
)

// noopLogger discards every entry; it is the default CompileTr traces to
// when a caller passes a nil *logging.Logger, so debug tracing never
// spams a caller's stderr unless explicitly enabled.
var noopLogger = logging.New(&logging.Config{Output: io.Discard, Level: "fatal"})

// CompileTr implements C8: it validates pol, gates on safety/
// non-malleability per cfg.Safety, extracts an internal key (C6),
// compiles the pruned policy's leaves through compiler, and arranges
// them into a TapTree (C7), producing the final Descriptor. cfg and log
// may both be nil, in which case CompileTr uses config.Default() and
// discards trace output respectively.
func CompileTr[Pk comparable](pol policy.Policy[Pk], unspendable *Pk, compiler miniscript.Compiler[Pk], cfg *config.CompilerConfig, log *logging.Logger) (*Descriptor[Pk], error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = noopLogger
	}

	if err := policy.Validate(pol); err != nil {
		return nil, fmt.Errorf("taproot: invalid policy: %w", err)
	}

	safe, nonMalleable := policy.IsSafeNonMalleable(pol)
	if cfg.Safety.RequireSafe && !safe {
		return nil, ErrTopLevelNonSafe
	}
	if cfg.Safety.RequireNonMalleable && !nonMalleable {
		return nil, ErrImpossibleNonMalleableCompilation
	}
	if !safe || !nonMalleable {
		log.Warn("compiling a policy that failed a safety gate the config did not enforce", "safe", safe, "nonMalleable", nonMalleable)
	}

	internalKey, pruned, err := ExtractKey(pol, unspendable)
	if err != nil {
		return nil, err
	}
	log.Debug("selected taproot internal key", "keys", len(keyexpr.Leaves(internalKey)))

	if _, isTrivial := pruned.(policy.Trivial[Pk]); isTrivial {
		log.Debug("pruned policy is trivial, emitting key-path-only descriptor")
		return &Descriptor[Pk]{InternalKey: internalKey, Tree: nil}, nil
	}

	leaves := tapleafProb(pruned, 1.0)
	weighted := make([]WeightedLeaf[Pk], 0, len(leaves))
	for _, leaf := range leaves {
		if _, unsat := leaf.Policy.(policy.Unsatisfiable[Pk]); unsat {
			continue
		}
		node, err := compiler.Compile(miniscript.ContextTap, leaf.Policy)
		if err != nil {
			return nil, fmt.Errorf("taproot: compiling leaf: %w", err)
		}
		if err := compiler.SanityCheck(node); err != nil {
			return nil, fmt.Errorf("taproot: compiled leaf failed sanity check: %w", err)
		}
		weighted = append(weighted, WeightedLeaf[Pk]{Probability: leaf.Prob, Script: node})
	}
	log.Debug("compiled taproot leaves", "count", len(weighted))

	tree, err := BuildHuffmanTapTree(weighted)
	if err != nil {
		return nil, err
	}
	log.Debug("built huffman tap tree", "leaves", len(tree.Leaves()))

	return &Descriptor[Pk]{InternalKey: internalKey, Tree: tree}, nil
}
