package keyexpr

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr/musig2"
)

// PubKeyOf resolves a Pk leaf to its real secp256k1 public key.
type PubKeyOf[Pk comparable] func(Pk) (*btcec.PublicKey, error)

// Aggregate resolves e to a single secp256k1 public key, recursively
// MuSig2-aggregating any nested MuSig the way nested aggregation is
// actually computed: musig(C,musig(D,E)) first aggregates D and E, then
// aggregates C with that result — it is not the same key as a single
// flat aggregation over [C,D,E], because MuSig2's per-signer
// coefficients depend on the exact key set passed to AggregateKeys at
// each level. Leaves (for key enumeration, e.g. miniscript.FlattenKeys) and
// Aggregate (for the actual spending key) are deliberately different
// walks for this reason.
func Aggregate[Pk comparable](e KeyExpr[Pk], pubKeyOf PubKeyOf[Pk]) (*btcec.PublicKey, error) {
	switch n := e.(type) {
	case SingleKey[Pk]:
		pk, err := pubKeyOf(n.Key)
		if err != nil {
			return nil, fmt.Errorf("resolving key: %w", err)
		}
		return pk, nil

	case MuSig[Pk]:
		if len(n.Members) == 0 {
			return nil, ErrNoLeaves
		}
		members := make([]*btcec.PublicKey, len(n.Members))
		for i, m := range n.Members {
			pk, err := Aggregate(m, pubKeyOf)
			if err != nil {
				return nil, err
			}
			members[i] = pk
		}
		// sort=true makes the aggregate key independent of the order
		// the members were listed in, matching BIP327's key-sort step.
		aggKey, _, _, err := musig2.AggregateKeys(members, true)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAggregationFailed, err)
		}
		return aggKey.FinalKey, nil

	default:
		return nil, ErrNoLeaves
	}
}
