package taproot

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/klingon-exchange/taprootpolicy/internal/chain"
	"github.com/klingon-exchange/taprootpolicy/keyexpr"
	"github.com/klingon-exchange/taprootpolicy/miniscript"
)

// Descriptor is a compiled Taproot spending condition: an internal key,
// plus an optional TapTree of alternative script-path spends (nil for a
// key-path-only descriptor).
type Descriptor[Pk comparable] struct {
	InternalKey keyexpr.KeyExpr[Pk]
	Tree        *TapTree[Pk]
}

// leafProof is a TapLeaf's compiled script plus the sibling hashes from
// the leaf up to the tree root, computed by walking Descriptor.Tree once.
type leafProof struct {
	leaf           txscript.TapLeaf
	inclusionProof []byte
}

// buildTapNode recursively turns a TapTree into real txscript.TapLeaf /
// txscript.TapBranch nodes, collecting each leaf's inclusion proof along
// the way. txscript.AssembleTaprootScriptTree only ever builds its own
// balanced pairing over a flat leaf list, which would discard the
// Huffman shape C7 computed — so this walks our own tree directly with
// the same public TapBranch/TapLeaf primitives AssembleTaprootScriptTree
// itself is built from.
func buildTapNode[Pk comparable](t *TapTree[Pk], keyOf keyexpr.PubKeyOf[Pk], proofs *[]*leafProof) (txscript.TapNode, error) {
	if t.IsLeaf() {
		script, err := scriptOf[Pk](t.Leaf, keyOf)
		if err != nil {
			return nil, err
		}
		tapLeaf := txscript.NewBaseTapLeaf(script)
		p := &leafProof{leaf: tapLeaf}
		*proofs = append(*proofs, p)
		return tapLeaf, nil
	}

	leftStart := len(*proofs)
	left, err := buildTapNode[Pk](t.Left, keyOf, proofs)
	if err != nil {
		return nil, err
	}
	rightStart := len(*proofs)
	right, err := buildTapNode[Pk](t.Right, keyOf, proofs)
	if err != nil {
		return nil, err
	}

	branch := txscript.NewTapBranch(left, right)
	leftHash := left.TapHash()
	rightHash := right.TapHash()

	for _, p := range (*proofs)[leftStart:rightStart] {
		p.inclusionProof = append(p.inclusionProof, rightHash[:]...)
	}
	for _, p := range (*proofs)[rightStart:] {
		p.inclusionProof = append(p.inclusionProof, leftHash[:]...)
	}

	return branch, nil
}

// Output assembles the descriptor into the scriptPubKey and address a
// wallet would actually pay to: it aggregates the internal key (via
// keyexpr.Aggregate), commits the TapTree's leaves into a Taproot output
// key (via txscript.ComputeTaprootOutputKey / ComputeTaprootKeyNoScript
// for a key-path-only descriptor), and encodes the result as a
// network-appropriate btcutil.Address.
func (d *Descriptor[Pk]) Output(network chain.Network, keyOf keyexpr.PubKeyOf[Pk]) (scriptPubKey []byte, address btcutil.Address, err error) {
	params, ok := chain.Get(network)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, network)
	}

	internalPub, err := keyexpr.Aggregate(d.InternalKey, keyOf)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoOutputKey, err)
	}

	var outputKey *btcec.PublicKey
	if d.Tree == nil {
		outputKey = txscript.ComputeTaprootKeyNoScript(internalPub)
	} else {
		var proofs []*leafProof
		root, err := buildTapNode[Pk](d.Tree, keyOf, &proofs)
		if err != nil {
			return nil, nil, err
		}
		rootHash := root.TapHash()
		outputKey = txscript.ComputeTaprootOutputKey(internalPub, rootHash[:])
	}

	scriptPubKey, err = outputScript(outputKey)
	if err != nil {
		return nil, nil, err
	}

	addr, err := btcutil.NewAddressTaproot(outputKeyXOnly(outputKey), toChainCfgParams(params))
	if err != nil {
		return nil, nil, fmt.Errorf("taproot: deriving address: %w", err)
	}
	return scriptPubKey, addr, nil
}

func outputScript(outputKey *btcec.PublicKey) ([]byte, error) {
	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_1)
	b.AddData(outputKeyXOnly(outputKey))
	return b.Script()
}

func outputKeyXOnly(outputKey *btcec.PublicKey) []byte {
	return schnorrSerialize(outputKey)
}

// toChainCfgParams adapts this module's internal/chain.Params to the
// *chaincfg.Params btcutil's address constructors require, carrying over
// only the fields Taproot address derivation actually reads.
func toChainCfgParams(params *chain.Params) *chaincfg.Params {
	return &chaincfg.Params{
		Name:                    params.Name,
		PubKeyHashAddrID:        params.PubKeyHashAddrID,
		ScriptHashAddrID:        params.ScriptHashAddrID,
		Bech32HRPSegwit:         params.Bech32HRP,
	}
}

// MaxSatisfactionWeight computes the worst-case script-path witness
// weight across the descriptor's TapTree leaves, per the original
// implementation's fee-estimation accounting: for each leaf, 4 bytes of
// leaf-version/control-byte overhead, plus the control block's length,
// plus the script's own compact-size-prefixed length, plus the
// compact-size-prefixed witness size MaxSatisfactionSize reports. The
// descriptor as a whole reports the MAXIMUM of these across its leaves —
// not the cheapest — since a wallet budgeting fees for a Taproot output
// cannot assume in advance which script path will end up being spent,
// and must provision for whichever one turns out to be the most
// expensive. A key-path-only descriptor (no Tree) has no script-path
// cost to report.
func (d *Descriptor[Pk]) MaxSatisfactionWeight(keyOf keyexpr.PubKeyOf[Pk]) (int, error) {
	if d.Tree == nil {
		return 0, nil
	}

	leaves := d.Tree.Leaves()
	worst := -1
	for _, leaf := range leaves {
		sat, ok := miniscript.MaxSatisfactionSize[Pk](leaf.Node)
		if !ok {
			continue
		}
		script, err := scriptOf[Pk](leaf.Node, keyOf)
		if err != nil {
			return 0, err
		}
		controlBlockLen := 33 + 32*leaf.Depth
		weight := 4 + controlBlockLen + compactSizeLen(len(script)) + len(script) +
			compactSizeLen(sat.Elements) + sat.Bytes
		if weight > worst {
			worst = weight
		}
	}
	if worst == -1 {
		return 0, fmt.Errorf("taproot: no tap tree leaf has an accountable satisfaction")
	}
	return worst, nil
}

// compactSizeLen returns the number of bytes Bitcoin's CompactSize
// encoding needs to represent n, the same rule wire.VarIntSerializeSize
// implements.
func compactSizeLen(n int) int {
	switch {
	case n < 0xfd:
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}
