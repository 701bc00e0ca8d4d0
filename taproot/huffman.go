package taproot

import (
	"container/heap"
	"fmt"

	"github.com/klingon-exchange/taprootpolicy/miniscript"
)

// WeightedLeaf is a candidate tapscript annotated with the probability it
// is the branch actually exercised at spend time — the same weighting
// Policy.Or/Threshold(1,...) branches carry, flattened by tapleafProb.
type WeightedLeaf[Pk comparable] struct {
	Probability float64
	Script      miniscript.Node[Pk]
}

// huffmanEntry is one slot in the priority queue: a partially built
// TapTree plus the aggregate probability of every leaf beneath it. seq
// breaks probability ties in FIFO (insertion) order, so two nodes with
// identical probability are always combined in the same order regardless
// of container/heap's internal comparisons — construction is therefore
// fully deterministic.
type huffmanEntry[Pk comparable] struct {
	probability float64
	seq         int
	tree        *TapTree[Pk]
}

type huffmanQueue[Pk comparable] []*huffmanEntry[Pk]

func (q huffmanQueue[Pk]) Len() int { return len(q) }
func (q huffmanQueue[Pk]) Less(i, j int) bool {
	if q[i].probability != q[j].probability {
		return q[i].probability < q[j].probability
	}
	return q[i].seq < q[j].seq
}
func (q huffmanQueue[Pk]) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *huffmanQueue[Pk]) Push(x any)    { *q = append(*q, x.(*huffmanEntry[Pk])) }
func (q *huffmanQueue[Pk]) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// BuildHuffmanTapTree arranges leaves into a TapTree by repeatedly
// combining the two lowest-probability nodes, so that higher-probability
// (more likely to be exercised) leaves end up shallower and therefore
// cheaper to reveal. The two nodes popped from the queue become,
// respectively, the left and right child of the new branch — the pop
// order, not just the resulting probability, is what a caller's expected
// leaf ordering depends on.
func BuildHuffmanTapTree[Pk comparable](leaves []WeightedLeaf[Pk]) (*TapTree[Pk], error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyCompilation
	}

	q := make(huffmanQueue[Pk], 0, len(leaves))
	seq := 0
	for _, l := range leaves {
		q = append(q, &huffmanEntry[Pk]{probability: l.Probability, seq: seq, tree: leafNode[Pk](l.Script)})
		seq++
	}
	heap.Init(&q)

	for q.Len() > 1 {
		first := heap.Pop(&q).(*huffmanEntry[Pk])
		second := heap.Pop(&q).(*huffmanEntry[Pk])
		merged := &huffmanEntry[Pk]{
			probability: first.probability + second.probability,
			seq:         seq,
			tree:        branchNode[Pk](first.tree, second.tree),
		}
		seq++
		heap.Push(&q, merged)
	}

	root := q[0].tree
	if root == nil {
		return nil, fmt.Errorf("%w: internal Huffman construction produced no tree", ErrEmptyCompilation)
	}
	return root, nil
}
