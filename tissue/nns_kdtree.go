package tissue

import (
	"math"
	"sort"
)

// kdNode is one node of a 2-D k-d tree, splitting alternately on x and y.
type kdNode struct {
	id          CellId
	x, y        float64
	axis        int
	left, right *kdNode
}

// kdTree is the exact-reference NNS backend of spec.md §4.2.3. It is
// rebuilt from scratch in every Setup() call, which keeps query logic
// simple (no incremental rebalancing) at the cost of an O(n log^2 n)
// rebuild per iteration — acceptable since this backend is either the
// fallback for unpacked domains or the ground truth for a precision
// cross-check, not the default choice at scale.
type kdTree struct {
	order  []CellId
	pos    map[CellId][2]float64
	root   *kdNode
	cursor int

	queryBuf []CellId
}

func newKDTree() *kdTree {
	return &kdTree{pos: make(map[CellId][2]float64)}
}

func (t *kdTree) AddPosition(x, y float64, id CellId) {
	t.order = append(t.order, id)
	t.pos[id] = [2]float64{x, y}
}

func (t *kdTree) Setup() {
	ids := make([]CellId, len(t.order))
	copy(ids, t.order)
	t.root = t.build(ids, 0)
}

func (t *kdTree) build(ids []CellId, depth int) *kdNode {
	if len(ids) == 0 {
		return nil
	}
	axis := depth % 2
	sort.Slice(ids, func(i, j int) bool {
		pi, pj := t.pos[ids[i]], t.pos[ids[j]]
		if axis == 0 {
			return pi[0] < pj[0]
		}
		return pi[1] < pj[1]
	})
	mid := len(ids) / 2
	p := t.pos[ids[mid]]
	n := &kdNode{id: ids[mid], x: p[0], y: p[1], axis: axis}
	n.left = t.build(ids[:mid], depth+1)
	n.right = t.build(ids[mid+1:], depth+1)
	return n
}

func (t *kdTree) SetStartPosition() { t.cursor = -1 }

func (t *kdTree) HasNextPosition() bool {
	t.cursor++
	return t.cursor < len(t.order)
}

func (t *kdTree) CurrentCellId() CellId { return t.order[t.cursor] }

func (t *kdTree) QueryCurrentRange(r float64) []CellId {
	t.queryBuf = t.queryBuf[:0]
	id := t.CurrentCellId()
	p := t.pos[id]
	t.rangeSearch(t.root, p[0], p[1], r, id)
	return t.queryBuf
}

func (t *kdTree) rangeSearch(n *kdNode, x, y, r float64, self CellId) {
	if n == nil {
		return
	}
	dx := n.x - x
	dy := n.y - y
	if n.id != self && dx*dx+dy*dy <= r*r {
		t.queryBuf = append(t.queryBuf, n.id)
	}
	var axisDist float64
	var near, far *kdNode
	if n.axis == 0 {
		axisDist = x - n.x
	} else {
		axisDist = y - n.y
	}
	if axisDist <= 0 {
		near, far = n.left, n.right
	} else {
		near, far = n.right, n.left
	}
	t.rangeSearch(near, x, y, r, self)
	if math.Abs(axisDist) <= r {
		t.rangeSearch(far, x, y, r, self)
	}
}

func (t *kdTree) UpdateAllPositions(curr []Cell) {
	for id := range t.pos {
		c := &curr[id]
		t.pos[id] = [2]float64{c.X, c.Y}
	}
}
