package tissue

import "math"

type gridKey struct{ bx, by int }

// squareGrid is the uniform-bucket NNS backend of spec.md §4.2.1: valid
// for an axis-aligned dim_x x dim_y lattice with no DIVIDE rule, since
// cells keep the bucket they were registered into for their whole
// lifetime (they are never re-bucketed on drift).
type squareGrid struct {
	dimX, dimY int
	wrap       bool

	buckets map[gridKey][]CellId
	origin  map[CellId]gridKey
	pos     map[CellId][2]float64

	order  []CellId
	cursor int

	queryBuf []CellId
}

func newSquareGrid(dimX, dimY int, wrap bool) *squareGrid {
	return &squareGrid{
		dimX:    dimX,
		dimY:    dimY,
		wrap:    wrap,
		buckets: make(map[gridKey][]CellId),
		origin:  make(map[CellId]gridKey),
		pos:     make(map[CellId][2]float64),
	}
}

func (g *squareGrid) bucketOf(x, y float64) gridKey {
	halfW := float64(g.dimX) * InfluenceRange / 2
	halfH := float64(g.dimY) * InfluenceRange / 2
	bx := int(math.Floor((x + halfW) / InfluenceRange))
	by := int(math.Floor((y + halfH) / InfluenceRange))
	if g.wrap {
		bx = ((bx % g.dimX) + g.dimX) % g.dimX
		by = ((by % g.dimY) + g.dimY) % g.dimY
	}
	return gridKey{bx, by}
}

func (g *squareGrid) AddPosition(x, y float64, id CellId) {
	key := g.bucketOf(x, y)
	g.buckets[key] = append(g.buckets[key], id)
	g.origin[id] = key
	g.pos[id] = [2]float64{x, y}
	g.order = append(g.order, id)
}

// Setup is a no-op: bucket membership never changes once assigned.
func (g *squareGrid) Setup() {}

func (g *squareGrid) SetStartPosition() { g.cursor = -1 }

func (g *squareGrid) HasNextPosition() bool {
	g.cursor++
	return g.cursor < len(g.order)
}

func (g *squareGrid) CurrentCellId() CellId { return g.order[g.cursor] }

func (g *squareGrid) QueryCurrentRange(r float64) []CellId {
	g.queryBuf = g.queryBuf[:0]
	id := g.CurrentCellId()
	key := g.origin[id]
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			nb := gridKey{key.bx + dx, key.by + dy}
			if g.wrap {
				nb.bx = ((nb.bx % g.dimX) + g.dimX) % g.dimX
				nb.by = ((nb.by % g.dimY) + g.dimY) % g.dimY
			} else if nb.bx < 0 || nb.bx >= g.dimX || nb.by < 0 || nb.by >= g.dimY {
				continue
			}
			for _, cand := range g.buckets[nb] {
				if cand != id {
					g.queryBuf = append(g.queryBuf, cand)
				}
			}
		}
	}
	return g.queryBuf
}

// UpdateAllPositions refreshes the cached coordinates used for precision
// cross-checks and leaves bucket membership untouched — minor per-step
// drift does not move a cell to a new bucket (spec.md §4.2.1).
func (g *squareGrid) UpdateAllPositions(curr []Cell) {
	for id := range g.pos {
		c := &curr[id]
		g.pos[id] = [2]float64{c.X, c.Y}
	}
}
