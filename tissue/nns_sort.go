package tissue

import (
	"math"
	"sort"
)

// spatialSorting is the approximate NNS backend of spec.md §4.2.2: cells
// are kept sorted along a Z-order (Morton) space-filling curve, and a
// query scans a contiguous window of m cells around the current cell's
// rank in that order. This yields O(m) per query with a small,
// bounded miss rate relative to exact search — the tradeoff spec.md
// documents as acceptable for packed domains.
type spatialSorting struct {
	m int

	ids []CellId
	pos map[CellId][2]float64

	sorted []CellId
	rank   map[CellId]int
	cursor int

	queryBuf []CellId
}

func newSpatialSorting(m int) *spatialSorting {
	return &spatialSorting{m: m, pos: make(map[CellId][2]float64), rank: make(map[CellId]int)}
}

func (s *spatialSorting) AddPosition(x, y float64, id CellId) {
	s.ids = append(s.ids, id)
	s.pos[id] = [2]float64{x, y}
}

func (s *spatialSorting) Setup() {
	xmin, xmax, ymin, ymax := math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	for _, id := range s.ids {
		p := s.pos[id]
		xmin, xmax = minf(xmin, p[0]), maxf(xmax, p[0])
		ymin, ymax = minf(ymin, p[1]), maxf(ymax, p[1])
	}
	spanX, spanY := xmax-xmin, ymax-ymin
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	s.sorted = append(s.sorted[:0], s.ids...)
	const resolution = 1 << 16
	key := make(map[CellId]uint64, len(s.sorted))
	for _, id := range s.sorted {
		p := s.pos[id]
		xi := uint32(((p[0] - xmin) / spanX) * (resolution - 1))
		yi := uint32(((p[1] - ymin) / spanY) * (resolution - 1))
		key[id] = mortonKey(xi, yi)
	}
	sort.Slice(s.sorted, func(i, j int) bool { return key[s.sorted[i]] < key[s.sorted[j]] })

	if s.rank == nil || len(s.rank) != len(s.sorted) {
		s.rank = make(map[CellId]int, len(s.sorted))
	}
	for i, id := range s.sorted {
		s.rank[id] = i
	}
}

func (s *spatialSorting) SetStartPosition() { s.cursor = -1 }

func (s *spatialSorting) HasNextPosition() bool {
	s.cursor++
	return s.cursor < len(s.sorted)
}

func (s *spatialSorting) CurrentCellId() CellId { return s.sorted[s.cursor] }

// QueryCurrentRange ignores r: the window width is fixed at m regardless
// of the requested radius, matching the original NNS_SpatialSorting,
// which is constructed once with a neighborhood size and never consults
// the per-query radius.
func (s *spatialSorting) QueryCurrentRange(float64) []CellId {
	s.queryBuf = s.queryBuf[:0]
	id := s.CurrentCellId()
	rank := s.rank[id]
	half := s.m / 2
	lo, hi := rank-half, rank+half
	if lo < 0 {
		lo = 0
	}
	if hi >= len(s.sorted) {
		hi = len(s.sorted) - 1
	}
	for i := lo; i <= hi; i++ {
		if cand := s.sorted[i]; cand != id {
			s.queryBuf = append(s.queryBuf, cand)
		}
	}
	return s.queryBuf
}

func (s *spatialSorting) UpdateAllPositions(curr []Cell) {
	for id := range s.pos {
		c := &curr[id]
		s.pos[id] = [2]float64{c.X, c.Y}
	}
}

// mortonKey interleaves the bits of xi and yi into a single Z-order key.
func mortonKey(xi, yi uint32) uint64 {
	return spreadBits(xi) | (spreadBits(yi) << 1)
}

func spreadBits(v uint32) uint64 {
	x := uint64(v)
	x = (x | (x << 16)) & 0x0000FFFF0000FFFF
	x = (x | (x << 8)) & 0x00FF00FF00FF00FF
	x = (x | (x << 4)) & 0x0F0F0F0F0F0F0F0F
	x = (x | (x << 2)) & 0x3333333333333333
	x = (x | (x << 1)) & 0x5555555555555555
	return x
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
