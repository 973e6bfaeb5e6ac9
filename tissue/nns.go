package tissue

// NNS is the nearest-neighbor-search abstraction of spec.md §4.2. All
// three backends (square grid, spatial sorting, k-d tree) implement it
// identically so the step driver never needs to know which one is active.
type NNS interface {
	// AddPosition registers one cell, at setup time or right after it is
	// born from division.
	AddPosition(x, y float64, id CellId)

	// Setup is called once per iteration before any queries, to
	// rebuild or refresh whatever internal index the backend keeps.
	Setup()

	// SetStartPosition resets the per-iteration cursor.
	SetStartPosition()

	// HasNextPosition reports whether the cursor has a cell left to
	// visit this iteration.
	HasNextPosition() bool

	// CurrentCellId returns the id the cursor is positioned on. It is
	// only valid between a HasNextPosition call that returned true and
	// the next call to either cursor method.
	CurrentCellId() CellId

	// QueryCurrentRange returns candidate neighbor ids within radius r
	// of the cursor's current cell, excluding the cell itself.
	// Candidates outside r are permitted; the caller recomputes the
	// true distance. The returned slice is only valid until the next
	// query on this backend.
	QueryCurrentRange(r float64) []CellId

	// UpdateAllPositions reconciles the backend's internal structures
	// with curr after a buffer swap.
	UpdateAllPositions(curr []Cell)
}

// Choice selects which NNS backend Init should build.
type Choice int

const (
	// Auto picks a grid backend if the pattern declared a lattice layout
	// with no DIVIDE rule, else spatial sorting if the domain is packed,
	// else a k-d tree.
	Auto Choice = iota
	ForceSpatialSorting
	ForceKDTree
)

// spatialSortingNeighborhood is m in spec.md §4.2.2: the target
// neighborhood window size spatial sorting scans per query.
const spatialSortingNeighborhood = 48

// selectNNS implements the auto-selection table in spec.md §4.2.4 and
// simulation_init's switch in the original engine.
func selectNNS(choice Choice, gridDimX, gridDimY int, wrap, hasDivide, packed bool) NNS {
	switch choice {
	case ForceSpatialSorting:
		return newSpatialSorting(spatialSortingNeighborhood)
	case ForceKDTree:
		return newKDTree()
	default:
		if gridDimX > 0 && gridDimY > 0 && !hasDivide {
			return newSquareGrid(gridDimX, gridDimY, wrap)
		}
		if packed {
			return newSpatialSorting(spatialSortingNeighborhood)
		}
		return newKDTree()
	}
}
