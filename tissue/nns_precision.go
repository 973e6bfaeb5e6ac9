package tissue

// PrecisionReport summarizes one iteration's comparison between the
// active NNS backend's candidate sets and the k-d tree ground truth,
// matching the NNS_PRECISION instrumentation of the original engine.
type PrecisionReport struct {
	Iteration      int
	MissCells      int
	TotalCells     int
	MissNeighbors  int
	TotalNeighbors int
	ErrorPercent   float64 // 100 * MissCells / TotalCells
}

// PrecisionChecker cross-checks an active NNS backend against an exact
// k-d tree rebuilt every iteration, the way simulation.cpp's #ifdef
// NNS_PRECISION block builds a throwaway NNS_KD_Tree alongside whatever
// backend simulation_init actually selected. It never changes the
// simulation outcome — it only reports a miss rate for diagnostics.
type PrecisionChecker struct {
	exact *kdTree

	errorMax float64
	errorSum float64
	reports  int

	missCells, totalCells         int
	missNeighbors, totalNeighbors int
}

func NewPrecisionChecker() *PrecisionChecker {
	return &PrecisionChecker{exact: newKDTree()}
}

// Rebuild repopulates the exact backend from curr's live cells and
// calls Setup, to be done once per iteration before any Check calls.
func (p *PrecisionChecker) Rebuild(curr []Cell, live func(func(CellId))) {
	p.exact = newKDTree()
	live(func(id CellId) {
		c := &curr[id]
		p.exact.AddPosition(c.X, c.Y, id)
	})
	p.exact.Setup()
	p.missCells, p.totalCells = 0, 0
	p.missNeighbors, p.totalNeighbors = 0, 0
}

// Check compares approxCount, the number of neighbors the active
// backend produced for id within r, against the exact count.
func (p *PrecisionChecker) Check(id CellId, x, y, r float64, approxCount int) {
	exactCount := len(p.exact.rangeSearchFrom(x, y, r, id))
	p.totalCells++
	p.totalNeighbors += exactCount
	if exactCount != approxCount {
		p.missCells++
		p.missNeighbors += exactCount - approxCount
	}
}

// Finish closes out one iteration's accounting and returns its report.
func (p *PrecisionChecker) Finish(iteration int) PrecisionReport {
	r := PrecisionReport{
		Iteration:      iteration,
		MissCells:      p.missCells,
		TotalCells:     p.totalCells,
		MissNeighbors:  p.missNeighbors,
		TotalNeighbors: p.totalNeighbors,
	}
	if p.totalCells > 0 {
		r.ErrorPercent = 100.0 * float64(p.missCells) / float64(p.totalCells)
	}
	if r.ErrorPercent > p.errorMax {
		p.errorMax = r.ErrorPercent
	}
	p.errorSum += r.ErrorPercent
	p.reports++
	return r
}

// MaxError and MeanError report the running worst-case and average
// per-iteration error percent across every Finish call so far.
func (p *PrecisionChecker) MaxError() float64 { return p.errorMax }

func (p *PrecisionChecker) MeanError() float64 {
	if p.reports == 0 {
		return 0
	}
	return p.errorSum / float64(p.reports)
}

// rangeSearchFrom is QueryCurrentRange without requiring the cursor to
// be parked on id, so PrecisionChecker can query the exact tree for an
// arbitrary position without disturbing the active backend's cursor.
func (t *kdTree) rangeSearchFrom(x, y, r float64, self CellId) []CellId {
	buf := t.queryBuf[:0]
	t.queryBuf = buf
	t.rangeSearch(t.root, x, y, r, self)
	out := make([]CellId, len(t.queryBuf))
	copy(out, t.queryBuf)
	return out
}
