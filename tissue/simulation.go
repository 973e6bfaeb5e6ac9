package tissue

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Simulation is the process-wide engine state: the cell store, the
// chemical and rule tables, the domain geometry, and whichever NNS
// backend Init selected. It plays the role of the original engine's
// single global `simulation`/`nns`/`statistics` triple, collapsed into
// one struct so a process can in principle run more than one.
type Simulation struct {
	store     *Store
	chemicals []Chemical
	params    cellParameters

	domainXMin, domainXMax float64
	domainYMin, domainYMax float64
	domainIsPacked         bool
	domainPackedFactor     float64

	timeStep      float64
	divisionLimit int

	mirroring   bool
	mirrorPairs [][2]CellId

	rules    []Rule
	mappings [MaxMappings]float64

	nns       NNS
	nnsChoice Choice
	nnsDimX   int
	nnsDimY   int
	nnsWrap   bool

	trackedID CellId

	detectStability bool
	isStable        bool
	isRunning       bool
	stopAt          int
	iteration       int

	rng *rng

	stats      Statistics
	lastResult Result

	precision     *PrecisionChecker
	lastPrecision PrecisionReport

	// Log receives one structured entry per completed step, in the
	// style of run.go's Log(w io.Writer) DomainManipulator. Nil by
	// default, which disables logging; the caller sets it to get
	// diagnostics (Init does not touch it).
	Log *logrus.Entry
}

// NewSimulation allocates a simulation with room for up to capacity
// cells and a default-seeded RNG.
func NewSimulation(capacity int) *Simulation {
	return &Simulation{
		store:     NewStore(capacity),
		params:    newCellParameters(),
		rng:       newRNG(0),
		trackedID: NoCell,
		stopAt:    noStopAt,
	}
}

// StoreSize returns the number of cells allocated so far, for callers
// (the pattern loader) that need to track id ranges created by a batch
// layout call.
func (s *Simulation) StoreSize() int { return s.store.N() }

// Iteration returns the number of completed steps.
func (s *Simulation) Iteration() int { return s.iteration }

// IsStable reports whether stability was detected on the most recent step.
func (s *Simulation) IsStable() bool { return s.isStable }

// IsRunning reports whether Run should keep stepping.
func (s *Simulation) IsRunning() bool { return s.isRunning }

// LastResult returns the Statistics reduction from the most recently
// completed step (or Init's seed pass, before any Step has run).
func (s *Simulation) LastResult() Result { return s.lastResult }

// Seed returns the RNG seed actually in effect, resolving the
// "seed from the wall clock" case so a caller can log it for
// reproducibility, per spec.md §9.
func (s *Simulation) Seed() int64 { return s.rng.Seed() }

// Snapshot is a read-only copy of the live cell buffer together with the
// last completed Statistics result, valid independent of any further
// Step call — mirrors (*InMAP).Results reading d.cells after the run
// loop and before further mutation.
type Snapshot struct {
	Cells  []Cell
	Result Result
}

// Snapshot copies every live cell out of the active read buffer.
func (s *Simulation) Snapshot() Snapshot {
	cells := make([]Cell, s.store.N())
	copy(cells, s.store.curr[:s.store.N()])
	return Snapshot{Cells: cells, Result: s.lastResult}
}

// EnablePrecisionCheck turns on the k-d tree cross-check described in
// spec.md §7; every subsequent Step call populates LastPrecision.
func (s *Simulation) EnablePrecisionCheck() { s.precision = NewPrecisionChecker() }

// LastPrecision returns the most recent precision cross-check report, or
// the zero value if EnablePrecisionCheck was never called.
func (s *Simulation) LastPrecision() PrecisionReport { return s.lastPrecision }

// Init selects the NNS backend (mirroring simulation_init's AUTO switch
// over nns_dim_x/nns_dim_y/domain_is_packed), seeds it and the
// statistics accumulator from every live cell, and arms stability
// detection.
func (s *Simulation) Init(choice Choice, detectStability bool) {
	s.nnsChoice = choice
	s.nns = selectNNS(choice, s.nnsDimX, s.nnsDimY, s.nnsWrap, s.hasDivideRule(), s.domainIsPacked)
	s.detectStability = detectStability
	s.isRunning = true

	s.stats.Start(len(s.chemicals))
	s.store.EachLive(func(id CellId) {
		c := s.store.Curr(id)
		s.stats.Update(c)
		s.nns.AddPosition(c.X, c.Y, id)
	})
	s.lastResult = s.stats.Finish(s.store.N())
}

func (s *Simulation) hasDivideRule() bool {
	for i := range s.rules {
		if s.rules[i].Action == Divide {
			return true
		}
	}
	return false
}

// Step runs exactly one iteration, following simulation_single_step's
// sequence: recompute a packed domain's side, rebuild the NNS index,
// walk every live cell through the rule list and its neighbor
// interaction, clamp and normalize the result, average mirror pairs,
// check stability, swap buffers, and register any new cells born this
// step.
func (s *Simulation) Step() {
	if s.domainIsPacked {
		n := s.store.N()
		area := float64(n) * s.domainPackedFactor
		side := math.Sqrt(area) - 2
		s.domainXMin, s.domainXMax = -side/2, side/2
		s.domainYMin, s.domainYMax = -side/2, side/2
	}

	if s.precision != nil {
		s.precision.Rebuild(curCellsOf(s.store), s.store.EachLive)
	}

	s.nns.Setup()

	s.stats.Start(len(s.chemicals))

	nCells := s.store.N()
	nDivisions := 0
	dt := s.timeStep

	s.nns.SetStartPosition()
	for s.nns.HasNextPosition() {
		currID := s.nns.CurrentCellId()
		curr := s.store.Curr(currID)

		s.store.CopyCurrToNext(currID)
		next := s.store.Next(currID)
		next.Marker = false

		ctx := newEvalContext(curr, next, s.iteration, dt, s.mappings[:], s.rng)
		// EvaluateRules never returns an error for a well-formed rule
		// list built exclusively through AddRule; a non-nil error here
		// means a Rule was hand-assembled with an invalid Predicate.
		if err := EvaluateRules(s.rules, ctx, s.divisionLimit, s.store.NewCell); err != nil {
			panic(err)
		}

		neighborIDs := s.nns.QueryCurrentRange(InfluenceRange)
		approxCount := interactWithNeighbors(curr, next, curCellsOf(s.store), neighborIDs, s.chemicals, dt, ctx.polaritySource, s.trackedID)

		if s.precision != nil {
			s.precision.Check(currID, curr.X, curr.Y, InfluenceRange, approxCount)
		}

		finalizeCell(curr, next, s.chemicals, s.domainXMin, s.domainXMax, s.domainYMin, s.domainYMax, ctx.polaritySource)

		s.stats.Update(next)

		for _, div := range ctx.divisions {
			child := s.store.Next(div.child)
			divideCell(curr, child, s.iteration, div.dir, div.dev, s.rng)
			nDivisions++
		}
	}

	if s.mirroring {
		for _, pair := range s.mirrorPairs {
			primary := s.store.Next(pair[0])
			secondary := s.store.Next(pair[1])
			for ch := range s.chemicals {
				conc := (primary.Conc[ch] + secondary.Conc[ch]) / 2
				diff := (primary.Diff[ch] + secondary.Diff[ch]) / 2
				primary.Conc[ch], secondary.Conc[ch] = conc, conc
				primary.Diff[ch], secondary.Diff[ch] = diff, diff
			}
		}
	}

	if s.detectStability {
		stable := true
		for i := 0; i < nCells; i++ {
			if math.Abs(s.store.Next(CellId(i)).Conc[0]-s.store.Curr(CellId(i)).Conc[0]) >= 0.0001 {
				stable = false
				break
			}
		}
		if stable {
			s.isStable = true
			if s.Log != nil {
				s.Log.Infof("stability reached at %d", s.iteration)
			}
		}
	}

	if s.precision != nil {
		s.lastPrecision = s.precision.Finish(s.iteration)
	}

	s.store.Swap()
	s.iteration++

	s.nns.UpdateAllPositions(curCellsOf(s.store))
	for k := nCells; k < nCells+nDivisions; k++ {
		id := CellId(k)
		c := s.store.Curr(id)
		s.nns.AddPosition(c.X, c.Y, id)
		s.stats.Update(c)
	}
	s.lastResult = s.stats.Finish(nCells + nDivisions)

	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"iteration": s.iteration,
			"n_cells":   nCells + nDivisions,
		}).Debug("step complete")
	}
}

// curCellsOf exposes the store's read buffer to package-level helpers
// that need to index it directly (neighbor interaction, precision
// cross-check) without exporting Store's internals more broadly.
func curCellsOf(s *Store) []Cell { return s.curr }

// Run steps at most n times, stopping early at Iteration()==stop_at or,
// when stability detection is armed, the first stable step — mirroring
// simulation_run. Each hook runs, in order, after every completed step;
// a hook returning an error stops the run immediately, and a hook that
// clears IsRunning (such as StopAfter) stops it after that step.
func (s *Simulation) Run(n int, hooks ...StepHook) error {
	for i := 0; i < n; i++ {
		s.Step()

		for _, h := range hooks {
			if err := h(s); err != nil {
				return err
			}
		}
		if !s.isRunning {
			break
		}

		if s.iteration == s.stopAt {
			s.isRunning = false
			if s.Log != nil {
				s.Log.Infof("stopped at %d", s.iteration)
			}
			break
		}
		if s.detectStability && s.isStable {
			break
		}
	}
	return nil
}

// Done releases the active NNS backend. Present for symmetry with the
// original engine's explicit simulation_done teardown; a Simulation is
// otherwise safe to simply drop.
func (s *Simulation) Done() { s.nns = nil }

// StepBudget returns the number of steps Run's caller should request
// when stop_at is unset, per spec.md §6's default of 10000.
func (s *Simulation) StepBudget() int {
	if s.stopAt != noStopAt {
		return s.stopAt
	}
	return defaultStopAt
}
