package tissue

import "math"

// cellParameters mirrors the original engine's CellParameters: the
// "current defaults" that CreateCell and the grid/circle layout helpers
// apply to every cell they create, set by the Use* functions below.
type cellParameters struct {
	polarity    float64 // noPolarity means "leave polarity at zero"
	polarityDev float64

	conc    [MaxChemicals]float64
	concDev [MaxChemicals]float64
	diff    [MaxChemicals]float64
	diffDev [MaxChemicals]float64
}

func newCellParameters() cellParameters {
	return cellParameters{polarity: noPolarity}
}

// DefineChemical registers one chemical field and returns its index.
func (s *Simulation) DefineChemical(name string, limit float64, anisotropic bool) int {
	ch := len(s.chemicals)
	s.chemicals = append(s.chemicals, Chemical{Name: name, Limit: limit, Anisotropic: anisotropic})
	return ch
}

// DefineDivisionLimit sets the neighbor-count ceiling above which a
// Divide action is suppressed; 0 means unlimited.
func (s *Simulation) DefineDivisionLimit(limit int) { s.divisionLimit = limit }

// DefineDomain sets a centered rectangular domain of the given width and
// height.
func (s *Simulation) DefineDomain(width, height float64) {
	s.domainXMin, s.domainXMax = -width/2, width/2
	s.domainYMin, s.domainYMax = -height/2, height/2
}

// DefinePackedDomain marks the domain as packed: its side is recomputed
// every step from the live cell count rather than held fixed.
func (s *Simulation) DefinePackedDomain(factor float64) {
	s.domainIsPacked = true
	s.domainPackedFactor = factor
}

// DefineTimeStep sets the forward-Euler step size used by every
// reaction/diffusion term.
func (s *Simulation) DefineTimeStep(dt float64) { s.timeStep = dt }

// DefineMirrorPair registers a pair of cells whose chemical state is
// averaged together at the end of every step.
func (s *Simulation) DefineMirrorPair(id1, id2 CellId) {
	s.mirroring = true
	s.mirrorPairs = append(s.mirrorPairs, [2]CellId{id1, id2})
}

// UseChemicalConcentration sets the starting concentration (and spread)
// newly created cells get for chemical ch.
func (s *Simulation) UseChemicalConcentration(ch int, value, deviation float64) {
	s.params.conc[ch] = value
	s.params.concDev[ch] = deviation
}

// UseChemicalDiffusion sets the starting diffusion rate (and spread)
// newly created cells get for chemical ch.
func (s *Simulation) UseChemicalDiffusion(ch int, value, deviation float64) {
	s.params.diff[ch] = value
	s.params.diffDev[ch] = deviation
}

// UsePolarity sets the starting polarity angle (degrees) and spread for
// newly created cells. Calling it is optional; cells default to zero
// polarity.
func (s *Simulation) UsePolarity(angle, deviation float64) {
	s.params.polarity = angle
	s.params.polarityDev = deviation
}

// UseSeed seeds the process-wide RNG; 0 seeds from the wall clock.
func (s *Simulation) UseSeed(seed int64) { s.rng = newRNG(seed) }

// CreateCell allocates one cell at (x, y) using the current cell
// parameters, mirroring simulation_create_cell. It is only meant to be
// called during setup, before Init.
func (s *Simulation) CreateCell(x, y float64, fixed bool) CellId {
	id := s.store.NewCell()
	if id == NoCell {
		return NoCell
	}
	c := s.store.Curr(id)
	c.Birth = 0
	c.Neighbors = 0
	c.X, c.Y = x, y

	if s.params.polarity != noPolarity {
		angle := s.rng.deviate(s.params.polarity, s.params.polarityDev)
		c.PX, c.PY = unitVector(angle)
	} else {
		c.PX, c.PY = 0, 0
	}

	for i := 0; i < MaxChemicals; i++ {
		c.Conc[i] = s.rng.deviate(s.params.conc[i], s.params.concDev[i])
		c.Diff[i] = s.rng.deviate(s.params.diff[i], s.params.diffDev[i])
	}
	c.Fixed = fixed
	c.Marker = false
	return id
}

// CreateSquareGrid lays out count_x by count_y cells on a square
// lattice centered at (centerX, centerY), and configures the square-grid
// NNS backend's dimensions to match — mirroring
// simulation_create_square_grid, which is the only layout helper that
// also seeds nns_dim_x/nns_dim_y/nns_wrap.
func (s *Simulation) CreateSquareGrid(countX, countY int, centerX, centerY, dev float64, fixed, wrap bool) {
	s.nnsDimX, s.nnsDimY, s.nnsWrap = countX, countY, wrap

	for cy := 0; cy < countY; cy++ {
		y := centerY + (float64(cy)-float64(countY)/2.0)*2 + 1
		for cx := 0; cx < countX; cx++ {
			x := centerX + (float64(cx)-float64(countX)/2.0)*2 + 1
			s.createLayoutCell(x, y, dev, fixed)
		}
	}
}

// CreateSquareCircle lays out cells on a square lattice clipped to a
// circle of the given cell-unit count (radius), mirroring
// simulation_create_square_circle.
func (s *Simulation) CreateSquareCircle(count int, centerX, centerY, dev float64, fixed bool) {
	half := float64(count) / 2.0
	for cy := 0; cy < count; cy++ {
		y := centerY + (float64(cy)-half)*2 + 1
		for cx := 0; cx < count; cx++ {
			x := centerX + (float64(cx)-half)*2 + 1
			dyc := float64(cy) - half + 0.5
			dxc := float64(cx) - half + 0.5
			if dyc*dyc+dxc*dxc <= float64(count*count)/4.0 {
				s.createLayoutCell(x, y, dev, fixed)
			}
		}
	}
}

// CreateHexagonalGrid lays out countX by countY cells on a hexagonal
// lattice, mirroring simulation_create_hexagonal_grid.
func (s *Simulation) CreateHexagonalGrid(countX, countY int, centerX, centerY, dev float64, fixed bool) {
	for cy := 0; cy < countY; cy++ {
		y := centerY + (float64(cy)-float64(countY)/2.0)*1.7321 + 0.866
		for cx := 0; cx < countX; cx++ {
			x := centerX + (float64(cx)-float64(countX)/2.0)*2 + 1
			if cy%2 != 0 {
				x += 1
			}
			s.createLayoutCell(x, y, dev, fixed)
		}
	}
}

// CreateHexagonalCircle lays out cells on a hexagonal lattice clipped to
// a circle of the given cell-unit radius, mirroring
// simulation_create_hexagonal_circle.
func (s *Simulation) CreateHexagonalCircle(count int, centerX, centerY, dev float64, fixed bool) {
	for cy := -count; cy < count; cy++ {
		y := centerY + float64(cy)*1.7321
		for cx := -count; cx < count; cx++ {
			x := centerX + float64(cx)*2
			if cy%2 != 0 {
				x += 1
			}
			if (x-centerX)*(x-centerX)+(y-centerY)*(y-centerY) <= float64(count*count) {
				s.createLayoutCell(x, y, dev, fixed)
			}
		}
	}
}

func (s *Simulation) createLayoutCell(x, y, dev float64, fixed bool) {
	if dev == 0 {
		s.CreateCell(x, y, fixed)
		return
	}
	s.CreateCell(x+s.rng.deviate(-dev, dev), y+s.rng.deviate(-dev, dev), fixed)
}

// SetCellConcentration overrides chemical ch's concentration on an
// already-created cell.
func (s *Simulation) SetCellConcentration(id CellId, ch int, value, deviation float64) {
	s.store.Curr(id).Conc[ch] = s.rng.deviate(value, deviation)
}

// SetCellDiffusion overrides chemical ch's diffusion rate on an
// already-created cell.
func (s *Simulation) SetCellDiffusion(id CellId, ch int, value, deviation float64) {
	s.store.Curr(id).Diff[ch] = s.rng.deviate(value, deviation)
}

// SetCellPolarity overrides an already-created cell's polarity; pass
// hasAngle=false for the "clear to zero" branch of
// simulation_set_cell_polarity.
func (s *Simulation) SetCellPolarity(id CellId, angle, deviation float64, hasAngle bool) {
	c := s.store.Curr(id)
	if hasAngle {
		a := s.rng.deviate(angle, deviation)
		c.PX, c.PY = unitVector(a)
	} else {
		c.PX, c.PY = 0, 0
	}
}

// SetCellFixed overrides an already-created cell's fixed flag.
func (s *Simulation) SetCellFixed(id CellId, fixed bool) { s.store.Curr(id).Fixed = fixed }

// SetTrackedCell designates the cell whose proximity sets Marker on its
// neighbors each step.
func (s *Simulation) SetTrackedCell(id CellId) { s.trackedID = id }

// SetStopAt sets the iteration at which Run stops; -1 (noStopAt) means
// run until the step budget or stability detection ends it.
func (s *Simulation) SetStopAt(iteration int) { s.stopAt = iteration }

// AddRule appends one rule to the ordered list, mirroring
// simulation_add_rule: Map actions get their interior-segment slope and
// intercept precomputed once, and adding any Divide rule permanently
// disables the square-grid NNS backend (cells may move off their
// assigned lattice bucket once division starts).
func (s *Simulation) AddRule(r Rule) {
	if r.Action == Map {
		lo, hi := r.ActParams[1].Const, r.ActParams[2].Const
		outLo, outHi := r.ActParams[4].Const, r.ActParams[5].Const
		r.mapSlope = (outHi - outLo) / (hi - lo)
		r.mapIntercept = outLo - r.mapSlope*lo
	}
	if r.Action == Divide {
		s.nnsDimX, s.nnsDimY = 0, 0
	}
	s.rules = append(s.rules, r)
}

// divideCell populates the child's next-buffer slot from the parent's
// current state, mirroring divide_cell: the child is placed one radius
// away from the parent along an angle derived from the parent's current
// polarity, deviated by the rule's direction parameters, and its own
// polarity is set to match that placement direction.
func divideCell(parent *Cell, child *Cell, iteration int, dir, dev float64, r *rng) {
	angle := math.Atan2(parent.PY, parent.PX)
	angle += math.Pi * r.deviate(dir, dev) / 180
	dx, dy := math.Cos(angle), math.Sin(angle)

	*child = *parent
	child.Birth = iteration + 1
	child.Neighbors = 0
	child.X = parent.X + dx
	child.Y = parent.Y + dy
	child.PX, child.PY = dx, dy
	child.Fixed = false
	child.Marker = false
}
