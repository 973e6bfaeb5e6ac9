package tissue

import "gonum.org/v1/gonum/floats"

// ChemStat is the per-chemical reduction produced by one Statistics pass.
type ChemStat struct {
	Min, Mean, Max float64
}

// FieldStat is a per-cell-field reduction (position, neighbor count) used
// to scale a downstream colormap export.
type FieldStat struct {
	Min, Max float64
}

// Result is the output of one completed Statistics pass.
type Result struct {
	Chem      []ChemStat
	X, Y      FieldStat
	Neighbors FieldStat
}

// Statistics is the running per-iteration accumulator described in
// spec.md §4.6. Start resets it, Update folds one cell's contribution,
// and Finish reduces the accumulated samples with gonum/floats the way
// popgrid.go/vargrid.go reduce per-cell arrays with the same package.
type Statistics struct {
	nChem int
	conc  [][]float64 // conc[ch] is every sampled cell's conc[ch] this pass
	xs    []float64
	ys    []float64
	neigh []float64
}

// Start resets the accumulator for a new pass over nChem chemicals.
func (s *Statistics) Start(nChem int) {
	s.nChem = nChem
	if cap(s.conc) < nChem {
		s.conc = make([][]float64, nChem)
	}
	s.conc = s.conc[:nChem]
	for ch := range s.conc {
		s.conc[ch] = s.conc[ch][:0]
	}
	s.xs = s.xs[:0]
	s.ys = s.ys[:0]
	s.neigh = s.neigh[:0]
}

// Update folds one cell's current state into the accumulator.
func (s *Statistics) Update(c *Cell) {
	for ch := 0; ch < s.nChem; ch++ {
		s.conc[ch] = append(s.conc[ch], c.Conc[ch])
	}
	s.xs = append(s.xs, c.X)
	s.ys = append(s.ys, c.Y)
	s.neigh = append(s.neigh, float64(c.Neighbors))
}

// Finish reduces the accumulated samples into a Result. total is the
// caller's cell count (n_cells + n_divisions for the step that just ran);
// each chemical's Mean is the sum of its samples divided by total, not by
// the number of samples folded in.
func (s *Statistics) Finish(total int) Result {
	r := Result{Chem: make([]ChemStat, s.nChem)}
	for ch := 0; ch < s.nChem; ch++ {
		samples := s.conc[ch]
		if len(samples) == 0 {
			continue
		}
		sum := floats.Sum(samples)
		r.Chem[ch] = ChemStat{
			Min:  floats.Min(samples),
			Max:  floats.Max(samples),
			Mean: sum / float64(total),
		}
	}
	if len(s.xs) > 0 {
		r.X = FieldStat{Min: floats.Min(s.xs), Max: floats.Max(s.xs)}
		r.Y = FieldStat{Min: floats.Min(s.ys), Max: floats.Max(s.ys)}
		r.Neighbors = FieldStat{Min: floats.Min(s.neigh), Max: floats.Max(s.neigh)}
	}
	return r
}
