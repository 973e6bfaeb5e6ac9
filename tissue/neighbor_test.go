package tissue

import "testing"

func TestInteractWithNeighborsIsotropicDiffusion(t *testing.T) {
	chemicals := []Chemical{{Name: "u", Limit: 10}}
	cells := []Cell{
		{X: 0, Y: 0, Diff: [MaxChemicals]float64{1}},
		{X: 1, Y: 0, Diff: [MaxChemicals]float64{1}},
	}
	cells[0].Conc[0] = 0
	cells[1].Conc[0] = 2

	curr := &cells[0]
	next := &Cell{}
	*next = *curr

	count := interactWithNeighbors(curr, next, cells, []CellId{1}, chemicals, 0.5, -1, NoCell)

	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	// min(diffA,diffB)=1, delta=2-0=2, dt=0.5 -> += 1
	if next.Conc[0] != 1 {
		t.Fatalf("Conc[0] = %v, want 1", next.Conc[0])
	}
	if next.Neighbors != 1 {
		t.Fatalf("Neighbors = %d, want 1", next.Neighbors)
	}
}

func TestInteractWithNeighborsAnisotropicUsesPolarityDot(t *testing.T) {
	chemicals := []Chemical{{Name: "u", Limit: 10, Anisotropic: true}}
	cells := []Cell{
		{X: 0, Y: 0, Diff: [MaxChemicals]float64{1}, PX: 1, PY: 0},
		{X: 1, Y: 0, Diff: [MaxChemicals]float64{1}},
	}
	cells[1].Conc[0] = 2

	curr := &cells[0]
	next := &Cell{}
	*next = *curr

	interactWithNeighbors(curr, next, cells, []CellId{1}, chemicals, 1, -1, NoCell)

	// neighbor lies exactly along the polarity axis: dot == 1, no attenuation.
	if next.Conc[0] != 2 {
		t.Fatalf("Conc[0] = %v, want 2 (full diffusion along the polarity axis)", next.Conc[0])
	}
}

func TestInteractWithNeighborsAccumulatesPolarityGradient(t *testing.T) {
	chemicals := []Chemical{{Name: "u", Limit: 10}}
	cells := []Cell{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
	}
	cells[1].Conc[0] = 1

	curr := &cells[0]
	next := &Cell{}

	interactWithNeighbors(curr, next, cells, []CellId{1}, chemicals, 1, 0, NoCell)

	if next.PX <= 0 {
		t.Fatalf("PX = %v, want > 0 (gradient points toward the higher-concentration neighbor)", next.PX)
	}
}

func TestInteractWithNeighborsSetsMarkerForTrackedCell(t *testing.T) {
	chemicals := []Chemical{{Name: "u", Limit: 10}}
	cells := []Cell{{X: 0, Y: 0}, {X: 1, Y: 0}}
	curr := &cells[0]
	next := &Cell{}

	interactWithNeighbors(curr, next, cells, []CellId{1}, chemicals, 1, -1, CellId(1))

	if !next.Marker {
		t.Fatal("Marker should be set when the queried neighbor is the tracked cell")
	}
}

func TestInteractWithNeighborsCollisionPushesApart(t *testing.T) {
	chemicals := []Chemical{{Name: "u", Limit: 10}}
	cells := []Cell{{X: -0.9, Y: 0}, {X: 0.9, Y: 0}}
	curr := &cells[0]
	next := &Cell{}
	*next = *curr

	interactWithNeighbors(curr, next, cells, []CellId{1}, chemicals, 1, -1, NoCell)

	if !almostEqual(next.X, -0.95, 1e-9) {
		t.Fatalf("X = %v, want -0.95", next.X)
	}
}

func TestInteractWithNeighborsFixedCellNeverMoves(t *testing.T) {
	chemicals := []Chemical{{Name: "u", Limit: 10}}
	cells := []Cell{{X: -0.9, Y: 0, Fixed: true}, {X: 0.9, Y: 0}}
	curr := &cells[0]
	next := &Cell{}
	*next = *curr

	interactWithNeighbors(curr, next, cells, []CellId{1}, chemicals, 1, -1, NoCell)

	if next.X != -0.9 {
		t.Fatalf("X = %v, want unchanged -0.9 for a fixed cell", next.X)
	}
}

func TestFinalizeCellClampsPositionAndConcentration(t *testing.T) {
	chemicals := []Chemical{{Name: "u", Limit: 5}}
	curr := &Cell{}
	next := &Cell{X: 100, Y: -100}
	next.Conc[0] = 50

	finalizeCell(curr, next, chemicals, -10, 10, -10, 10, -1)

	if next.X != 10 || next.Y != -10 {
		t.Fatalf("position = (%v, %v), want clamped to (10, -10)", next.X, next.Y)
	}
	if next.Conc[0] != 5 {
		t.Fatalf("Conc[0] = %v, want clamped to the chemical limit 5", next.Conc[0])
	}
}

func TestFinalizeCellNormalizesPolarityOrHoldsPrevious(t *testing.T) {
	chemicals := []Chemical{{Name: "u", Limit: 5}}

	// large gradient: normalize to unit length.
	curr := &Cell{PX: 1, PY: 0}
	next := &Cell{PX: 3, PY: 4}
	finalizeCell(curr, next, chemicals, -10, 10, -10, 10, 0)
	if !almostEqual(next.PX*next.PX+next.PY*next.PY, 1, 1e-9) {
		t.Fatalf("polarity magnitude = %v, want 1", next.PX*next.PX+next.PY*next.PY)
	}

	// negligible gradient: hold the previous polarity instead of dividing by ~0.
	curr2 := &Cell{PX: 0.6, PY: 0.8}
	next2 := &Cell{PX: 0.00001, PY: 0.00001}
	finalizeCell(curr2, next2, chemicals, -10, 10, -10, 10, 0)
	if next2.PX != curr2.PX || next2.PY != curr2.PY {
		t.Fatalf("polarity = (%v, %v), want held at the previous value (%v, %v)", next2.PX, next2.PY, curr2.PX, curr2.PY)
	}
}
