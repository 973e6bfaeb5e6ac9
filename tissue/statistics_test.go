package tissue

import "testing"

func TestStatisticsReducesAccumulatedSamples(t *testing.T) {
	var s Statistics
	s.Start(2)

	c1 := &Cell{X: 0, Y: 0, Neighbors: 1}
	c1.Conc[0] = 1
	c1.Conc[1] = 10
	c2 := &Cell{X: 4, Y: -2, Neighbors: 3}
	c2.Conc[0] = 3
	c2.Conc[1] = 20

	s.Update(c1)
	s.Update(c2)

	r := s.Finish(2)

	if r.Chem[0].Min != 1 || r.Chem[0].Max != 3 || r.Chem[0].Mean != 2 {
		t.Fatalf("Chem[0] = %+v, want {Min:1 Max:3 Mean:2}", r.Chem[0])
	}
	if r.Chem[1].Min != 10 || r.Chem[1].Max != 20 || r.Chem[1].Mean != 15 {
		t.Fatalf("Chem[1] = %+v, want {Min:10 Max:20 Mean:15}", r.Chem[1])
	}
	if r.X.Min != 0 || r.X.Max != 4 {
		t.Fatalf("X = %+v, want {Min:0 Max:4}", r.X)
	}
	if r.Y.Min != -2 || r.Y.Max != 0 {
		t.Fatalf("Y = %+v, want {Min:-2 Max:0}", r.Y)
	}
	if r.Neighbors.Min != 1 || r.Neighbors.Max != 3 {
		t.Fatalf("Neighbors = %+v, want {Min:1 Max:3}", r.Neighbors)
	}
}

func TestStatisticsMeanUsesCallerSuppliedTotal(t *testing.T) {
	var s Statistics
	s.Start(1)
	c := &Cell{}
	c.Conc[0] = 4
	s.Update(c)

	// total=2 with a single sample folded in: the mean's denominator is
	// the caller-supplied total, not the number of samples.
	r := s.Finish(2)
	if r.Chem[0].Mean != 2 {
		t.Fatalf("Mean = %v, want 2 (sum 4 / total 2)", r.Chem[0].Mean)
	}
}

func TestStatisticsStartResetsBetweenPasses(t *testing.T) {
	var s Statistics
	s.Start(1)
	c := &Cell{}
	c.Conc[0] = 99
	s.Update(c)
	s.Finish(1)

	s.Start(1)
	r := s.Finish(0)
	if len(r.Chem) != 1 || r.Chem[0] != (ChemStat{}) {
		t.Fatalf("Chem after reset = %+v, want zero value (no samples folded in)", r.Chem)
	}
}
