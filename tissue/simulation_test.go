package tissue

import "testing"

func newSingleCellSim() *Simulation {
	sim := NewSimulation(10)
	sim.DefineChemical("u", 1.0, false)
	sim.DefineDomain(40, 40)
	sim.DefineTimeStep(1.0)
	sim.UseSeed(1)
	sim.CreateCell(0, 0, false)
	return sim
}

func TestSimulationInitSeedsStatisticsBeforeAnyStep(t *testing.T) {
	sim := newSingleCellSim()
	sim.Init(Auto, false)

	r := sim.LastResult()
	if len(r.Chem) != 1 {
		t.Fatalf("LastResult().Chem has %d entries, want 1", len(r.Chem))
	}
	if sim.Iteration() != 0 {
		t.Fatalf("Iteration() = %d, want 0 before any Step", sim.Iteration())
	}
}

func TestSimulationStepAdvancesIterationAndAppliesReaction(t *testing.T) {
	sim := newSingleCellSim()
	sim.AddRule(Rule{From: 0, Until: noStopAt, Predicate: Always,
		Action: Change, ActParams: [6]Param{Conc(0), Const(0.5), Const(0)}})
	sim.Init(Auto, false)

	sim.Step()

	if sim.Iteration() != 1 {
		t.Fatalf("Iteration() = %d, want 1", sim.Iteration())
	}
	got := sim.store.Curr(0).Conc[0]
	if got != 0.5 {
		t.Fatalf("Conc[0] after one step = %v, want 0.5", got)
	}
}

func TestSimulationStepClampsConcentrationToChemicalLimit(t *testing.T) {
	sim := newSingleCellSim() // chemical 0 has limit 1.0
	sim.AddRule(Rule{From: 0, Until: noStopAt, Predicate: Always,
		Action: Change, ActParams: [6]Param{Conc(0), Const(5), Const(0)}})
	sim.Init(Auto, false)

	sim.Step()

	if got := sim.store.Curr(0).Conc[0]; got != 1.0 {
		t.Fatalf("Conc[0] = %v, want clamped to the chemical's limit 1.0", got)
	}
}

func TestSimulationRunStopsAtStopAt(t *testing.T) {
	sim := newSingleCellSim()
	sim.SetStopAt(3)
	sim.Init(Auto, false)

	if err := sim.Run(100); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sim.Iteration() != 3 {
		t.Fatalf("Iteration() = %d, want 3", sim.Iteration())
	}
	if sim.IsRunning() {
		t.Fatal("IsRunning() should be false once stop_at is reached")
	}
}

func TestSimulationRunDetectsStability(t *testing.T) {
	sim := newSingleCellSim() // no rules mutate conc[0]; it never changes
	sim.Init(Auto, true)

	if err := sim.Run(100); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !sim.IsStable() {
		t.Fatal("expected stability to be detected when conc[0] never changes")
	}
	if sim.Iteration() >= 100 {
		t.Fatalf("Iteration() = %d, want an early stop well before the 100-step ceiling", sim.Iteration())
	}
}

func TestSimulationRunHookCanStopEarly(t *testing.T) {
	sim := newSingleCellSim()
	sim.Init(Auto, false)

	if err := sim.Run(100, StopAfter(2)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sim.Iteration() != 2 {
		t.Fatalf("Iteration() = %d, want 2 (StopAfter(2) should stop after two hook calls)", sim.Iteration())
	}
}

func TestSimulationDivideGrowsStore(t *testing.T) {
	sim := NewSimulation(10)
	sim.DefineChemical("u", 1.0, false)
	sim.DefineDomain(40, 40)
	sim.DefineTimeStep(1.0)
	sim.UseSeed(1)
	sim.CreateCell(0, 0, false)
	sim.AddRule(Rule{From: 0, Until: 0, Predicate: Always,
		Action: Divide, ActParams: [6]Param{Const(90), Const(0)}})
	sim.Init(Auto, false)

	if sim.StoreSize() != 1 {
		t.Fatalf("StoreSize() before stepping = %d, want 1", sim.StoreSize())
	}

	sim.Step()

	if sim.StoreSize() != 2 {
		t.Fatalf("StoreSize() after a division step = %d, want 2", sim.StoreSize())
	}
	child := sim.store.Curr(1)
	if child.Birth != 1 {
		t.Fatalf("child.Birth = %d, want 1", child.Birth)
	}
}

func TestSimulationMirrorPairAveragesConcAndDiff(t *testing.T) {
	sim := NewSimulation(10)
	sim.DefineChemical("u", 10.0, false)
	sim.DefineDomain(40, 40)
	sim.DefineTimeStep(1.0)
	sim.UseSeed(1)
	a := sim.CreateCell(-5, 0, true)
	b := sim.CreateCell(5, 0, true)
	sim.SetCellConcentration(a, 0, 2, 0)
	sim.SetCellConcentration(b, 0, 8, 0)
	sim.SetCellDiffusion(a, 0, 0.1, 0)
	sim.SetCellDiffusion(b, 0, 0.3, 0)
	sim.DefineMirrorPair(a, b)
	sim.Init(ForceKDTree, false)

	sim.Step()

	ca, cb := sim.store.Curr(a), sim.store.Curr(b)
	if ca.Conc[0] != 5 || cb.Conc[0] != 5 {
		t.Fatalf("mirrored Conc[0] = %v, %v, want both 5", ca.Conc[0], cb.Conc[0])
	}
	if ca.Diff[0] != cb.Diff[0] {
		t.Fatalf("mirrored Diff[0] = %v, %v, want equal", ca.Diff[0], cb.Diff[0])
	}
}

func TestSimulationDoneReleasesNNS(t *testing.T) {
	sim := newSingleCellSim()
	sim.Init(Auto, false)
	sim.Done()
	if sim.nns != nil {
		t.Fatal("Done() should release the NNS backend")
	}
}

func TestSimulationStepBudgetDefaultsWhenStopAtUnset(t *testing.T) {
	sim := NewSimulation(1)
	if got := sim.StepBudget(); got != defaultStopAt {
		t.Fatalf("StepBudget() = %d, want %d", got, defaultStopAt)
	}
	sim.SetStopAt(42)
	if got := sim.StepBudget(); got != 42 {
		t.Fatalf("StepBudget() = %d, want 42", got)
	}
}
