package tissue

import "testing"

func containsID(ids []CellId, want CellId) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func TestSquareGridFindsOnlyNearbyCells(t *testing.T) {
	g := newSquareGrid(4, 4, false)
	// two cells half an InfluenceRange apart, and one far away.
	g.AddPosition(0, 0, 0)
	g.AddPosition(InfluenceRange*0.5, 0, 1)
	g.AddPosition(100, 100, 2)
	g.Setup()

	g.SetStartPosition()
	if !g.HasNextPosition() || g.CurrentCellId() != 0 {
		t.Fatalf("expected cursor to start on cell 0")
	}
	neighbors := g.QueryCurrentRange(InfluenceRange)
	if !containsID(neighbors, 1) {
		t.Fatalf("neighbors = %v, want to contain 1", neighbors)
	}
	if containsID(neighbors, 0) {
		t.Fatal("QueryCurrentRange must exclude the querying cell itself")
	}
	if containsID(neighbors, 2) {
		t.Fatalf("neighbors = %v, want to exclude the far cell 2", neighbors)
	}
}

func TestSquareGridWrapWindowsAcrossEdges(t *testing.T) {
	// dim 3 puts bucket 0 and bucket 2 two buckets apart, which is outside
	// a non-wrapping +-1 window but adjacent once the index wraps mod 3.
	g := newSquareGrid(3, 3, true)
	g.AddPosition(-2.9, 0, 0) // bucket bx=0
	g.AddPosition(2.9, 0, 1)  // bucket bx=2
	g.Setup()

	g.SetStartPosition()
	g.HasNextPosition()
	neighbors := g.QueryCurrentRange(InfluenceRange)
	if !containsID(neighbors, 1) {
		t.Fatalf("wrapped grid neighbors = %v, want to contain 1 across the wrap boundary", neighbors)
	}
}

func TestSpatialSortingWindowIsFixedWidth(t *testing.T) {
	s := newSpatialSorting(4)
	for i := 0; i < 20; i++ {
		s.AddPosition(float64(i), 0, CellId(i))
	}
	s.Setup()

	s.SetStartPosition()
	for s.HasNextPosition() {
		neighbors := s.QueryCurrentRange(1000) // radius ignored by this backend
		if len(neighbors) > 4 {
			t.Fatalf("window for cell %d returned %d candidates, want <= m=4", s.CurrentCellId(), len(neighbors))
		}
	}
}

func TestKDTreeExactRangeSearch(t *testing.T) {
	tr := newKDTree()
	tr.AddPosition(0, 0, 0)
	tr.AddPosition(1, 0, 1)
	tr.AddPosition(5, 5, 2)
	tr.Setup()

	tr.SetStartPosition()
	tr.HasNextPosition() // cell 0
	neighbors := tr.QueryCurrentRange(2)
	if !containsID(neighbors, 1) {
		t.Fatalf("neighbors = %v, want to contain 1", neighbors)
	}
	if containsID(neighbors, 2) {
		t.Fatalf("neighbors = %v, want to exclude the distant cell 2", neighbors)
	}
}

func TestSelectNNSAutoPrefersGridWhenLatticeAndNoDivide(t *testing.T) {
	n := selectNNS(Auto, 4, 4, false, false, false)
	if _, ok := n.(*squareGrid); !ok {
		t.Fatalf("got %T, want *squareGrid", n)
	}
}

func TestSelectNNSAutoFallsBackWhenDivideRulePresent(t *testing.T) {
	n := selectNNS(Auto, 4, 4, false, true, false)
	if _, ok := n.(*kdTree); !ok {
		t.Fatalf("got %T, want *kdTree (lattice dims present but a Divide rule rules out the grid)", n)
	}
}

func TestSelectNNSAutoPicksSpatialSortingWhenPacked(t *testing.T) {
	n := selectNNS(Auto, 0, 0, false, false, true)
	if _, ok := n.(*spatialSorting); !ok {
		t.Fatalf("got %T, want *spatialSorting", n)
	}
}

func TestSelectNNSAutoFallsBackToKDTree(t *testing.T) {
	n := selectNNS(Auto, 0, 0, false, false, false)
	if _, ok := n.(*kdTree); !ok {
		t.Fatalf("got %T, want *kdTree", n)
	}
}

func TestSelectNNSForcedChoicesOverrideAutoTable(t *testing.T) {
	if _, ok := selectNNS(ForceSpatialSorting, 4, 4, false, false, false).(*spatialSorting); !ok {
		t.Fatal("ForceSpatialSorting must win even with lattice dims set")
	}
	if _, ok := selectNNS(ForceKDTree, 4, 4, false, false, true).(*kdTree); !ok {
		t.Fatal("ForceKDTree must win even when the domain is packed")
	}
}
