package tissue

import "testing"

func TestStoreNewCellExhaustion(t *testing.T) {
	s := NewStore(2)
	a := s.NewCell()
	b := s.NewCell()
	c := s.NewCell()

	if a != 0 || b != 1 {
		t.Fatalf("ids = %d, %d; want 0, 1", a, b)
	}
	if c != NoCell {
		t.Fatalf("third NewCell = %d, want NoCell", c)
	}
	if s.N() != 2 {
		t.Fatalf("N() = %d, want 2", s.N())
	}
}

func TestStoreSwapExchangesBuffers(t *testing.T) {
	s := NewStore(1)
	id := s.NewCell()
	s.Curr(id).X = 1
	s.Next(id).X = 2

	s.Swap()

	if s.Curr(id).X != 2 {
		t.Fatalf("after swap, Curr(id).X = %v, want 2", s.Curr(id).X)
	}
	if s.Next(id).X != 1 {
		t.Fatalf("after swap, Next(id).X = %v, want 1", s.Next(id).X)
	}
}

func TestStoreCopyCurrToNext(t *testing.T) {
	s := NewStore(1)
	id := s.NewCell()
	s.Curr(id).Conc[0] = 3.5

	s.CopyCurrToNext(id)

	if s.Next(id).Conc[0] != 3.5 {
		t.Fatalf("Next(id).Conc[0] = %v, want 3.5", s.Next(id).Conc[0])
	}
}

func TestStoreEachLiveVisitsAllocatedIDsInOrder(t *testing.T) {
	s := NewStore(5)
	s.NewCell()
	s.NewCell()
	s.NewCell()

	var seen []CellId
	s.EachLive(func(id CellId) { seen = append(seen, id) })

	want := []CellId{0, 1, 2}
	if len(seen) != len(want) {
		t.Fatalf("visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("visited %v, want %v", seen, want)
		}
	}
}
