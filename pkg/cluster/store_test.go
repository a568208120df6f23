package cluster

import "testing"

func TestStoreSetAndAt(t *testing.T) {
	s := NewStore(4, 2, 3) // F=2, N=3
	s.Set(1, []float64{9, 8}, []float64{1, 2, 3})

	got := s.At(1)
	want := []float64{9, 8, 1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("component %d: got %v want %v", i, got[i], want[i])
		}
	}

	// other clusters remain zero
	other := s.At(0)
	for _, v := range other {
		if v != 0 {
			t.Fatalf("untouched cluster was mutated: %v", other)
		}
	}
}

func TestStoreSwapAndClear(t *testing.T) {
	s := NewStore(2, 1, 1)
	s.Set(0, []float64{5}, []float64{7})
	s.SwapAndClear()

	if got := s.PreviousAt(0); got[0] != 5 || got[1] != 7 {
		t.Fatalf("previous should hold the pre-swap values, got %v", got)
	}
	if got := s.At(0); got[0] != 0 || got[1] != 0 {
		t.Fatalf("current should be cleared after swap, got %v", got)
	}
}

func TestStoreResidualMeasuresMovementSinceSwap(t *testing.T) {
	s := NewStore(2, 1, 1) // F=1, N=1
	s.Set(0, []float64{1}, []float64{0})
	s.Set(1, []float64{1}, []float64{0})
	s.SwapAndClear() // Previous now holds the values just set; Current is zeroed

	if r := s.Residual([]float64{1}, 10); r == 0 {
		t.Fatal("expected a nonzero residual when Current differs from Previous")
	}

	s.Set(0, []float64{1}, []float64{0})
	s.Set(1, []float64{1}, []float64{0})
	if r := s.Residual([]float64{1}, 10); r != 0 {
		t.Fatalf("expected a zero residual when Current matches Previous, got %v", r)
	}
}

func TestUpdateMapAddAndFold(t *testing.T) {
	m := NewUpdateMap(3, 2)
	m.Add(1, []float64{1, 1})
	m.Add(1, []float64{3, 5})
	m.Add(2, []float64{10, 10})

	if m.Count(1) != 2 {
		t.Fatalf("expected count 2 for label 1, got %d", m.Count(1))
	}
	v := m.Vector(1)
	if v[0] != 4 || v[1] != 6 {
		t.Fatalf("expected summed vector [4 6], got %v", v)
	}

	store := NewStore(3, 1, 1)
	counts := make([]int, 3)
	m.FoldInto(store, counts)

	if counts[1] != 2 || counts[2] != 1 || counts[0] != 0 {
		t.Fatalf("unexpected counts after fold: %v", counts)
	}
	got2 := store.At(2)
	if got2[0] != 10 || got2[1] != 10 {
		t.Fatalf("expected label 2 folded in, got %v", got2)
	}
}

func TestUpdateMapResetClearsState(t *testing.T) {
	m := NewUpdateMap(2, 2)
	m.Add(0, []float64{1, 1})
	m.Reset()
	if m.Count(0) != 0 {
		t.Fatalf("expected count 0 after reset, got %d", m.Count(0))
	}
	v := m.Vector(0)
	if v[0] != 0 || v[1] != 0 {
		t.Fatalf("expected zeroed vector after reset, got %v", v)
	}
}
