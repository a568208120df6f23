package connectivity

import (
	"reflect"
	"testing"

	"slicseg/pkg/ndimage"
)

// gridLabelImage tiles a w x h image into blockSize x blockSize cells, each
// cell getting a unique sequential label, for a baseline "already
// connected" test case.
func gridLabelImage(w, h, blockSize int) *ndimage.LabelImage {
	img := ndimage.NewLabelImage([]int{w, h})
	cols := w / blockSize
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cx, cy := x/blockSize, y/blockSize
			img.Set(ndimage.Index{x, y}, uint32(cy*cols+cx))
		}
	}
	return img
}

func TestEnforceKeepsAlreadyConnectedLabelsStable(t *testing.T) {
	img := gridLabelImage(20, 20, 10) // 2x2 = 4 connected blocks of 100px each
	result, err := Enforce(img, Options{MinComponentSize: 10, RelabelSequential: true})
	if err != nil {
		t.Fatalf("Enforce failed: %v", err)
	}
	if result.ComponentCount != 4 {
		t.Fatalf("expected 4 components, got %d", result.ComponentCount)
	}
	if !reflect.DeepEqual(result.Labels.Data, img.Data) {
		t.Fatalf("already-connected labels changed: %v vs %v", result.Labels.Data, img.Data)
	}
}

func TestEnforceAbsorbsSmallComponent(t *testing.T) {
	// one big region of label 0, with a single stray pixel of label 1 in
	// the middle that is too small to survive on its own.
	img := ndimage.NewLabelImage([]int{10, 10})
	img.Set(ndimage.Index{5, 5}, 1)

	result, err := Enforce(img, Options{MinComponentSize: 2, RelabelSequential: true})
	if err != nil {
		t.Fatalf("Enforce failed: %v", err)
	}
	if result.ComponentCount != 1 {
		t.Fatalf("expected the stray pixel to be absorbed into the single large component, got %d components", result.ComponentCount)
	}
	want := result.Labels.Get(ndimage.Index{0, 0})
	if got := result.Labels.Get(ndimage.Index{5, 5}); got != want {
		t.Fatalf("stray pixel kept its own label %d, want it absorbed into %d", got, want)
	}
}

func TestEnforceErrorsWhenNoComponentIsLargeEnough(t *testing.T) {
	img := ndimage.NewLabelImage([]int{4, 4})
	_, err := Enforce(img, Options{MinComponentSize: 1000, RelabelSequential: true})
	if err == nil {
		t.Fatal("expected an error when no component meets the minimum size")
	}
}

func TestEnforceConcurrentMatchesSequentialComponentCount(t *testing.T) {
	img := gridLabelImage(40, 40, 5) // 8x8 = 64 small blocks of 25px each

	seq, err := Enforce(img, Options{MinComponentSize: 20, RelabelSequential: true})
	if err != nil {
		t.Fatalf("sequential Enforce failed: %v", err)
	}
	conc, err := Enforce(img, Options{MinComponentSize: 20, RelabelSequential: false, NumWorkers: 4})
	if err != nil {
		t.Fatalf("concurrent Enforce failed: %v", err)
	}
	if seq.ComponentCount != conc.ComponentCount {
		t.Fatalf("sequential found %d components, concurrent found %d", seq.ComponentCount, conc.ComponentCount)
	}
}

func TestEnforceIsIdempotent(t *testing.T) {
	img := gridLabelImage(20, 20, 10)
	once, err := Enforce(img, Options{MinComponentSize: 10, RelabelSequential: true})
	if err != nil {
		t.Fatalf("first Enforce failed: %v", err)
	}
	twice, err := Enforce(once.Labels, Options{MinComponentSize: 10, RelabelSequential: true})
	if err != nil {
		t.Fatalf("second Enforce failed: %v", err)
	}
	if once.ComponentCount != twice.ComponentCount {
		t.Fatalf("component count changed on re-run: %d vs %d", once.ComponentCount, twice.ComponentCount)
	}
	if !reflect.DeepEqual(once.Labels.Data, twice.Labels.Data) {
		t.Fatalf("label image changed on re-run: %v vs %v", once.Labels.Data, twice.Labels.Data)
	}
}

// TestEnforceUsesNearestCentroidFallbackForIsolatedSmallComponent builds a
// small component (an inner block) that only ever touches another small
// component (a thin ring around it), so the adjacency pass alone cannot
// resolve it and the kd-tree nearest-centroid fallback must run.
func TestEnforceUsesNearestCentroidFallbackForIsolatedSmallComponent(t *testing.T) {
	img := ndimage.NewLabelImage([]int{20, 20})
	for y := 7; y <= 12; y++ {
		for x := 7; x <= 12; x++ {
			img.Set(ndimage.Index{x, y}, 1) // ring + inner, overwritten below
		}
	}
	for y := 8; y <= 11; y++ {
		for x := 8; x <= 11; x++ {
			img.Set(ndimage.Index{x, y}, 2) // inner block
		}
	}

	result, err := Enforce(img, Options{MinComponentSize: 25, RelabelSequential: true})
	if err != nil {
		t.Fatalf("Enforce failed: %v", err)
	}
	if result.ComponentCount != 1 {
		t.Fatalf("expected everything absorbed into the single large component, got %d components", result.ComponentCount)
	}
	want := result.Labels.Get(ndimage.Index{0, 0})
	if got := result.Labels.Get(ndimage.Index{9, 9}); got != want {
		t.Fatalf("isolated inner component kept label %d, want it absorbed into %d via nearest-centroid fallback", got, want)
	}
}
