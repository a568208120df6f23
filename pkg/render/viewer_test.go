package render

import (
	"os"
	"path/filepath"
	"testing"

	"slicseg/pkg/ndimage"
)

func TestNewViewerRejectsWrongDimensionality(t *testing.T) {
	labels := ndimage.NewLabelImage([]int{4, 4, 4, 4})
	if _, err := NewViewer(labels); err == nil {
		t.Fatal("expected an error for a 4-D label image")
	}
}

func TestExtractSlice2D(t *testing.T) {
	labels := ndimage.NewLabelImage([]int{8, 6})
	labels.Set(ndimage.Index{3, 2}, 7)

	v, err := NewViewer(labels)
	if err != nil {
		t.Fatalf("NewViewer failed: %v", err)
	}
	img, err := v.ExtractSlice(0, 0)
	if err != nil {
		t.Fatalf("ExtractSlice failed: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 8 || bounds.Dy() != 6 {
		t.Fatalf("expected an 8x6 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestExtractSlice3DAxisBounds(t *testing.T) {
	labels := ndimage.NewLabelImage([]int{4, 5, 6})
	v, err := NewViewer(labels)
	if err != nil {
		t.Fatalf("NewViewer failed: %v", err)
	}

	if _, err := v.ExtractSlice(2, 100); err == nil {
		t.Fatal("expected an out-of-range error")
	}

	img, err := v.ExtractSlice(2, 3)
	if err != nil {
		t.Fatalf("ExtractSlice failed: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 4 || bounds.Dy() != 5 {
		t.Fatalf("expected a 4x5 slice perpendicular to axis 2, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestSaveSliceSequenceWritesOneFilePerPosition(t *testing.T) {
	labels := ndimage.NewLabelImage([]int{4, 4, 3})
	v, err := NewViewer(labels)
	if err != nil {
		t.Fatalf("NewViewer failed: %v", err)
	}

	dir := t.TempDir()
	if err := v.SaveSliceSequence(2, dir); err != nil {
		t.Fatalf("SaveSliceSequence failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("could not read output dir: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 slice files, got %d", len(entries))
	}
	if _, err := os.Stat(filepath.Join(dir, "slice_2_000.jpg")); err != nil {
		t.Fatalf("expected slice_2_000.jpg to exist: %v", err)
	}
}

func TestLabelColorIsDeterministicAndDistinguishesAdjacentLabels(t *testing.T) {
	c1 := labelColor(0)
	c2 := labelColor(0)
	if c1 != c2 {
		t.Fatal("labelColor is not deterministic for the same label")
	}
	c3 := labelColor(1)
	if c1 == c3 {
		t.Fatal("expected adjacent labels to receive distinguishable colors")
	}
}
