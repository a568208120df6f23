package slic

import (
	"context"
	"errors"
	"testing"

	"slicseg/pkg/harness"
	"slicseg/pkg/ndimage"
)

func TestEngineRunStopsBetweenIterationsOnAbort(t *testing.T) {
	img := uniformImage(40, 40, 1)
	cfg := DefaultConfig()
	cfg.SuperGridSize = []int{10, 10}
	cfg.MaxIterations = 1000
	cfg.NumWorkers = 2

	abort := harness.NewAtomicAbort()
	abort.Abort() // already tripped before the first iteration boundary

	f := NewFilter(cfg).WithAbortSignal(abort)
	_, _, err := f.Run(context.Background(), img)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestEngineRunCompletesWithoutAbort(t *testing.T) {
	img := uniformImage(30, 30, 1)
	cfg := DefaultConfig()
	cfg.SuperGridSize = []int{10, 10}
	cfg.MaxIterations = 2
	cfg.NumWorkers = 3

	store := initClusters(img, cfg.SuperGridSize, mustLayout(t, img.Size, cfg.SuperGridSize))
	region := ndimage.WholeRegion(img)
	tiles := harness.DefaultSplitter{}.Split(region, cfg.NumWorkers)

	eng := newEngine(img, cfg, store, tiles, harness.NoopProgress, harness.NeverAbort)
	if err := eng.run(context.Background()); err != nil {
		t.Fatalf("engine run failed: %v", err)
	}
	for _, l := range eng.label.Data {
		if int(l) >= store.Count {
			t.Fatalf("label %d out of range [0,%d)", l, store.Count)
		}
	}
}

type recordingReporter struct {
	residuals []float64
}

func (r *recordingReporter) Report(float64) {}

func (r *recordingReporter) ReportResidual(iteration int, residual float64) {
	r.residuals = append(r.residuals, residual)
}

func TestEngineRunReportsResidualWhenLogResidualEnabled(t *testing.T) {
	img := uniformImage(30, 30, 1)
	cfg := DefaultConfig()
	cfg.SuperGridSize = []int{10, 10}
	cfg.MaxIterations = 3
	cfg.NumWorkers = 2
	cfg.LogResidual = true

	rec := &recordingReporter{}
	f := NewFilter(cfg).WithProgress(rec)
	if _, _, err := f.Run(context.Background(), img); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rec.residuals) != cfg.MaxIterations {
		t.Fatalf("expected %d residual reports, got %d", cfg.MaxIterations, len(rec.residuals))
	}
}

func mustLayout(t *testing.T, size, superGrid []int) gridLayout {
	t.Helper()
	layout, ok := computeGridLayout(size, superGrid)
	if !ok {
		t.Fatalf("computeGridLayout failed for size=%v superGrid=%v", size, superGrid)
	}
	return layout
}
