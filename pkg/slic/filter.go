package slic

import (
	"context"
	"fmt"
	"runtime"

	"slicseg/pkg/connectivity"
	"slicseg/pkg/harness"
	"slicseg/pkg/ndimage"
)

// Diagnostics reports a few facts about a completed run, useful for a
// caller (e.g. the CLI) to print without reaching into engine internals.
type Diagnostics struct {
	ClusterCount           int
	IterationsRun          int
	WorkersUsed            int
	ConnectivityComponents int
}

// Filter is the library-level entry point: the only way a caller drives the
// clustering engine. It exposes configuration and one Run operation, per
// §4.8.
type Filter struct {
	cfg      Config
	splitter harness.RegionSplitter
	progress harness.ProgressReporter
	abort    harness.AbortSignal
}

// NewFilter creates a Filter with the given configuration. A nil
// SuperGridSize, a negative MaxIterations and a zero LabelBits are resolved
// to their defaults inside Run; other fields are used as given.
func NewFilter(cfg Config) *Filter {
	return &Filter{
		cfg:      cfg,
		splitter: harness.DefaultSplitter{},
		progress: harness.NoopProgress,
		abort:    harness.NeverAbort,
	}
}

// WithRegionSplitter overrides the region-split partitioning contract
// normally supplied by the image-filter harness (§6).
func (f *Filter) WithRegionSplitter(s harness.RegionSplitter) *Filter {
	f.splitter = s
	return f
}

// WithProgress overrides the progress reporting hook.
func (f *Filter) WithProgress(p harness.ProgressReporter) *Filter {
	f.progress = p
	return f
}

// WithAbortSignal overrides the cooperative cancellation hook.
func (f *Filter) WithAbortSignal(a harness.AbortSignal) *Filter {
	f.abort = a
	return f
}

// Run requests the entire input region, produces the entire output region,
// and returns the label image plus run diagnostics. It validates
// configuration, capacity and dimension constraints synchronously before
// doing any work, per the propagation policy of §7.
func (f *Filter) Run(ctx context.Context, input *ndimage.Image) (*ndimage.LabelImage, *Diagnostics, error) {
	cfg := f.cfg.resolved(input.Dim())

	if err := validateConfig(cfg, input.Dim()); err != nil {
		return nil, nil, err
	}

	layout, ok := computeGridLayout(input.Size, cfg.SuperGridSize)
	if !ok {
		return nil, nil, fmt.Errorf("%w: input axis smaller than its super-grid size", ErrDimension)
	}
	if input.NumPixels() == 0 {
		return nil, nil, fmt.Errorf("%w: input has zero pixels", ErrDimension)
	}

	clusterCount := layout.clusterCount()
	if clusterCount <= 0 {
		return nil, nil, fmt.Errorf("%w: computed zero clusters", ErrDimension)
	}
	if maxLabel := (uint64(1) << uint(cfg.LabelBits)) - 1; uint64(clusterCount) >= maxLabel {
		return nil, nil, fmt.Errorf("%w: %d clusters do not fit in a %d-bit label", ErrCapacity, clusterCount, cfg.LabelBits)
	}

	numWorkers := cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	region := ndimage.WholeRegion(input)
	tiles := f.splitter.Split(region, numWorkers)
	if len(tiles) == 0 {
		tiles = []ndimage.Region{region}
	}

	store := initClusters(input, cfg.SuperGridSize, layout)

	eng := newEngine(input, cfg, store, tiles, f.progress, f.abort)
	if err := eng.run(ctx); err != nil {
		return nil, nil, err
	}

	diag := &Diagnostics{
		ClusterCount:  clusterCount,
		IterationsRun: cfg.MaxIterations,
		WorkersUsed:   len(tiles),
	}

	label := eng.label
	if cfg.EnforceConnectivity {
		minSize := connectivityMinSize(cfg.ConnectivityMinRatio, cfg.SuperGridSize)
		result, err := connectivity.Enforce(label, connectivity.Options{
			MinComponentSize:  minSize,
			RelabelSequential: cfg.ConnectivityRelabelSequential,
			NumWorkers:        numWorkers,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvariant, err)
		}
		label = result.Labels
		diag.ConnectivityComponents = result.ComponentCount
	}

	return label, diag, nil
}

func validateConfig(cfg Config, dims int) error {
	if len(cfg.SuperGridSize) != dims {
		return fmt.Errorf("%w: super-grid size has %d axes, input has %d", ErrConfiguration, len(cfg.SuperGridSize), dims)
	}
	for i, s := range cfg.SuperGridSize {
		if s <= 0 {
			return fmt.Errorf("%w: super-grid size along axis %d must be positive, got %d", ErrConfiguration, i, s)
		}
	}
	if cfg.MaxIterations < 0 {
		return fmt.Errorf("%w: max iterations must be >= 0, got %d", ErrConfiguration, cfg.MaxIterations)
	}
	if cfg.LabelBits <= 0 || cfg.LabelBits > 32 {
		return fmt.Errorf("%w: label bits must be in (0,32], got %d", ErrConfiguration, cfg.LabelBits)
	}
	return nil
}

func connectivityMinSize(ratio float64, superGrid []int) int {
	cells := 1
	for _, s := range superGrid {
		cells *= s
	}
	size := int(ratio * float64(cells))
	if size < 1 {
		size = 1
	}
	return size
}
