// Package harness defines the minimal contracts the clustering engine
// consumes from a generic image-filter harness: region-split partitioning
// for T workers, progress reporting, and cooperative cancellation. The
// harness itself — progress UI, region-splitting across an arbitrary
// pipeline, metadata propagation — is out of scope for this module; only
// the contracts the core actually calls are defined here, plus a Default
// implementation so the engine is runnable standalone.
package harness

import "slicseg/pkg/ndimage"

// ProgressReporter receives a fraction in [0,1] as the engine advances
// through its fixed iteration budget. Implementations must not block for
// long or the engine's worker 0 will stall at the barrier.
type ProgressReporter interface {
	Report(fraction float64)
}

// ResidualReporter is an optional extension of ProgressReporter. When a
// caller's progress reporter also implements it, the engine calls
// ReportResidual once per iteration with the cluster store's convergence
// residual, gated behind Config.LogResidual. It exists for debug logging
// only; the engine never consults it to decide when to stop.
type ResidualReporter interface {
	ReportResidual(iteration int, residual float64)
}

// AbortSignal is polled by worker 0 between iterations (never mid-iteration,
// per the cancellation granularity design note). Aborted reports whether a
// caller has requested the run stop.
type AbortSignal interface {
	Aborted() bool
}

// RegionSplitter partitions an output region into up to n disjoint tiles
// along its slowest-varying axis, mirroring how a real filter harness hands
// each worker a disjoint output tile. Split may return fewer than n tiles if
// the region cannot be divided that finely (e.g. fewer rows than workers).
type RegionSplitter interface {
	Split(region ndimage.Region, n int) []ndimage.Region
}

// ProgressFunc adapts a plain function to ProgressReporter.
type ProgressFunc func(fraction float64)

// Report implements ProgressReporter.
func (f ProgressFunc) Report(fraction float64) { f(fraction) }

// NoopProgress discards all progress reports.
var NoopProgress ProgressReporter = ProgressFunc(func(float64) {})

// staticAbort never reports an abort request.
type staticAbort struct{}

func (staticAbort) Aborted() bool { return false }

// NeverAbort is an AbortSignal that never trips.
var NeverAbort AbortSignal = staticAbort{}
