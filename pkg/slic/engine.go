package slic

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"slicseg/internal/barrier"
	"slicseg/pkg/cluster"
	"slicseg/pkg/harness"
	"slicseg/pkg/ndimage"
)

// engine owns the buffers and coordination primitives for one run: the
// cluster store, the distance and label images, the per-worker tiles and
// update maps, and the reusable barrier the worker pool synchronizes on. No
// state here is global; every run gets its own engine.
type engine struct {
	input *ndimage.Image

	cfg    Config
	scales []float64

	store *cluster.Store
	label *ndimage.LabelImage
	dist  *ndimage.DistanceImage

	tiles []ndimage.Region
	maps  []*cluster.UpdateMap

	bar *barrier.Barrier

	progress harness.ProgressReporter
	abort    harness.AbortSignal
}

func newEngine(input *ndimage.Image, cfg Config, store *cluster.Store, tiles []ndimage.Region, progress harness.ProgressReporter, abort harness.AbortSignal) *engine {
	scales := cluster.DistanceScales(cfg.SuperGridSize, input.Spacing)
	maps := make([]*cluster.UpdateMap, len(tiles))
	for i := range maps {
		maps[i] = cluster.NewUpdateMap(store.Count, store.D())
	}
	return &engine{
		input:    input,
		cfg:      cfg,
		scales:   scales,
		store:    store,
		label:    ndimage.NewLabelImage(input.Size),
		dist:     ndimage.NewDistanceImage(input.Size),
		tiles:    tiles,
		maps:     maps,
		bar:      barrier.New(len(tiles)),
		progress: progress,
		abort:    abort,
	}
}

// run drives the perturb -> iterate(assign, reduce) loop across one
// goroutine per tile, coordinated by the engine's barrier, and returns once
// every worker has finished or the run was canceled.
func (e *engine) run(ctx context.Context) error {
	numWorkers := len(e.tiles)
	clusterStride := (e.store.Count + numWorkers - 1) / numWorkers

	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < numWorkers; w++ {
		w := w
		g.Go(func() error {
			return e.worker(w, clusterStride)
		})
	}
	return g.Wait()
}

func (e *engine) worker(id, clusterStride int) error {
	lo := min(id*clusterStride, e.store.Count)
	hi := min(lo+clusterStride, e.store.Count)
	perturbClusterRange(e.input, e.store, lo, hi)

	if canceled := e.bar.Wait(); canceled {
		return ErrCancelled
	}

	if e.cfg.MaxIterations == 0 {
		// Zero iterations skips the assign/update/reduce loop entirely, but
		// per §8's round-trip property the label image must still be
		// "determined solely by initial (perturbed) centers" rather than
		// left at NewLabelImage's zero-filled default, so run one
		// assignment pass against the perturbed centers before returning.
		if id == 0 {
			if e.abort.Aborted() {
				e.bar.Cancel()
			} else {
				e.dist.Fill(math.Inf(1))
			}
		}
		if canceled := e.bar.Wait(); canceled {
			return ErrCancelled
		}
		assignTile(e.input, e.store, e.label, e.dist, e.tiles[id], e.cfg.SuperGridSize, e.scales, e.cfg.SpatialProximityWeight)
		if canceled := e.bar.Wait(); canceled {
			return ErrCancelled
		}
		return nil
	}

	for iter := 0; iter < e.cfg.MaxIterations; iter++ {
		if id == 0 {
			if e.abort.Aborted() {
				e.bar.Cancel()
			} else {
				e.dist.Fill(math.Inf(1))
			}
		}
		if canceled := e.bar.Wait(); canceled {
			return ErrCancelled
		}

		assignTile(e.input, e.store, e.label, e.dist, e.tiles[id], e.cfg.SuperGridSize, e.scales, e.cfg.SpatialProximityWeight)
		if canceled := e.bar.Wait(); canceled {
			return ErrCancelled
		}

		buildUpdateMapTile(e.input, e.label, e.tiles[id], e.maps[id])
		if canceled := e.bar.Wait(); canceled {
			return ErrCancelled
		}

		if id == 0 {
			reduceAndAverage(e.store, e.maps)
			e.progress.Report(float64(iter+1) / float64(e.cfg.MaxIterations))
			if e.cfg.LogResidual {
				if rr, ok := e.progress.(harness.ResidualReporter); ok {
					rr.ReportResidual(iter+1, e.store.Residual(e.scales, e.cfg.SpatialProximityWeight))
				}
			}
		}
		if canceled := e.bar.Wait(); canceled {
			return ErrCancelled
		}
	}
	return nil
}
