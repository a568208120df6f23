package slic

import (
	"gonum.org/v1/gonum/floats"

	"slicseg/pkg/cluster"
	"slicseg/pkg/ndimage"
)

// buildUpdateMapTile implements reduction phase A for one worker: clear its
// update map, then for every pixel in tile accumulate the concatenated
// (feature, physical-point) vector into its label's running sum and count.
func buildUpdateMapTile(input *ndimage.Image, label *ndimage.LabelImage, tile ndimage.Region, m *cluster.UpdateMap) {
	m.Reset()

	vec := make([]float64, 0)
	tile.ForEachIndex(func(q ndimage.Index) bool {
		l := int(label.Get(q))
		value := input.At(q)
		pt := input.IndexToPoint(q)

		if cap(vec) < len(value)+len(pt) {
			vec = make([]float64, len(value)+len(pt))
		}
		vec = vec[:len(value)+len(pt)]
		copy(vec, value)
		copy(vec[len(value):], pt)

		m.Add(l, vec)
		return true
	})
}

// reduceAndAverage implements reduction phase B, run single-threaded by
// worker 0: swap current/previous, fold every worker's update map into the
// new current buffer, then average by member count. Clusters with a zero
// count keep their zeroed state; the next assignment stage compares pixels
// against that zeroed center like any other, and nothing excludes it from
// winning pixels.
func reduceAndAverage(store *cluster.Store, maps []*cluster.UpdateMap) {
	store.SwapAndClear()

	counts := make([]int, store.Count)
	for _, m := range maps {
		m.FoldInto(store, counts)
	}

	d := store.D()
	for i := 0; i < store.Count; i++ {
		if counts[i] == 0 {
			continue
		}
		v := store.Current[i*d : (i+1)*d]
		floats.Scale(1.0/float64(counts[i]), v)
	}
}
