package slic

import (
	"slicseg/pkg/cluster"
	"slicseg/pkg/ndimage"
)

// assignTile implements the assignment stage (§4.4) for one worker's output
// tile: for every cluster whose S-radius search window overlaps tile, walk
// the intersection and keep, per pixel, the minimum distance seen so far and
// the cluster index that achieved it. Because the search windows of
// different clusters may overlap but every worker only ever writes inside
// its own disjoint tile, no two workers ever race on the same (distance,
// label) cell within one call to assignTile.
func assignTile(
	input *ndimage.Image,
	store *cluster.Store,
	label *ndimage.LabelImage,
	dist *ndimage.DistanceImage,
	tile ndimage.Region,
	superGrid []int,
	scales []float64,
	weight float64,
) {
	searchRadius := superGrid

	for i := 0; i < store.Count; i++ {
		c := store.At(i)
		point := ndimage.Point(c[store.Features:])
		idx := input.PointToIndex(point)

		window := ndimage.Region{Start: idx, Size: onesSize(input.Dim())}
		window = window.PadByRadius(searchRadius, ndimage.WholeRegion(input))

		local, ok := window.Intersect(tile)
		if !ok {
			continue
		}

		local.ForEachIndex(func(q ndimage.Index) bool {
			value := input.At(q)
			pt := input.IndexToPoint(q)
			d := cluster.Distance(c, value, pt, scales, weight)
			if d < dist.Get(q) {
				dist.Set(q, d)
				label.Set(q, uint32(i))
			}
			return true
		})
	}
}
