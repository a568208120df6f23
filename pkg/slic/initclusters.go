package slic

import (
	"slicseg/pkg/cluster"
	"slicseg/pkg/ndimage"
)

// initClusters builds the cluster store for input, placing C = Π strips_i
// initial centers on the regular grid described by layout and seeding each
// one with the pixel value and physical point found at its grid index. It
// runs single-threaded before any worker is spawned, matching the original
// filter's BeforeThreadedGenerateData.
func initClusters(input *ndimage.Image, superGrid []int, layout gridLayout) *cluster.Store {
	region := ndimage.WholeRegion(input)
	indices := initialClusterIndices(region.Start, region.Size, superGrid, layout)

	store := cluster.NewStore(len(indices), input.Components, input.Dim())
	for i, idx := range indices {
		value := input.At(idx)
		point := input.IndexToPoint(idx)
		store.Set(i, value, point)
	}
	return store
}
