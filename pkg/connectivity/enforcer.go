// Package connectivity implements the optional post-pass that relabels a
// clustered label image by its spatially connected components, folding
// components below a minimum size into a large one. It is a plain
// function over an ndimage.LabelImage and never touches the clustering
// engine directly.
package connectivity

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/kdtree"

	"slicseg/pkg/harness"
	"slicseg/pkg/ndimage"
)

// ErrUnresolvable is returned when a small component cannot be folded into
// any large component, which only happens when the image contains no large
// component at all.
var ErrUnresolvable = errors.New("connectivity: no large component available to absorb small components")

// Options configures one Enforce call.
type Options struct {
	// MinComponentSize is the minimum pixel count a connected component
	// must have to keep its own label; smaller components are folded into
	// a neighboring large component.
	MinComponentSize int

	// RelabelSequential forces single-threaded component discovery. When
	// false, discovery runs concurrently across NumWorkers tiles and
	// per-tile components are stitched together with a shared atomic
	// counter plus a boundary merge pass.
	RelabelSequential bool

	// NumWorkers bounds the number of concurrent discovery tiles; ignored
	// when RelabelSequential is true.
	NumWorkers int
}

// Result is the outcome of one Enforce call.
type Result struct {
	Labels         *ndimage.LabelImage
	ComponentCount int
}

// Enforce relabels input so that every connected component of at least
// MinComponentSize pixels gets its own output label, per §4.7. Small
// components adopt the label of an adjoining large component if one exists,
// else the label of the large component with the nearest centroid; a
// component resolved by that fallback need not touch the component whose
// label it takes, so its output label can cover disconnected pixels.
func Enforce(input *ndimage.LabelImage, opts Options) (*Result, error) {
	n := len(input.Size)
	total := numPixels(input.Size)

	compID := make([]int32, total)
	marker := ndimage.NewMarkerImage(input.Size)

	region := ndimage.Region{Start: make(ndimage.Index, n), Size: append([]int(nil), input.Size...)}

	numWorkers := opts.NumWorkers
	if opts.RelabelSequential || numWorkers <= 0 {
		numWorkers = 1
	}

	tiles := harness.DefaultSplitter{}.Split(region, numWorkers)
	if len(tiles) == 0 {
		tiles = []ndimage.Region{region}
	}

	var counter int32
	g := new(errgroup.Group)
	for t := range tiles {
		t := t
		g.Go(func() error {
			floodFillTile(input, tiles[t], compID, marker, &counter)
			return nil
		})
	}
	_ = g.Wait()

	rawCount := int(counter)
	uf := newUnionFind(rawCount)
	stitchTileBoundaries(input, tiles, compID, uf, n)

	// One pass over the whole image derives every raw component's size,
	// seed label and coordinate sum; per-tile flood fill only needs to
	// assign ids, not accumulate stats that stitching could still merge.
	size := make([]int, rawCount)
	seedLabel := make([]uint32, rawCount)
	sum := make([][]float64, rawCount)
	for i := range sum {
		sum[i] = make([]float64, n)
	}
	seen := make([]bool, rawCount)

	region.ForEachIndex(func(idx ndimage.Index) bool {
		lin := linearOffset(input.Size, idx)
		id := compID[lin]
		size[id]++
		if !seen[id] {
			seen[id] = true
			seedLabel[id] = input.Get(idx)
		}
		for k := 0; k < n; k++ {
			sum[id][k] += float64(idx[k])
		}
		return true
	})

	merged, rootOf := mergeComponents(uf, rawCount, size, seedLabel, sum, n)

	minSize := opts.MinComponentSize
	if minSize < 1 {
		minSize = 1
	}

	largeFinal := make([]uint32, len(merged))
	isLarge := make([]bool, len(merged))
	var nextLabel int32
	for i, m := range merged {
		if m.size >= minSize {
			isLarge[i] = true
			largeFinal[i] = uint32(atomic.AddInt32(&nextLabel, 1) - 1)
		}
	}

	if nextLabel == 0 {
		return nil, fmt.Errorf("%w", ErrUnresolvable)
	}

	adopted := make([]int, len(merged))
	for i := range adopted {
		adopted[i] = -1
	}

	adoptFromNeighbors(input, region, compID, rootOf, isLarge, adopted, n)
	if err := adoptFromNearestCentroid(merged, isLarge, adopted); err != nil {
		return nil, err
	}

	out := ndimage.NewLabelImage(input.Size)
	region.ForEachIndex(func(idx ndimage.Index) bool {
		lin := linearOffset(input.Size, idx)
		m := rootOf[compID[lin]]
		if isLarge[m] {
			out.Set(idx, largeFinal[m])
		} else {
			out.Set(idx, largeFinal[adopted[m]])
		}
		return true
	})

	return &Result{Labels: out, ComponentCount: int(nextLabel)}, nil
}

func numPixels(size []int) int {
	n := 1
	for _, s := range size {
		n *= s
	}
	return n
}

func linearOffset(size []int, idx ndimage.Index) int {
	stride := 1
	off := 0
	for i := 0; i < len(idx); i++ {
		off += idx[i] * stride
		stride *= size[i]
	}
	return off
}

// floodFillTile assigns every unvisited pixel in tile a fresh id drawn from
// counter, flood filling across 2N face neighbors that share the same input
// label and lie inside tile. marker tracks which pixels have already been
// visited; compID records the raw component id assigned to each pixel. It
// never crosses a tile boundary; stitchTileBoundaries reconciles components
// split across tiles afterward. Per-component statistics are derived later
// in one pass over the whole image, after stitching, rather than
// accumulated here.
func floodFillTile(input *ndimage.LabelImage, tile ndimage.Region, compID []int32, marker *ndimage.MarkerImage, counter *int32) {
	n := tile.Dim()
	upper := tile.Upper()
	var stack []ndimage.Index

	tile.ForEachIndex(func(start ndimage.Index) bool {
		if marker.Get(start) != 0 {
			return true
		}
		id := atomic.AddInt32(counter, 1) - 1
		lbl := input.Get(start)

		stack = stack[:0]
		stack = append(stack, start)
		marker.Set(start, 1)
		compID[linearOffset(input.Size, start)] = id

		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for axis := 0; axis < n; axis++ {
				for _, delta := range [2]int{-1, 1} {
					nb := append(ndimage.Index(nil), cur...)
					nb[axis] += delta
					if nb[axis] < tile.Start[axis] || nb[axis] >= upper[axis] {
						continue
					}
					if marker.Get(nb) != 0 {
						continue
					}
					if input.Get(nb) != lbl {
						continue
					}
					marker.Set(nb, 1)
					compID[linearOffset(input.Size, nb)] = id
					stack = append(stack, nb)
				}
			}
		}
		return true
	})
}

// stitchTileBoundaries unions raw components across the faces where two
// tiles abut (only the tile-split axis can have such a face, since every
// tile spans the full extent of every other axis).
func stitchTileBoundaries(input *ndimage.LabelImage, tiles []ndimage.Region, compID []int32, uf *unionFind, n int) {
	if len(tiles) < 2 {
		return
	}
	axis := tiles[0].Dim() - 1

	for t := 0; t+1 < len(tiles); t++ {
		a, b := tiles[t], tiles[t+1]
		if a.Start[axis]+a.Size[axis] != b.Start[axis] {
			continue // not actually adjacent along the split axis
		}
		face := ndimage.Region{Start: append(ndimage.Index(nil), a.Start...), Size: append([]int(nil), a.Size...)}
		face.Start[axis] = a.Start[axis] + a.Size[axis] - 1
		face.Size[axis] = 1

		face.ForEachIndex(func(idx ndimage.Index) bool {
			other := append(ndimage.Index(nil), idx...)
			other[axis]++
			if other[axis] >= b.Start[axis]+b.Size[axis] {
				return true
			}
			la := linearOffset(input.Size, idx)
			lb := linearOffset(input.Size, other)
			if input.Data[la] == input.Data[lb] {
				uf.Union(int(compID[la]), int(compID[lb]))
			}
			return true
		})
	}
}

type mergedComponent struct {
	size      int
	seedLabel uint32
	sum       []float64
}

func (m mergedComponent) centroid() []float64 {
	c := make([]float64, len(m.sum))
	for i, s := range m.sum {
		c[i] = s / float64(m.size)
	}
	return c
}

// mergeComponents compresses union-find roots into a dense list of merged
// components and returns, per raw component id, the index into that list.
func mergeComponents(uf *unionFind, rawCount int, size []int, seedLabel []uint32, sum [][]float64, n int) ([]mergedComponent, []int) {
	rootIdx := make(map[int]int)
	rootOf := make([]int, rawCount)
	var merged []mergedComponent

	for id := 0; id < rawCount; id++ {
		root := uf.Find(id)
		idx, ok := rootIdx[root]
		if !ok {
			idx = len(merged)
			rootIdx[root] = idx
			merged = append(merged, mergedComponent{seedLabel: seedLabel[id], sum: make([]float64, n)})
		}
		m := &merged[idx]
		m.size += size[id]
		for k := 0; k < n; k++ {
			m.sum[k] += sum[id][k]
		}
		rootOf[id] = idx
	}
	return merged, rootOf
}

// adoptFromNeighbors does pass one of adoption: for every small merged
// component, look for a face-adjacent pixel belonging to a large merged
// component and adopt its index.
func adoptFromNeighbors(input *ndimage.LabelImage, region ndimage.Region, compID []int32, rootOf []int, isLarge []bool, adopted []int, n int) {
	region.ForEachIndex(func(idx ndimage.Index) bool {
		lin := linearOffset(input.Size, idx)
		m := rootOf[compID[lin]]
		if isLarge[m] || adopted[m] != -1 {
			return true
		}
		upper := region.Upper()
		for axis := 0; axis < n; axis++ {
			for _, delta := range [2]int{-1, 1} {
				nb := append(ndimage.Index(nil), idx...)
				nb[axis] += delta
				if nb[axis] < region.Start[axis] || nb[axis] >= upper[axis] {
					continue
				}
				nm := rootOf[compID[linearOffset(input.Size, nb)]]
				if isLarge[nm] {
					adopted[m] = nm
					return true
				}
			}
		}
		return true
	})
}

// adoptFromNearestCentroid is pass two: any small component still
// unresolved after adjacency adoption (an isolated blob touching only other
// small components) adopts the label of the large component whose centroid
// is nearest, via a kd-tree over large-component centroids.
func adoptFromNearestCentroid(merged []mergedComponent, isLarge []bool, adopted []int) error {
	var needsFallback bool
	for i, large := range isLarge {
		if !large && adopted[i] == -1 {
			needsFallback = true
			break
		}
	}
	if !needsFallback {
		return nil
	}

	var points centroidPoints
	for i, large := range isLarge {
		if large {
			points = append(points, centroidPoint{coords: merged[i].centroid(), idx: i})
		}
	}
	if len(points) == 0 {
		return fmt.Errorf("%w", ErrUnresolvable)
	}

	tree := kdtree.New(points, true)

	for i, large := range isLarge {
		if large || adopted[i] != -1 {
			continue
		}
		query := centroidPoint{coords: merged[i].centroid(), idx: -1}
		keeper := kdtree.NewNKeeper(1)
		tree.NearestSet(keeper, query)
		for _, item := range keeper.Heap {
			if item.Comparable == nil {
				continue
			}
			adopted[i] = item.Comparable.(centroidPoint).idx
			break
		}
		if adopted[i] == -1 {
			return fmt.Errorf("%w: component %d has no reachable large neighbor", ErrUnresolvable, i)
		}
	}
	return nil
}
