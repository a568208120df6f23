package connectivity

import "gonum.org/v1/gonum/spatial/kdtree"

// centroidPoint is an N-D point carrying the index of the merged component
// it represents, so a nearest-neighbor result can be read back without a
// coordinate-matching scan. Implements kdtree.Comparable, the same
// interface the interpolation package's Point3D implements for its own
// nearest-neighbor search.
type centroidPoint struct {
	coords []float64
	idx    int
}

func (p centroidPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(centroidPoint)
	return p.coords[int(d)] - q.coords[int(d)]
}

func (p centroidPoint) Dims() int { return len(p.coords) }

func (p centroidPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(centroidPoint)
	var sum float64
	for i := range p.coords {
		d := p.coords[i] - q.coords[i]
		sum += d * d
	}
	return sum
}

// centroidPoints satisfies kdtree.Interface for a slice of centroidPoint.
type centroidPoints []centroidPoint

func (ps centroidPoints) Index(i int) kdtree.Comparable         { return ps[i] }
func (ps centroidPoints) Len() int                              { return len(ps) }
func (ps centroidPoints) Slice(start, end int) kdtree.Interface { return ps[start:end] }

func (ps centroidPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(centroidPlane{centroidPoints: ps, Dim: d}, kdtree.MedianOfRandoms(centroidPlane{centroidPoints: ps, Dim: d}, 100))
}

// centroidPlane implements sort.Interface and kdtree.SortSlicer for
// centroidPoints along a fixed dimension.
type centroidPlane struct {
	centroidPoints
	kdtree.Dim
}

func (p centroidPlane) Less(i, j int) bool {
	return p.centroidPoints[i].coords[int(p.Dim)] < p.centroidPoints[j].coords[int(p.Dim)]
}

func (p centroidPlane) Slice(start, end int) kdtree.SortSlicer {
	return centroidPlane{centroidPoints: p.centroidPoints[start:end], Dim: p.Dim}
}

func (p centroidPlane) Swap(i, j int) {
	p.centroidPoints[i], p.centroidPoints[j] = p.centroidPoints[j], p.centroidPoints[i]
}
