// Package ndimage implements the N-dimensional, multi-component image model
// that the clustering engine operates on: a regular array of pixels, each
// with an affine index-to-physical-point mapping defined by per-axis origin
// and spacing.
package ndimage

import "fmt"

// Image is a regular N-dimensional array of F-component pixels stored in a
// single row-major buffer. Axis 0 varies fastest.
type Image struct {
	// Size holds the number of samples along each axis. len(Size) == N.
	Size []int

	// Origin holds the physical coordinate of index [0,0,...,0] along each axis.
	Origin []float64

	// Spacing holds the physical distance between adjacent samples along
	// each axis. Every entry must be strictly positive.
	Spacing []float64

	// Components is F, the number of feature values per pixel (F >= 1).
	Components int

	// Data holds Components * prod(Size) float64 values in row-major pixel
	// order, each pixel's Components values stored contiguously.
	Data []float64
}

// NewImage allocates a zeroed image of the given size with unit spacing and
// zero origin.
func NewImage(size []int, components int) *Image {
	n := len(size)
	spacing := make([]float64, n)
	origin := make([]float64, n)
	for i := range spacing {
		spacing[i] = 1.0
	}
	total := components
	for _, s := range size {
		total *= s
	}
	return &Image{
		Size:       append([]int(nil), size...),
		Origin:     origin,
		Spacing:    spacing,
		Components: components,
		Data:       make([]float64, total),
	}
}

// Dim returns N, the number of spatial axes.
func (im *Image) Dim() int { return len(im.Size) }

// NumPixels returns the total number of pixels (not counting components).
func (im *Image) NumPixels() int {
	n := 1
	for _, s := range im.Size {
		n *= s
	}
	return n
}

// LinearIndex converts an N-D index into the offset of its first component
// in Data. Indices are row-major: axis 0 varies fastest.
func (im *Image) LinearIndex(idx Index) int {
	return linearOffset(im.Size, idx) * im.Components
}

// At returns the F component values of the pixel at idx. The returned slice
// aliases Data and must not be retained past the next mutation of Data.
func (im *Image) At(idx Index) []float64 {
	off := im.LinearIndex(idx)
	return im.Data[off : off+im.Components]
}

// Set copies v into the pixel at idx.
func (im *Image) Set(idx Index, v []float64) {
	off := im.LinearIndex(idx)
	copy(im.Data[off:off+im.Components], v)
}

// IndexToPoint applies the axis-wise diagonal affine map: point[i] =
// origin[i] + idx[i]*spacing[i].
func (im *Image) IndexToPoint(idx Index) Point {
	p := make(Point, len(idx))
	for i := range idx {
		p[i] = im.Origin[i] + float64(idx[i])*im.Spacing[i]
	}
	return p
}

// PointToIndex inverts IndexToPoint, rounding to the nearest integer index.
func (im *Image) PointToIndex(p Point) Index {
	idx := make(Index, len(p))
	for i := range p {
		f := (p[i] - im.Origin[i]) / im.Spacing[i]
		idx[i] = roundToInt(f)
	}
	return idx
}

func roundToInt(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

// Region is an N-D rectangular index range: the axis-i span is
// [Start[i], Start[i]+Size[i]).
type Region struct {
	Start Index
	Size  []int
}

// WholeRegion returns the region covering the entirety of im.
func WholeRegion(im *Image) Region {
	return Region{Start: make(Index, im.Dim()), Size: append([]int(nil), im.Size...)}
}

// Dim returns the dimensionality of the region.
func (r Region) Dim() int { return len(r.Start) }

// NumIndices returns the number of indices covered by r (0 if degenerate).
func (r Region) NumIndices() int {
	n := 1
	for _, s := range r.Size {
		if s <= 0 {
			return 0
		}
		n *= s
	}
	return n
}

// Upper returns, per axis, one past the last index covered by r.
func (r Region) Upper() Index {
	u := make(Index, len(r.Start))
	for i := range u {
		u[i] = r.Start[i] + r.Size[i]
	}
	return u
}

// Intersect returns the intersection of r and other. The second return value
// is false if the intersection is empty along any axis.
func (r Region) Intersect(other Region) (Region, bool) {
	n := r.Dim()
	out := Region{Start: make(Index, n), Size: make([]int, n)}
	ru, ou := r.Upper(), other.Upper()
	for i := 0; i < n; i++ {
		lo := max(r.Start[i], other.Start[i])
		hi := min(ru[i], ou[i])
		if hi <= lo {
			return out, false
		}
		out.Start[i] = lo
		out.Size[i] = hi - lo
	}
	return out, true
}

// PadByRadius grows the region by radius on each side along every axis,
// clamping to bounds. bounds is typically the whole-image region.
func (r Region) PadByRadius(radius []int, bounds Region) Region {
	n := r.Dim()
	bu := bounds.Upper()
	out := Region{Start: make(Index, n), Size: make([]int, n)}
	for i := 0; i < n; i++ {
		lo := r.Start[i] - radius[i]
		hi := r.Start[i] + r.Size[i] + radius[i]
		if lo < bounds.Start[i] {
			lo = bounds.Start[i]
		}
		if hi > bu[i] {
			hi = bu[i]
		}
		out.Start[i] = lo
		out.Size[i] = hi - lo
	}
	return out
}

// ForEachIndex calls fn for every index in r in row-major order (axis 0
// fastest), stopping early if fn returns false.
func (r Region) ForEachIndex(fn func(idx Index) bool) {
	n := r.Dim()
	if r.NumIndices() == 0 {
		return
	}
	idx := append(Index(nil), r.Start...)
	for {
		if !fn(append(Index(nil), idx...)) {
			return
		}
		axis := 0
		for axis < n {
			idx[axis]++
			if idx[axis] < r.Start[axis]+r.Size[axis] {
				break
			}
			idx[axis] = r.Start[axis]
			axis++
		}
		if axis == n {
			return
		}
	}
}

// Index is an N-D integer pixel coordinate.
type Index []int

// Point is an N-D physical coordinate.
type Point []float64

func (idx Index) String() string { return fmt.Sprint([]int(idx)) }
