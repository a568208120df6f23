package ndimage

import "math"

// linearOffset computes the row-major flat offset of idx into a buffer
// shaped like size, axis 0 varying fastest.
func linearOffset(size []int, idx Index) int {
	stride := 1
	off := 0
	for i := 0; i < len(idx); i++ {
		off += idx[i] * stride
		stride *= size[i]
	}
	return off
}

// scalar is the set of per-pixel element types the engine's flat buffers
// hold: cluster labels (uint32), running-minimum distances (float64) and
// flood-fill visit markers (int8).
type scalar interface {
	~uint32 | ~float64 | ~int8
}

// Buffer is a flat, N-D, single-component array shared by the label image,
// the distance image and the marker image; only the element type and the
// zero-value/fill convention differ between them.
type Buffer[T scalar] struct {
	Size []int
	Data []T
}

// NewBuffer allocates a zeroed buffer covering size.
func NewBuffer[T scalar](size []int) *Buffer[T] {
	n := 1
	for _, s := range size {
		n *= s
	}
	return &Buffer[T]{Size: append([]int(nil), size...), Data: make([]T, n)}
}

func (b *Buffer[T]) linear(idx Index) int { return linearOffset(b.Size, idx) }

// Get returns the value stored at idx.
func (b *Buffer[T]) Get(idx Index) T { return b.Data[b.linear(idx)] }

// Set assigns the value at idx.
func (b *Buffer[T]) Set(idx Index, v T) { b.Data[b.linear(idx)] = v }

// Fill sets every entry to v.
func (b *Buffer[T]) Fill(v T) {
	for i := range b.Data {
		b.Data[i] = v
	}
}

// LabelImage is the N-D output of the clustering engine: one integer cluster
// label per pixel. Labels are stored as uint32 internally; the capacity
// check against a configured label width happens at the façade boundary, not
// here (see slic.Config.LabelBits).
type LabelImage = Buffer[uint32]

// NewLabelImage allocates a zeroed label image covering size.
func NewLabelImage(size []int) *LabelImage {
	return NewBuffer[uint32](size)
}

// DistanceImage holds, per pixel, the best (smallest) joint distance
// observed so far during the current iteration. It is reset to +Inf at the
// start of every iteration.
type DistanceImage = Buffer[float64]

// NewDistanceImage allocates a distance image filled with +Inf.
func NewDistanceImage(size []int) *DistanceImage {
	d := NewBuffer[float64](size)
	d.Fill(math.Inf(1))
	return d
}

// MarkerImage is a small-integer visit/fill marker image used by the
// connectivity enforcer's flood fill. Zero means "unvisited".
type MarkerImage = Buffer[int8]

// NewMarkerImage allocates a zeroed marker image covering size.
func NewMarkerImage(size []int) *MarkerImage {
	return NewBuffer[int8](size)
}
