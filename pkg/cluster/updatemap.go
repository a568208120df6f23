package cluster

import "gonum.org/v1/gonum/floats"

// UpdateMap is a worker's per-iteration accumulator: for every label it has
// seen in its output tile, the running sum of the concatenated (feature,
// physical-point) vector and the member count. Per the "Ragged cluster
// layout" / "Per-thread update maps" design notes, this is a dense array of
// length C rather than a hash map — C is known ahead of time and usually
// small relative to the image, so a dense array removes allocation from the
// hot per-pixel loop entirely.
type UpdateMap struct {
	d     int
	sum   []float64 // C*d
	count []int     // C
}

// NewUpdateMap allocates an update map for count clusters of component width d.
func NewUpdateMap(count, d int) *UpdateMap {
	return &UpdateMap{d: d, sum: make([]float64, count*d), count: make([]int, count)}
}

// Reset clears the map for a new iteration's reduction phase.
func (m *UpdateMap) Reset() {
	for i := range m.sum {
		m.sum[i] = 0
	}
	for i := range m.count {
		m.count[i] = 0
	}
}

// Add accumulates vec (length d) into label's running sum and increments its
// count.
func (m *UpdateMap) Add(label int, vec []float64) {
	dst := m.sum[label*m.d : (label+1)*m.d]
	floats.Add(dst, vec)
	m.count[label]++
}

// Count returns the number of members label has accumulated so far.
func (m *UpdateMap) Count(label int) int { return m.count[label] }

// Vector returns the running sum vector for label. The returned slice
// aliases the map's internal buffer.
func (m *UpdateMap) Vector(label int) []float64 {
	return m.sum[label*m.d : (label+1)*m.d]
}

// Len returns the number of cluster slots this map tracks (== C).
func (m *UpdateMap) Len() int { return len(m.count) }

// FoldInto drains every non-empty label's accumulated sum and count into
// dstStore's Current buffer and dstCount, for worker 0's single-threaded
// reduction phase B.
func (m *UpdateMap) FoldInto(dstStore *Store, dstCount []int) {
	d := m.d
	for l := 0; l < m.Len(); l++ {
		if m.count[l] == 0 {
			continue
		}
		dst := dstStore.Current[l*d : (l+1)*d]
		floats.Add(dst, m.Vector(l))
		dstCount[l] += m.count[l]
	}
}
