// Package cluster implements the joint feature+spatial cluster store and
// the distance kernel that couples feature distance with physically scaled
// spatial distance, per the joint-domain clustering model.
package cluster

import "gonum.org/v1/gonum/floats"

// Store holds C clusters of D = Features + Dims components each, as two
// equally-sized flat buffers: Current (the centers to be used next) and
// Previous (the centers used in the iteration just completed). This flat,
// ragged layout avoids a per-cluster allocation and keeps the hot loops of
// the assignment and reduction stages cache-friendly.
type Store struct {
	Count    int // C
	Features int // F
	Dims     int // N

	Current  []float64 // C*D
	Previous []float64 // C*D
}

// NewStore allocates a store for count clusters with the given feature and
// spatial dimensionality. All components start at zero.
func NewStore(count, features, dims int) *Store {
	d := features + dims
	return &Store{
		Count:    count,
		Features: features,
		Dims:     dims,
		Current:  make([]float64, count*d),
		Previous: make([]float64, count*d),
	}
}

// D returns the per-cluster component width, Features+Dims.
func (s *Store) D() int { return s.Features + s.Dims }

// At returns a view of cluster i's current components: the first Features
// entries are feature means, the last Dims entries are the mean physical
// coordinates. The returned slice aliases Current.
func (s *Store) At(i int) []float64 {
	d := s.D()
	return s.Current[i*d : (i+1)*d]
}

// PreviousAt returns a view of cluster i's previous-iteration components.
func (s *Store) PreviousAt(i int) []float64 {
	d := s.D()
	return s.Previous[i*d : (i+1)*d]
}

// SwapAndClear exchanges Current and Previous, then zeroes the new Current
// buffer. This is the single-threaded step at the top of the reduction
// stage's fold, mirroring the original's `swap(clusters, oldClusters)`.
func (s *Store) SwapAndClear() {
	s.Current, s.Previous = s.Previous, s.Current
	for i := range s.Current {
		s.Current[i] = 0
	}
}

// Set assigns cluster i's feature values and physical point in one call.
func (s *Store) Set(i int, features, point []float64) {
	v := s.At(i)
	copy(v[:s.Features], features)
	copy(v[s.Features:], point)
}

// Residual returns the sum over all clusters of the squared joint distance
// between Current and Previous. It is for debug logging only; termination is
// governed solely by the fixed iteration budget.
func (s *Store) Residual(scales []float64, weight float64) float64 {
	var total float64
	for i := 0; i < s.Count; i++ {
		total += distanceBetweenCenters(s.At(i), s.PreviousAt(i), s.Features, scales, weight)
	}
	return total
}

func distanceBetweenCenters(a, b []float64, features int, scales []float64, weight float64) float64 {
	diff := make([]float64, len(a))
	floats.SubTo(diff, a, b)
	var featureTerm float64
	for i := 0; i < features; i++ {
		featureTerm += diff[i] * diff[i]
	}
	var spatialTerm float64
	for i := 0; i < len(scales); i++ {
		s := diff[features+i] * scales[i]
		spatialTerm += s * s
	}
	return featureTerm + weight*weight*spatialTerm
}
