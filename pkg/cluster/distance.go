package cluster

// Distance computes the joint feature+spatial distance between a cluster
// center and a (pixel value, physical point) pair:
//
//	featureTerm   = sum_k (center[k] - value[k])^2                 for k in [0,F)
//	spatialTerm_i = ((center[F+i] - point[i]) * scales[i])^2       for i in [0,N)
//	D             = featureTerm + weight^2 * sum_i spatialTerm_i
//
// The result is never square-rooted: every comparison in the engine
// operates on squared distances, and weight trades off spatial proximity
// against feature similarity. center must have length F+N; value must have
// length F; point and scales must have length N.
func Distance(center, value, point, scales []float64, weight float64) float64 {
	features := len(value)

	var featureTerm float64
	for k := 0; k < features; k++ {
		d := center[k] - value[k]
		featureTerm += d * d
	}

	var spatialTerm float64
	for i := 0; i < len(point); i++ {
		d := (center[features+i] - point[i]) * scales[i]
		spatialTerm += d * d
	}

	return featureTerm + weight*weight*spatialTerm
}

// DistanceScales returns, per axis, 1/(superGridSize[i]*spacing[i]): the
// reciprocal of the physical extent of one super-grid cell along that axis,
// normalizing spatial displacement to "fraction of a superpixel".
func DistanceScales(superGridSize []int, spacing []float64) []float64 {
	scales := make([]float64, len(superGridSize))
	for i := range scales {
		scales[i] = 1.0 / (float64(superGridSize[i]) * spacing[i])
	}
	return scales
}
