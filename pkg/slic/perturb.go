package slic

import (
	"slicseg/pkg/cluster"
	"slicseg/pkg/ndimage"
)

// perturbClusterRange moves each cluster in [lo,hi) to the voxel of lowest
// finite-difference gradient magnitude within a unit-radius neighborhood of
// its current index, per §4.3. Centers that would probe outside the input
// region simply have their neighborhood shrunk by intersection, so they are
// never moved outward past the boundary.
func perturbClusterRange(input *ndimage.Image, store *cluster.Store, lo, hi int) {
	bounds := ndimage.WholeRegion(input)
	radius := make([]int, input.Dim())
	for i := range radius {
		radius[i] = 1
	}

	for i := lo; i < hi; i++ {
		c := store.At(i)
		point := ndimage.Point(c[store.Features:])
		idx := input.PointToIndex(point)

		neighborhood := ndimage.Region{Start: idx, Size: onesSize(input.Dim())}
		neighborhood = neighborhood.PadByRadius(radius, bounds)

		bestScore := 0.0
		bestIdx := idx
		first := true

		neighborhood.ForEachIndex(func(probe ndimage.Index) bool {
			score := gradientScore(input, probe, bounds)
			if first || score < bestScore {
				bestScore = score
				bestIdx = append(ndimage.Index(nil), probe...)
				first = false
			}
			return true
		})

		value := input.At(bestIdx)
		newPoint := input.IndexToPoint(bestIdx)
		store.Set(i, value, newPoint)
	}
}

func onesSize(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = 1
	}
	return s
}

// gradientScore computes the squared 2-norm of the central-difference
// gradient at idx: for multi-component pixels the gradient is a matrix and
// the score sums the squared component-wise differences across every
// feature and every axis, per the "Perturbation on multi-component images"
// design note.
func gradientScore(input *ndimage.Image, idx ndimage.Index, bounds ndimage.Region) float64 {
	n := input.Dim()
	upper := bounds.Upper()

	var score float64
	for axis := 0; axis < n; axis++ {
		plus := append(ndimage.Index(nil), idx...)
		minus := append(ndimage.Index(nil), idx...)
		plus[axis]++
		minus[axis]--
		if plus[axis] >= upper[axis] {
			plus[axis] = idx[axis]
		}
		if minus[axis] < bounds.Start[axis] {
			minus[axis] = idx[axis]
		}

		denom := 2.0 * input.Spacing[axis]
		if plus[axis] == minus[axis] {
			// one-sided difference at the boundary
			denom = input.Spacing[axis]
		}

		pv := input.At(plus)
		mv := input.At(minus)
		for k := 0; k < input.Components; k++ {
			d := (pv[k] - mv[k]) / denom
			score += d * d
		}
	}
	return score
}
