package slic

import "slicseg/pkg/ndimage"

// gridLayout holds the per-axis strip counts derived from dividing the
// region's size by the super-grid size.
type gridLayout struct {
	strips []int
}

// computeGridLayout divides size by superGrid per axis, failing if any axis
// produces zero strips (the input is smaller than one super-grid cell along
// that axis).
func computeGridLayout(size, superGrid []int) (gridLayout, bool) {
	strips := make([]int, len(size))
	for i := range size {
		strips[i] = size[i] / superGrid[i]
		if strips[i] == 0 {
			return gridLayout{}, false
		}
	}
	return gridLayout{strips: strips}, true
}

// clusterCount returns C = product of strips, the number of superpixels the
// layout produces.
func (g gridLayout) clusterCount() int {
	c := 1
	for _, s := range g.strips {
		c *= s
	}
	return c
}

// initialClusterIndices computes the C initial cluster center indices for a
// region of the given size and super-grid stride, implementing the
// strips/totalErr/accErr integer-remainder placement scheme of §4.2: along
// axis 0 a running accumulator distributes the leftover pixels evenly as it
// advances; higher axes advance by the same rule whenever the lower axis
// wraps back to its start.
func initialClusterIndices(regionStart, size, superGrid []int, layout gridLayout) []ndimage.Index {
	n := len(size)
	strips := layout.strips
	totalErr := make([]int, n)
	start := make([]int, n)
	accErr := make([]int, n)
	for i := 0; i < n; i++ {
		totalErr[i] = size[i] % superGrid[i]
		start[i] = regionStart[i] + superGrid[i]/2 + totalErr[i]/(strips[i]*2)
		accErr[i] = totalErr[i] % (strips[i] * 2)
	}

	idx := append([]int(nil), start...)
	acc := append([]int(nil), accErr...)
	step := make([]int, n)

	count := layout.clusterCount()
	out := make([]ndimage.Index, 0, count)

	for c := 0; c < count; c++ {
		out = append(out, append(ndimage.Index(nil), idx...))

		axis := 0
		for {
			acc[axis] += totalErr[axis]
			idx[axis] += superGrid[axis] + acc[axis]/strips[axis]
			acc[axis] %= strips[axis]
			step[axis]++

			if step[axis] < strips[axis] {
				break
			}

			idx[axis] = start[axis]
			acc[axis] = totalErr[axis] % (strips[axis] * 2)
			step[axis] = 0
			axis++
			if axis == n {
				break
			}
		}
	}

	return out
}
