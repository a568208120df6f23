// Package render turns a label image into inspectable pictures. It exists
// purely for human inspection of clustering output; nothing in pkg/slic
// depends on it.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"slicseg/pkg/ndimage"
)

// Viewer extracts and saves 2-D slices of a label image, color-coding each
// label so adjacent superpixels are visually distinguishable. It only
// supports 2-D and 3-D label images, since a slice of anything higher
// dimensional has no single natural image projection.
type Viewer struct {
	labels *ndimage.LabelImage
}

// NewViewer wraps labels for slice extraction. labels must be 2-D or 3-D.
func NewViewer(labels *ndimage.LabelImage) (*Viewer, error) {
	if n := len(labels.Size); n != 2 && n != 3 {
		return nil, fmt.Errorf("render: label image has %d axes, want 2 or 3", n)
	}
	return &Viewer{labels: labels}, nil
}

// ExtractSlice extracts the 2-D plane perpendicular to axis at position. For
// a 2-D label image axis and position are ignored and the whole plane is
// returned.
func (v *Viewer) ExtractSlice(axis, position int) (image.Image, error) {
	size := v.labels.Size
	if len(size) == 2 {
		return v.render2D(func(x, y int) uint32 {
			return v.labels.Get(ndimage.Index{x, y})
		}, size[0], size[1])
	}

	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("render: axis %d out of range [0,2]", axis)
	}
	if position < 0 || position >= size[axis] {
		return nil, fmt.Errorf("render: position %d out of range [0,%d)", position, size[axis])
	}

	other := make([]int, 0, 2)
	for a := 0; a < 3; a++ {
		if a != axis {
			other = append(other, a)
		}
	}

	get := func(u, v2 int) uint32 {
		idx := make(ndimage.Index, 3)
		idx[axis] = position
		idx[other[0]] = u
		idx[other[1]] = v2
		return v.labels.Get(idx)
	}
	return v.render2D(get, size[other[0]], size[other[1]])
}

func (v *Viewer) render2D(get func(u, w int) uint32, width, height int) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, labelColor(get(x, y)))
		}
	}
	return img, nil
}

// SaveSlice saves img as a JPEG at filename.
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence extracts and saves every slice along axis into
// outputDir, named slice_<axis>_<position>.jpg. For a 2-D label image it
// saves the single plane as slice_000.jpg regardless of axis.
func (v *Viewer) SaveSliceSequence(axis int, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	size := v.labels.Size
	if len(size) == 2 {
		img, err := v.ExtractSlice(0, 0)
		if err != nil {
			return err
		}
		return v.SaveSlice(img, filepath.Join(outputDir, "slice_000.jpg"))
	}

	if axis < 0 || axis > 2 {
		return fmt.Errorf("render: axis %d out of range [0,2]", axis)
	}

	for pos := 0; pos < size[axis]; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%d_%03d.jpg", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}
	return nil
}

// labelColor maps a label to a deterministic, visually distinct color by
// walking the hue wheel in a fixed irrational-ish step so adjacent label
// values don't land on similar hues.
func labelColor(label uint32) color.RGBA {
	const goldenAngle = 137.50776
	hue := math.Mod(float64(label)*goldenAngle, 360)
	return hsvToRGBA(hue, 0.6, 0.95)
}

func hsvToRGBA(h, s, val float64) color.RGBA {
	c := val * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := val - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: uint8((r + m) * 255),
		G: uint8((g + m) * 255),
		B: uint8((b + m) * 255),
		A: 255,
	}
}
