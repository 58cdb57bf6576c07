package seamcarve

import (
	"fmt"
	"image"
)

// Seam is a connected path of pixels crossing the image, holding one column
// index per row. Consecutive entries differ by at most one (8-connectivity).
// A horizontal seam is the vertical seam of the transposed image and holds
// one row index per column.
type Seam []int

// Validate checks the seam against a grid of the given width and height.
func (s Seam) Validate(width, height int) error {
	if len(s) != height {
		return fmt.Errorf("seam length %d does not match height %d", len(s), height)
	}
	for i, x := range s {
		if x < 0 || x >= width {
			return fmt.Errorf("seam column %d at row %d is outside [0, %d)", x, i, width)
		}
		if i > 0 && (x-s[i-1] > 1 || s[i-1]-x > 1) {
			return fmt.Errorf("seam is disconnected between rows %d and %d", i-1, i)
		}
	}
	return nil
}

// Cost returns the total energy of the pixels crossed by the seam.
func (s Seam) Cost(em *EnergyMap) float64 {
	var sum float64
	for y, x := range s {
		sum += em.At(y, x)
	}
	return sum
}

// Points returns the image coordinates of the seam pixels for the given axis.
func (s Seam) Points(axis Axis) []image.Point {
	pts := make([]image.Point, len(s))
	for i, v := range s {
		if axis == Horizontal {
			pts[i] = image.Point{X: i, Y: v}
		} else {
			pts[i] = image.Point{X: v, Y: i}
		}
	}
	return pts
}
