package seamcarve

import (
	"encoding/binary"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brightPatchCascade builds a pigo cascade with a single tree of depth one.
// The tree compares the window center with the pixel half a window above it
// and fires when the center is brighter.
func brightPatchCascade() []byte {
	var buf []byte
	buf = append(buf, make([]byte, 8)...)
	buf = binary.LittleEndian.AppendUint32(buf, 1) // tree depth
	buf = binary.LittleEndian.AppendUint32(buf, 1) // tree count
	// Node offsets are in 1/256 of the window size: center, then -128 rows.
	buf = append(buf, 0, 0, 0x80, 0)
	for _, f := range []float32{10, -10, 0} { // leaf predictions, threshold
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// Face geometry of faceRaster, in upright image coordinates.
var faceRect = image.Rect(16, 20, 24, 28)

// faceRaster is a 40x60 gray image of vertical stripes with a white square
// at faceRect. The flat inside of the square is the cheapest place for a
// horizontal seam.
func faceRaster() *Raster {
	stripes := [3]uint8{0, 120, 240}
	r := NewRaster(40, 60, 1)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			v := stripes[x%3]
			if image.Pt(x, y).In(faceRect) {
				v = 0xff
			}
			r.Pix[y*r.Width+x] = v
		}
	}
	return r
}

// intactFaceRows counts the rows whose faceRect columns are all white.
func intactFaceRows(r *Raster) int {
	var n int
	for y := 0; y < r.Height; y++ {
		white := true
		for x := faceRect.Min.X; x < faceRect.Max.X; x++ {
			if r.Pix[(y*r.Width+x)*r.Channels] != 0xff {
				white = false
			}
		}
		if white {
			n++
		}
	}
	return n
}

func newTestFaceGuard(t *testing.T) *FaceGuard {
	t.Helper()
	fg, err := NewFaceGuard(brightPatchCascade())
	require.NoError(t, err)
	return fg
}

func TestFaceGuard_InvalidCascade(t *testing.T) {
	fg, err := NewFaceGuard([]byte{0x01, 0x02})
	assert.Error(t, err)
	assert.Nil(t, fg)
}

func TestFaceGuard_Detect(t *testing.T) {
	assert := assert.New(t)
	fg := newTestFaceGuard(t)

	rects := fg.Detect(faceRaster())
	require.NotEmpty(t, rects)
	for _, rect := range rects {
		assert.True(faceRect.In(rect), "%v does not cover %v", rect, faceRect)
	}

	plain := faceRaster()
	for y := faceRect.Min.Y; y < faceRect.Max.Y; y++ {
		for x := faceRect.Min.X; x < faceRect.Max.X; x++ {
			plain.Pix[y*plain.Width+x] = plain.Pix[x]
		}
	}
	assert.Empty(fg.Detect(plain))
}

func TestFaceGuard_Protect(t *testing.T) {
	assert := assert.New(t)
	fg := newTestFaceGuard(t)

	src := faceRaster()
	em := Energy(src)
	require.Greater(t, fg.Protect(src, em, false), 0)
	for y := faceRect.Min.Y; y < faceRect.Max.Y; y++ {
		for x := faceRect.Min.X; x < faceRect.Max.X; x++ {
			assert.GreaterOrEqual(em.At(y, x), DefaultFacePenalty)
		}
	}
	assert.Less(em.At(0, 0), DefaultFacePenalty)

	// The same faces land on the swapped coordinates of a transposed map.
	tem := Energy(src.Transpose())
	fg.Protect(src, tem, true)
	assert.GreaterOrEqual(tem.At(faceRect.Min.X, faceRect.Min.Y), DefaultFacePenalty)
	assert.Less(tem.At(0, 0), DefaultFacePenalty)
}

func TestProtectRects(t *testing.T) {
	assert := assert.New(t)

	em := uniformMap(t, 4, 6, 0)
	protectRects(em, []image.Rectangle{image.Rect(1, 0, 3, 2)}, false, 10)

	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			want := 0.0
			if x >= 1 && x < 3 && y < 2 {
				want = 10
			}
			assert.Equal(want, em.At(y, x), "(%d, %d)", x, y)
		}
	}
}

func TestProtectRects_Transposed(t *testing.T) {
	assert := assert.New(t)

	// The map of a transposed 6x4 image has 6 rows and 4 columns.
	em := uniformMap(t, 6, 4, 1)
	protectRects(em, []image.Rectangle{image.Rect(1, 0, 3, 2)}, true, 10)

	for y := 0; y < 6; y++ {
		for x := 0; x < 4; x++ {
			want := 1.0
			if y >= 1 && y < 3 && x < 2 {
				want = 11
			}
			assert.Equal(want, em.At(y, x), "(%d, %d)", x, y)
		}
	}
}

func TestProtectRects_Clipped(t *testing.T) {
	assert := assert.New(t)

	em := uniformMap(t, 3, 3, 0)
	protectRects(em, []image.Rectangle{
		image.Rect(-5, -5, 1, 1),
		image.Rect(10, 10, 20, 20),
	}, false, DefaultFacePenalty)

	assert.Equal(DefaultFacePenalty, em.At(0, 0))
	assert.Equal(DefaultFacePenalty, em.Max())
	assert.Zero(em.At(2, 2))
}
