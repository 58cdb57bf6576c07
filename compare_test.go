package seamcarve

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayout(t *testing.T) {
	assert := assert.New(t)

	l, err := ParseLayout("Stacked")
	assert.NoError(err)
	assert.Equal(Stacked, l)

	l, err = ParseLayout("h")
	assert.NoError(err)
	assert.Equal(SideBySide, l)

	_, err = ParseLayout("grid")
	assert.True(IsKind(err, InvalidParameter))
}

func TestCompare_SideBySide(t *testing.T) {
	assert := assert.New(t)

	original := randomRaster(31, 10, 8, 4)
	carved := randomRaster(32, 7, 8, 3)

	img, err := Compare(original, carved, SideBySide)
	require.NoError(t, err)
	assert.Equal(10+separatorWidth+7, img.Bounds().Dx())
	assert.Equal(8+labelHeight, img.Bounds().Dy())

	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	assert.Equal(white, img.NRGBAAt(0, 0))
	assert.Equal(white, img.NRGBAAt(10, labelHeight+4), "separator")
	assert.Equal(original.ToNRGBA().NRGBAAt(3, 2), img.NRGBAAt(3, labelHeight+2))
}

func TestCompare_Stacked(t *testing.T) {
	assert := assert.New(t)

	original := randomRaster(33, 10, 8, 4)
	carved := randomRaster(34, 10, 5, 4)

	img, err := Compare(original, carved, Stacked)
	require.NoError(t, err)
	assert.Equal(10, img.Bounds().Dx())
	assert.Equal(8+5+2*labelHeight+separatorWidth, img.Bounds().Dy())

	// Narrower carved images are scaled to the original width.
	narrow := randomRaster(35, 5, 4, 4)
	img, err = Compare(original, narrow, "")
	require.NoError(t, err)
	assert.Equal(10, img.Bounds().Dx())
	assert.Equal(8+8+2*labelHeight+separatorWidth, img.Bounds().Dy())
}

func TestCompare_Errors(t *testing.T) {
	assert := assert.New(t)

	r := randomRaster(36, 4, 4, 4)
	_, err := Compare(nil, r, Stacked)
	assert.True(IsKind(err, DecodeFailure))
	_, err = Compare(r, &Raster{}, Stacked)
	assert.True(IsKind(err, DecodeFailure))
	_, err = Compare(r, r, "diagonal")
	assert.True(IsKind(err, InvalidParameter))
}
