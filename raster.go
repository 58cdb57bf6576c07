package seamcarve

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// Raster is an in-memory pixel buffer. Pixels are stored row by row,
// each one holding Channels interleaved samples (1: luma, 3: RGB, 4: RGBA).
type Raster struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewRaster allocates a zeroed raster.
func NewRaster(width, height, channels int) *Raster {
	return &Raster{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// Validate checks that the raster can be carved.
func (r *Raster) Validate() error {
	if r == nil {
		return newError(DecodeFailure, "missing raster")
	}
	if r.Width < 1 || r.Height < 1 {
		return newError(DecodeFailure, "raster has zero dimension (%dx%d)", r.Width, r.Height)
	}
	switch r.Channels {
	case 1, 3, 4:
	default:
		return newError(DecodeFailure, "unsupported channel count %d", r.Channels)
	}
	if len(r.Pix) != r.Width*r.Height*r.Channels {
		return newError(DecodeFailure, "pixel buffer holds %d samples, want %d",
			len(r.Pix), r.Width*r.Height*r.Channels)
	}
	return nil
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	dst := &Raster{Width: r.Width, Height: r.Height, Channels: r.Channels}
	dst.Pix = append([]uint8(nil), r.Pix...)
	return dst
}

func (r *Raster) offset(x, y int) int {
	return (y*r.Width + x) * r.Channels
}

// At returns the samples of the pixel at (x, y). The returned slice aliases the raster.
func (r *Raster) At(x, y int) []uint8 {
	o := r.offset(x, y)
	return r.Pix[o : o+r.Channels : o+r.Channels]
}

// Set overwrites the samples of the pixel at (x, y).
func (r *Raster) Set(x, y int, px ...uint8) {
	copy(r.At(x, y), px)
}

// Equal reports whether both rasters have the same geometry and samples.
func (r *Raster) Equal(o *Raster) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Width == o.Width && r.Height == o.Height &&
		r.Channels == o.Channels && bytes.Equal(r.Pix, o.Pix)
}

// Transpose swaps rows and columns: the pixel at (x, y) moves to (y, x).
// Horizontal seams of a raster are the vertical seams of its transpose.
func (r *Raster) Transpose() *Raster {
	dst := NewRaster(r.Height, r.Width, r.Channels)
	ch := r.Channels
	for dstY := 0; dstY < dst.Height; dstY++ {
		for dstX := 0; dstX < dst.Width; dstX++ {
			srcOff := r.offset(dstY, dstX)
			dstOff := dst.offset(dstX, dstY)
			copy(dst.Pix[dstOff:dstOff+ch], r.Pix[srcOff:srcOff+ch])
		}
	}
	return dst
}

// Luma converts the raster to a single 8 bit channel using the
// Rec. 601 weights, rounded to the nearest integer.
func (r *Raster) Luma() []uint8 {
	if r.Channels == 1 {
		return append([]uint8(nil), r.Pix...)
	}
	gray := make([]uint8, r.Width*r.Height)
	for i := range gray {
		px := r.Pix[i*r.Channels:]
		gray[i] = uint8(0.299*float64(px[0]) + 0.587*float64(px[1]) + 0.114*float64(px[2]) + 0.5)
	}
	return gray
}

// FromImage converts any image to a 4 channel raster with the origin at (0, 0).
func FromImage(img image.Image) *Raster {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	dst := NewRaster(b.Dx(), b.Dy(), 4)
	rowSize := dst.Width * 4
	for y := 0; y < dst.Height; y++ {
		si := nrgba.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*rowSize:(y+1)*rowSize], nrgba.Pix[si:si+rowSize])
	}
	return dst
}

// ToNRGBA converts the raster back to an image. Luma rasters are expanded
// to gray RGB and rasters without alpha become fully opaque.
func (r *Raster) ToNRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		di := dst.PixOffset(0, y)
		for x := 0; x < r.Width; x++ {
			px := r.At(x, y)
			switch r.Channels {
			case 1:
				dst.Pix[di+0], dst.Pix[di+1], dst.Pix[di+2] = px[0], px[0], px[0]
				dst.Pix[di+3] = 0xff
			case 3:
				copy(dst.Pix[di:di+3], px)
				dst.Pix[di+3] = 0xff
			default:
				copy(dst.Pix[di:di+4], px)
			}
			di += 4
		}
	}
	return dst
}
