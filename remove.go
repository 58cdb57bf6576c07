package seamcarve

import "fmt"

// RemoveSeam returns a new raster one column narrower than r with the pixels
// of the vertical seam s removed. Pixels right of the seam shift one column
// left; every other sample is copied unchanged.
//
// A seam that does not fit the raster is a programming error and panics.
func RemoveSeam(r *Raster, s Seam) *Raster {
	if err := s.Validate(r.Width, r.Height); err != nil {
		panic(fmt.Sprintf("seamcarve: remove seam: %v", err))
	}
	if r.Width < 2 {
		panic("seamcarve: remove seam: raster is a single column wide")
	}

	dst := NewRaster(r.Width-1, r.Height, r.Channels)
	ch := r.Channels
	srcRow, dstRow := r.Width*ch, dst.Width*ch

	for y, x := range s {
		src := r.Pix[y*srcRow : (y+1)*srcRow]
		out := dst.Pix[y*dstRow : (y+1)*dstRow]
		copy(out[:x*ch], src[:x*ch])
		copy(out[x*ch:], src[(x+1)*ch:])
	}
	return dst
}
