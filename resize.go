package seamcarve

import (
	"context"

	"github.com/seamcarve/seamcarve/utils"
)

// Target is the requested output size of an interactive resize.
type Target struct {
	Width  int
	Height int
}

func (t Target) String() string {
	return utils.FormatSize(t.Width, t.Height)
}

// clamp limits the target to the size of the original raster. Seam carving
// only shrinks images.
func (t Target) clamp(r *Raster) Target {
	return Target{Width: min(t.Width, r.Width), Height: min(t.Height, r.Height)}
}

// Resize shrinks a fresh copy of original to the target size by removing
// vertical seams first and horizontal seams second. Targets larger than
// the original are clamped to it; a target below one pixel is an
// InvalidParameter. The result only depends on the original and the target,
// so resizing A to B and back to A gives the same raster as resizing to A
// directly.
func Resize(ctx context.Context, original *Raster, width, height int, opts Options) (*Raster, error) {
	if err := original.Validate(); err != nil {
		return nil, err
	}
	if width < 1 || height < 1 {
		return nil, newError(InvalidParameter, "target size %dx%d is below one pixel", width, height)
	}

	t := Target{Width: width, Height: height}.clamp(original)
	seamsV, seamsH := original.Width-t.Width, original.Height-t.Height
	if seamsV <= 0 && seamsH <= 0 {
		return original.Clone(), nil
	}

	out := original
	var err error
	if seamsV > 0 {
		if out, err = Carve(ctx, out, seamsV, Vertical, opts); err != nil {
			return nil, err
		}
	}
	if seamsH > 0 {
		if out, err = Carve(ctx, out, seamsH, Horizontal, opts); err != nil {
			return nil, err
		}
	}
	return out, nil
}
