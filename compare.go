package seamcarve

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Layout arranges the panels of a comparison image.
type Layout string

const (
	// Stacked places the original above the carved image.
	Stacked Layout = "vertical"
	// SideBySide places the original left of the carved image.
	SideBySide Layout = "horizontal"
)

const (
	labelHeight    = 40
	separatorWidth = 5
)

// ParseLayout converts a layout name to a Layout.
func ParseLayout(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vertical", "v", "stacked":
		return Stacked, nil
	case "horizontal", "h", "side-by-side":
		return SideBySide, nil
	}
	return "", newError(InvalidParameter, "unknown comparison layout %q", name)
}

// Compare composes the original and the carved raster into one labelled
// image. Stacked panels are scaled to the widest image and side by side
// panels to the tallest one; a white separator runs between them.
func Compare(original, carved *Raster, layout Layout) (*image.NRGBA, error) {
	if err := original.Validate(); err != nil {
		return nil, err
	}
	if err := carved.Validate(); err != nil {
		return nil, err
	}

	src, dst := original.ToNRGBA(), carved.ToNRGBA()
	srcLabel := fmt.Sprintf("Original (%dx%d)", original.Width, original.Height)
	dstLabel := fmt.Sprintf("Carved (%dx%d)", carved.Width, carved.Height)

	switch layout {
	case Stacked, "":
		w := max(original.Width, carved.Width)
		top := labelPanel(fitWidth(src, w), srcLabel)
		bottom := labelPanel(fitWidth(dst, w), dstLabel)

		out := imaging.New(w, top.Bounds().Dy()+separatorWidth+bottom.Bounds().Dy(), color.White)
		out = imaging.Paste(out, top, image.Pt(0, 0))
		return imaging.Paste(out, bottom, image.Pt(0, top.Bounds().Dy()+separatorWidth)), nil
	case SideBySide:
		h := max(original.Height, carved.Height)
		left := labelPanel(fitHeight(src, h), srcLabel)
		right := labelPanel(fitHeight(dst, h), dstLabel)

		out := imaging.New(left.Bounds().Dx()+separatorWidth+right.Bounds().Dx(), h+labelHeight, color.White)
		out = imaging.Paste(out, left, image.Pt(0, 0))
		return imaging.Paste(out, right, image.Pt(left.Bounds().Dx()+separatorWidth, 0)), nil
	}
	return nil, newError(InvalidParameter, "unknown comparison layout %q", string(layout))
}

func fitWidth(img *image.NRGBA, w int) *image.NRGBA {
	if img.Bounds().Dx() == w {
		return img
	}
	return imaging.Resize(img, w, 0, imaging.Lanczos)
}

func fitHeight(img *image.NRGBA, h int) *image.NRGBA {
	if img.Bounds().Dy() == h {
		return img
	}
	return imaging.Resize(img, 0, h, imaging.Lanczos)
}

// labelPanel adds a white bar holding the centered text above img.
func labelPanel(img *image.NRGBA, text string) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	panel := imaging.New(w, h+labelHeight, color.White)

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  panel,
		Src:  image.Black,
		Face: face,
	}
	textWidth := d.MeasureString(text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	d.Dot = fixed.P(max((w-textWidth)/2, 0), (labelHeight+ascent)/2)
	d.DrawString(text)

	return imaging.Paste(panel, img, image.Pt(0, labelHeight))
}
