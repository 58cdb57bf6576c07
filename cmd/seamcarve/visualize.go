package main

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"

	"github.com/seamcarve/seamcarve"
)

var seamColor = color.NRGBA{R: 0xff, A: 0xff}

// gifRecorder collects one frame per observed seam, painting the seam in red.
type gifRecorder struct {
	every  int
	seen   int
	anim   gif.GIF
	bounds image.Rectangle
}

func newGIFRecorder(every int) *gifRecorder {
	if every < 1 {
		every = 1
	}
	return &gifRecorder{every: every}
}

// Record is a seamcarve.VisualizeFunc.
func (g *gifRecorder) Record(r *seamcarve.Raster, s seamcarve.Seam, axis seamcarve.Axis) {
	g.seen++
	if (g.seen-1)%g.every != 0 {
		return
	}

	img := r.ToNRGBA()
	for _, p := range s.Points(axis) {
		img.SetNRGBA(p.X, p.Y, seamColor)
	}
	g.add(img, 4)
}

// Final appends the carved result, held longer than the seam frames.
func (g *gifRecorder) Final(r *seamcarve.Raster) {
	g.add(r.ToNRGBA(), 150)
}

func (g *gifRecorder) add(img *image.NRGBA, delay int) {
	// The first frame is the largest one and sets the logical screen.
	if g.bounds.Empty() {
		g.bounds = img.Bounds()
	}
	frame := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.Draw(frame, frame.Bounds(), img, image.Point{}, draw.Src)

	g.anim.Image = append(g.anim.Image, frame)
	g.anim.Delay = append(g.anim.Delay, delay)
	g.anim.Disposal = append(g.anim.Disposal, gif.DisposalBackground)
}

// Frames returns the number of recorded frames.
func (g *gifRecorder) Frames() int {
	return len(g.anim.Image)
}

// Save writes the animation to path.
func (g *gifRecorder) Save(path string) error {
	if len(g.anim.Image) == 0 {
		return fmt.Errorf("no frame recorded")
	}
	g.anim.Config = image.Config{
		ColorModel: color.Palette(palette.Plan9),
		Width:      g.bounds.Dx(),
		Height:     g.bounds.Dy(),
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create the visualization file: %w", err)
	}
	if err := gif.EncodeAll(f, &g.anim); err != nil {
		f.Close()
		return fmt.Errorf("could not encode the visualization: %w", err)
	}
	return f.Close()
}
