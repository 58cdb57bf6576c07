package seamcarve

import (
	"runtime"

	"github.com/seamcarve/seamcarve/utils"
	"golang.org/x/sync/errgroup"
)

type kernel [3][3]int32

var (
	kernelX = kernel{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}

	kernelY = kernel{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// minBandRows is the smallest number of rows handed to one energy worker.
const minBandRows = 16

// Energy computes the gradient energy of every pixel using all available CPUs.
// See EnergyWorkers.
func Energy(r *Raster) *EnergyMap {
	return EnergyWorkers(r, runtime.NumCPU())
}

// EnergyWorkers converts the raster to luma and returns, for every pixel,
// the sum of the absolute horizontal and vertical Sobel responses.
// Pixels outside the raster replicate the nearest edge pixel.
// The image is split in horizontal bands processed by at most workers goroutines;
// the result does not depend on the number of workers.
func EnergyWorkers(r *Raster, workers int) *EnergyMap {
	gray := r.Luma()
	em := newEnergyMap(r.Height, r.Width)

	workers = max(workers, 1)
	band := max(minBandRows, (r.Height+workers-1)/workers)

	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < r.Height; y0 += band {
		y0, y1 := y0, min(y0+band, r.Height)
		g.Go(func() error {
			sobelRows(gray, r.Width, r.Height, y0, y1, em)
			return nil
		})
	}
	_ = g.Wait()

	return em
}

// sobelRows fills the energy rows [y0, y1).
func sobelRows(gray []uint8, width, height, y0, y1 int, em *EnergyMap) {
	for y := y0; y < y1; y++ {
		row := em.Row(y)
		for x := 0; x < width; x++ {
			var sumX, sumY int32
			for ky := 0; ky < 3; ky++ {
				yy := utils.Clamp(y+ky-1, 0, height-1)
				for kx := 0; kx < 3; kx++ {
					xx := utils.Clamp(x+kx-1, 0, width-1)
					px := int32(gray[yy*width+xx])
					sumX += px * kernelX[ky][kx]
					sumY += px * kernelY[ky][kx]
				}
			}
			row[x] = float64(utils.Abs(sumX) + utils.Abs(sumY))
		}
	}
}
