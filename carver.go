package seamcarve

import (
	"context"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
)

// Axis is the direction of the removed seams.
type Axis string

const (
	// Vertical seams run top to bottom; removing them reduces the width.
	Vertical Axis = "vertical"
	// Horizontal seams run left to right; removing them reduces the height.
	Horizontal Axis = "horizontal"
)

// ParseAxis converts an axis name (or its first letter) to an Axis.
func ParseAxis(name string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vertical", "v":
		return Vertical, nil
	case "horizontal", "h":
		return Horizontal, nil
	}
	return "", newError(InvalidParameter, "unknown seam direction %q", name)
}

// VisualizeFunc is called before every seam removal with the current raster
// and the seam about to be removed, both in the orientation of the input.
// For horizontal seams the seam holds one row index per column.
// The raster must not be modified.
type VisualizeFunc func(r *Raster, s Seam, axis Axis)

// Options configures a carve.
type Options struct {
	// Strategy selects the seam finder. Defaults to DynamicProgramming.
	Strategy Strategy
	// Workers bounds the goroutines computing the energy map. Defaults to the number of CPUs.
	Workers int
	// BlurSigma, when positive, blurs the raster with a Gaussian of this sigma
	// before computing the energy. The carved pixels are never blurred.
	BlurSigma float64
	// Faces, when set, protects the detected faces from removal.
	Faces *FaceGuard
	// Visualize, when set, observes every seam before its removal.
	Visualize VisualizeFunc
	// Logger receives progress and diagnostics. Defaults to a discarding logger.
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

func (o Options) workers() int {
	if o.Workers < 1 {
		return runtime.NumCPU()
	}
	return o.Workers
}

// energy computes the energy map of r honoring the blur option.
func (o Options) energy(r *Raster) *EnergyMap {
	if o.BlurSigma > 0 {
		r = FromImage(imaging.Blur(r.ToNRGBA(), o.BlurSigma))
	}
	return EnergyWorkers(r, o.workers())
}

// Stats summarizes a carve.
type Stats struct {
	// Seams is the number of removed seams.
	Seams int
	// Cost is the sum of the energies of the removed seams.
	// Face penalties are not part of it.
	Cost float64
	// Diagnostics lists the fallbacks taken by the seam finder.
	Diagnostics []Diagnostic
	// Elapsed is the wall time of the carve.
	Elapsed time.Duration
}

// Carve removes n seams along axis and returns the carved raster.
// The input raster is never modified. See CarveWithStats.
func Carve(ctx context.Context, r *Raster, n int, axis Axis, opts Options) (*Raster, error) {
	out, _, err := CarveWithStats(ctx, r, n, axis, opts)
	return out, err
}

// CarveWithStats removes n seams along axis. Each iteration recomputes the
// energy of the current raster, finds one seam and removes it.
//
// Parameters are checked before any energy is computed: a malformed raster
// is a DecodeFailure, a seam count outside [0, carved dimension) or an
// unknown strategy or axis is an InvalidParameter. The context is checked
// between iterations and its error is returned as is.
func CarveWithStats(ctx context.Context, r *Raster, n int, axis Axis, opts Options) (*Raster, Stats, error) {
	var stats Stats
	start := time.Now()

	if err := r.Validate(); err != nil {
		return nil, stats, err
	}

	var dim int
	switch axis {
	case Vertical:
		dim = r.Width
	case Horizontal:
		dim = r.Height
	default:
		return nil, stats, newError(InvalidParameter, "unknown seam direction %q", string(axis))
	}
	if n < 0 || n >= dim {
		return nil, stats, newError(InvalidParameter,
			"cannot remove %d %s seams from a %dx%d image", n, axis, r.Width, r.Height)
	}

	logger := opts.logger()
	finder, err := NewFinder(opts.Strategy, func(d Diagnostic) {
		stats.Diagnostics = append(stats.Diagnostics, d)
		logger.Debug("seam search fallback", "strategy", d.Strategy, "row", d.Row, "msg", d.Message)
	})
	if err != nil {
		return nil, stats, err
	}

	// Horizontal seams are the vertical seams of the transposed raster.
	transposed := axis == Horizontal
	var cur *Raster
	if transposed {
		cur = r.Transpose()
	} else {
		cur = r.Clone()
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		em := opts.energy(cur)

		view := cur
		if transposed && (opts.Faces != nil || opts.Visualize != nil) {
			view = cur.Transpose()
		}
		search := em
		if opts.Faces != nil {
			search = em.clone()
			opts.Faces.Protect(view, search, transposed)
		}

		seam := finder.Find(search)
		stats.Cost += seam.Cost(em)
		if opts.Visualize != nil {
			opts.Visualize(view, seam, axis)
		}

		cur = RemoveSeam(cur, seam)
		stats.Seams++
	}

	if transposed {
		cur = cur.Transpose()
	}
	stats.Elapsed = time.Since(start)

	if len(stats.Diagnostics) > 0 {
		logger.Warn("seam search took fallbacks", "strategy", finderStrategy(opts.Strategy), "count", len(stats.Diagnostics))
	}
	logger.Debug("carve done", "axis", axis, "seams", stats.Seams, "cost", stats.Cost, "elapsed", stats.Elapsed)

	return cur, stats, nil
}

func finderStrategy(s Strategy) Strategy {
	if s == "" {
		return DynamicProgramming
	}
	return s
}
