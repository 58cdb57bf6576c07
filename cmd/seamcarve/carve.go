package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/seamcarve/seamcarve"
	"github.com/seamcarve/seamcarve/utils"
)

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// carveOpts holds the flags of the carve command.
type carveOpts struct {
	seams     int
	direction string
	strategy  string
	workers   int
	blur      float64
	quality   int
	visualize string // GIF file receiving one frame per seam
	every     int    // record one frame every n seams
	compare   string // comparison image path
	layout    string
	cascade   string // pigo cascade file enabling face protection
	faceMin   int
}

func (a *app) carveCmd() *cobra.Command {
	var o carveOpts

	cmd := &cobra.Command{
		Use:   "carve <input> <output>",
		Short: "Remove seams from an image, a URL, stdin or a directory of images",
		Long: `Remove the given number of seams from the input image.

The input may be a file, an http(s) URL, "-" for stdin or a directory, in which
case every supported image below it is carved into the output directory.
The output may be "-" to write to stdout.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyCarveDefaults(cmd, &o)
			return a.runCarve(cmd.Context(), args[0], args[1], &o)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&o.seams, "seams", "n", 50, "number of seams to remove")
	f.StringVarP(&o.direction, "direction", "d", "vertical", "seam direction: vertical (v) or horizontal (h)")
	f.StringVarP(&o.strategy, "strategy", "s", "dp", "seam finder: dp, greedy, shortest-path, min-cut")
	f.IntVar(&o.workers, "workers", 0, "energy goroutines, and concurrently processed files in directory mode")
	f.Float64Var(&o.blur, "blur", 0, "sigma of the Gaussian blur applied before the energy computation")
	f.IntVar(&o.quality, "quality", 100, "JPEG quality")
	f.StringVar(&o.visualize, "visualize", "", "write an animated GIF showing every removed seam")
	f.IntVar(&o.every, "every", 1, "record one visualization frame every n seams")
	f.StringVar(&o.compare, "compare", "", "write a comparison image of the input and the result")
	f.StringVar(&o.layout, "layout", "vertical", "comparison layout: vertical or horizontal")
	f.StringVar(&o.cascade, "cascade", "", "pigo cascade classifier file; enables face protection")
	f.IntVar(&o.faceMin, "face-min", 20, "smallest face size in pixels")

	return cmd
}

// applyCarveDefaults fills the flags left unset from the configuration file.
func (a *app) applyCarveDefaults(cmd *cobra.Command, o *carveOpts) {
	f := cmd.Flags()
	if !f.Changed("seams") {
		o.seams = a.cfg.Carve.Seams
	}
	if !f.Changed("direction") {
		o.direction = a.cfg.Carve.Direction
	}
	if !f.Changed("strategy") {
		o.strategy = a.cfg.Carve.Strategy
	}
	if !f.Changed("workers") {
		o.workers = a.cfg.Carve.Workers
	}
	if !f.Changed("blur") {
		o.blur = a.cfg.Carve.Blur
	}
	if !f.Changed("quality") {
		o.quality = a.cfg.Output.Quality
	}
	if !f.Changed("layout") {
		o.layout = a.cfg.Compare.Layout
	}
}

// options converts the flags to carving options.
func (o *carveOpts) options(ctx context.Context) (seamcarve.Axis, seamcarve.Options, error) {
	axis, err := seamcarve.ParseAxis(o.direction)
	if err != nil {
		return "", seamcarve.Options{}, err
	}
	strategy, err := seamcarve.ParseStrategy(o.strategy)
	if err != nil {
		return "", seamcarve.Options{}, err
	}
	opts := seamcarve.Options{
		Strategy:  strategy,
		Workers:   o.workers,
		BlurSigma: o.blur,
		Logger:    loggerFromContext(ctx),
	}
	if o.cascade != "" {
		data, err := os.ReadFile(o.cascade)
		if err != nil {
			return "", seamcarve.Options{}, fmt.Errorf("could not read the cascade file: %w", err)
		}
		fg, err := seamcarve.NewFaceGuard(data)
		if err != nil {
			return "", seamcarve.Options{}, err
		}
		fg.MinSize = o.faceMin
		opts.Faces = fg
	}
	return axis, opts, nil
}

func (a *app) runCarve(ctx context.Context, in, out string, o *carveOpts) error {
	logger := loggerFromContext(ctx)
	now := time.Now()

	// Check if source path is a local image or URL.
	if utils.IsValidUrl(in) {
		logger.Debug("downloading", "url", in)
		src, err := utils.DownloadImage(ctx, in)
		if err != nil {
			return err
		}
		defer os.Remove(src.Name())
		defer src.Close()
		in = src.Name()
	}

	var (
		fs  os.FileInfo
		err error
	)
	if in == pipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(in)
	}
	if err != nil {
		return fmt.Errorf("failed to load the source image: %w", err)
	}

	if fs.IsDir() {
		if err := a.runBatch(ctx, in, out, o); err != nil {
			return err
		}
	} else {
		spinner := newSpinner(o.strategy)
		if term.IsTerminal(int(os.Stderr.Fd())) {
			spinner.Start()
		}
		stats, err := a.carveFile(ctx, in, out, o)
		spinner.Stop()
		if err != nil {
			return err
		}
		if out != pipeName {
			printSuccess("The resized image has been saved as: %s", styleHighlight.Render(filepath.Base(out)))
		}
		printStats(stats)
	}
	printInfo("Execution time: %s", styleValue.Render(utils.FormatTime(time.Since(now))))
	return nil
}

// carveFile carves a single image from in (a path or "-") into out (a path or "-").
func (a *app) carveFile(ctx context.Context, in, out string, o *carveOpts) (seamcarve.Stats, error) {
	var stats seamcarve.Stats

	axis, opts, err := o.options(ctx)
	if err != nil {
		return stats, err
	}

	src, err := openInput(in)
	if err != nil {
		return stats, err
	}
	if f, ok := src.(*os.File); ok && f != os.Stdin {
		defer f.Close()
	}

	original, err := seamcarve.Decode(src)
	if err != nil {
		return stats, err
	}

	var rec *gifRecorder
	if o.visualize != "" {
		rec = newGIFRecorder(o.every)
		opts.Visualize = rec.Record
	}

	carved, stats, err := seamcarve.CarveWithStats(ctx, original, o.seams, axis, opts)
	if err != nil {
		return stats, err
	}

	if err := writeOutput(out, carved, o.quality); err != nil {
		return stats, err
	}

	if rec != nil {
		rec.Final(carved)
		if err := rec.Save(o.visualize); err != nil {
			return stats, err
		}
		loggerFromContext(ctx).Debug("visualization saved", "path", o.visualize, "frames", rec.Frames())
	}

	if o.compare != "" {
		layout, err := seamcarve.ParseLayout(o.layout)
		if err != nil {
			return stats, err
		}
		cmp, err := seamcarve.Compare(original, carved, layout)
		if err != nil {
			return stats, err
		}
		if err := imaging.Save(cmp, o.compare, imaging.JPEGQuality(o.quality)); err != nil {
			return stats, fmt.Errorf("could not save the comparison image: %w", err)
		}
	}
	return stats, nil
}

// openInput opens the source path, refusing an interactive terminal as stdin.
func openInput(in string) (io.Reader, error) {
	if in == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return os.Stdin, nil
	}
	f, err := os.Open(in)
	if err != nil {
		return nil, fmt.Errorf("unable to open the source file: %w", err)
	}
	return f, nil
}

// writeOutput encodes the raster to the output path or to stdout.
func writeOutput(out string, r *seamcarve.Raster, quality int) error {
	if out == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("`-` should be used with a pipe for stdout")
		}
		return seamcarve.Encode(os.Stdout, r, seamcarve.JPEG, quality)
	}
	return seamcarve.Save(out, r, quality)
}

func newSpinner(strategy string) *utils.Spinner {
	text := fmt.Sprintf("%s %s", styleTitle.Render("⚡ SEAMCARVE"), styleDim.Render("is carving the image ("+strategy+")..."))
	return utils.NewSpinner(os.Stderr, text, 100*time.Millisecond, true)
}

func printStats(stats seamcarve.Stats) {
	printInfo("Removed %s seams, total energy %s, in %s",
		styleValue.Render(fmt.Sprint(stats.Seams)),
		styleValue.Render(fmt.Sprintf("%.0f", stats.Cost)),
		styleValue.Render(utils.FormatTime(stats.Elapsed)))
	if n := len(stats.Diagnostics); n > 0 {
		printWarning("The seam finder fell back %d times; the result may not be minimal", n)
	}
}
