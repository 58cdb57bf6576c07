package main

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/seamcarve/seamcarve"
)

func (a *app) compareCmd() *cobra.Command {
	var save, layout string
	var quality int

	cmd := &cobra.Command{
		Use:   "compare <original> <carved>",
		Short: "Compose the original and the carved image into one labelled image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("layout") {
				layout = a.cfg.Compare.Layout
			}
			if !cmd.Flags().Changed("quality") {
				quality = a.cfg.Output.Quality
			}
			return runCompare(args[0], args[1], save, layout, quality)
		},
	}

	cmd.Flags().StringVar(&save, "save", "comparison.jpg", "output file")
	cmd.Flags().StringVar(&layout, "layout", "vertical", "layout: vertical (stacked) or horizontal (side by side)")
	cmd.Flags().IntVar(&quality, "quality", 100, "JPEG quality")

	return cmd
}

func runCompare(originalPath, carvedPath, save, layoutName string, quality int) error {
	layout, err := seamcarve.ParseLayout(layoutName)
	if err != nil {
		return err
	}
	original, err := seamcarve.Open(originalPath)
	if err != nil {
		return fmt.Errorf("unable to read input image from %s: %w", originalPath, err)
	}
	carved, err := seamcarve.Open(carvedPath)
	if err != nil {
		return fmt.Errorf("unable to read output image from %s: %w", carvedPath, err)
	}

	img, err := seamcarve.Compare(original, carved, layout)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, save, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("could not save the comparison image: %w", err)
	}
	printSuccess("Comparison saved as: %s", styleHighlight.Render(save))
	return nil
}
