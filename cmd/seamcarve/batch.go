package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/seamcarve/seamcarve"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// validExtensions lists the image files picked up in directory mode.
var validExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif"}

// result holds the outcome of carving one file of a directory.
type result struct {
	path  string
	stats seamcarve.Stats
	err   error
}

// runBatch carves every supported image below src into dst using a bounded pool of workers.
func (a *app) runBatch(ctx context.Context, src, dst string, o *carveOpts) error {
	if o.visualize != "" || o.compare != "" {
		printWarning("--visualize and --compare are ignored in directory mode")
	}
	batch := *o
	batch.visualize, batch.compare = "", ""

	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	// Limit the concurrently running workers to maxWorkers.
	workers := batch.workers
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
	}
	// Every file already runs on its own goroutine.
	batch.workers = 1

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	paths, errc := walkDir(ctx.Done(), src, validExtensions)
	ch := make(chan result)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			a.consumer(ctx, paths, dst, &batch, ch)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	var results []result
	for res := range ch {
		results = append(results, res)
		if res.err != nil {
			printError("%s: %v", filepath.Base(res.path), res.err)
		} else {
			printSuccess("%s", filepath.Base(res.path))
		}
	}
	printBatchTable(results)

	if err := <-errc; err != nil {
		return err
	}
	return ctx.Err()
}

// walkDir starts a goroutine to walk the specified directory tree in recursive manner
// and send the path of each supported file on the string channel.
// It sends the result of the walk on the error channel.
// It terminates in case done channel is closed.
func walkDir(done <-chan struct{}, src string, srcExts []string) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() || !isValidExtension(filepath.Ext(info.Name()), srcExts) {
				return nil
			}

			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// consumer reads the path names from the paths channel, carves every file
// and sends the results on the res channel.
func (a *app) consumer(ctx context.Context, paths <-chan string, dest string, o *carveOpts, res chan<- result) {
	for src := range paths {
		out := filepath.Join(dest, filepath.Base(src))
		stats, err := a.carveFile(ctx, src, out, o)

		select {
		case <-ctx.Done():
			return
		case res <- result{path: src, stats: stats, err: err}:
		}
	}
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if strings.EqualFold(ex, ext) {
			return true
		}
	}
	return false
}

func printBatchTable(results []result) {
	if len(results) == 0 {
		printWarning("No image found")
		return
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := iconSuccess
		if r.err != nil {
			status = iconError
		}
		rows = append(rows, []string{
			status,
			filepath.Base(r.path),
			formatCost(r),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "File", "Seam energy").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			}
			if col == 0 && results[row].err != nil {
				return styleIconError
			}
			if col == 0 {
				return styleIconSuccess
			}
			return lipgloss.NewStyle().Foreground(colorDim)
		})
	os.Stderr.WriteString(t.Render() + "\n")
}

func formatCost(r result) string {
	if r.err != nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", r.stats.Cost)
}
