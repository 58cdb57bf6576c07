/*
Package seamcarve is a content aware image resize library. It shrinks an image
vertically or horizontally by repeatedly removing the connected path of pixels
(seam) carrying the least gradient energy.

Four seam finders are provided: dynamic programming (optimal), greedy (fast,
approximate), shortest path over the implicit pixel graph (optimal) and
minimum cut of a node-split flow network. The command line tool under
cmd/seamcarve exposes all of them. To check the supported commands type:

	$ seamcarve --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/seamcarve/seamcarve"
	)

	func main() {
		src, err := seamcarve.Open("input.jpg")
		if err != nil {
			log.Fatal(err)
		}
		out, err := seamcarve.Carve(context.Background(), src, 50, seamcarve.Vertical, seamcarve.Options{
			Strategy: seamcarve.DynamicProgramming,
		})
		if err != nil {
			log.Fatalf("error rescaling image: %v", err)
		}
		if err := seamcarve.Encode(os.Stdout, out, seamcarve.PNG, 0); err != nil {
			log.Fatal(err)
		}
	}
*/
package seamcarve
