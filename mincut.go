package seamcarve

import (
	"math"

	"github.com/seamcarve/seamcarve/flow"
)

// CutFinder derives the seam from a minimum cut of a node-split flow network.
//
// Every pixel becomes an in-node and an out-node joined by an arc whose
// capacity is the pixel energy. Every other arc (source to the top row,
// out-node to the three in-nodes of the row below, bottom row to sink) is
// uncapacitated, so the minimum cut is made of pixel arcs only. The cut
// pixels are the ones whose in-node is still reachable from the source in
// the residual network while their out-node is not.
//
// Nothing forces the cut to hold exactly one pixel per row. Rows with no cut
// pixel repeat the previous column and rows with several keep the leftmost
// one next to the previous column; both cases are reported as diagnostics.
type CutFinder struct {
	// Report receives the rows whose cut is empty or ambiguous.
	Report DiagnosticFunc
}

var _ Finder = (*CutFinder)(nil)

func (f *CutFinder) Find(em *EnergyMap) Seam {
	rows, cols := em.Dims()
	nw, src, sink := buildCutNetwork(em, rows, cols)
	nw.MaxFlow(src, sink)
	seen := nw.Reachable(src)

	cut := func(r, c int) bool {
		in := 2 * (r*cols + c)
		return seen[in] && !seen[in+1]
	}

	seam := make(Seam, rows)
	for y := 0; y < rows; y++ {
		lo, hi := 0, cols-1
		if y > 0 {
			lo, hi = seam[y-1]-1, seam[y-1]+1
		}
		lo, hi = max(lo, 0), min(hi, cols-1)

		pick, count := -1, 0
		for x := lo; x <= hi; x++ {
			if cut(y, x) {
				if pick < 0 {
					pick = x
				}
				count++
			}
		}

		switch {
		case count == 1:
			seam[y] = pick
		case count > 1:
			f.Report.report(MinCut, y, "%d cut columns, keeping column %d", count, pick)
			seam[y] = pick
		case y == 0:
			seam[y] = leftmostMin(em.Row(0), 0, cols-1)
			f.Report.report(MinCut, y, "no cut column, falling back to column %d", seam[y])
		default:
			seam[y] = seam[y-1]
			f.Report.report(MinCut, y, "no cut column, repeating column %d", seam[y])
		}
	}
	return seam
}

// buildCutNetwork lays the node-split network out as
// in(r, c) = 2*(r*cols+c), out(r, c) = in(r, c)+1 followed by source and sink.
func buildCutNetwork(em *EnergyMap, rows, cols int) (nw *flow.Network, src, sink int) {
	src = 2 * rows * cols
	sink = src + 1
	nw = flow.NewNetwork(sink + 1)
	inf := math.Inf(1)

	for y := 0; y < rows; y++ {
		energy := em.Row(y)
		for x := 0; x < cols; x++ {
			in := 2 * (y*cols + x)
			nw.AddArc(in, in+1, energy[x])

			if y == 0 {
				nw.AddArc(src, in, inf)
			}
			if y == rows-1 {
				nw.AddArc(in+1, sink, inf)
				continue
			}
			for nx := x - 1; nx <= x+1; nx++ {
				if nx >= 0 && nx < cols {
					nw.AddArc(in+1, 2*((y+1)*cols+nx), inf)
				}
			}
		}
	}
	return nw, src, sink
}
