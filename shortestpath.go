package seamcarve

import "math"

const (
	predNone   = -1 // node not reached
	predSource = -2 // node reached straight from the virtual source
)

// PathFinder solves the seam search as a single source shortest path problem.
//
// The graph is layered and acyclic: a virtual source connects to every pixel
// of the top row with the weight of that pixel, every pixel (r, c) connects to
// (r+1, c-1), (r+1, c) and (r+1, c+1) with the weight of the target pixel and
// every bottom row pixel reaches the virtual sink at no cost. Since the graph
// is a DAG whose layers are the image rows, one top to bottom relaxation pass
// settles every node; the graph itself is never materialized.
type PathFinder struct {
	// Report receives the broken predecessor chains met while backtracking.
	Report DiagnosticFunc

	cols int
	dist []float64
	pred []int
}

var _ Finder = (*PathFinder)(nil)

func (f *PathFinder) Find(em *EnergyMap) Seam {
	rows, cols := em.Dims()
	f.relax(em, rows, cols)

	seam := make(Seam, rows)
	last := f.dist[(rows-1)*cols : rows*cols]

	end, best := -1, math.Inf(1)
	for c, d := range last {
		if d < best {
			end, best = c, d
		}
	}
	if end < 0 {
		end = leftmostMin(em.Row(rows-1), 0, cols-1)
		f.Report.report(ShortestPath, rows-1, "sink unreachable, falling back to column %d", end)
	}
	seam[rows-1] = end

	for y := rows - 1; y > 0; y-- {
		p := f.pred[y*cols+seam[y]]
		if p < 0 {
			f.Report.report(ShortestPath, y, "predecessor chain broken at column %d", seam[y])
			p = seam[y]
		}
		seam[y-1] = p
	}
	if f.pred[seam[0]] != predSource {
		f.Report.report(ShortestPath, 0, "seam start %d unreachable from source", seam[0])
	}
	return seam
}

// relax computes the distance from the source to every pixel node together
// with the predecessor column of the settling edge. Predecessors are scanned
// left to right and only a strictly shorter distance replaces the current one.
func (f *PathFinder) relax(em *EnergyMap, rows, cols int) {
	n := rows * cols
	f.cols = cols
	if cap(f.dist) < n {
		f.dist = make([]float64, n)
		f.pred = make([]int, n)
	}
	f.dist, f.pred = f.dist[:n], f.pred[:n]

	inf := math.Inf(1)
	for c, e := range em.Row(0) {
		f.dist[c], f.pred[c] = inf, predNone
		if e < inf {
			f.dist[c], f.pred[c] = e, predSource
		}
	}

	for y := 1; y < rows; y++ {
		prev := f.dist[(y-1)*cols : y*cols]
		energy := em.Row(y)
		for x := 0; x < cols; x++ {
			best, pred := inf, predNone
			for px := x - 1; px <= x+1; px++ {
				if px < 0 || px >= cols {
					continue
				}
				if prev[px] < best {
					best, pred = prev[px], px
				}
			}
			i := y*cols + x
			f.dist[i], f.pred[i] = inf, predNone
			if pred != predNone {
				if d := best + energy[x]; d < inf {
					f.dist[i], f.pred[i] = d, pred
				}
			}
		}
	}
}

// Distance returns the shortest distance from the source to (x, y)
// computed by the last call to Find.
func (f *PathFinder) Distance(x, y int) float64 {
	return f.dist[y*f.cols+x]
}
