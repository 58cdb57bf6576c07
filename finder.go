package seamcarve

import (
	"fmt"
	"math"
	"strings"
)

// Strategy selects the seam discovery algorithm.
type Strategy string

const (
	// DynamicProgramming finds the globally minimal seam with a cumulative cost table.
	DynamicProgramming Strategy = "dp"
	// Greedy follows the locally cheapest neighbour row by row. Fast, not optimal.
	Greedy Strategy = "greedy"
	// ShortestPath runs a single source shortest path search over the layered pixel graph.
	ShortestPath Strategy = "shortest-path"
	// MinCut derives the seam from a minimum cut of a node-split flow network.
	MinCut Strategy = "min-cut"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{DynamicProgramming, Greedy, ShortestPath, MinCut}

// ParseStrategy converts a strategy name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dp", "dynamic-programming":
		return DynamicProgramming, nil
	case "greedy":
		return Greedy, nil
	case "shortest-path", "graph", "path":
		return ShortestPath, nil
	case "min-cut", "mincut", "graph-cut":
		return MinCut, nil
	}
	return "", newError(InvalidParameter, "unknown seam strategy %q", name)
}

// Diagnostic describes a recoverable inconsistency met during a seam search.
// The search still returns a valid seam, but it may not be minimal.
type Diagnostic struct {
	Strategy Strategy
	Row      int
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: row %d: %s", d.Strategy, d.Row, d.Message)
}

// DiagnosticFunc receives the diagnostics of a seam search.
type DiagnosticFunc func(Diagnostic)

func (fn DiagnosticFunc) report(s Strategy, row int, format string, args ...any) {
	if fn != nil {
		fn(Diagnostic{Strategy: s, Row: row, Message: fmt.Sprintf(format, args...)})
	}
}

// Finder finds one vertical seam in an energy map.
// Finders may keep scratch buffers between calls and are not safe for concurrent use.
type Finder interface {
	Find(em *EnergyMap) Seam
}

// NewFinder returns the finder implementing the strategy.
// Diagnostics are delivered to report, which may be nil.
func NewFinder(s Strategy, report DiagnosticFunc) (Finder, error) {
	switch s {
	case DynamicProgramming, "":
		return &DPFinder{}, nil
	case Greedy:
		return &GreedyFinder{}, nil
	case ShortestPath:
		return &PathFinder{Report: report}, nil
	case MinCut:
		return &CutFinder{Report: report}, nil
	}
	return nil, newError(InvalidParameter, "unknown seam strategy %q", string(s))
}

// leftmostMin returns the index of the smallest value of row within
// [lo, hi], both clipped to the row. Ties resolve to the smallest index.
func leftmostMin(row []float64, lo, hi int) int {
	if lo < 0 {
		lo = 0
	}
	if hi > len(row)-1 {
		hi = len(row) - 1
	}
	idx, min := lo, math.Inf(1)
	for i := lo; i <= hi; i++ {
		if row[i] < min {
			idx, min = i, row[i]
		}
	}
	return idx
}
