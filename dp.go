package seamcarve

// dpTable holds the cumulative minimum energy of every seam prefix.
type dpTable struct {
	width  int
	height int
	table  []float64
}

// Get the cumulative energy at (x, y).
func (dpt *dpTable) get(x, y int) float64 {
	return dpt.table[x+y*dpt.width]
}

// Set the cumulative energy at (x, y).
func (dpt *dpTable) set(x, y int, v float64) {
	dpt.table[x+y*dpt.width] = v
}

// row returns the cumulative energies of row y.
func (dpt *dpTable) row(y int) []float64 {
	return dpt.table[y*dpt.width : (y+1)*dpt.width]
}

// resize prepares the table for a width x height map, reusing the backing buffer when possible.
func (dpt *dpTable) resize(width, height int) {
	dpt.width, dpt.height = width, height
	if n := width * height; cap(dpt.table) >= n {
		dpt.table = dpt.table[:n]
	} else {
		dpt.table = make([]float64, n)
	}
}

// compute fills the table with the following logic:
//   - the first row is a copy of the energy map;
//   - every other entry (x, y) sums the pixel energy with the minimum
//     cumulative energy of its up to three neighbours on the previous row.
func (dpt *dpTable) compute(em *EnergyMap) {
	copy(dpt.row(0), em.Row(0))

	for y := 1; y < dpt.height; y++ {
		prev, energy := dpt.row(y-1), em.Row(y)
		for x := 0; x < dpt.width; x++ {
			min := prev[x]
			// Do not look past the left and right edges.
			if x > 0 && prev[x-1] < min {
				min = prev[x-1]
			}
			if x < dpt.width-1 && prev[x+1] < min {
				min = prev[x+1]
			}
			dpt.set(x, y, energy[x]+min)
		}
	}
}

// backtrack walks up the table starting from the lowest cumulative energy of
// the bottom row and picks the cheapest of the three upper neighbours each step.
func (dpt *dpTable) backtrack() Seam {
	seam := make(Seam, dpt.height)
	px := leftmostMin(dpt.row(dpt.height-1), 0, dpt.width-1)
	seam[dpt.height-1] = px

	for y := dpt.height - 2; y >= 0; y-- {
		px = leftmostMin(dpt.row(y), px-1, px+1)
		seam[y] = px
	}
	return seam
}

// DPFinder returns the globally minimal vertical seam.
// The cumulative table is kept between calls to avoid reallocating it on every iteration.
type DPFinder struct {
	dpt dpTable
}

var _ Finder = (*DPFinder)(nil)

// Find builds the cumulative cost table and backtracks the cheapest seam.
func (f *DPFinder) Find(em *EnergyMap) Seam {
	rows, cols := em.Dims()
	f.dpt.resize(cols, rows)
	f.dpt.compute(em)
	return f.dpt.backtrack()
}

// CumulativeCost returns the value of the cumulative cost table at (x, y)
// computed by the last call to Find.
func (f *DPFinder) CumulativeCost(x, y int) float64 {
	return f.dpt.get(x, y)
}
