package seamcarve

// GreedyFinder starts from the cheapest pixel of the top row and keeps
// stepping to the cheapest of the pixels right below it. It never revisits
// a decision, so the seam is usually more expensive than the optimal one.
type GreedyFinder struct{}

var _ Finder = (*GreedyFinder)(nil)

func (GreedyFinder) Find(em *EnergyMap) Seam {
	rows, cols := em.Dims()
	seam := make(Seam, rows)

	px := leftmostMin(em.Row(0), 0, cols-1)
	seam[0] = px
	for y := 1; y < rows; y++ {
		px = leftmostMin(em.Row(y), px-1, px+1)
		seam[y] = px
	}
	return seam
}
