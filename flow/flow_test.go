package flow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxFlow_CDN(t *testing.T) {
	const (
		client = iota
		pop1
		pop2
		origin1
		origin2
		sink
	)
	nw := NewNetwork(6)
	nw.AddArc(client, pop1, 10)
	nw.AddArc(client, pop2, 15)
	nw.AddArc(pop1, origin1, 5)
	nw.AddArc(pop1, origin2, 5)
	nw.AddArc(pop2, origin1, 10)
	nw.AddArc(pop2, origin2, 3)
	nw.AddArc(origin1, sink, 20)
	nw.AddArc(origin2, sink, 20)

	assert.InDelta(t, 23.0, nw.MaxFlow(client, sink), 1e-9)
}

func TestMaxFlow_Chain(t *testing.T) {
	nw := NewNetwork(4)
	nw.AddArc(0, 1, 7)
	mid := nw.AddArc(1, 2, 2)
	nw.AddArc(2, 3, 9)

	require.InDelta(t, 2.0, nw.MaxFlow(0, 3), 1e-9)
	assert.InDelta(t, 0.0, nw.Residual(mid), 1e-9)

	seen := nw.Reachable(0)
	assert.Equal(t, []bool{true, true, false, false}, seen)
}

func TestMaxFlow_Diamond(t *testing.T) {
	nw := NewNetwork(4)
	nw.AddArc(0, 1, 3)
	nw.AddArc(0, 2, 2)
	nw.AddArc(1, 2, 5)
	nw.AddArc(1, 3, 2)
	nw.AddArc(2, 3, 3)

	assert.InDelta(t, 5.0, nw.MaxFlow(0, 3), 1e-9)
}

func TestMaxFlow_Infinite(t *testing.T) {
	nw := NewNetwork(3)
	nw.AddArc(0, 1, math.Inf(1))
	nw.AddArc(1, 2, math.Inf(1))

	assert.True(t, math.IsInf(nw.MaxFlow(0, 2), 1))
}

func TestAddArc_InvalidCapacity(t *testing.T) {
	nw := NewNetwork(2)
	a := nw.AddArc(0, 1, math.NaN())
	b := nw.AddArc(0, 1, -4)

	assert.Equal(t, 0.0, nw.Residual(a))
	assert.Equal(t, 0.0, nw.Residual(b))
	assert.Equal(t, 0.0, nw.MaxFlow(0, 1))
	assert.Equal(t, 2, nw.Nodes())
}

func TestMaxFlow_Disconnected(t *testing.T) {
	nw := NewNetwork(3)
	nw.AddArc(0, 1, 4)

	assert.Equal(t, 0.0, nw.MaxFlow(0, 2))
	assert.Equal(t, []bool{true, true, false}, nw.Reachable(0))
}
