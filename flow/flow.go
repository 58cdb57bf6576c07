// Package flow implements a capacitated directed network solved with
// Dinic's maximum flow algorithm.
//
// Arcs are stored in a flat edge list where every arc is immediately followed
// by its residual twin, so the reverse of arc a is always a^1. Capacities are
// float64 to carry pixel energies unchanged; math.Inf(1) marks arcs that can
// never be part of a minimum cut.
package flow

import "math"

// eps is the residual capacity under which an arc is considered saturated.
const eps = 1e-9

// Network is a flow network over nodes numbered from 0 to n-1.
type Network struct {
	head []int // first arc leaving each node, -1 when none
	next []int // next arc leaving the same node
	to   []int
	cap  []float64

	level []int
	iter  []int
	queue []int
}

// NewNetwork returns an empty network with n nodes.
func NewNetwork(n int) *Network {
	nw := &Network{
		head:  make([]int, n),
		level: make([]int, n),
		iter:  make([]int, n),
		queue: make([]int, 0, n),
	}
	for i := range nw.head {
		nw.head[i] = -1
	}
	return nw
}

// Nodes returns the number of nodes of the network.
func (nw *Network) Nodes() int {
	return len(nw.head)
}

// AddArc adds a directed arc with the given capacity and returns its index.
// Negative and NaN capacities are treated as zero.
func (nw *Network) AddArc(from, to int, capacity float64) int {
	if !(capacity > 0) {
		capacity = 0
	}
	a := len(nw.to)
	nw.push(from, to, capacity)
	nw.push(to, from, 0)
	return a
}

func (nw *Network) push(from, to int, capacity float64) {
	nw.to = append(nw.to, to)
	nw.cap = append(nw.cap, capacity)
	nw.next = append(nw.next, nw.head[from])
	nw.head[from] = len(nw.to) - 1
}

// Residual returns the residual capacity of arc a.
func (nw *Network) Residual(a int) float64 {
	return nw.cap[a]
}

// MaxFlow saturates the network from s to t and returns the value of the
// maximum flow. It returns +Inf when an uncapacitated path joins s and t.
// The residual graph is left in place for Reachable.
func (nw *Network) MaxFlow(s, t int) float64 {
	if s == t {
		return 0
	}
	var total float64
	for nw.bfs(s, t) {
		copy(nw.iter, nw.head)
		for {
			f := nw.dfs(s, t, math.Inf(1))
			if f <= eps {
				break
			}
			if math.IsInf(f, 1) {
				return f
			}
			total += f
		}
	}
	return total
}

// bfs builds the level graph and reports whether t is still reachable.
func (nw *Network) bfs(s, t int) bool {
	for i := range nw.level {
		nw.level[i] = -1
	}
	nw.level[s] = 0
	nw.queue = append(nw.queue[:0], s)
	for i := 0; i < len(nw.queue); i++ {
		u := nw.queue[i]
		for a := nw.head[u]; a >= 0; a = nw.next[a] {
			v := nw.to[a]
			if nw.cap[a] > eps && nw.level[v] < 0 {
				nw.level[v] = nw.level[u] + 1
				nw.queue = append(nw.queue, v)
			}
		}
	}
	return nw.level[t] >= 0
}

// dfs pushes a blocking flow along the level graph.
func (nw *Network) dfs(u, t int, limit float64) float64 {
	if u == t {
		return limit
	}
	for ; nw.iter[u] >= 0; nw.iter[u] = nw.next[nw.iter[u]] {
		a := nw.iter[u]
		v := nw.to[a]
		if nw.cap[a] <= eps || nw.level[v] != nw.level[u]+1 {
			continue
		}
		f := nw.dfs(v, t, math.Min(limit, nw.cap[a]))
		if f > eps {
			nw.cap[a] -= f
			nw.cap[a^1] += f
			return f
		}
	}
	return 0
}

// Reachable marks every node reachable from s through arcs with positive
// residual capacity. After MaxFlow the marked set is the source side of a
// minimum cut.
func (nw *Network) Reachable(s int) []bool {
	seen := make([]bool, len(nw.head))
	seen[s] = true
	nw.queue = append(nw.queue[:0], s)
	for i := 0; i < len(nw.queue); i++ {
		u := nw.queue[i]
		for a := nw.head[u]; a >= 0; a = nw.next[a] {
			if v := nw.to[a]; nw.cap[a] > eps && !seen[v] {
				seen[v] = true
				nw.queue = append(nw.queue, v)
			}
		}
	}
	return seen
}
