// Package topo implements the directed weighted graph used as input to IGP
// shortest-path computation. It is deliberately the leaf-most, smallest
// component of this repository (section 2.1) — a plain adjacency list, the
// same house style the teacher codebase uses for its own small from-scratch
// data structures rather than reaching for a third-party graph library (none
// exists anywhere in the retrieval pack; see DESIGN.md).
package topo

import "github.com/transitorykris/bgpconverge/internal/bgp"

// Graph is a directed weighted graph over bgp.RouterId nodes.
type Graph struct {
	nodes map[bgp.RouterId]struct{}
	edges map[bgp.RouterId]map[bgp.RouterId]bgp.LinkWeight
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[bgp.RouterId]struct{}),
		edges: make(map[bgp.RouterId]map[bgp.RouterId]bgp.LinkWeight),
	}
}

// AddNode registers id with no edges if it is not already present.
func (g *Graph) AddNode(id bgp.RouterId) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = struct{}{}
	g.edges[id] = make(map[bgp.RouterId]bgp.LinkWeight)
}

// AddEdge installs a directed edge from -> to with the given weight,
// registering both endpoints as nodes if needed. A later call with the same
// (from, to) pair overwrites the weight.
func (g *Graph) AddEdge(from, to bgp.RouterId, weight bgp.LinkWeight) {
	g.AddNode(from)
	g.AddNode(to)
	g.edges[from][to] = weight
}

// UpdateEdgeWeight overwrites the weight of an existing directed edge
// without touching any other edge or recomputing anything derived from the
// graph (section 9: IGP tables are only ever recomputed on explicit
// request).
func (g *Graph) UpdateEdgeWeight(from, to bgp.RouterId, weight bgp.LinkWeight) bool {
	if _, ok := g.edges[from]; !ok {
		return false
	}
	if _, ok := g.edges[from][to]; !ok {
		return false
	}
	g.edges[from][to] = weight
	return true
}

// HasNode reports whether id has been registered.
func (g *Graph) HasNode(id bgp.RouterId) bool {
	_, ok := g.nodes[id]
	return ok
}

// Neighbors returns the outgoing edges of id. The returned map must not be
// mutated by the caller.
func (g *Graph) Neighbors(id bgp.RouterId) map[bgp.RouterId]bgp.LinkWeight {
	return g.edges[id]
}

// Nodes returns every registered node, in no particular order.
func (g *Graph) Nodes() []bgp.RouterId {
	out := make([]bgp.RouterId, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	return out
}
