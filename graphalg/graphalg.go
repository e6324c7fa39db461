// Package graphalg implements the graph traversal algorithms of
// SPEC_FULL.md §4.7 over an in-memory arena-of-vertices projection, per the
// "do not model edges as owning pointers" guidance of spec §9.
package graphalg

import (
	"context"
	"sort"

	"github.com/mu-graph/mu/graph"
)

// Graph is an in-memory projection of nodes and edges, indexed for BFS.
type Graph struct {
	nodes    []*graph.Node
	indexOf  map[string]int
	outAdj   [][]adjEdge
	inAdj    [][]adjEdge
}

type adjEdge struct {
	to       int
	edgeType graph.EdgeType
}

// Load builds a Graph from a flat node/edge list, as loaded from store or
// maintained live by the orchestrator.
func Load(nodes []*graph.Node, edges []*graph.Edge) *Graph {
	g := &Graph{nodes: nodes, indexOf: make(map[string]int, len(nodes))}
	for i, n := range nodes {
		g.indexOf[n.ID] = i
	}
	g.outAdj = make([][]adjEdge, len(nodes))
	g.inAdj = make([][]adjEdge, len(nodes))
	for _, e := range edges {
		si, sok := g.indexOf[e.SourceID]
		ti, tok := g.indexOf[e.TargetID]
		if !sok || !tok {
			continue
		}
		g.outAdj[si] = append(g.outAdj[si], adjEdge{to: ti, edgeType: e.Type})
		g.inAdj[ti] = append(g.inAdj[ti], adjEdge{to: si, edgeType: e.Type})
	}
	return g
}

func matchesType(edgeType graph.EdgeType, want []graph.EdgeType) bool {
	if len(want) == 0 {
		return true
	}
	for _, t := range want {
		if t == edgeType {
			return true
		}
	}
	return false
}

// ReachableForward BFS-walks outgoing edges of matching types from id, up
// to depthLimit hops (0 = unlimited), visiting at most N+M nodes/edges.
func (g *Graph) ReachableForward(ctx context.Context, id string, edgeTypes []graph.EdgeType, depthLimit int) ([]*graph.Node, error) {
	return g.bfs(ctx, id, g.outAdj, edgeTypes, depthLimit)
}

// ReachableBackward is ReachableForward along incoming edges.
func (g *Graph) ReachableBackward(ctx context.Context, id string, edgeTypes []graph.EdgeType, depthLimit int) ([]*graph.Node, error) {
	return g.bfs(ctx, id, g.inAdj, edgeTypes, depthLimit)
}

func (g *Graph) bfs(ctx context.Context, id string, adj [][]adjEdge, edgeTypes []graph.EdgeType, depthLimit int) ([]*graph.Node, error) {
	start, ok := g.indexOf[id]
	if !ok {
		return nil, nil
	}
	visited := map[int]bool{start: true}
	queue := []int{start}
	depth := map[int]int{start: 0}

	var out []*graph.Node
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur := queue[0]
		queue = queue[1:]
		if cur != start {
			out = append(out, g.nodes[cur])
		}
		if depthLimit > 0 && depth[cur] >= depthLimit {
			continue
		}
		for _, e := range adj[cur] {
			if !matchesType(e.edgeType, edgeTypes) || visited[e.to] {
				continue
			}
			visited[e.to] = true
			depth[e.to] = depth[cur] + 1
			queue = append(queue, e.to)
		}
	}
	return out, nil
}

// ShortestPath BFS-finds the shortest node sequence [src, ..., dst] along
// matching edge types, or nil if no path exists.
func (g *Graph) ShortestPath(ctx context.Context, src, dst string, edgeTypes []graph.EdgeType) ([]*graph.Node, error) {
	si, sok := g.indexOf[src]
	di, dok := g.indexOf[dst]
	if !sok || !dok {
		return nil, nil
	}
	if si == di {
		return []*graph.Node{g.nodes[si]}, nil
	}

	prev := map[int]int{si: -1}
	queue := []int{si}
	found := false
	for len(queue) > 0 && !found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.outAdj[cur] {
			if !matchesType(e.edgeType, edgeTypes) {
				continue
			}
			if _, seen := prev[e.to]; seen {
				continue
			}
			prev[e.to] = cur
			if e.to == di {
				found = true
				break
			}
			queue = append(queue, e.to)
		}
	}
	if _, ok := prev[di]; !ok {
		return nil, nil
	}

	var path []int
	for n := di; n != -1; n = prev[n] {
		path = append([]int{n}, path...)
	}
	out := make([]*graph.Node, len(path))
	for i, idx := range path {
		out[i] = g.nodes[idx]
	}
	return out, nil
}

// Neighbors BFS-truncates at depth hops in the given direction.
func (g *Graph) Neighbors(ctx context.Context, id string, direction string, depth int, edgeTypes []graph.EdgeType) ([]*graph.Node, error) {
	switch direction {
	case "in":
		return g.ReachableBackward(ctx, id, edgeTypes, depth)
	case "out":
		return g.ReachableForward(ctx, id, edgeTypes, depth)
	default:
		fwd, err := g.ReachableForward(ctx, id, edgeTypes, depth)
		if err != nil {
			return nil, err
		}
		back, err := g.ReachableBackward(ctx, id, edgeTypes, depth)
		if err != nil {
			return nil, err
		}
		seen := map[string]bool{}
		var out []*graph.Node
		for _, n := range append(fwd, back...) {
			if !seen[n.ID] {
				seen[n.ID] = true
				out = append(out, n)
			}
		}
		return out, nil
	}
}

// NeighborResult is one node reached during a bounded traversal, annotated
// with its BFS depth and the node it was first reached from. MUQL's SHOW/
// PATH results flatten to (node_id, depth, parent_id) per spec §4.8.
type NeighborResult struct {
	Node     *graph.Node
	Depth    int
	ParentID string
}

// NeighborsWithDepth is Neighbors, annotated with BFS depth/parent for
// query-result flattening.
func (g *Graph) NeighborsWithDepth(ctx context.Context, id string, direction string, depth int, edgeTypes []graph.EdgeType) ([]NeighborResult, error) {
	switch direction {
	case "in":
		return g.bfsWithDepth(ctx, id, g.inAdj, edgeTypes, depth)
	case "out":
		return g.bfsWithDepth(ctx, id, g.outAdj, edgeTypes, depth)
	default:
		fwd, err := g.bfsWithDepth(ctx, id, g.outAdj, edgeTypes, depth)
		if err != nil {
			return nil, err
		}
		back, err := g.bfsWithDepth(ctx, id, g.inAdj, edgeTypes, depth)
		if err != nil {
			return nil, err
		}
		seen := map[string]bool{}
		var out []NeighborResult
		for _, r := range append(fwd, back...) {
			if !seen[r.Node.ID] {
				seen[r.Node.ID] = true
				out = append(out, r)
			}
		}
		return out, nil
	}
}

func (g *Graph) bfsWithDepth(ctx context.Context, id string, adj [][]adjEdge, edgeTypes []graph.EdgeType, depthLimit int) ([]NeighborResult, error) {
	start, ok := g.indexOf[id]
	if !ok {
		return nil, nil
	}
	visited := map[int]bool{start: true}
	parent := map[int]int{start: -1}
	queue := []int{start}
	depth := map[int]int{start: 0}

	var out []NeighborResult
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur := queue[0]
		queue = queue[1:]
		if cur != start {
			parentID := ""
			if p := parent[cur]; p >= 0 {
				parentID = g.nodes[p].ID
			}
			out = append(out, NeighborResult{Node: g.nodes[cur], Depth: depth[cur], ParentID: parentID})
		}
		if depthLimit > 0 && depth[cur] >= depthLimit {
			continue
		}
		for _, e := range adj[cur] {
			if !matchesType(e.edgeType, edgeTypes) || visited[e.to] {
				continue
			}
			visited[e.to] = true
			parent[e.to] = cur
			depth[e.to] = depth[cur] + 1
			queue = append(queue, e.to)
		}
	}
	return out, nil
}

// Component is one strongly connected component with more than one node, or
// a single node with a qualifying self-loop.
type Component struct {
	NodeIDs []string
}

// Cycles returns SCCs over the given edge types, in deterministic order
// (sorted by the component's smallest node ID).
func (g *Graph) Cycles(edgeTypes []graph.EdgeType) []Component {
	sccs := g.tarjanSCC(edgeTypes)

	var out []Component
	for _, scc := range sccs {
		if len(scc) > 1 || g.hasSelfLoop(scc[0], edgeTypes) {
			ids := make([]string, len(scc))
			for i, idx := range scc {
				ids[i] = g.nodes[idx].ID
			}
			sort.Strings(ids)
			out = append(out, Component{NodeIDs: ids})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeIDs[0] < out[j].NodeIDs[0] })
	return out
}

func (g *Graph) hasSelfLoop(idx int, edgeTypes []graph.EdgeType) bool {
	for _, e := range g.outAdj[idx] {
		if e.to == idx && matchesType(e.edgeType, edgeTypes) {
			return true
		}
	}
	return false
}

// tarjanSCC is the standard iterative-free Tarjan algorithm; small code
// graphs make the recursive form acceptable here.
func (g *Graph) tarjanSCC(edgeTypes []graph.EdgeType) [][]int {
	n := len(g.nodes)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []int
	counter := 0
	var sccs [][]int

	var strongConnect func(v int)
	strongConnect = func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, e := range g.outAdj[v] {
			if !matchesType(e.edgeType, edgeTypes) {
				continue
			}
			w := e.to
			if index[w] == -1 {
				strongConnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] {
				if index[w] < low[v] {
					low[v] = index[w]
				}
			}
		}

		if low[v] == index[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for v := 0; v < n; v++ {
		if index[v] == -1 {
			strongConnect(v)
		}
	}
	return sccs
}
