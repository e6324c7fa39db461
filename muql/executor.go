package muql

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/graph"
	"github.com/mu-graph/mu/graphalg"
	"github.com/mu-graph/mu/store"
)

// QueryResult is MUQL's uniform result shape (spec §4.8): relational rows
// for SELECT/FIND/ANALYZE, tree-shaped SHOW/PATH results flattened to
// (node_id, depth, parent_id).
type QueryResult struct {
	Columns  []string
	Rows     [][]string
	RowCount int
}

// Executor runs a Plan against a store and an in-memory graph projection.
type Executor struct {
	store    *store.Store
	resolver *Resolver
}

// NewExecutor builds an Executor backed by s, resolving references with the
// given ambiguity policy (prefer-source if empty).
func NewExecutor(s *store.Store, policy Policy) *Executor {
	return &Executor{store: s, resolver: NewResolver(s, policy)}
}

// Run parses, plans, and executes a MUQL query end to end.
func (e *Executor) Run(ctx context.Context, query string) (*QueryResult, error) {
	stmt, err := Parse(query)
	if err != nil {
		return nil, err
	}
	plan, err := PlanStatement(stmt)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, plan)
}

// Execute runs an already-planned query.
func (e *Executor) Execute(ctx context.Context, plan *Plan) (*QueryResult, error) {
	switch plan.Kind {
	case PlanRelational:
		return e.execSelect(ctx, plan.Select)
	case PlanGraph:
		return e.execGraph(ctx, plan.Graph)
	case PlanAnalysis:
		return e.execAnalysis(ctx, plan.Analysis)
	default:
		return nil, errs.New(errs.Invariant, "unknown plan kind")
	}
}

var nodeColumns = []string{"id", "name", "qualified_name", "file_path", "line_start", "line_end", "complexity"}

func nodeRow(n *graph.Node) []string {
	return []string{
		n.ID, n.Name, n.QualifiedName, n.FilePath,
		strconv.Itoa(n.LineStart), strconv.Itoa(n.LineEnd), strconv.Itoa(n.Complexity),
	}
}

func (e *Executor) execSelect(ctx context.Context, sel *SelectPlan) (*QueryResult, error) {
	nodes, err := e.store.QueryNodes(ctx, sel.Query)
	if err != nil {
		return nil, err
	}

	if sel.DecoratorMatch != "" {
		nodes = filterNodes(nodes, func(n *graph.Node) bool {
			return strings.Contains(n.Properties["decorators"], sel.DecoratorMatch)
		})
	}
	if sel.NamePattern != "" {
		re, err := regexp.Compile(sel.NamePattern)
		if err != nil {
			return nil, errs.Wrap(errs.Invariant, "invalid MATCHING pattern", err)
		}
		nodes = filterNodes(nodes, func(n *graph.Node) bool { return re.MatchString(n.Name) })
	}
	if sel.SimilarToRef != "" {
		target, _, err := e.resolver.Resolve(ctx, sel.SimilarToRef)
		if err != nil {
			return nil, err
		}
		nodes = filterNodes(nodes, func(n *graph.Node) bool {
			if n.ID == target.ID {
				return false
			}
			diff := n.Complexity - target.Complexity
			if diff < 0 {
				diff = -diff
			}
			return diff <= similarityComplexityBand(target.Complexity)
		})
	}

	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		rows[i] = nodeRow(n)
	}
	return &QueryResult{Columns: nodeColumns, Rows: rows, RowCount: len(rows)}, nil
}

// similarityComplexityBand is the tolerance window SIMILAR TO uses to judge
// "structurally similar" nodes: 20% of the reference's complexity, floor 2.
func similarityComplexityBand(complexity int) int {
	band := complexity / 5
	if band < 2 {
		band = 2
	}
	return band
}

func filterNodes(nodes []*graph.Node, keep func(*graph.Node) bool) []*graph.Node {
	var out []*graph.Node
	for _, n := range nodes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

var neighborColumns = []string{"node_id", "depth", "parent_id"}

func (e *Executor) execGraph(ctx context.Context, gp *GraphPlan) (*QueryResult, error) {
	nodes, err := e.store.AllNodes(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := e.store.AllEdges(ctx)
	if err != nil {
		return nil, err
	}
	g := graphalg.Load(nodes, edges)

	of, _, err := e.resolver.Resolve(ctx, gp.Of)
	if err != nil {
		return nil, err
	}

	switch gp.Mode {
	case "path":
		to, _, err := e.resolver.Resolve(ctx, gp.To)
		if err != nil {
			return nil, err
		}
		path, err := g.ShortestPath(ctx, of.ID, to.ID, gp.EdgeTypes)
		if err != nil {
			return nil, err
		}
		rows := make([][]string, len(path))
		parentID := ""
		for i, n := range path {
			rows[i] = []string{n.ID, strconv.Itoa(i), parentID}
			parentID = n.ID
		}
		return &QueryResult{Columns: neighborColumns, Rows: rows, RowCount: len(rows)}, nil

	default: // "neighbors"
		results, err := g.NeighborsWithDepth(ctx, of.ID, gp.Direction, gp.Depth, gp.EdgeTypes)
		if err != nil {
			return nil, err
		}
		rows := make([][]string, len(results))
		for i, r := range results {
			rows[i] = []string{r.Node.ID, strconv.Itoa(r.Depth), r.ParentID}
		}
		return &QueryResult{Columns: neighborColumns, Rows: rows, RowCount: len(rows)}, nil
	}
}

func (e *Executor) execAnalysis(ctx context.Context, ap *AnalysisPlan) (*QueryResult, error) {
	switch ap.Kind {
	case AnalyzeHotspots:
		return e.analyzeHotspots(ctx)
	case AnalyzeComplexity:
		return e.analyzeComplexity(ctx, ap.For)
	case AnalyzeCircular:
		return e.analyzeCircular(ctx)
	case AnalyzeUnused:
		return e.analyzeUnused(ctx)
	case AnalyzeCoupling:
		return e.analyzeCoupling(ctx)
	case AnalyzeImpact:
		return e.analyzeImpact(ctx, ap.For)
	case AnalyzeCohesion:
		return e.analyzeCohesion(ctx, ap.For)
	default:
		return nil, errs.New(errs.Invariant, "unknown ANALYZE kind "+string(ap.Kind))
	}
}

func (e *Executor) analyzeHotspots(ctx context.Context) (*QueryResult, error) {
	nodes, err := e.store.QueryNodes(ctx, store.Query{
		NodeType: graph.NodeFunction, OrderBy: "complexity", Desc: true, Limit: 10,
	})
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		rows[i] = nodeRow(n)
	}
	return &QueryResult{Columns: nodeColumns, Rows: rows, RowCount: len(rows)}, nil
}

func (e *Executor) analyzeComplexity(ctx context.Context, forRef string) (*QueryResult, error) {
	var nodes []*graph.Node
	var err error
	if forRef != "" {
		target, _, rerr := e.resolver.Resolve(ctx, forRef)
		if rerr != nil {
			return nil, rerr
		}
		nodes = []*graph.Node{target}
	} else {
		nodes, err = e.store.QueryNodes(ctx, store.Query{NodeType: graph.NodeFunction})
		if err != nil {
			return nil, err
		}
	}
	if len(nodes) == 0 {
		return &QueryResult{Columns: []string{"count", "total", "average", "max"}, Rows: [][]string{{"0", "0", "0", "0"}}, RowCount: 1}, nil
	}
	total, max := 0, 0
	for _, n := range nodes {
		total += n.Complexity
		if n.Complexity > max {
			max = n.Complexity
		}
	}
	avg := total / len(nodes)
	row := []string{strconv.Itoa(len(nodes)), strconv.Itoa(total), strconv.Itoa(avg), strconv.Itoa(max)}
	return &QueryResult{Columns: []string{"count", "total", "average", "max"}, Rows: [][]string{row}, RowCount: 1}, nil
}

func (e *Executor) analyzeCircular(ctx context.Context) (*QueryResult, error) {
	nodes, err := e.store.AllNodes(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := e.store.AllEdges(ctx)
	if err != nil {
		return nil, err
	}
	g := graphalg.Load(nodes, edges)
	cycles := g.Cycles([]graph.EdgeType{graph.EdgeCalls, graph.EdgeImports})

	var rows [][]string
	for i, c := range cycles {
		group := strconv.Itoa(i)
		for _, id := range c.NodeIDs {
			rows = append(rows, []string{group, id})
		}
	}
	return &QueryResult{Columns: []string{"cycle_id", "node_id"}, Rows: rows, RowCount: len(rows)}, nil
}

// analyzeUnused reports function nodes with no incoming "calls" edge,
// excluding conventional entry points (main, tests).
func (e *Executor) analyzeUnused(ctx context.Context) (*QueryResult, error) {
	nodes, err := e.store.QueryNodes(ctx, store.Query{NodeType: graph.NodeFunction})
	if err != nil {
		return nil, err
	}
	edges, err := e.store.AllEdges(ctx)
	if err != nil {
		return nil, err
	}
	called := map[string]bool{}
	for _, edge := range edges {
		if edge.Type == graph.EdgeCalls {
			called[edge.TargetID] = true
		}
	}

	var unused []*graph.Node
	for _, n := range nodes {
		if called[n.ID] || isEntryPoint(n) || isTestFile(n.FilePath) {
			continue
		}
		unused = append(unused, n)
	}

	rows := make([][]string, len(unused))
	for i, n := range unused {
		rows[i] = nodeRow(n)
	}
	return &QueryResult{Columns: nodeColumns, Rows: rows, RowCount: len(rows)}, nil
}

func isEntryPoint(n *graph.Node) bool {
	name := strings.ToLower(n.Name)
	return name == "main" || name == "init" || strings.HasPrefix(name, "test")
}

// analyzeCoupling counts, per module, how many distinct external/foreign
// modules it imports — a simplified afferent/efferent coupling metric.
func (e *Executor) analyzeCoupling(ctx context.Context) (*QueryResult, error) {
	modules, err := e.store.QueryNodes(ctx, store.Query{NodeType: graph.NodeModule})
	if err != nil {
		return nil, err
	}
	edges, err := e.store.AllEdges(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, edge := range edges {
		if edge.Type == graph.EdgeImports {
			counts[edge.SourceID]++
		}
	}

	type row struct {
		id    string
		count int
	}
	var out []row
	for _, m := range modules {
		out = append(out, row{m.ID, counts[m.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].count > out[j].count })

	rows := make([][]string, len(out))
	for i, r := range out {
		rows[i] = []string{r.id, strconv.Itoa(r.count)}
	}
	return &QueryResult{Columns: []string{"module_id", "import_count"}, Rows: rows, RowCount: len(rows)}, nil
}

// analyzeImpact reports the forward blast radius of forRef: everything that
// reaches it, i.e. would need re-checking if it changed.
func (e *Executor) analyzeImpact(ctx context.Context, forRef string) (*QueryResult, error) {
	if forRef == "" {
		return nil, errs.New(errs.Invariant, "ANALYZE impact requires FOR <reference>")
	}
	target, _, err := e.resolver.Resolve(ctx, forRef)
	if err != nil {
		return nil, err
	}
	nodes, err := e.store.AllNodes(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := e.store.AllEdges(ctx)
	if err != nil {
		return nil, err
	}
	g := graphalg.Load(nodes, edges)
	dependents, err := g.ReachableBackward(ctx, target.ID, []graph.EdgeType{graph.EdgeCalls, graph.EdgeImports}, 0)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(dependents))
	for i, n := range dependents {
		rows[i] = nodeRow(n)
	}
	return &QueryResult{Columns: nodeColumns, Rows: rows, RowCount: len(rows)}, nil
}

// analyzeCohesion is a simplified LCOM-style ratio for a single class: the
// count of its attached methods against its attribute count, reported
// because the graph doesn't track per-method attribute access — a finer
// cohesion metric would need that data from the extractor layer.
func (e *Executor) analyzeCohesion(ctx context.Context, forRef string) (*QueryResult, error) {
	if forRef == "" {
		return nil, errs.New(errs.Invariant, "ANALYZE cohesion requires FOR <reference>")
	}
	target, _, err := e.resolver.Resolve(ctx, forRef)
	if err != nil {
		return nil, err
	}
	edges, err := e.store.IncidentEdges(ctx, target.ID, "out", []graph.EdgeType{graph.EdgeContains})
	if err != nil {
		return nil, err
	}
	row := []string{target.ID, strconv.Itoa(len(edges))}
	return &QueryResult{Columns: []string{"class_id", "member_count"}, Rows: [][]string{row}, RowCount: 1}, nil
}
