package muql

import (
	"fmt"

	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/graph"
	"github.com/mu-graph/mu/store"
)

// PlanKind distinguishes the three plan shapes a Statement lowers to.
type PlanKind string

const (
	PlanRelational PlanKind = "relational"
	PlanGraph      PlanKind = "graph"
	PlanAnalysis   PlanKind = "analysis"
)

// Resource limits enforced at plan time, per spec §4.8.
const (
	MaxLimit = 10000
	MaxDepth = 20
)

// SelectPlan runs a parameterized query against store, with optional
// client-side predicates (decorator/pattern/similarity) that aren't plain
// indexed columns.
type SelectPlan struct {
	Query          store.Query
	DecoratorMatch string // WITH DECORATOR "s"
	NamePattern    string // MATCHING "pattern"
	SimilarToRef   string // SIMILAR TO x — resolved and complexity-compared at execution
}

// GraphPlan drives package graphalg.
type GraphPlan struct {
	Mode      string // "neighbors" | "path" | "cycles"
	Of        string // reference to resolve
	To        string // PATH's destination reference
	Direction string // "in" | "out" | "both"
	EdgeTypes []graph.EdgeType
	Depth     int
}

// AnalysisPlan composes store/graphalg queries into a metric.
type AnalysisPlan struct {
	Kind AnalyzeKind
	For  string
}

// Plan is the Planner's output: exactly one of Select/Graph/Analysis is set.
type Plan struct {
	Kind     PlanKind
	Select   *SelectPlan
	Graph    *GraphPlan
	Analysis *AnalysisPlan
}

// Plan lowers a parsed Statement to a RelationalPlan, GraphPlan, or
// AnalysisPlan, enforcing LIMIT/depth resource limits at plan time.
func PlanStatement(stmt *Statement) (*Plan, error) {
	switch {
	case stmt.Select != nil:
		return planSelect(stmt.Select)
	case stmt.Find != nil:
		return planFind(stmt.Find)
	case stmt.Show != nil:
		return planShow(stmt.Show)
	case stmt.Path != nil:
		return planPath(stmt.Path)
	case stmt.Analyze != nil:
		return planAnalyze(stmt.Analyze)
	default:
		return nil, errs.New(errs.Invariant, "empty MUQL statement")
	}
}

func entityNodeType(kind string) (graph.NodeType, error) {
	switch kind {
	case "functions", "function":
		return graph.NodeFunction, nil
	case "classes", "class":
		return graph.NodeClass, nil
	case "modules", "module":
		return graph.NodeModule, nil
	default:
		return "", errs.New(errs.Invariant, "unknown entity kind "+kind)
	}
}

func planSelect(s *SelectStmt) (*Plan, error) {
	nodeType, err := entityNodeType(s.EntityKind)
	if err != nil {
		return nil, err
	}
	if s.Limit > MaxLimit {
		return nil, errs.New(errs.ResourceLimit, fmt.Sprintf("LIMIT %d exceeds maximum %d", s.Limit, MaxLimit))
	}

	q := store.Query{NodeType: nodeType, Limit: s.Limit}
	for _, c := range s.Where {
		op, err := toFilterOp(c.Op)
		if err != nil {
			return nil, err
		}
		q.Filters = append(q.Filters, store.Filter{Field: c.Field, Op: op, Value: c.Value})
	}
	if s.Order != nil {
		q.OrderBy = s.Order.Field
		q.Desc = s.Order.Desc
	}

	return &Plan{Kind: PlanRelational, Select: &SelectPlan{Query: q}}, nil
}

func toFilterOp(op CompareOp) (store.FilterOp, error) {
	switch op {
	case CmpEQ:
		return store.OpEQ, nil
	case CmpNE:
		return store.OpNE, nil
	case CmpGT:
		return store.OpGT, nil
	case CmpGTE:
		return store.OpGTE, nil
	case CmpLT:
		return store.OpLT, nil
	case CmpLTE:
		return store.OpLTE, nil
	default:
		return "", errs.New(errs.Invariant, "unknown comparison operator")
	}
}

func planFind(f *FindStmt) (*Plan, error) {
	nodeType, err := entityNodeType(f.EntityKind)
	if err != nil {
		return nil, err
	}

	switch f.Predicate.Kind {
	case PredCalling:
		return &Plan{Kind: PlanGraph, Graph: &GraphPlan{
			Mode: "neighbors", Of: f.Predicate.Arg, Direction: "in",
			EdgeTypes: []graph.EdgeType{graph.EdgeCalls}, Depth: 1,
		}}, nil
	case PredCalledBy:
		return &Plan{Kind: PlanGraph, Graph: &GraphPlan{
			Mode: "neighbors", Of: f.Predicate.Arg, Direction: "out",
			EdgeTypes: []graph.EdgeType{graph.EdgeCalls}, Depth: 1,
		}}, nil
	case PredImplementing, PredInheriting:
		return &Plan{Kind: PlanGraph, Graph: &GraphPlan{
			Mode: "neighbors", Of: f.Predicate.Arg, Direction: "in",
			EdgeTypes: []graph.EdgeType{graph.EdgeInherits}, Depth: 1,
		}}, nil
	case PredWithDecorator:
		return &Plan{Kind: PlanRelational, Select: &SelectPlan{
			Query:          store.Query{NodeType: nodeType},
			DecoratorMatch: f.Predicate.Arg,
		}}, nil
	case PredMatching:
		return &Plan{Kind: PlanRelational, Select: &SelectPlan{
			Query:       store.Query{NodeType: nodeType},
			NamePattern: f.Predicate.Arg,
		}}, nil
	case PredSimilarTo:
		return &Plan{Kind: PlanRelational, Select: &SelectPlan{
			Query:        store.Query{NodeType: nodeType},
			SimilarToRef: f.Predicate.Arg,
		}}, nil
	default:
		return nil, errs.New(errs.Invariant, "unknown FIND predicate")
	}
}

var showEdgeTypes = map[ShowRelation][]graph.EdgeType{
	RelDependencies:    {graph.EdgeImports, graph.EdgeCalls},
	RelDependents:      {graph.EdgeImports, graph.EdgeCalls},
	RelImports:         {graph.EdgeImports},
	RelCallers:         {graph.EdgeCalls},
	RelCallees:         {graph.EdgeCalls},
	RelInheritance:     {graph.EdgeInherits},
	RelImplementations: {graph.EdgeInherits},
}

// showDirection returns the traversal direction relative to the named
// entity: "dependents"/"callers"/"implementations" look at incoming edges
// (who points at this?), the rest look outward.
func showDirection(rel ShowRelation) string {
	switch rel {
	case RelDependents, RelCallers, RelImplementations:
		return "in"
	default:
		return "out"
	}
}

func planShow(s *ShowStmt) (*Plan, error) {
	edgeTypes, ok := showEdgeTypes[s.Relation]
	if !ok {
		return nil, errs.New(errs.Invariant, "unknown SHOW relation "+string(s.Relation))
	}
	if s.Depth > MaxDepth {
		return nil, errs.New(errs.ResourceLimit, fmt.Sprintf("DEPTH %d exceeds maximum %d", s.Depth, MaxDepth))
	}
	return &Plan{Kind: PlanGraph, Graph: &GraphPlan{
		Mode: "neighbors", Of: s.Of, Direction: showDirection(s.Relation),
		EdgeTypes: edgeTypes, Depth: s.Depth,
	}}, nil
}

func planPath(s *PathStmt) (*Plan, error) {
	if s.MaxDepth > MaxDepth {
		return nil, errs.New(errs.ResourceLimit, fmt.Sprintf("MAX DEPTH %d exceeds maximum %d", s.MaxDepth, MaxDepth))
	}
	var edgeTypes []graph.EdgeType
	if s.Via != "" {
		edgeTypes = []graph.EdgeType{graph.EdgeType(s.Via)}
	}
	return &Plan{Kind: PlanGraph, Graph: &GraphPlan{
		Mode: "path", Of: s.From, To: s.To, EdgeTypes: edgeTypes, Depth: s.MaxDepth,
	}}, nil
}

func planAnalyze(s *AnalyzeStmt) (*Plan, error) {
	switch s.Kind {
	case AnalyzeCoupling, AnalyzeCohesion, AnalyzeComplexity, AnalyzeHotspots,
		AnalyzeCircular, AnalyzeUnused, AnalyzeImpact:
		return &Plan{Kind: PlanAnalysis, Analysis: &AnalysisPlan{Kind: s.Kind, For: s.For}}, nil
	default:
		return nil, errs.New(errs.Invariant, "unknown ANALYZE kind "+string(s.Kind))
	}
}
