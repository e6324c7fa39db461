package muql

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/graph"
)

// Policy selects how Resolver handles ambiguous references, per spec §4.8.
type Policy string

const (
	PolicyPreferSource Policy = "prefer-source"
	PolicyInteractive  Policy = "interactive"
	PolicyFirstMatch   Policy = "first-match"
	PolicyStrict       Policy = "strict"
)

// Candidate is one scored match for a node reference.
type Candidate struct {
	Node  *graph.Node
	Score int
}

// NodeSource is the minimal surface Resolver needs from the store.
type NodeSource interface {
	AllNodes(ctx context.Context) ([]*graph.Node, error)
}

// Resolver implements spec §4.8's centralized node-identifier resolution:
// a fixed scoring table plus a caller-selected ambiguity policy.
type Resolver struct {
	source NodeSource
	policy Policy
}

// NewResolver creates a Resolver over source, defaulting to prefer-source
// when policy is empty.
func NewResolver(source NodeSource, policy Policy) *Resolver {
	if policy == "" {
		policy = PolicyPreferSource
	}
	return &Resolver{source: source, policy: policy}
}

// Resolve matches ref against every node, per the scored table:
//
//	exact node ID             100
//	exact name                 80
//	ref is a suffix of name     60
//	case-insensitive substring  40
//	bonus: not a test file     +10
//
// It returns the chosen node plus the full candidate list (sorted by score
// descending, node ID ascending as a tiebreak) so callers using the
// interactive policy can present choices.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*graph.Node, []Candidate, error) {
	nodes, err := r.source.AllNodes(ctx)
	if err != nil {
		return nil, nil, err
	}

	if r.policy == PolicyFirstMatch {
		for _, n := range nodes {
			if score := scoreMatch(ref, n); score > 0 {
				return n, []Candidate{{Node: n, Score: score}}, nil
			}
		}
		return nil, nil, errs.New(errs.NotFound, "no node matches "+ref).WithPath(ref, 0)
	}

	var candidates []Candidate
	for _, n := range nodes {
		if score := scoreMatch(ref, n); score > 0 {
			candidates = append(candidates, Candidate{Node: n, Score: score})
		}
	}
	if len(candidates) == 0 {
		return nil, nil, errs.New(errs.NotFound, "no node matches "+ref).WithPath(ref, 0)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Node.ID < candidates[j].Node.ID
	})

	if r.policy == PolicyInteractive {
		return nil, candidates, nil
	}

	if r.policy == PolicyStrict {
		if len(candidates) > 1 && candidates[0].Score == candidates[1].Score {
			return nil, candidates, errs.New(errs.Ambiguity, "ambiguous reference "+ref).WithPath(ref, 0)
		}
	}

	return candidates[0].Node, candidates, nil
}

func scoreMatch(ref string, n *graph.Node) int {
	score := 0
	switch {
	case n.ID == ref:
		score = 100
	case n.Name == ref || n.QualifiedName == ref:
		score = 80
	case strings.HasSuffix(n.Name, ref) || strings.HasSuffix(n.QualifiedName, ref):
		score = 60
	case strings.Contains(strings.ToLower(n.Name), strings.ToLower(ref)):
		score = 40
	default:
		return 0
	}
	if !isTestFile(n.FilePath) {
		score += 10
	}
	return score
}

// isTestFile applies a language-agnostic set of path/name heuristics, per
// spec §4.8, so the resolver's source-file bonus works across every
// extractor language without per-language special-casing.
func isTestFile(path string) bool {
	if path == "" {
		return false
	}
	lower := strings.ToLower(path)
	base := filepath.Base(lower)
	switch {
	case strings.HasSuffix(base, "_test.go"),
		strings.HasPrefix(base, "test_"),
		strings.Contains(base, ".test."),
		strings.Contains(base, ".spec."),
		strings.HasSuffix(base, "tests.py"),
		strings.Contains(base, "_test."):
		return true
	}
	for _, seg := range strings.Split(lower, "/") {
		if seg == "test" || seg == "tests" || seg == "__tests__" || seg == "spec" {
			return true
		}
	}
	return false
}
