// Package diff computes a semantic diff between two graph snapshots, per
// SPEC_FULL.md §4.9.
package diff

import (
	"context"
	"fmt"
	"strings"

	"github.com/mu-graph/mu/graph"
	"github.com/mu-graph/mu/scan"
)

// ChangeType is the closed set of per-node classifications.
type ChangeType string

const (
	Added    ChangeType = "added"
	Removed  ChangeType = "removed"
	Modified ChangeType = "modified"
)

// Change is one classified difference between base and head.
type Change struct {
	EntityType string
	EntityName string
	ChangeType ChangeType
	IsBreaking bool
	Reason     string
}

// Result is the semantic diff's output.
type Result struct {
	Changes         []Change
	BreakingChanges []Change
	SummaryText     string
	HasBreaking     bool
	TotalChanges    int
}

// Store is the minimal read surface diff needs; satisfied by *store.Store.
type Store interface {
	AllNodes(ctx context.Context) ([]*graph.Node, error)
}

// Compare classifies every node present in base and/or head, per spec §4.9.
func Compare(ctx context.Context, base, head []*graph.Node) (*Result, error) {
	baseByID := indexNodes(base)
	headByID := indexNodes(head)

	result := &Result{}

	for id, b := range baseByID {
		h, ok := headByID[id]
		if !ok {
			c := Change{EntityType: string(b.Type), EntityName: b.Name, ChangeType: Removed}
			c.IsBreaking = isPublicSymbol(b.Name, b.FilePath) && (b.Type == graph.NodeFunction || b.Type == graph.NodeClass)
			if c.IsBreaking {
				c.Reason = "removed public " + string(b.Type)
			}
			result.Changes = append(result.Changes, c)
			continue
		}
		if change, changed := compareNode(b, h); changed {
			result.Changes = append(result.Changes, change)
		}
	}

	for id, h := range headByID {
		if _, ok := baseByID[id]; !ok {
			result.Changes = append(result.Changes, Change{EntityType: string(h.Type), EntityName: h.Name, ChangeType: Added})
		}
	}

	for _, c := range result.Changes {
		if c.IsBreaking {
			result.BreakingChanges = append(result.BreakingChanges, c)
		}
	}
	result.TotalChanges = len(result.Changes)
	result.HasBreaking = len(result.BreakingChanges) > 0
	result.SummaryText = summarize(result)
	return result, nil
}

func indexNodes(nodes []*graph.Node) map[string]*graph.Node {
	out := make(map[string]*graph.Node, len(nodes))
	for _, n := range nodes {
		out[n.ID] = n
	}
	return out
}

func compareNode(base, head *graph.Node) (Change, bool) {
	bodyChanged := base.Properties["body_hash"] != head.Properties["body_hash"]
	sigChanged := base.Properties["signature"] != head.Properties["signature"]
	if !bodyChanged && !sigChanged {
		return Change{}, false
	}

	c := Change{EntityType: string(base.Type), EntityName: base.Name, ChangeType: Modified}

	switch base.Type {
	case graph.NodeFunction:
		// Spec's signature-change rule carries no public/private qualifier:
		// a breaking signature change is breaking regardless of visibility.
		breaking, reason := isBreakingSignatureChange(base.Properties["signature"], head.Properties["signature"])
		c.IsBreaking = breaking
		c.Reason = reason
	case graph.NodeClass:
		lost, reason := lostBase(base.Properties["bases"], head.Properties["bases"])
		c.IsBreaking = lost && isPublicSymbol(base.Name, base.FilePath)
		c.Reason = reason
	}
	return c, true
}

// isPublicSymbol reports whether name is publicly visible under the naming
// convention of the language inferred from filePath. Go encodes visibility
// in capitalization; Python and Rust encode it with a leading underscore
// (regardless of case); other languages have no convention encoded in the
// name, so any non-empty name is treated as public.
func isPublicSymbol(name, filePath string) bool {
	if name == "" {
		return false
	}
	switch scan.LanguageFor(filePath) {
	case scan.LangGo:
		r := rune(name[0])
		return r >= 'A' && r <= 'Z'
	case scan.LangPython, scan.LangRust:
		return name[0] != '_'
	default:
		return true
	}
}

// isBreakingSignatureChange implements spec §4.9's signature rules:
// parameter list length decreased, a parameter without a default was
// added, or the return type narrowed. Decorator and default-value changes
// alone are non-breaking (Open Question resolution, SPEC_FULL.md §9).
func isBreakingSignatureChange(baseSig, headSig string) (bool, string) {
	baseParams := splitParams(baseSig)
	headParams := splitParams(headSig)

	if len(headParams) < len(baseParams) {
		return true, "parameter list length decreased"
	}
	if len(headParams) > len(baseParams) {
		for _, p := range headParams[len(baseParams):] {
			if !strings.Contains(p, "=") {
				return true, "added non-default parameter"
			}
		}
	}
	baseRet := returnType(baseSig)
	headRet := returnType(headSig)
	if baseRet != "" && headRet != "" && baseRet != headRet && isNarrowing(baseRet, headRet) {
		return true, "return type narrowed"
	}
	return false, ""
}

func splitParams(sig string) []string {
	start := strings.Index(sig, "(")
	end := strings.LastIndex(sig, ")")
	if start < 0 || end < 0 || end <= start {
		return nil
	}
	inner := strings.TrimSpace(sig[start+1 : end])
	if inner == "" {
		return nil
	}
	return strings.Split(inner, ",")
}

func returnType(sig string) string {
	if idx := strings.LastIndex(sig, "->"); idx >= 0 {
		return strings.TrimSpace(sig[idx+2:])
	}
	return ""
}

// isNarrowing treats any change away from a broader/interface-like type
// ("any", "object", "interface{}") toward a concrete one as narrowing.
func isNarrowing(base, head string) bool {
	broad := map[string]bool{"any": true, "object": true, "interface{}": true}
	return broad[strings.ToLower(base)] && !broad[strings.ToLower(head)]
}

func lostBase(baseBases, headBases string) (bool, string) {
	base := strings.Split(baseBases, ",")
	head := splitSet(headBases)
	for _, b := range base {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		if !head[b] {
			return true, fmt.Sprintf("lost base %s", b)
		}
	}
	return false, ""
}

func splitSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out[part] = true
		}
	}
	return out
}

func summarize(r *Result) string {
	if r.TotalChanges == 0 {
		return "no changes"
	}
	return fmt.Sprintf("%d changes (%d breaking)", r.TotalChanges, len(r.BreakingChanges))
}
