package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mu-graph/mu/ir"
)

func TestNodeIDGrammar(t *testing.T) {
	assert.Equal(t, "mod:app/main.go", ModuleNodeID("app/main.go"))
	assert.Equal(t, "cls:app/main.go:Widget", ClassNodeID("app/main.go", "Widget"))
	assert.Equal(t, "fn:app/main.go:Run", FunctionNodeID("app/main.go", "Run"))
	assert.Equal(t, "fn:app/main.go:Widget.Render", FunctionNodeID("app/main.go", "Widget.Render"))
	assert.Equal(t, "ext:fmt", ExternalNodeID("fmt"))
	assert.Equal(t, "edge:a:calls:b", EdgeID("a", EdgeCalls, "b"))
}

func findNode(nodes []*Node, id string) *Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func hasEdge(edges []*Edge, source string, edgeType EdgeType, target string) bool {
	for _, e := range edges {
		if e.SourceID == source && e.Type == edgeType && e.TargetID == target {
			return true
		}
	}
	return false
}

func TestBuildContainsAndCalls(t *testing.T) {
	mod := &ir.ModuleIR{
		Name: "main", Path: "app/main.go", Language: "go",
		Functions: []*ir.FunctionIR{
			{Name: "Run", BodySource: "Helper()\n", BodyComplexity: 1},
			{Name: "Helper", BodySource: "fmt.Println(\"hi\")\n", BodyComplexity: 1},
		},
	}

	nodes, edges := NewBuilder(BuildOptions{}).Build([]*ir.ModuleIR{mod})

	modID := ModuleNodeID("app/main.go")
	runID := FunctionNodeID("app/main.go", "Run")
	helperID := FunctionNodeID("app/main.go", "Helper")

	require.NotNil(t, findNode(nodes, modID))
	require.NotNil(t, findNode(nodes, runID))
	require.NotNil(t, findNode(nodes, helperID))

	assert.True(t, hasEdge(edges, modID, EdgeContains, runID))
	assert.True(t, hasEdge(edges, modID, EdgeContains, helperID))
	assert.True(t, hasEdge(edges, runID, EdgeCalls, helperID))
	assert.False(t, hasEdge(edges, helperID, EdgeCalls, runID))
}

func TestBuildExternalImportEdge(t *testing.T) {
	mod := &ir.ModuleIR{
		Name: "main", Path: "app/main.go", Language: "go",
		Imports: []ir.ImportIR{
			{Module: "fmt"},                 // stdlib: no edge
			{Module: "github.com/foo/bar"},  // external: edge to ext node
		},
		Functions: []*ir.FunctionIR{{Name: "Run"}},
	}

	nodes, edges := NewBuilder(BuildOptions{}).Build([]*ir.ModuleIR{mod})

	modID := ModuleNodeID("app/main.go")
	extID := ExternalNodeID("github.com/foo/bar")

	require.NotNil(t, findNode(nodes, extID))
	assert.True(t, hasEdge(edges, modID, EdgeImports, extID))

	for _, e := range edges {
		assert.NotEqual(t, ExternalNodeID("fmt"), e.TargetID, "stdlib import must not produce an edge")
	}
}

func TestBuildInheritanceResolvesKnownBase(t *testing.T) {
	base := &ir.ModuleIR{
		Name: "base", Path: "app/base.py", Language: "python",
		Classes: []*ir.ClassIR{{Name: "Base"}},
	}
	derived := &ir.ModuleIR{
		Name: "derived", Path: "app/derived.py", Language: "python",
		Classes: []*ir.ClassIR{{Name: "Derived", Bases: []string{"Base"}}},
	}

	nodes, edges := NewBuilder(BuildOptions{}).Build([]*ir.ModuleIR{base, derived})

	baseID := ClassNodeID("app/base.py", "Base")
	derivedID := ClassNodeID("app/derived.py", "Derived")
	require.NotNil(t, findNode(nodes, baseID))
	assert.True(t, hasEdge(edges, derivedID, EdgeInherits, baseID))
}

func TestBuildInheritanceFallsBackToExternal(t *testing.T) {
	derived := &ir.ModuleIR{
		Name: "derived", Path: "app/derived.py", Language: "python",
		Classes: []*ir.ClassIR{{Name: "Derived", Bases: []string{"UnknownBase"}}},
	}

	nodes, edges := NewBuilder(BuildOptions{}).Build([]*ir.ModuleIR{derived})

	derivedID := ClassNodeID("app/derived.py", "Derived")
	extID := ExternalNodeID("UnknownBase")
	require.NotNil(t, findNode(nodes, extID))
	assert.True(t, hasEdge(edges, derivedID, EdgeInherits, extID))
}

func TestBuildDeterministicOrder(t *testing.T) {
	mod := &ir.ModuleIR{
		Name: "main", Path: "app/main.go", Language: "go",
		Functions: []*ir.FunctionIR{{Name: "A"}, {Name: "B"}, {Name: "C"}},
	}

	nodes1, edges1 := NewBuilder(BuildOptions{}).Build([]*ir.ModuleIR{mod})
	nodes2, edges2 := NewBuilder(BuildOptions{}).Build([]*ir.ModuleIR{mod})

	require.Equal(t, len(nodes1), len(nodes2))
	for i := range nodes1 {
		assert.Equal(t, nodes1[i].ID, nodes2[i].ID)
	}
	require.Equal(t, len(edges1), len(edges2))
	for i := range edges1 {
		assert.Equal(t, edges1[i].ID, edges2[i].ID)
	}
}
