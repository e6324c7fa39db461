package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mu-graph/mu/graph"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "mubase"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleGraph() ([]*graph.Node, []*graph.Edge) {
	nodes := []*graph.Node{
		{ID: "mod:a.go", Type: graph.NodeModule, Name: "a", FilePath: "a.go", Properties: map[string]string{}},
		{ID: "fn:a.go:Run", Type: graph.NodeFunction, Name: "Run", FilePath: "a.go", LineStart: 1, LineEnd: 5, Complexity: 3, Properties: map[string]string{}},
		{ID: "fn:a.go:Helper", Type: graph.NodeFunction, Name: "Helper", FilePath: "a.go", LineStart: 7, LineEnd: 9, Complexity: 1, Properties: map[string]string{}},
	}
	edges := []*graph.Edge{
		{ID: "edge:mod:a.go:contains:fn:a.go:Run", SourceID: "mod:a.go", Type: graph.EdgeContains, TargetID: "fn:a.go:Run", Properties: map[string]string{}},
		{ID: "edge:fn:a.go:Run:calls:fn:a.go:Helper", SourceID: "fn:a.go:Run", Type: graph.EdgeCalls, TargetID: "fn:a.go:Helper", Properties: map[string]string{}},
	}
	return nodes, edges
}

func TestOpenCreatesSchema(t *testing.T) {
	s := openTestStore(t)
	nodes, err := s.AllNodes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestBuildAndRead(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	nodes, edges := sampleGraph()

	require.NoError(t, s.Build(ctx, nodes, edges))

	all, err := s.AllNodes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	allEdges, err := s.AllEdges(ctx)
	require.NoError(t, err)
	assert.Len(t, allEdges, 2)

	got, err := s.GetNode(ctx, "fn:a.go:Run")
	require.NoError(t, err)
	assert.Equal(t, "Run", got.Name)
	assert.Equal(t, 3, got.Complexity)
}

func TestGetNodeNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetNode(context.Background(), "does-not-exist")
	assert.Error(t, err)
}

func TestBuildReplacesPriorGraph(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	nodes, edges := sampleGraph()
	require.NoError(t, s.Build(ctx, nodes, edges))

	replacement := []*graph.Node{
		{ID: "mod:b.go", Type: graph.NodeModule, Name: "b", FilePath: "b.go", Properties: map[string]string{}},
	}
	require.NoError(t, s.Build(ctx, replacement, nil))

	all, err := s.AllNodes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "mod:b.go", all[0].ID)
}

func TestNodesByType(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	nodes, edges := sampleGraph()
	require.NoError(t, s.Build(ctx, nodes, edges))

	funcs, err := s.NodesByType(ctx, graph.NodeFunction)
	require.NoError(t, err)
	assert.Len(t, funcs, 2)

	mods, err := s.NodesByType(ctx, graph.NodeModule)
	require.NoError(t, err)
	assert.Len(t, mods, 1)
}

func TestNodesByNamePattern(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	nodes, edges := sampleGraph()
	require.NoError(t, s.Build(ctx, nodes, edges))

	found, err := s.NodesByNamePattern(ctx, "%elp%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Helper", found[0].Name)
}

func TestNodesByComplexityRange(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	nodes, edges := sampleGraph()
	require.NoError(t, s.Build(ctx, nodes, edges))

	found, err := s.NodesByComplexityRange(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Run", found[0].Name)
}

func TestIncidentEdgesDirections(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	nodes, edges := sampleGraph()
	require.NoError(t, s.Build(ctx, nodes, edges))

	out, err := s.IncidentEdges(ctx, "fn:a.go:Run", "out", nil)
	require.NoError(t, err)
	assert.Len(t, out, 1)

	in, err := s.IncidentEdges(ctx, "fn:a.go:Helper", "in", nil)
	require.NoError(t, err)
	assert.Len(t, in, 1)

	both, err := s.IncidentEdges(ctx, "fn:a.go:Run", "", nil)
	require.NoError(t, err)
	assert.Len(t, both, 1)
}

func TestIncidentEdgesFilteredByType(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	nodes, edges := sampleGraph()
	require.NoError(t, s.Build(ctx, nodes, edges))

	filtered, err := s.IncidentEdges(ctx, "mod:a.go", "out", []graph.EdgeType{graph.EdgeCalls})
	require.NoError(t, err)
	assert.Empty(t, filtered)

	contains, err := s.IncidentEdges(ctx, "mod:a.go", "out", []graph.EdgeType{graph.EdgeContains})
	require.NoError(t, err)
	assert.Len(t, contains, 1)
}

func TestQueryNodesFilterAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	nodes, edges := sampleGraph()
	require.NoError(t, s.Build(ctx, nodes, edges))

	res, err := s.QueryNodes(ctx, Query{
		NodeType: graph.NodeFunction,
		Filters:  []Filter{{Field: "complexity", Op: OpGTE, Value: 1}},
		OrderBy:  "complexity",
		Desc:     true,
	})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Run", res[0].Name)
	assert.Equal(t, "Helper", res[1].Name)
}

func TestQueryNodesUnknownFieldRejected(t *testing.T) {
	s := openTestStore(t)
	_, err := s.QueryNodes(context.Background(), Query{Filters: []Filter{{Field: "not_a_column", Op: OpEQ, Value: 1}}})
	assert.Error(t, err)
}

func TestQueryNodesUnknownOrderByRejected(t *testing.T) {
	s := openTestStore(t)
	_, err := s.QueryNodes(context.Background(), Query{OrderBy: "not_a_column"})
	assert.Error(t, err)
}

func TestQueryNodesLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	nodes, edges := sampleGraph()
	require.NoError(t, s.Build(ctx, nodes, edges))

	res, err := s.QueryNodes(ctx, Query{NodeType: graph.NodeFunction, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestApplyChangesTracksAddedModifiedRemoved(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	nodes, edges := sampleGraph()
	require.NoError(t, s.Build(ctx, nodes, edges))

	updated := []*graph.Node{
		{ID: "fn:a.go:Run", Type: graph.NodeFunction, Name: "Run", FilePath: "a.go", LineStart: 1, LineEnd: 8, Complexity: 9, Properties: map[string]string{}},
		{ID: "fn:a.go:New", Type: graph.NodeFunction, Name: "New", FilePath: "a.go", LineStart: 10, LineEnd: 12, Properties: map[string]string{}},
	}

	changes, err := s.ApplyChanges(ctx, "a.go", updated, nil)
	require.NoError(t, err)
	assert.Len(t, changes.Added, 1)
	assert.Equal(t, "New", changes.Added[0].Name)
	assert.Len(t, changes.Modified, 1)
	assert.Equal(t, "Run", changes.Modified[0].Name)
	assert.ElementsMatch(t, []string{"fn:a.go:Helper"}, changes.Removed)

	all, err := s.AllNodes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3) // mod:a.go + Run + New
}

func TestApplyChangesLeavesOtherFilesAlone(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	nodes, edges := sampleGraph()
	other := &graph.Node{ID: "mod:b.go", Type: graph.NodeModule, Name: "b", FilePath: "b.go", Properties: map[string]string{}}
	require.NoError(t, s.Build(ctx, append(nodes, other), edges))

	_, err := s.ApplyChanges(ctx, "a.go", nil, nil)
	require.NoError(t, err)

	remaining, err := s.AllNodes(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "mod:b.go", remaining[0].ID)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snap := &graph.Snapshot{
		ID:             "snap-1",
		CommitHash:     "deadbeef",
		CommitMetadata: map[string]string{"author": "octane"},
		NodeCount:      3,
		EdgeCount:      2,
		DeltaCounts:    map[string]int{"added": 3},
	}
	require.NoError(t, s.WriteSnapshot(ctx, snap))

	list, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "deadbeef", list[0].CommitHash)
	assert.Equal(t, "octane", list[0].CommitMetadata["author"])
	assert.Equal(t, 3, list[0].DeltaCounts["added"])

	found, err := s.GetSnapshotByCommit(ctx, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "snap-1", found.ID)
}

func TestGetSnapshotByCommitNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetSnapshotByCommit(context.Background(), "does-not-exist")
	assert.Error(t, err)
}
