package muql

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mu-graph/mu/graph"
	"github.com/mu-graph/mu/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	run := &graph.Node{
		ID: "fn:app/main.go:Run", Type: graph.NodeFunction, Name: "Run",
		QualifiedName: "Run", FilePath: "app/main.go", Complexity: 12,
		Properties: map[string]string{"decorators": "deprecated"},
	}
	helper := &graph.Node{
		ID: "fn:app/util.go:Helper", Type: graph.NodeFunction, Name: "Helper",
		QualifiedName: "Helper", FilePath: "app/util.go", Complexity: 3,
	}
	mainMod := &graph.Node{
		ID: "mod:app/main.go", Type: graph.NodeModule, Name: "main.go", FilePath: "app/main.go",
	}
	nodes := []*graph.Node{run, helper, mainMod}

	edges := []*graph.Edge{
		{ID: graph.EdgeID(run.ID, graph.EdgeCalls, helper.ID), SourceID: run.ID, TargetID: helper.ID, Type: graph.EdgeCalls},
		{ID: graph.EdgeID(mainMod.ID, graph.EdgeContains, run.ID), SourceID: mainMod.ID, TargetID: run.ID, Type: graph.EdgeContains},
	}

	require.NoError(t, s.Build(context.Background(), nodes, edges))
	return s
}

func TestExecutorSelect(t *testing.T) {
	s := newTestStore(t)
	e := NewExecutor(s, PolicyPreferSource)

	res, err := e.Run(context.Background(), `SELECT * FROM functions WHERE complexity > 5`)
	require.NoError(t, err)
	require.Equal(t, 1, res.RowCount)
	assert.Equal(t, "fn:app/main.go:Run", res.Rows[0][0])
}

func TestExecutorFindCalling(t *testing.T) {
	s := newTestStore(t)
	e := NewExecutor(s, PolicyPreferSource)

	res, err := e.Run(context.Background(), `FIND function CALLING Helper`)
	require.NoError(t, err)
	require.Equal(t, 1, res.RowCount)
	assert.Equal(t, "fn:app/main.go:Run", res.Rows[0][0])
}

func TestExecutorPath(t *testing.T) {
	s := newTestStore(t)
	e := NewExecutor(s, PolicyPreferSource)

	res, err := e.Run(context.Background(), `PATH FROM Run TO Helper`)
	require.NoError(t, err)
	require.Equal(t, 2, res.RowCount)
	assert.Equal(t, "fn:app/main.go:Run", res.Rows[0][0])
	assert.Equal(t, "fn:app/util.go:Helper", res.Rows[1][0])
}

func TestExecutorAnalyzeHotspots(t *testing.T) {
	s := newTestStore(t)
	e := NewExecutor(s, PolicyPreferSource)

	res, err := e.Run(context.Background(), `ANALYZE hotspots`)
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.RowCount, 1)
	assert.Equal(t, "fn:app/main.go:Run", res.Rows[0][0])
}

func TestExecutorFindWithDecorator(t *testing.T) {
	s := newTestStore(t)
	e := NewExecutor(s, PolicyPreferSource)

	res, err := e.Run(context.Background(), `FIND function WITH DECORATOR "deprecated"`)
	require.NoError(t, err)
	require.Equal(t, 1, res.RowCount)
	assert.Equal(t, "fn:app/main.go:Run", res.Rows[0][0])
}

func TestQueryResultRenderFormats(t *testing.T) {
	res := &QueryResult{Columns: []string{"id", "complexity"}, Rows: [][]string{{"a", "1"}, {"b", "2"}}, RowCount: 2}

	table, err := res.Render(FormatTable)
	require.NoError(t, err)
	assert.Contains(t, table, "id")

	j, err := res.Render(FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, j, `"id": "a"`)

	c, err := res.Render(FormatCSV)
	require.NoError(t, err)
	assert.Contains(t, c, "id,complexity")
}
