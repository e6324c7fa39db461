package muql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/graph"
)

type fakeSource struct {
	nodes []*graph.Node
}

func (f *fakeSource) AllNodes(ctx context.Context) ([]*graph.Node, error) {
	return f.nodes, nil
}

func TestResolveExactID(t *testing.T) {
	src := &fakeSource{nodes: []*graph.Node{
		{ID: "fn:app/main.go:Run", Name: "Run", FilePath: "app/main.go"},
		{ID: "fn:app/main_test.go:Run", Name: "Run", FilePath: "app/main_test.go"},
	}}
	r := NewResolver(src, PolicyPreferSource)

	n, _, err := r.Resolve(context.Background(), "fn:app/main.go:Run")
	require.NoError(t, err)
	assert.Equal(t, "fn:app/main.go:Run", n.ID)
}

func TestResolvePreferSourceOverTest(t *testing.T) {
	src := &fakeSource{nodes: []*graph.Node{
		{ID: "fn:app/main_test.go:Run", Name: "Run", FilePath: "app/main_test.go"},
		{ID: "fn:app/main.go:Run", Name: "Run", FilePath: "app/main.go"},
	}}
	r := NewResolver(src, PolicyPreferSource)

	n, candidates, err := r.Resolve(context.Background(), "Run")
	require.NoError(t, err)
	assert.Equal(t, "fn:app/main.go:Run", n.ID)
	require.Len(t, candidates, 2)
	assert.Greater(t, candidates[0].Score, candidates[1].Score)
}

func TestResolveStrictAmbiguity(t *testing.T) {
	src := &fakeSource{nodes: []*graph.Node{
		{ID: "fn:a.go:Run", Name: "Run", FilePath: "a.go"},
		{ID: "fn:b.go:Run", Name: "Run", FilePath: "b.go"},
	}}
	r := NewResolver(src, PolicyStrict)

	_, _, err := r.Resolve(context.Background(), "Run")
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.Ambiguity, e.Kind)
}

func TestResolveNotFound(t *testing.T) {
	src := &fakeSource{}
	r := NewResolver(src, PolicyPreferSource)

	_, _, err := r.Resolve(context.Background(), "nope")
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.NotFound, e.Kind)
}

func TestResolveInteractiveReturnsNilNode(t *testing.T) {
	src := &fakeSource{nodes: []*graph.Node{
		{ID: "fn:a.go:Run", Name: "Run", FilePath: "a.go"},
		{ID: "fn:b.go:Run", Name: "Run", FilePath: "b.go"},
	}}
	r := NewResolver(src, PolicyInteractive)

	n, candidates, err := r.Resolve(context.Background(), "Run")
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.Len(t, candidates, 2)
}

func TestIsTestFile(t *testing.T) {
	assert.True(t, isTestFile("app/main_test.go"))
	assert.True(t, isTestFile("src/component.test.tsx"))
	assert.True(t, isTestFile("tests/test_widget.py"))
	assert.False(t, isTestFile("app/main.go"))
}
