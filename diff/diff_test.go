package diff

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mu-graph/mu/graph"
)

func TestCompare(t *testing.T) {
	ctx := context.Background()

	base := []*graph.Node{
		{ID: "fn:a.go:Do", Type: graph.NodeFunction, Name: "Do", FilePath: "a.go", Properties: map[string]string{
			"signature": "Do(x int) -> error", "body_hash": "1",
		}},
		{ID: "fn:a.go:Keep", Type: graph.NodeFunction, Name: "Keep", FilePath: "a.go", Properties: map[string]string{
			"signature": "Keep() -> void", "body_hash": "2",
		}},
		{ID: "cls:a.go:Widget", Type: graph.NodeClass, Name: "Widget", FilePath: "a.go", Properties: map[string]string{
			"bases": "Base",
		}},
	}

	head := []*graph.Node{
		// Do: breaking, added a required parameter
		{ID: "fn:a.go:Do", Type: graph.NodeFunction, Name: "Do", FilePath: "a.go", Properties: map[string]string{
			"signature": "Do(x int, y int) -> error", "body_hash": "3",
		}},
		// Keep: unchanged
		{ID: "fn:a.go:Keep", Type: graph.NodeFunction, Name: "Keep", FilePath: "a.go", Properties: map[string]string{
			"signature": "Keep() -> void", "body_hash": "2",
		}},
		// Widget: lost its base, breaking
		{ID: "cls:a.go:Widget", Type: graph.NodeClass, Name: "Widget", FilePath: "a.go", Properties: map[string]string{
			"bases": "",
		}},
		// New: added
		{ID: "fn:a.go:New", Type: graph.NodeFunction, Name: "New", FilePath: "a.go", Properties: map[string]string{
			"signature": "New() -> void", "body_hash": "4",
		}},
	}

	result, err := Compare(ctx, base, head)
	assert.NoError(t, err)
	assert.Equal(t, 3, result.TotalChanges) // Do modified, Widget modified, New added
	assert.True(t, result.HasBreaking)
	assert.Len(t, result.BreakingChanges, 2)

	var names []string
	for _, c := range result.BreakingChanges {
		names = append(names, c.EntityName)
	}
	assert.ElementsMatch(t, []string{"Do", "Widget"}, names)
}

func TestCompareNoChanges(t *testing.T) {
	nodes := []*graph.Node{
		{ID: "fn:a.go:Do", Type: graph.NodeFunction, Name: "Do", Properties: map[string]string{
			"signature": "Do() -> void", "body_hash": "1",
		}},
	}
	result, err := Compare(context.Background(), nodes, nodes)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.TotalChanges)
	assert.False(t, result.HasBreaking)
	assert.Equal(t, "no changes", result.SummaryText)
}

func TestRemovedPublicFunctionIsBreaking(t *testing.T) {
	base := []*graph.Node{
		{ID: "fn:a.go:Public", Type: graph.NodeFunction, Name: "Public", FilePath: "a.go", Properties: map[string]string{
			"signature": "Public() -> void", "body_hash": "1",
		}},
		{ID: "fn:a.go:internal", Type: graph.NodeFunction, Name: "internal", FilePath: "a.go", Properties: map[string]string{
			"signature": "internal() -> void", "body_hash": "2",
		}},
	}
	result, err := Compare(context.Background(), base, nil)
	assert.NoError(t, err)
	assert.Len(t, result.BreakingChanges, 1)
	assert.Equal(t, "Public", result.BreakingChanges[0].EntityName)
}

func TestRemovedPythonFunctionIsBreakingUnlessUnderscorePrefixed(t *testing.T) {
	base := []*graph.Node{
		{ID: "fn:a.py:pay", Type: graph.NodeFunction, Name: "pay", FilePath: "a.py", Properties: map[string]string{
			"signature": "pay(amount) -> None", "body_hash": "1",
		}},
		{ID: "fn:a.py:_helper", Type: graph.NodeFunction, Name: "_helper", FilePath: "a.py", Properties: map[string]string{
			"signature": "_helper() -> None", "body_hash": "2",
		}},
	}
	result, err := Compare(context.Background(), base, nil)
	assert.NoError(t, err)
	assert.Len(t, result.BreakingChanges, 1)
	assert.Equal(t, "pay", result.BreakingChanges[0].EntityName)
}

// TestLowercasePythonSignatureChangeIsBreaking exercises the spec's pay(amount)
// -> pay(amount, currency) scenario: a lowercase, non-Go-capitalized function
// whose signature change must still be classified breaking.
func TestLowercasePythonSignatureChangeIsBreaking(t *testing.T) {
	base := []*graph.Node{
		{ID: "fn:a.py:pay", Type: graph.NodeFunction, Name: "pay", FilePath: "a.py", Properties: map[string]string{
			"signature": "pay(amount) -> None", "body_hash": "1",
		}},
	}
	head := []*graph.Node{
		{ID: "fn:a.py:pay", Type: graph.NodeFunction, Name: "pay", FilePath: "a.py", Properties: map[string]string{
			"signature": "pay(amount, currency) -> None", "body_hash": "2",
		}},
	}
	result, err := Compare(context.Background(), base, head)
	assert.NoError(t, err)
	require.Len(t, result.Changes, 1)
	assert.True(t, result.Changes[0].IsBreaking)
	assert.Equal(t, "added non-default parameter", result.Changes[0].Reason)
}

func TestDefaultValueChangeIsNonBreaking(t *testing.T) {
	base := []*graph.Node{
		{ID: "fn:a.go:Do", Type: graph.NodeFunction, Name: "Do", Properties: map[string]string{
			"signature": "Do(x int=1) -> void", "body_hash": "1",
		}},
	}
	head := []*graph.Node{
		{ID: "fn:a.go:Do", Type: graph.NodeFunction, Name: "Do", Properties: map[string]string{
			"signature": "Do(x int=2) -> void", "body_hash": "9",
		}},
	}
	result, err := Compare(context.Background(), base, head)
	assert.NoError(t, err)
	assert.Len(t, result.Changes, 1)
	assert.False(t, result.Changes[0].IsBreaking)
}
