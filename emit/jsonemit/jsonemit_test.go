package jsonemit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mu-graph/mu/emit"
	"github.com/mu-graph/mu/ir"
	"github.com/mu-graph/mu/reduce"
)

func TestEmitRoundTripsFullIRNotReducedView(t *testing.T) {
	source := &ir.ModuleIR{
		Name: "widget", Path: "widget.py", Language: "python",
		Functions: []*ir.FunctionIR{
			{Name: "__repr__", BodySource: "return str(self.x)"},
			{Name: "render", BodySource: "print(self.x)"},
		},
	}
	// A reduced view that strips the unlisted dunder, to prove Emit ignores
	// it and serializes the unreduced source instead.
	reduced := reduce.Reduce(source, reduce.DefaultRules())
	require.Len(t, reduced.Functions, 1)

	out, err := New().Emit(source, reduced, emit.Options{})
	require.NoError(t, err)

	var decoded ir.ModuleIR
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "widget", decoded.Name)
	require.Len(t, decoded.Functions, 2, "json output mirrors the full IR, not the reduced projection")
}
