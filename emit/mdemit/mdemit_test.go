package mdemit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mu-graph/mu/emit"
	"github.com/mu-graph/mu/ir"
	"github.com/mu-graph/mu/reduce"
)

func TestEmitRendersHeadingsAndImports(t *testing.T) {
	source := &ir.ModuleIR{Name: "widget", Language: "go", Doc: "Widget helpers."}
	reduced := reduce.ReducedModule{
		Source:  source,
		Imports: []ir.ImportIR{{Module: "fmt"}},
	}

	out, err := New().Emit(source, reduced, emit.Options{})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "# widget (go)")
	assert.Contains(t, text, "Widget helpers.")
	assert.Contains(t, text, "## Imports")
	assert.Contains(t, text, "- `fmt`")
}

func TestEmitRendersClassAndMethodHeadings(t *testing.T) {
	source := &ir.ModuleIR{Name: "m", Language: "python"}
	reduced := reduce.ReducedModule{
		Source: source,
		Classes: []reduce.ReducedClass{{
			Source: &ir.ClassIR{Name: "Widget", Bases: []string{"Base"}, Doc: "A widget."},
			Methods: []*ir.FunctionIR{
				{Name: "render", ReturnType: "str", BodySource: "return 'x'"},
			},
		}},
	}

	out, err := New().Emit(source, reduced, emit.Options{})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "## Widget extends Base")
	assert.Contains(t, text, "A widget.")
	assert.Contains(t, text, "### `render() -> str`")
	assert.Contains(t, text, "```\nreturn 'x'\n```")
}

func TestEmitRendersTopLevelFunctions(t *testing.T) {
	source := &ir.ModuleIR{Name: "m", Language: "go"}
	reduced := reduce.ReducedModule{
		Source: source,
		Functions: []*ir.FunctionIR{
			{Name: "Add", Params: []ir.ParamIR{{Name: "a", Type: "int"}}, ReturnType: "int"},
		},
	}

	out, err := New().Emit(source, reduced, emit.Options{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "## `Add(a: int) -> int`")
}
