package sigil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mu-graph/mu/emit"
	"github.com/mu-graph/mu/ir"
	"github.com/mu-graph/mu/reduce"
)

func TestEmitRendersModuleHeaderAndImports(t *testing.T) {
	source := &ir.ModuleIR{Name: "widget", Language: "python", Doc: "Widget helpers.\n\nMore detail."}
	reduced := reduce.ReducedModule{
		Source:  source,
		Imports: []ir.ImportIR{{Module: "os"}, {Module: "json"}},
	}

	out, err := New().Emit(source, reduced, emit.Options{})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "! widget [python]")
	assert.Contains(t, text, ":: Widget helpers.")
	assert.Contains(t, text, "@ os, json")
}

func TestEmitRendersFunctionWithMutationArrow(t *testing.T) {
	source := &ir.ModuleIR{Name: "m", Language: "go"}
	reduced := reduce.ReducedModule{
		Source: source,
		Functions: []*ir.FunctionIR{
			{Name: "Save", BodySource: "db.save(x)", ReturnType: "error"},
			{Name: "Add", Params: []ir.ParamIR{{Name: "a", Type: "int"}, {Name: "b", Type: "int"}}, ReturnType: "int"},
		},
	}

	out, err := New().Emit(source, reduced, emit.Options{})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "# Save() => error")
	assert.Contains(t, text, "# Add(a: int, b: int) -> int")
}

func TestEmitOmitsSelfParamFromSignature(t *testing.T) {
	source := &ir.ModuleIR{Name: "m", Language: "python"}
	reduced := reduce.ReducedModule{
		Source: source,
		Classes: []reduce.ReducedClass{{
			Source: &ir.ClassIR{Name: "Widget", Bases: []string{"Base"}},
			Methods: []*ir.FunctionIR{
				{Name: "render", Params: []ir.ParamIR{{Name: "self"}, {Name: "width", Type: "int"}}, ReturnType: "void"},
			},
		}},
	}

	out, err := New().Emit(source, reduced, emit.Options{})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "$ Widget < Base")
	assert.Contains(t, text, "# render(width: int) -> void")
}

func TestEmitShellSafeEscapesSigils(t *testing.T) {
	source := &ir.ModuleIR{Name: "m!$#@", Language: "go"}
	reduced := reduce.ReducedModule{Source: source}

	out, err := New().Emit(source, reduced, emit.Options{ShellSafe: true})
	require.NoError(t, err)
	assert.Contains(t, string(out), `m\!\$\#\@`)
}

func TestRenderImportsGroupsFromSameModule(t *testing.T) {
	imports := []ir.ImportIR{
		{Module: "pkg", IsFrom: true, Names: []string{"a"}},
		{Module: "pkg", IsFrom: true, Names: []string{"b"}},
		{Module: "other"},
	}
	assert.Equal(t, "pkg.{a,b}, other", renderImports(imports))
}
