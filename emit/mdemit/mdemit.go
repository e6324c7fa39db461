// Package mdemit renders a reduced module as Markdown headings and code
// fences, per SPEC_FULL.md §4.10.
package mdemit

import (
	"fmt"
	"strings"

	"github.com/mu-graph/mu/emit"
	"github.com/mu-graph/mu/ir"
	"github.com/mu-graph/mu/reduce"
)

type Emitter struct{}

func New() *Emitter { return &Emitter{} }

func (e *Emitter) Emit(source *ir.ModuleIR, reduced reduce.ReducedModule, opts emit.Options) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s (%s)\n\n", source.Name, source.Language)
	if source.Doc != "" {
		fmt.Fprintf(&b, "%s\n\n", source.Doc)
	}

	if len(reduced.Imports) > 0 {
		b.WriteString("## Imports\n\n")
		for _, imp := range reduced.Imports {
			fmt.Fprintf(&b, "- `%s`\n", imp.Module)
		}
		b.WriteString("\n")
	}

	for _, rc := range reduced.Classes {
		fmt.Fprintf(&b, "## %s", rc.Source.Name)
		if len(rc.Source.Bases) > 0 {
			fmt.Fprintf(&b, " extends %s", strings.Join(rc.Source.Bases, ", "))
		}
		b.WriteString("\n\n")
		if rc.Source.Doc != "" {
			fmt.Fprintf(&b, "%s\n\n", rc.Source.Doc)
		}
		for _, method := range rc.Methods {
			writeFunction(&b, method, "###")
		}
	}

	for _, fn := range reduced.Functions {
		writeFunction(&b, fn, "##")
	}

	return []byte(b.String()), nil
}

func writeFunction(b *strings.Builder, fn *ir.FunctionIR, heading string) {
	fmt.Fprintf(b, "%s `%s`\n\n", heading, signature(fn))
	if fn.Doc != "" {
		fmt.Fprintf(b, "%s\n\n", fn.Doc)
	}
	if fn.BodySource != "" {
		fmt.Fprintf(b, "```\n%s\n```\n\n", fn.BodySource)
	}
}

func signature(fn *ir.FunctionIR) string {
	parts := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		if p.Type != "" {
			parts = append(parts, p.Name+": "+p.Type)
		} else {
			parts = append(parts, p.Name)
		}
	}
	sig := fn.Name + "(" + strings.Join(parts, ", ") + ")"
	if fn.ReturnType != "" {
		sig += " -> " + fn.ReturnType
	}
	return sig
}
