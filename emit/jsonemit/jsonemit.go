// Package jsonemit mirrors the IR exactly as JSON, per SPEC_FULL.md §4.10.
package jsonemit

import (
	"encoding/json"

	"github.com/mu-graph/mu/emit"
	"github.com/mu-graph/mu/ir"
	"github.com/mu-graph/mu/reduce"
)

// Emitter renders the full (unreduced) IR, since JSON output is meant to
// round-trip exactly (spec §8: emit_json(ir) parses back to an identical
// IR), not the sigil-compacted view.
type Emitter struct{}

func New() *Emitter { return &Emitter{} }

func (e *Emitter) Emit(source *ir.ModuleIR, reduced reduce.ReducedModule, opts emit.Options) ([]byte, error) {
	return json.MarshalIndent(source, "", "  ")
}
