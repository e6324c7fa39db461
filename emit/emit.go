// Package emit renders a reduced module into one of MU's textual
// projections (sigil, JSON, Markdown), per SPEC_FULL.md §4.10.
package emit

import (
	"regexp"
	"strings"

	"github.com/mu-graph/mu/ir"
	"github.com/mu-graph/mu/reduce"
)

// receiverAssignment matches "self.x =" / "this.x =" style receiver-state
// writes, deliberately excluding "==" equality checks.
var receiverAssignment = regexp.MustCompile(`\b(self|this)\.\w+\s*=[^=]`)

// Options configures every emitter.
type Options struct {
	ShellSafe bool // escape sigils !$#@ so output may be pasted into shells
}

// Emitter renders one reduced module into bytes.
type Emitter interface {
	Emit(source *ir.ModuleIR, reduced reduce.ReducedModule, opts Options) ([]byte, error)
}

// IsMutating decides the "->"/"=>" distinction for a function: a reducer
// annotation on FunctionIR.Properties always wins over the heuristic, per
// the Open Question resolution in SPEC_FULL.md §9.
func IsMutating(fn *ir.FunctionIR) bool {
	if fn.Properties != nil {
		if v, ok := fn.Properties["mutating"]; ok {
			return v == "true"
		}
	}
	return heuristicMutating(fn)
}

var ioBearingCalls = []string{
	"fmt.Print", "fmt.Fprint", "os.", "print(", "console.log", "console.error",
	".write(", ".Write(", "open(", "fetch(", "axios.", "http.", "requests.",
	"db.", "tx.", ".save(", ".Save(", ".delete(", ".Delete(", ".commit(",
}

func heuristicMutating(fn *ir.FunctionIR) bool {
	body := fn.BodySource
	if body == "" {
		return false
	}
	if fn.IsMethod && (receiverAssignment.MatchString(body)) {
		return true
	}
	for _, call := range ioBearingCalls {
		if strings.Contains(body, call) {
			return true
		}
	}
	return false
}
