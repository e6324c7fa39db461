// Command mu is MU's CLI shell: a thin wrapper over packages orchestrate,
// muql, diff, emit, and config, per SPEC_FULL.md §6.1. It carries no
// business logic of its own.
package main

import (
	"os"

	"github.com/mu-graph/mu/errs"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(err.Error())
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if e := asMuError(err); e != nil {
		return e.Kind.ExitCode()
	}
	return 1
}

// asMuError walks the Unwrap chain looking for an *errs.Error, since cobra
// and lower layers sometimes wrap one in a plain fmt.Errorf.
func asMuError(err error) *errs.Error {
	type unwrapper interface{ Unwrap() error }
	for err != nil {
		if e, ok := err.(*errs.Error); ok {
			return e
		}
		u, ok := err.(unwrapper)
		if !ok {
			return nil
		}
		err = u.Unwrap()
	}
	return nil
}
