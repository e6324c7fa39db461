package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mu-graph/mu/emit"
	"github.com/mu-graph/mu/emit/jsonemit"
	"github.com/mu-graph/mu/emit/mdemit"
	"github.com/mu-graph/mu/emit/sigil"
	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/orchestrate"
	"github.com/mu-graph/mu/reduce"
	"github.com/mu-graph/mu/secrets"
)

var (
	flagCompressOut      string
	flagCompressFormat   string
	flagCompressNoRedact bool
)

var compressCmd = &cobra.Command{
	Use:   "compress [path]",
	Short: "Render a project's mubase into a compact textual projection",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			flagPath = args[0]
		}
		root, err := resolveRoot()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(root)
		if err != nil {
			return err
		}
		st, err := openStore(root)
		if err != nil {
			return err
		}
		defer st.Close()

		p := orchestrate.New(root, cfg, defaultExtractFactory(), st)
		if _, err := p.FullBuild(cmd.Context()); err != nil {
			return err
		}

		emitter, err := emitterFor(flagCompressFormat)
		if err != nil {
			return err
		}

		rules := reduce.DefaultRules()
		rules.ComplexityCeiling = cfg.Reducer.ComplexityThreshold

		out := os.Stdout
		if flagCompressOut != "" {
			f, err := os.Create(flagCompressOut)
			if err != nil {
				return errs.Wrap(errs.IO, "cannot create output file", err).WithPath(flagCompressOut, 0)
			}
			defer f.Close()
			out = f
		}

		for _, mod := range p.Modules() {
			reduced := reduce.Reduce(mod, rules)
			b, err := emitter.Emit(mod, reduced, emit.Options{ShellSafe: cfg.Output.ShellSafe})
			if err != nil {
				return err
			}
			if !flagCompressNoRedact {
				b, _ = secrets.Redact(b)
			}
			if _, err := out.Write(b); err != nil {
				return errs.Wrap(errs.IO, "cannot write output", err)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func emitterFor(format string) (emit.Emitter, error) {
	switch format {
	case "", "mu", "sigil":
		return sigil.New(), nil
	case "json":
		return jsonemit.New(), nil
	case "md", "markdown":
		return mdemit.New(), nil
	default:
		return nil, errs.New(errs.Config, "unknown format "+format)
	}
}

func init() {
	compressCmd.Flags().StringVarP(&flagCompressOut, "output", "o", "", "output file (default: stdout)")
	compressCmd.Flags().StringVarP(&flagCompressFormat, "format", "F", "mu", "output format: mu|json|md")
	compressCmd.Flags().BoolVar(&flagCompressNoRedact, "no-redact", false, "do not redact detected secrets from output")
}
