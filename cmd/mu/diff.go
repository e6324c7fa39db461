package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mu-graph/mu/diff"
	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/graph"
	"github.com/mu-graph/mu/store"
)

var flagDiffFormat string

// diffCmd compares two already-bootstrapped project roots. The store's
// snapshot table only persists node/edge counts and delta summaries (spec
// §4.6), not full node lists, so there is no way to reconstruct a past
// revision's graph from a single mubase; diff instead reads two full
// mubase files side by side, one per ref/checkout, each produced by its
// own `mu bootstrap` run. This is documented in DESIGN.md.
var diffCmd = &cobra.Command{
	Use:   "diff <base-path> <head-path>",
	Short: "Compute a semantic diff between two bootstrapped project mubases",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseNodes, err := loadMubaseNodes(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		headNodes, err := loadMubaseNodes(cmd.Context(), args[1])
		if err != nil {
			return err
		}

		result, err := diff.Compare(cmd.Context(), baseNodes, headNodes)
		if err != nil {
			return err
		}
		rendered, err := renderDiff(result, flagDiffFormat)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		if result.HasBreaking {
			return errs.New(errs.Invariant, "breaking changes detected").WithRemediation("review BreakingChanges before merging")
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().StringVarP(&flagDiffFormat, "format", "F", "text", "output format: text|json|mu|markdown")
}

func loadMubaseNodes(ctx context.Context, projectPath string) ([]*graph.Node, error) {
	path := filepath.Join(projectPath, ".mu", "mubase")
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.AllNodes(ctx)
}

func renderDiff(result *diff.Result, format string) (string, error) {
	switch format {
	case "", "text":
		return result.SummaryText, nil
	case "json":
		b, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", errs.Wrap(errs.Invariant, "cannot marshal diff result", err)
		}
		return string(b), nil
	case "mu", "markdown":
		return renderDiffMarkdown(result), nil
	default:
		return "", errs.New(errs.Config, "unknown diff format "+format)
	}
}

func renderDiffMarkdown(result *diff.Result) string {
	out := "# Diff\n\n" + result.SummaryText + "\n\n"
	if len(result.BreakingChanges) > 0 {
		out += "## Breaking changes\n\n"
		for _, c := range result.BreakingChanges {
			out += fmt.Sprintf("- **%s** %s (%s): %s\n", c.EntityType, c.EntityName, c.ChangeType, c.Reason)
		}
	}
	return out
}
