package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mu-graph/mu/orchestrate"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap [path]",
	Short: "Scan a project and build its initial mubase",
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
		res, err := p.FullBuild(cmd.Context())
		if err != nil {
			return err
		}

		printSuccess(fmt.Sprintf("bootstrapped %s", root))
		fmt.Printf("  files scanned: %d (skipped %d)\n", res.FilesScanned, res.FilesSkipped)
		fmt.Printf("  nodes: %d, edges: %d\n", res.NodeCount, res.EdgeCount)
		fmt.Printf("  duration: %s\n", res.Duration)

		for _, pe := range res.ParseErrors {
			printWarning(pe.Error())
		}
		for _, f := range res.SecretFindings {
			printWarning(fmt.Sprintf("possible secret (%s) in %s", f.Match.PatternName, f.FilePath))
		}
		return nil
	},
}
