package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mu-graph/mu/graph"
	"github.com/mu-graph/mu/project"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"doctor"},
	Short:   "Report the health of the current project's mubase",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot()
		if err != nil {
			return err
		}

		printHeader("mu status")
		fmt.Printf("project root: %s\n", root)
		if info, detectErr := project.Detect(root); detectErr == nil && info.Type != "unknown" {
			fmt.Printf("project:      %s (%s)\n", info.Name, info.Type)
		}

		mubase := filepath.Join(root, ".mu", "mubase")
		if _, statErr := os.Stat(mubase); statErr != nil {
			printWarning("no mubase found; run `mu bootstrap` first")
			return nil
		}

		st, err := openStore(root)
		if err != nil {
			return err
		}
		defer st.Close()

		nodes, err := st.AllNodes(cmd.Context())
		if err != nil {
			return err
		}
		edges, err := st.AllEdges(cmd.Context())
		if err != nil {
			return err
		}

		counts := map[graph.NodeType]int{}
		for _, n := range nodes {
			counts[n.Type]++
		}

		printSuccess(fmt.Sprintf("mubase at %s", mubase))
		fmt.Printf("  modules:   %d\n", counts[graph.NodeModule])
		fmt.Printf("  classes:   %d\n", counts[graph.NodeClass])
		fmt.Printf("  functions: %d\n", counts[graph.NodeFunction])
		fmt.Printf("  external:  %d\n", counts[graph.NodeExternal])
		fmt.Printf("  edges:     %d\n", len(edges))

		if _, cfgErr := loadConfig(root); cfgErr != nil {
			printWarning(cfgErr.Error())
		} else {
			printInfo("config loads cleanly")
		}
		return nil
	},
}
