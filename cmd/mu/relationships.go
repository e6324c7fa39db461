package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mu-graph/mu/graph"
	"github.com/mu-graph/mu/graphalg"
	"github.com/mu-graph/mu/muql"
)

var (
	flagDepsDepth   int
	flagDepsReverse bool
)

var depsCmd = &cobra.Command{
	Use:   "deps <node>",
	Short: "List a node's dependencies (or dependents with --reverse)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot()
		if err != nil {
			return err
		}
		st, err := openStore(root)
		if err != nil {
			return err
		}
		defer st.Close()

		resolver := muql.NewResolver(st, muql.PolicyPreferSource)
		node, _, err := resolver.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		nodes, err := st.AllNodes(cmd.Context())
		if err != nil {
			return err
		}
		edges, err := st.AllEdges(cmd.Context())
		if err != nil {
			return err
		}
		g := graphalg.Load(nodes, edges)

		edgeTypes := []graph.EdgeType{graph.EdgeImports, graph.EdgeCalls, graph.EdgeInherits}
		var reached []*graph.Node
		if flagDepsReverse {
			reached, err = g.ReachableBackward(cmd.Context(), node.ID, edgeTypes, flagDepsDepth)
		} else {
			reached, err = g.ReachableForward(cmd.Context(), node.ID, edgeTypes, flagDepsDepth)
		}
		if err != nil {
			return err
		}
		printNodeList(reached)
		return nil
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact <node>",
	Short: "Show every node that would be affected by changing <node>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot()
		if err != nil {
			return err
		}
		st, err := openStore(root)
		if err != nil {
			return err
		}
		defer st.Close()

		resolver := muql.NewResolver(st, muql.PolicyPreferSource)
		node, _, err := resolver.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		nodes, err := st.AllNodes(cmd.Context())
		if err != nil {
			return err
		}
		edges, err := st.AllEdges(cmd.Context())
		if err != nil {
			return err
		}
		g := graphalg.Load(nodes, edges)

		reached, err := g.ReachableBackward(cmd.Context(), node.ID, []graph.EdgeType{graph.EdgeCalls, graph.EdgeImports}, 0)
		if err != nil {
			return err
		}
		printNodeList(reached)
		return nil
	},
}

var ancestorsCmd = &cobra.Command{
	Use:   "ancestors <node>",
	Short: "Show a class's inheritance ancestors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot()
		if err != nil {
			return err
		}
		st, err := openStore(root)
		if err != nil {
			return err
		}
		defer st.Close()

		resolver := muql.NewResolver(st, muql.PolicyPreferSource)
		node, _, err := resolver.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		nodes, err := st.AllNodes(cmd.Context())
		if err != nil {
			return err
		}
		edges, err := st.AllEdges(cmd.Context())
		if err != nil {
			return err
		}
		g := graphalg.Load(nodes, edges)

		reached, err := g.ReachableForward(cmd.Context(), node.ID, []graph.EdgeType{graph.EdgeInherits}, 0)
		if err != nil {
			return err
		}
		printNodeList(reached)
		return nil
	},
}

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "List circular dependency groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot()
		if err != nil {
			return err
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
		g := graphalg.Load(nodes, edges)

		cycles := g.Cycles([]graph.EdgeType{graph.EdgeImports, graph.EdgeCalls})
		if len(cycles) == 0 {
			printSuccess("no cycles found")
			return nil
		}
		for i, c := range cycles {
			fmt.Printf("cycle %d:\n", i+1)
			for _, id := range c.NodeIDs {
				fmt.Printf("  %s\n", id)
			}
		}
		return nil
	},
}

var pathCmd = &cobra.Command{
	Use:   "path <from> <to>",
	Short: "Find the shortest path between two nodes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot()
		if err != nil {
			return err
		}
		st, err := openStore(root)
		if err != nil {
			return err
		}
		defer st.Close()

		resolver := muql.NewResolver(st, muql.PolicyPreferSource)
		from, _, err := resolver.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		to, _, err := resolver.Resolve(cmd.Context(), args[1])
		if err != nil {
			return err
		}

		nodes, err := st.AllNodes(cmd.Context())
		if err != nil {
			return err
		}
		edges, err := st.AllEdges(cmd.Context())
		if err != nil {
			return err
		}
		g := graphalg.Load(nodes, edges)

		path, err := g.ShortestPath(cmd.Context(), from.ID, to.ID, nil)
		if err != nil {
			return err
		}
		if path == nil {
			printWarning("no path found")
			return nil
		}
		printNodeList(path)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Search node names by pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot()
		if err != nil {
			return err
		}
		st, err := openStore(root)
		if err != nil {
			return err
		}
		defer st.Close()

		nodes, err := st.NodesByNamePattern(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printNodeList(nodes)
		return nil
	},
}

func printNodeList(nodes []*graph.Node) {
	if len(nodes) == 0 {
		printWarning("no matching nodes")
		return
	}
	for _, n := range nodes {
		fmt.Printf("%-10s %-40s %s\n", n.Type, n.Name, n.ID)
	}
}

func init() {
	depsCmd.Flags().IntVar(&flagDepsDepth, "depth", 0, "max traversal depth (0 = unbounded)")
	depsCmd.Flags().BoolVarP(&flagDepsReverse, "reverse", "r", false, "list dependents instead of dependencies")
}
