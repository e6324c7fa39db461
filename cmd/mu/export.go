package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/graph"
	"github.com/mu-graph/mu/orchestrate"
)

var flagExportFormat string

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export the full code graph as mermaid, d2, cytoscape, or JSON",
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

		nodes, err := st.AllNodes(cmd.Context())
		if err != nil {
			return err
		}
		edges, err := st.AllEdges(cmd.Context())
		if err != nil {
			return err
		}

		out, err := renderGraph(cmd.Context(), flagExportFormat, nodes, edges)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "F", "mermaid", "export format: mermaid|d2|cytoscape|json")
}

// renderGraph has no package precedent in the codebase's stack (no example
// repo wires a graph-diagram library), so these three formats are emitted
// directly as small text builders rather than reaching for a third-party
// renderer; see DESIGN.md.
func renderGraph(_ context.Context, format string, nodes []*graph.Node, edges []*graph.Edge) (string, error) {
	switch format {
	case "mermaid":
		return renderMermaid(nodes, edges), nil
	case "d2":
		return renderD2(nodes, edges), nil
	case "cytoscape":
		return renderCytoscape(nodes, edges)
	case "json":
		return renderGraphJSON(nodes, edges)
	default:
		return "", errs.New(errs.Config, "unknown export format "+format)
	}
}

func mermaidID(id string) string {
	r := strings.NewReplacer("/", "_", ".", "_", ":", "_", "-", "_")
	return r.Replace(id)
}

func renderMermaid(nodes []*graph.Node, edges []*graph.Edge) string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	for _, n := range nodes {
		fmt.Fprintf(&b, "  %s[\"%s\"]\n", mermaidID(n.ID), n.Name)
	}
	for _, e := range edges {
		fmt.Fprintf(&b, "  %s -->|%s| %s\n", mermaidID(e.SourceID), e.Type, mermaidID(e.TargetID))
	}
	return b.String()
}

func renderD2(nodes []*graph.Node, edges []*graph.Edge) string {
	var b strings.Builder
	for _, n := range nodes {
		fmt.Fprintf(&b, "%q: %q\n", n.ID, n.Name)
	}
	for _, e := range edges {
		fmt.Fprintf(&b, "%q -> %q: %s\n", e.SourceID, e.TargetID, e.Type)
	}
	return b.String()
}

type cytoscapeNode struct {
	Data struct {
		ID    string `json:"id"`
		Label string `json:"label"`
		Type  string `json:"type"`
	} `json:"data"`
}

type cytoscapeEdge struct {
	Data struct {
		ID     string `json:"id"`
		Source string `json:"source"`
		Target string `json:"target"`
		Type   string `json:"type"`
	} `json:"data"`
}

type cytoscapeDoc struct {
	Nodes []cytoscapeNode `json:"nodes"`
	Edges []cytoscapeEdge `json:"edges"`
}

func renderCytoscape(nodes []*graph.Node, edges []*graph.Edge) (string, error) {
	doc := cytoscapeDoc{}
	for _, n := range nodes {
		var cn cytoscapeNode
		cn.Data.ID = n.ID
		cn.Data.Label = n.Name
		cn.Data.Type = string(n.Type)
		doc.Nodes = append(doc.Nodes, cn)
	}
	for _, e := range edges {
		var ce cytoscapeEdge
		ce.Data.ID = e.ID
		ce.Data.Source = e.SourceID
		ce.Data.Target = e.TargetID
		ce.Data.Type = string(e.Type)
		doc.Edges = append(doc.Edges, ce)
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errs.Wrap(errs.Invariant, "cannot marshal cytoscape document", err)
	}
	return string(b), nil
}

func renderGraphJSON(nodes []*graph.Node, edges []*graph.Edge) (string, error) {
	doc := struct {
		Nodes []*graph.Node `json:"nodes"`
		Edges []*graph.Edge `json:"edges"`
	}{Nodes: nodes, Edges: edges}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errs.Wrap(errs.Invariant, "cannot marshal graph document", err)
	}
	return string(b), nil
}
