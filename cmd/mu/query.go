package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mu-graph/mu/muql"
)

var (
	flagQueryFormat      string
	flagQueryInteractive bool
)

var queryCmd = &cobra.Command{
	Use:   "query [MUQL...]",
	Short: "Run a MUQL query against the project mubase",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, strings.Join(args, " "), false)
	},
}

var qCmd = &cobra.Command{
	Use:   "q [terse query...]",
	Short: "Run a terse-shorthand MUQL query",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, strings.Join(args, " "), true)
	},
}

func init() {
	for _, c := range []*cobra.Command{queryCmd, qCmd} {
		c.Flags().StringVarP(&flagQueryFormat, "format", "F", "table", "output format: table|json|csv")
		c.Flags().BoolVarP(&flagQueryInteractive, "interactive", "i", false, "start a query REPL")
	}
}

func runQuery(cmd *cobra.Command, query string, terse bool) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}
	st, err := openStore(root)
	if err != nil {
		return err
	}
	defer st.Close()

	exec := muql.NewExecutor(st, muql.PolicyPreferSource)

	if flagQueryInteractive {
		return runQueryREPL(cmd, exec)
	}

	if terse {
		query = muql.ExpandTerse(query)
	}
	return runOneQuery(cmd, exec, query)
}

func runOneQuery(cmd *cobra.Command, exec *muql.Executor, query string) error {
	res, err := exec.Run(cmd.Context(), query)
	if err != nil {
		return err
	}
	rendered, err := res.Render(muql.Format(flagQueryFormat))
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}

func runQueryREPL(cmd *cobra.Command, exec *muql.Executor) error {
	printInfo("mu query REPL - Ctrl+D to exit")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	fmt.Print("mu> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("mu> ")
			continue
		}
		if err := runOneQuery(cmd, exec, muql.ExpandTerse(line)); err != nil {
			printError(err.Error())
		}
		fmt.Print("mu> ")
	}
	fmt.Println()
	return nil
}
