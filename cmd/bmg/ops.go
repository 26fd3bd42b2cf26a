package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brianjo/beanmachine/pkg/graph"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List the operator catalog",
	Long: `Ops prints every operator the validator accepts, with the parent
types it requires and the type it produces.`,
	Args: cobra.NoArgs,
	Run:  runOps,
}

func init() {
	rootCmd.AddCommand(opsCmd)
}

func runOps(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %-20s %s\n", "OPERATOR", "PARENTS", "RESULT")
	for _, op := range graph.Operators() {
		spec, ok := graph.Spec(op)
		if !ok {
			continue
		}
		parents := "-"
		if len(spec.Params) > 0 {
			names := make([]string, len(spec.Params))
			for i, p := range spec.Params {
				names[i] = p.String()
			}
			parents = strings.Join(names, ", ")
		}
		fmt.Fprintf(out, "%-10s %-20s %s\n", spec.Name, parents, spec.Result)
	}
}
