package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brianjo/beanmachine"
	"github.com/brianjo/beanmachine/internal/logging"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Compile model files and report diagnostics",
	Long: `Check compiles each model file into a validated graph and prints any
diagnostics, one per line, as file:line: message. The exit status is 1 if
any file fails to compile.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	compiler := beanmachine.NewCompiler()
	compiler.SetTimeout(viper.GetDuration("timeout"))

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		result, err := compiler.CompileFile(path)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", path, err)
			failed++
			continue
		}

		if len(result.Diagnostics) > 0 {
			for _, d := range result.Diagnostics {
				if d.Line > 0 {
					fmt.Fprintf(out, "%s:%d: %s\n", path, d.Line, d.Message)
				} else {
					fmt.Fprintf(out, "%s: %s\n", path, d.Message)
				}
			}
			failed++
			continue
		}

		logging.Info().
			Str("file", path).
			Int("nodes", result.Graph.Len()).
			Int("queries", result.Graph.NumQueries()).
			Msg("model compiled")
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}
