// If you are AI: This is the entrypoint for trinity-lint, which enforces source file conventions.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trinity/internal/lint"
)

var opts lint.Options

// rootCmd checks every directory given as an argument.
var rootCmd = &cobra.Command{
	Use:          "trinity-lint [dir...]",
	Short:        "Check file headers, doc comments and file length",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var total int
		for _, dir := range args {
			violations, err := lint.CheckTree(dir, opts)
			if err != nil {
				return err
			}
			for _, v := range violations {
				fmt.Fprintln(cmd.ErrOrStderr(), v)
			}
			total += len(violations)
		}
		if total > 0 {
			return fmt.Errorf("%d convention violations", total)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().IntVar(&opts.MaxLines, "max-lines", 300, "Maximum lines per file, 0 disables")
	rootCmd.Flags().BoolVar(&opts.RequireDocs, "require-docs", true, "Require a doc comment on every function")
	rootCmd.Flags().BoolVar(&opts.IncludeTests, "include-tests", false, "Also check _test.go files")
}

// main runs the lint command and exits non-zero on violations.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
