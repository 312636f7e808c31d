package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sdtgen",
	Short: "Generate a portable scanner and parser table from a grammar",
	Long: `sdtgen provides three features:
- Compiles a grammar file into a compressed scanner automaton and LALR(1)
  parsing table.
- Prints a human-readable description of a compiled grammar's states,
  conflicts, and productions.
- Runs an interactive REPL that drives the runtime interpreter over stdin,
  including its locally-least-cost error repair.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
