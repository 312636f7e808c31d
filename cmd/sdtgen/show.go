package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/halcyon-lang/sdtgen/listing"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show <grammar file path>",
		Short:   "Print a grammar's states, productions, and conflicts",
		Example: `  sdtgen show grammar.sdt`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("cannot open the grammar file %s: %w", args[0], err)
	}
	defer f.Close()

	_, g, report, err := compileGrammar(f)
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stdout, listing.Describe(g, report))
	return nil
}
