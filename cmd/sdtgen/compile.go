package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/halcyon-lang/sdtgen/grammar"
	"github.com/halcyon-lang/sdtgen/lexical"
	"github.com/halcyon-lang/sdtgen/spec"
	"github.com/halcyon-lang/sdtgen/tables"
)

var compileFlags = struct {
	output     *string
	compressed *bool
	binary     *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile <grammar file path>",
		Short:   "Compile a grammar into a scanner and parser table",
		Example: `  sdtgen compile grammar.sdt -o grammar.tab`,
		Args:    cobra.ExactArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.compressed = cmd.Flags().BoolP("compress", "c", false, "emit the compressed scanner/parser table arrays")
	compileFlags.binary = cmd.Flags().BoolP("binary", "b", false, "emit the binary table format instead of text")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("cannot open the grammar file %s: %w", args[0], err)
	}
	defer f.Close()

	built, g, report, err := compileGrammar(f)
	if err != nil {
		return err
	}

	scan, install, cerrs := lexical.Compile(built.Entries)
	if len(cerrs) > 0 {
		for _, e := range cerrs {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("cannot compile the lexical specification: %d error(s)", len(cerrs))
	}

	t := tables.Build(g, scan, install, built.Meta)

	out := *compileFlags.output
	if out == "" {
		out = cfg.Output
	}
	compress := *compileFlags.compressed || cfg.Compressed

	if err := writeTables(t, out, compress, *compileFlags.binary); err != nil {
		return fmt.Errorf("cannot write the output file: %w", err)
	}

	conflicts := len(report.ShiftReduceConflicts) + len(report.ReduceReduceConflicts)
	if conflicts > 0 {
		fmt.Fprintf(os.Stdout, "%d conflict(s) resolved\n", conflicts)
	}

	return nil
}

func compileGrammar(r *os.File) (*spec.Built, *grammar.Grammar, *grammar.Report, error) {
	file, err := spec.Parse(r)
	if err != nil {
		return nil, nil, nil, err
	}
	built, err := spec.Build(file)
	if err != nil {
		return nil, nil, nil, err
	}
	g, report, err := grammar.Build(built.Source)
	if err != nil {
		return nil, nil, nil, err
	}
	if errs := g.Errors(); !errs.Process {
		for _, e := range errs.List {
			fmt.Fprintln(os.Stderr, e)
		}
		return nil, nil, nil, fmt.Errorf("grammar has %d fatal error(s)", len(errs.List))
	}
	return built, g, report, nil
}

func writeTables(t *tables.Tables, path string, compressed, binary bool) error {
	var w *os.File
	if path == "" {
		w = os.Stdout
	} else {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if !compressed {
		if binary {
			_, err := w.Write(tables.EncodeBinary(t))
			return err
		}
		return tables.WriteText(w, t)
	}

	scanPacked, err := t.CompressScanner()
	if err != nil {
		return fmt.Errorf("compressing the scanner table: %w", err)
	}
	parsePacked, err := t.CompressParser()
	if err != nil {
		return fmt.Errorf("compressing the parser table: %w", err)
	}
	if binary {
		_, err := w.Write(tables.EncodeCompressedBinary(t, scanPacked, parsePacked))
		return err
	}
	return tables.WriteCompressedText(w, t, scanPacked, parsePacked)
}
