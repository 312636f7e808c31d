package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/halcyon-lang/sdtgen/lexical"
	"github.com/halcyon-lang/sdtgen/runtime"
	"github.com/halcyon-lang/sdtgen/tables"
)

func init() {
	cmd := &cobra.Command{
		Use:     "test <grammar file path>",
		Short:   "Interactively parse lines of input against a grammar",
		Example: `  sdtgen test grammar.sdt`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTest,
	}
	rootCmd.AddCommand(cmd)
}

// parseNode is the value every reduction synthesizes in the REPL: enough
// to render a parse tree, nothing more (the grammar file format has no
// semantic-action language of its own, §4.I leaves that to the caller).
type parseNode struct {
	label    string
	children []interface{}
}

func runTest(cmd *cobra.Command, args []string) error {
	gf, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("cannot open the grammar file %s: %w", args[0], err)
	}
	built, g, _, err := compileGrammar(gf)
	gf.Close()
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
	scanTable := runtime.BuildScannerTable(scan, t)
	parseTable := runtime.BuildParserTable(t)

	rl, err := readline.New("sdtgen> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		runOneLine(parseTable, scanTable, line)
	}
}

func runOneLine(parseTable *runtime.ParserTable, scanTable *runtime.ScannerTable, line string) {
	src := strings.NewReader(line + "\n")
	semantic := func(prod int, children []interface{}, loc runtime.Location) (interface{}, error) {
		return &parseNode{label: fmt.Sprintf("prod %d", prod), children: children}, nil
	}
	d, err := runtime.NewDriver(scanTable, parseTable, src.Read, semantic)
	if err != nil {
		pterm.Error.Println(err)
		return
	}
	value, err := d.Run(os.Stdout)
	if err != nil {
		pterm.Error.Println(err)
		return
	}
	root := toTreeNode(value)
	pterm.DefaultTree.WithRoot(root).Render()
}

func toTreeNode(v interface{}) pterm.TreeNode {
	switch n := v.(type) {
	case *parseNode:
		node := pterm.TreeNode{Text: n.label}
		for _, c := range n.children {
			node.Children = append(node.Children, toTreeNode(c))
		}
		return node
	case []byte:
		return pterm.TreeNode{Text: fmt.Sprintf("%q", string(n))}
	default:
		return pterm.TreeNode{Text: fmt.Sprint(n)}
	}
}
