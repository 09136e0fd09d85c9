package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pycfg-go/pycfg/domain"
	"github.com/pycfg-go/pycfg/internal/cfg"
	"github.com/pycfg-go/pycfg/internal/parser"
	"github.com/pycfg-go/pycfg/service"
	"github.com/spf13/cobra"
)

// DotCommand renders a single file's control-flow graph (or one nested
// function/class within it) as Graphviz DOT.
type DotCommand struct {
	funcName   string
	outputPath string
}

// NewDotCommand creates a new dot command.
func NewDotCommand() *DotCommand {
	return &DotCommand{}
}

// CreateCobraCommand creates the cobra command for DOT rendering.
func (c *DotCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dot <path>",
		Short: "Render one file's control-flow graph as Graphviz DOT",
		Long: `Dot builds the control-flow graph for a single Python file and renders it
(or, with --func, just the named function or class defined directly at
module level; methods inside a class are not searched) as Graphviz DOT,
suitable for piping into 'dot -Tpng'.

Examples:
  # Render the whole module
  pycfg dot src/app.py

  # Render just one function's graph
  pycfg dot src/app.py --func handle_request`,
		Args: cobra.ExactArgs(1),
		RunE: c.runDot,
	}

	cmd.Flags().StringVar(&c.funcName, "func", "", "Render only the named module-level function or class")
	cmd.Flags().StringVarP(&c.outputPath, "output", "o", "", "Write DOT to this path instead of stdout")

	return cmd
}

func (c *DotCommand) runDot(cmd *cobra.Command, args []string) error {
	path := args[0]

	reader := service.NewFileReader()
	content, err := reader.ReadFile(path)
	if err != nil {
		return err
	}

	p := parser.New()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	parseResult, err := p.Parse(ctx, content)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	ast, err := parser.NewASTBuilder(content).Build(parseResult.Tree)
	if err != nil {
		return fmt.Errorf("AST construction failed for %s: %w", path, err)
	}

	built, err := cfg.NewBuilder().Build(path, ast)
	if err != nil {
		return fmt.Errorf("CFG construction failed for %s: %w", path, err)
	}

	target := built
	if c.funcName != "" {
		target, err = findNamedCFG(built, c.funcName)
		if err != nil {
			return err
		}
	}

	output := target.RenderDOT()

	writer := service.NewFileOutputWriter(cmd.ErrOrStderr())
	return writer.Write(cmd.OutOrStdout(), c.outputPath, domain.OutputFormatDOT, func(w io.Writer) error {
		_, err := w.Write([]byte(output))
		return err
	})
}

// findNamedCFG looks for name among root's direct nested functions and
// classes, matching the scoping CFG.FuncCFGs/ClassCFGs already use (not
// recursively flattened into descendants).
func findNamedCFG(root *cfg.CFG, name string) (*cfg.CFG, error) {
	if entry, ok := root.FuncCFGs[name]; ok {
		return entry.CFG, nil
	}
	if nested, ok := root.ClassCFGs[name]; ok {
		return nested, nil
	}
	return nil, fmt.Errorf("no function or class named %q found in %s", name, root.Name)
}

// NewDotCmd creates and returns the dot cobra command.
func NewDotCmd() *cobra.Command {
	dotCommand := NewDotCommand()
	return dotCommand.CreateCobraCommand()
}
