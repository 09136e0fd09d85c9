package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pycfg-go/pycfg/app"
	"github.com/pycfg-go/pycfg/domain"
	"github.com/pycfg-go/pycfg/internal/config"
	"github.com/pycfg-go/pycfg/service"
	"github.com/spf13/cobra"
)

// BuildCommand represents the build command.
type BuildCommand struct {
	json bool
	yaml bool
	dot  bool

	outputPath string
	configFile string
	recursive  bool
	details    bool
	verbose    bool

	includePatterns []string
	excludePatterns []string
}

// NewBuildCommand creates a new build command.
func NewBuildCommand() *BuildCommand {
	return &BuildCommand{}
}

// CreateCobraCommand creates the cobra command for building CFGs.
func (c *BuildCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [files...]",
		Short: "Build control-flow graphs for Python files",
		Long: `Build parses each given Python file with tree-sitter and constructs a
control-flow graph for its module body plus one nested graph per function,
method, and class body it finds.

Examples:
  # Build and print a text summary for the current directory
  pycfg build .

  # Build with JSON output written into a directory, one file per source
  pycfg build --json -o reports/ src/

  # Build and render Graphviz DOT for a single file
  pycfg build --dot src/app.py`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.runBuild,
	}

	cmd.Flags().BoolVar(&c.json, "json", false, "Render as JSON")
	cmd.Flags().BoolVar(&c.yaml, "yaml", false, "Render as YAML")
	cmd.Flags().BoolVar(&c.dot, "dot", false, "Render as Graphviz DOT")
	cmd.Flags().StringVarP(&c.outputPath, "output", "o", "", "Write one report per source file into this directory instead of stdout")
	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVarP(&c.recursive, "recursive", "r", true, "Recurse into directories")
	cmd.Flags().BoolVar(&c.details, "details", false, "Include per-block statement text")
	cmd.Flags().StringSliceVar(&c.includePatterns, "include", nil, "Glob patterns selecting files to build")
	cmd.Flags().StringSliceVar(&c.excludePatterns, "exclude", nil, "Glob patterns excluding files from the build")

	return cmd
}

func (c *BuildCommand) determineOutputFormat() (domain.OutputFormat, string, error) {
	resolver := service.NewOutputFormatResolver()
	return resolver.Determine(c.json, c.yaml, c.dot)
}

func (c *BuildCommand) runBuild(cmd *cobra.Command, args []string) error {
	if cmd.Parent() != nil {
		c.verbose, _ = cmd.Parent().Flags().GetBool("verbose")
	}

	// ApplyFlagOverrides keys its merges off "format", "output-dir",
	// "details", and "recursive" regardless of what this command calls its
	// own flags, so translate cobra's explicit-flag set into that
	// vocabulary before applying it.
	explicit := GetExplicitFlags(cmd)
	tracker := config.NewFlagTrackerWithFlags(nil)
	if explicit["details"] {
		tracker.Set("details")
	}
	if explicit["recursive"] {
		tracker.Set("recursive")
	}

	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	loader := service.NewConfigurationLoader()
	var fileCfg *config.Config
	var err error
	if c.configFile != "" {
		fileCfg, err = loader.LoadConfigFile(c.configFile)
	} else {
		fileCfg, err = loader.LoadConfig(target)
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := loader.ValidateConfig(fileCfg); err != nil {
		return err
	}

	explicitFormat := ""
	switch {
	case c.json:
		explicitFormat = "json"
	case c.yaml:
		explicitFormat = "yaml"
	case c.dot:
		explicitFormat = "dot"
	}
	if explicitFormat != "" {
		tracker.Set("format")
	}
	if explicit["output"] {
		tracker.Set("output-dir")
	}
	loader.ApplyFlags(fileCfg, tracker, explicitFormat, c.outputPath, c.details, c.recursive)

	var format domain.OutputFormat
	if explicitFormat != "" {
		format, _, err = c.determineOutputFormat()
		if err != nil {
			return err
		}
	} else {
		format = formatFromString(fileCfg.Output.Format)
	}
	if fileCfg.Output.Directory != "" && c.outputPath == "" {
		c.outputPath = fileCfg.Output.Directory
	}

	req := domain.BuildRequest{
		Paths:           args,
		Recursive:       fileCfg.Build.Recursive,
		IncludePatterns: c.includePatterns,
		ExcludePatterns: c.excludePatterns,
		OutputFormat:    format,
		ShowDetails:     fileCfg.Output.ShowDetails,
		ConfigFile:      c.configFile,
	}

	errorCategorizer := service.NewErrorCategorizer()

	uc, err := app.NewCFGUseCaseBuilder().
		WithFileReader(service.NewFileReader()).
		WithFormatter(service.NewCFGFormatter()).
		WithProgressManager(c.progressManagerFor(cmd)).
		WithParallelExecutor(service.NewParallelExecutor()).
		WithErrorCategorizer(errorCategorizer).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create build use case: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	resp, buildErr := uc.Execute(ctx, req)
	if resp == nil {
		if buildErr != nil {
			c.printRecoverySuggestions(cmd, errorCategorizer, buildErr)
		}
		return buildErr
	}

	formatter := service.NewCFGFormatter()
	rendered, renderErr := formatter.FormatBuildResponse(resp, domain.OutputFormatText)
	if renderErr == nil {
		fmt.Fprint(cmd.ErrOrStderr(), rendered)
	}

	if err := c.writeFiles(cmd, resp, format); err != nil {
		return err
	}

	if buildErr != nil {
		c.printRecoverySuggestions(cmd, errorCategorizer, buildErr)
		return buildErr
	}
	return nil
}

// writeFiles writes each file's rendered CFG either to stdout (concatenated)
// or, when --output is given, to outputPath joined with the source name.
func (c *BuildCommand) writeFiles(cmd *cobra.Command, resp *domain.BuildResponse, format domain.OutputFormat) error {
	writer := service.NewFileOutputWriter(cmd.ErrOrStderr())

	if c.outputPath != "" {
		if err := os.MkdirAll(c.outputPath, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", c.outputPath, err)
		}
	}

	for _, file := range resp.Files {
		if file.Error != nil {
			continue
		}

		var outPath string
		if c.outputPath != "" {
			base := strings.TrimSuffix(filepath.Base(file.FilePath), filepath.Ext(file.FilePath))
			outPath = filepath.Join(c.outputPath, base+"."+extensionFor(format))
		}

		err := writer.Write(cmd.OutOrStdout(), outPath, format, func(w io.Writer) error {
			_, err := w.Write([]byte(file.Rendered))
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// formatFromString maps a config file's output.format string to a
// domain.OutputFormat, falling back to text for anything unrecognized -
// config.Validate already rejects bad values before this is ever reached.
func formatFromString(s string) domain.OutputFormat {
	switch s {
	case "json":
		return domain.OutputFormatJSON
	case "yaml":
		return domain.OutputFormatYAML
	case "dot":
		return domain.OutputFormatDOT
	default:
		return domain.OutputFormatText
	}
}

func extensionFor(format domain.OutputFormat) string {
	switch format {
	case domain.OutputFormatJSON:
		return "json"
	case domain.OutputFormatYAML:
		return "yaml"
	case domain.OutputFormatDOT:
		return "dot"
	default:
		return "txt"
	}
}

func (c *BuildCommand) progressManagerFor(cmd *cobra.Command) domain.ProgressManager {
	pm := service.NewProgressManager()
	pm.SetWriter(cmd.ErrOrStderr())
	return pm
}

func (c *BuildCommand) printRecoverySuggestions(cmd *cobra.Command, categorizer domain.ErrorCategorizer, err error) {
	categorized := categorizer.Categorize(err)
	if categorized == nil {
		return
	}
	suggestions := categorizer.GetRecoverySuggestions(categorized.Category)
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "\nSuggestions:\n")
	for _, s := range suggestions {
		fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", s)
	}
}

// NewBuildCmd creates and returns the build cobra command.
func NewBuildCmd() *cobra.Command {
	buildCommand := NewBuildCommand()
	return buildCommand.CreateCobraCommand()
}
