package service

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pycfg-go/pycfg/domain"
	"github.com/pycfg-go/pycfg/internal/cfg"
)

// CFGFormatterImpl formats a built CFG forest (one module-level CFG per
// source file, each with nested function/class CFGs) into the requested
// output format.
type CFGFormatterImpl struct{}

// NewCFGFormatter creates a CFG output formatter.
func NewCFGFormatter() *CFGFormatterImpl {
	return &CFGFormatterImpl{}
}

// cfgSummary is the JSON/YAML-friendly shape of one built CFG, recursing
// into its nested functions and classes.
type cfgSummary struct {
	Name        string                 `json:"name" yaml:"name"`
	Blocks      int                    `json:"blocks" yaml:"blocks"`
	Edges       int                    `json:"edges" yaml:"edges"`
	FinalBlocks int                    `json:"final_blocks" yaml:"final_blocks"`
	Functions   map[string]*cfgSummary `json:"functions,omitempty" yaml:"functions,omitempty"`
	Classes     map[string]*cfgSummary `json:"classes,omitempty" yaml:"classes,omitempty"`
}

func summarize(c *cfg.CFG) *cfgSummary {
	s := &cfgSummary{
		Name:        c.Name,
		Blocks:      len(c.Blocks),
		Edges:       len(c.Edges),
		FinalBlocks: len(c.FinalBlocks),
	}
	if len(c.FuncCFGs) > 0 {
		s.Functions = make(map[string]*cfgSummary, len(c.FuncCFGs))
		for name, entry := range c.FuncCFGs {
			s.Functions[name] = summarize(entry.CFG)
		}
	}
	if len(c.ClassCFGs) > 0 {
		s.Classes = make(map[string]*cfgSummary, len(c.ClassCFGs))
		for name, nested := range c.ClassCFGs {
			s.Classes[name] = summarize(nested)
		}
	}
	return s
}

// Format renders a single file's built CFG per format. showDetails only
// affects the text format, where it appends each block's statement text;
// JSON/YAML carry only per-CFG block, edge and final-block counts and DOT
// the full graph, either way.
func (f *CFGFormatterImpl) Format(c *cfg.CFG, format domain.OutputFormat, showDetails bool) (string, error) {
	switch format {
	case domain.OutputFormatText:
		return f.formatText(c, showDetails), nil
	case domain.OutputFormatJSON:
		return EncodeJSON(summarize(c))
	case domain.OutputFormatYAML:
		return EncodeYAML(summarize(c))
	case domain.OutputFormatDOT:
		return c.RenderDOT(), nil
	default:
		return "", domain.NewUnsupportedFormatError(string(format))
	}
}

// Write formats c and writes the result to writer.
func (f *CFGFormatterImpl) Write(c *cfg.CFG, format domain.OutputFormat, showDetails bool, writer io.Writer) error {
	output, err := f.Format(c, format, showDetails)
	if err != nil {
		return err
	}
	if _, err := writer.Write([]byte(output)); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

func (f *CFGFormatterImpl) formatText(c *cfg.CFG, showDetails bool) string {
	var b strings.Builder
	f.writeTextBlock(&b, c, 0, showDetails)
	return b.String()
}

func (f *CFGFormatterImpl) writeTextBlock(b *strings.Builder, c *cfg.CFG, depth int, showDetails bool) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s: %d blocks, %d edges, %d final\n", indent, c.Name, len(c.Blocks), len(c.Edges), len(c.FinalBlocks))

	if showDetails {
		f.writeBlockDetails(b, c, indent+"  ")
	}

	names := make([]string, 0, len(c.FuncCFGs))
	for name := range c.FuncCFGs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f.writeTextBlock(b, c.FuncCFGs[name].CFG, depth+1, showDetails)
	}

	classNames := make([]string, 0, len(c.ClassCFGs))
	for name := range c.ClassCFGs {
		classNames = append(classNames, name)
	}
	sort.Strings(classNames)
	for _, name := range classNames {
		f.writeTextBlock(b, c.ClassCFGs[name], depth+1, showDetails)
	}
}

// writeBlockDetails lists each block's recorded statement text in ID
// order, indented one level deeper than the CFG summary line it follows.
func (f *CFGFormatterImpl) writeBlockDetails(b *strings.Builder, c *cfg.CFG, indent string) {
	ids := make([]cfg.BlockId, 0, len(c.Blocks))
	for id := range c.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		block := c.Blocks[id]
		lines := block.StatementLines()
		if len(lines) == 0 {
			fmt.Fprintf(b, "%sbb%d: (empty)\n", indent, id)
			continue
		}
		for _, line := range lines {
			fmt.Fprintf(b, "%sbb%d: %s\n", indent, id, line)
		}
	}
}

// FormatBuildResponse renders a summary across every file in a build,
// using FormatUtils for the report header and file statistics.
func (f *CFGFormatterImpl) FormatBuildResponse(resp *domain.BuildResponse, format domain.OutputFormat) (string, error) {
	if format != domain.OutputFormatText {
		return EncodeJSON(resp)
	}

	utils := NewFormatUtils()
	var b strings.Builder
	b.WriteString(utils.FormatMainHeader("Control-Flow Graph Build Report"))

	failed := 0
	for _, file := range resp.Files {
		if file.Error != nil {
			failed++
		}
	}
	b.WriteString(utils.FormatFileStats(resp.TotalFiles-failed, resp.TotalFiles, failed))

	if failed > 0 {
		var warnings []string
		for _, file := range resp.Files {
			if file.Error != nil {
				warnings = append(warnings, fmt.Sprintf("%s: %v", file.FilePath, file.Error))
			}
		}
		b.WriteString(utils.FormatWarningsSection(warnings))
	}

	return b.String(), nil
}
