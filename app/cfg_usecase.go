package app

import (
	"context"
	"fmt"

	"github.com/pycfg-go/pycfg/domain"
	"github.com/pycfg-go/pycfg/internal/config"
	"github.com/pycfg-go/pycfg/service"
)

// CFGUseCase orchestrates building control-flow graphs for a set of Python
// files: discover files, parse and build a CFG per file, render each in the
// requested format, and assemble a response summarizing the run.
type CFGUseCase struct {
	fileReader       domain.FileReader
	formatter        *service.CFGFormatterImpl
	progressManager  domain.ProgressManager
	parallelExecutor domain.ParallelExecutor
	errorCategorizer domain.ErrorCategorizer
}

// CFGUseCaseBuilder builds a CFGUseCase, defaulting any collaborator the
// caller doesn't supply to its concrete service implementation.
type CFGUseCaseBuilder struct {
	fileReader       domain.FileReader
	formatter        *service.CFGFormatterImpl
	progressManager  domain.ProgressManager
	parallelExecutor domain.ParallelExecutor
	errorCategorizer domain.ErrorCategorizer
}

// NewCFGUseCaseBuilder creates a new builder.
func NewCFGUseCaseBuilder() *CFGUseCaseBuilder {
	return &CFGUseCaseBuilder{}
}

// WithFileReader sets the file reader.
func (b *CFGUseCaseBuilder) WithFileReader(fr domain.FileReader) *CFGUseCaseBuilder {
	b.fileReader = fr
	return b
}

// WithFormatter sets the CFG formatter.
func (b *CFGUseCaseBuilder) WithFormatter(f *service.CFGFormatterImpl) *CFGUseCaseBuilder {
	b.formatter = f
	return b
}

// WithProgressManager sets the progress manager.
func (b *CFGUseCaseBuilder) WithProgressManager(pm domain.ProgressManager) *CFGUseCaseBuilder {
	b.progressManager = pm
	return b
}

// WithParallelExecutor sets the parallel executor.
func (b *CFGUseCaseBuilder) WithParallelExecutor(pe domain.ParallelExecutor) *CFGUseCaseBuilder {
	b.parallelExecutor = pe
	return b
}

// WithErrorCategorizer sets the error categorizer.
func (b *CFGUseCaseBuilder) WithErrorCategorizer(ec domain.ErrorCategorizer) *CFGUseCaseBuilder {
	b.errorCategorizer = ec
	return b
}

// Build creates the CFGUseCase.
func (b *CFGUseCaseBuilder) Build() (*CFGUseCase, error) {
	if b.fileReader == nil {
		return nil, fmt.Errorf("file reader is required")
	}
	if b.formatter == nil {
		b.formatter = service.NewCFGFormatter()
	}
	if b.progressManager == nil {
		b.progressManager = service.NewProgressManager()
	}
	if b.parallelExecutor == nil {
		b.parallelExecutor = service.NewParallelExecutor()
	}
	if b.errorCategorizer == nil {
		b.errorCategorizer = service.NewErrorCategorizer()
	}

	return &CFGUseCase{
		fileReader:       b.fileReader,
		formatter:        b.formatter,
		progressManager:  b.progressManager,
		parallelExecutor: b.parallelExecutor,
		errorCategorizer: b.errorCategorizer,
	}, nil
}

// buildFileTask adapts one already-parsed file into a domain.ExecutableTask
// that just renders it. The actual read/parse/CFG-build work happens once
// per file in the ParseCache populated before tasks are created, with
// PopulateParseCache's own concurrency; a task's job is rendering, so
// ParallelExecutor's timeout covers only this cheap stage, not the parse
// and build.
type buildFileTask struct {
	path        string
	showDetails bool
	format      domain.OutputFormat
	cache       *service.ParseCache
	formatter   *service.CFGFormatterImpl
	result      *domain.FileCFGResult
}

func (t *buildFileTask) Name() string    { return t.path }
func (t *buildFileTask) IsEnabled() bool { return true }

func (t *buildFileTask) Execute(ctx context.Context) (interface{}, error) {
	entry, ok := t.cache.Get(t.path)
	if !ok {
		err := fmt.Errorf("no parse result cached for %s", t.path)
		t.result = &domain.FileCFGResult{FilePath: t.path, Error: err}
		return nil, err
	}
	if entry.ParseErr != nil {
		wrapped := domain.NewParseError(t.path, entry.ParseErr)
		t.result = &domain.FileCFGResult{FilePath: t.path, Error: wrapped}
		return nil, wrapped
	}
	if entry.CFGErr != nil {
		wrapped := domain.NewCFGBuildError(fmt.Sprintf("failed to build CFG for %s", t.path), entry.CFGErr)
		t.result = &domain.FileCFGResult{FilePath: t.path, Error: wrapped}
		return nil, wrapped
	}

	rendered, err := t.formatter.Format(entry.ModuleCFG, t.format, t.showDetails)
	if err != nil {
		t.result = &domain.FileCFGResult{FilePath: t.path, Error: err}
		return nil, err
	}

	t.result = &domain.FileCFGResult{
		FilePath:   t.path,
		Rendered:   rendered,
		BlockCount: len(entry.ModuleCFG.Blocks),
		FuncCount:  len(entry.ModuleCFG.FuncCFGs),
		ClassCount: len(entry.ModuleCFG.ClassCFGs),
	}
	return t.result, nil
}

// Execute builds CFGs for every file the request resolves to.
func (uc *CFGUseCase) Execute(ctx context.Context, req domain.BuildRequest) (*domain.BuildResponse, error) {
	includePatterns := req.IncludePatterns
	excludePatterns := req.ExcludePatterns
	recursive := req.Recursive

	if req.ConfigFile != "" || len(includePatterns) == 0 {
		loader := config.NewTomlConfigLoader()
		startDir := "."
		if len(req.Paths) > 0 {
			startDir = req.Paths[0]
		}
		loaded, err := loadBuildConfig(loader, req.ConfigFile, startDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve configuration: %w", err)
		}
		if len(includePatterns) == 0 {
			includePatterns = loaded.Build.IncludePatterns
		}
		if len(excludePatterns) == 0 {
			excludePatterns = loaded.Build.ExcludePatterns
		}
		if !recursive {
			recursive = loaded.Build.Recursive
		}
	}

	files, err := ResolveFilePaths(uc.fileReader, req.Paths, recursive, includePatterns, excludePatterns, false)
	if err != nil {
		return nil, fmt.Errorf("failed to collect Python files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no Python files found in the specified paths")
	}

	format := req.OutputFormat
	if format == "" {
		format = domain.OutputFormatText
	}

	if uc.progressManager != nil {
		uc.progressManager.Initialize(len(files))
		uc.progressManager.StartTask("build")
	}

	cache := service.PopulateParseCache(ctx, files, service.ParseCachePopulatorConfig{BuildCFGs: true})

	tasks := make([]*buildFileTask, len(files))
	executable := make([]domain.ExecutableTask, len(files))
	for i, f := range files {
		t := &buildFileTask{
			path:        f,
			showDetails: req.ShowDetails,
			format:      format,
			cache:       cache,
			formatter:   uc.formatter,
		}
		tasks[i] = t
		executable[i] = t
	}

	runErr := uc.parallelExecutor.Execute(ctx, executable)

	if uc.progressManager != nil {
		uc.progressManager.UpdateProgress("build", len(files), len(files))
		uc.progressManager.CompleteTask("build", runErr == nil)
		uc.progressManager.Close()
	}

	resp := &domain.BuildResponse{TotalFiles: len(files)}
	for _, t := range tasks {
		if t.result == nil {
			continue
		}
		resp.Files = append(resp.Files, t.result)
		if t.result.Error != nil {
			resp.Errors = append(resp.Errors, t.result.Error)
		}
	}

	if len(resp.Errors) > 0 {
		categorized := uc.errorCategorizer.Categorize(resp.Errors[0])
		return resp, fmt.Errorf("build completed with %d error(s): %w", len(resp.Errors), categorized)
	}

	return resp, nil
}

func loadBuildConfig(loader *config.TomlConfigLoader, configFile, startDir string) (*config.Config, error) {
	if configFile != "" {
		return loader.LoadFromFile(configFile)
	}
	return loader.LoadConfig(startDir)
}
