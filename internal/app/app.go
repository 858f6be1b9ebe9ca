// Package app wires the frontend, pipeline, and generators behind the two
// CLI commands.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/dazzle-lang/dazzle/internal/appspec"
	"github.com/dazzle-lang/dazzle/internal/codegen"
	"github.com/dazzle-lang/dazzle/internal/ctxlog"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/dazzle-lang/dazzle/internal/hcl"
	"github.com/dazzle-lang/dazzle/internal/pipeline"
	"github.com/dazzle-lang/dazzle/internal/project"
)

// App encapsulates one invocation's dependencies and configuration.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp constructs an App with its own isolated logger. Diagnostics and
// command output go to outW; logs go to errW.
func NewApp(outW, errW io.Writer, config *Config) *App {
	return &App{
		outW:   outW,
		errW:   errW,
		logger: newLogger(config.LogLevel, config.LogFormat, errW),
		config: config,
	}
}

// Run executes the configured command. A returned error means the command
// failed; validation errors are already printed as diagnostics by then.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	manifest, err := project.Load(a.config.Root)
	if err != nil {
		return err
	}

	spec, diags, err := a.compile(ctx, manifest)
	if err != nil {
		return err
	}
	if err := a.printDiags(diags); err != nil {
		return err
	}
	if diags.HasErrors() {
		return fmt.Errorf("validation failed: %d error(s)", len(diags.Errors()))
	}

	if a.config.Command == "build" {
		return a.generate(ctx, manifest, spec)
	}
	return nil
}

// compile loads the project sources and runs the pipeline, merging
// frontend and pipeline diagnostics into one sorted list.
func (a *App) compile(ctx context.Context, manifest *project.Manifest) (*appspec.AppSpec, diag.List, error) {
	loader := hcl.NewLoader()
	modules, loadDiags, err := loader.Load(ctx, manifest.SourcePaths(a.config.Root)...)
	if err != nil {
		return nil, nil, err
	}
	if loadDiags.HasErrors() {
		return nil, loadDiags, nil
	}

	spec, diags, err := pipeline.Run(ctx, modules)
	if err != nil {
		return nil, nil, err
	}

	merged := append(loadDiags, diags...)
	merged.Sort()
	return spec, merged, nil
}

// generate runs the configured generators. compile already guaranteed a
// spec exists at this point.
func (a *App) generate(ctx context.Context, manifest *project.Manifest, spec *appspec.AppSpec) error {
	if spec == nil {
		return fmt.Errorf("no application model produced; cannot generate")
	}

	outDir := manifest.OutDir
	if a.config.OutDir != "" {
		outDir = a.config.OutDir
	}

	generators, err := codegen.ByName(manifest.Generators)
	if err != nil {
		return err
	}
	for _, gen := range generators {
		a.logger.Info("running generator", "generator", gen.Name(), "out", outDir)
		if err := gen.Generate(ctx, spec, outDir); err != nil {
			return fmt.Errorf("generator %s: %w", gen.Name(), err)
		}
	}
	fmt.Fprintf(a.outW, "build complete: %s (model %s)\n", outDir, spec.Hash[:12])
	return nil
}

// printDiags renders the diagnostic list in the configured format.
func (a *App) printDiags(diags diag.List) error {
	if a.config.DiagFormat == "json" {
		enc := json.NewEncoder(a.outW)
		enc.SetIndent("", "  ")
		if diags == nil {
			diags = diag.List{}
		}
		return enc.Encode(diags)
	}
	for _, d := range diags {
		fmt.Fprintln(a.outW, d.String())
	}
	return nil
}
