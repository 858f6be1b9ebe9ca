package codegen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dazzle-lang/dazzle/internal/appspec"
	"github.com/dazzle-lang/dazzle/internal/ctxlog"
)

// JSONEmitter writes the AppSpec as appspec.json. Downstream backends and
// the runtime consume this document instead of re-running the pipeline.
type JSONEmitter struct{}

// Name implements Generator.
func (e *JSONEmitter) Name() string { return "json" }

// Generate implements Generator.
func (e *JSONEmitter) Generate(ctx context.Context, spec *appspec.AppSpec, outDir string) error {
	logger := ctxlog.FromContext(ctx)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %s: %w", outDir, err)
	}

	raw, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling appspec: %w", err)
	}

	path := filepath.Join(outDir, "appspec.json")
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	logger.Debug("appspec written", "path", path, "bytes", len(raw))
	return nil
}
