// Package codegen defines the generator boundary consumed by the build
// command. Generators read a finished AppSpec and write artifacts; they
// never see unvalidated input.
package codegen

import (
	"context"
	"fmt"

	"github.com/dazzle-lang/dazzle/internal/appspec"
)

// Generator turns an AppSpec into output files under outDir.
type Generator interface {
	Name() string
	Generate(ctx context.Context, spec *appspec.AppSpec, outDir string) error
}

// ByName resolves generator names from the project manifest. Unknown names
// are an error so a typo does not silently skip a target.
func ByName(names []string) ([]Generator, error) {
	var out []Generator
	for _, name := range names {
		switch name {
		case "json":
			out = append(out, &JSONEmitter{})
		default:
			return nil, fmt.Errorf("unknown generator %q", name)
		}
	}
	return out, nil
}
