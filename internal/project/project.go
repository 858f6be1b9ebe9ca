// Package project reads the optional dazzle.yaml manifest at a project
// root. Projects without a manifest get defaults, so a bare directory of
// .dzl files is already a valid project.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestName is the filename looked up at the project root.
const ManifestName = "dazzle.yaml"

// Manifest is the project configuration.
type Manifest struct {
	// SourceDirs lists directories (relative to the root) scanned for
	// .dzl files. Defaults to the root itself.
	SourceDirs []string `yaml:"source_dirs"`
	// OutDir receives generator output. Defaults to "build".
	OutDir string `yaml:"out_dir"`
	// Generators names the generators run by the build command. Defaults
	// to the JSON emitter.
	Generators []string `yaml:"generators"`
}

// Load reads the manifest at root, applying defaults for a missing file or
// missing keys. A root that is itself a file gets defaults only.
func Load(root string) (*Manifest, error) {
	m := &Manifest{}

	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return applyDefaults(m), nil
	}

	raw, err := os.ReadFile(filepath.Join(root, ManifestName))
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", ManifestName, err)
	default:
		if err := yaml.Unmarshal(raw, m); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", ManifestName, err)
		}
	}
	return applyDefaults(m), nil
}

func applyDefaults(m *Manifest) *Manifest {
	if len(m.SourceDirs) == 0 {
		m.SourceDirs = []string{"."}
	}
	if m.OutDir == "" {
		m.OutDir = "build"
	}
	if len(m.Generators) == 0 {
		m.Generators = []string{"json"}
	}
	return m
}

// SourcePaths resolves the configured source directories against the root.
func (m *Manifest) SourcePaths(root string) []string {
	out := make([]string, 0, len(m.SourceDirs))
	for _, dir := range m.SourceDirs {
		out = append(out, filepath.Join(root, dir))
	}
	return out
}
