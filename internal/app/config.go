package app

import "fmt"

// Config holds everything an App run needs.
type Config struct {
	// Command is "validate" or "build".
	Command string
	// Root is the project root directory or a single .dzl file.
	Root string
	// OutDir overrides the manifest's output directory when non-empty.
	OutDir string
	// DiagFormat selects diagnostic rendering: "text" or "json".
	DiagFormat string
	// LogFormat and LogLevel configure the logger.
	LogFormat string
	LogLevel  string
}

// NewConfig validates and normalizes a Config.
func NewConfig(c Config) (*Config, error) {
	switch c.Command {
	case "validate", "build":
	default:
		return nil, fmt.Errorf("unknown command %q", c.Command)
	}
	if c.Root == "" {
		c.Root = "."
	}
	if c.DiagFormat == "" {
		c.DiagFormat = "text"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	return &c, nil
}
