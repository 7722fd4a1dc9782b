package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	mcp    bool
	stdout io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMCP serves the MCP tools on stdin/stdout instead of starting the
// HTTP server. Logs go to stderr.
func WithMCP(enabled bool) Option {
	return func(a *application) {
		a.mcp = enabled
	}
}

// WithLogOutput overrides where the JSON logger writes.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.stdout = w
	}
}
