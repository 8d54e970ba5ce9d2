// Package cli implements the seqgraph command-line interface.
//
// This package provides commands for building de Bruijn graph indexes
// from sequence corpora, annotating graph nodes with source labels,
// querying new sequences against an index, and inspecting or serving
// the resulting artifacts. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - build: Index a sequence corpus as a de Bruijn graph
//   - annotate: Attach source labels to the nodes of an existing graph
//   - query: Resolve query sequences against a graph and its annotation
//   - stats: Print index and annotation statistics
//   - draw: Export a seed window's neighborhood as DOT or SVG
//   - serve: Expose the query engine over HTTP
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context to allow structured progress
// tracking.
//
// # Configuration
//
// An optional TOML file at ~/.config/seqgraph/config.toml (or --config)
// supplies defaults for flags the user leaves unset; explicit flags
// always win.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/seqgraph/seqgraph/pkg/annotation"
	"github.com/seqgraph/seqgraph/pkg/graph"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "seqgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	config *fileConfig
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard
// (~/.config/seqgraph/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Artifact Loaders
// =============================================================================

// loadIndex opens a graph index with a terminal spinner for the load
// phase.
func loadIndex(ctx context.Context, path string) (*graph.Index, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Loading graph %s...", filepath.Base(path)))
	spinner.Start()
	idx, err := graph.OpenFile(path)
	spinner.Stop()
	return idx, err
}

// loadMatrix opens an annotation matrix with a terminal spinner for
// the load phase.
func loadMatrix(ctx context.Context, path string) (annotation.Matrix, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Loading annotation %s...", filepath.Base(path)))
	spinner.Start()
	m, err := annotation.OpenFile(path)
	spinner.Stop()
	return m, err
}

// =============================================================================
// Output Helpers
// =============================================================================

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
