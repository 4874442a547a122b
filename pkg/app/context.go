package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/deploymenttheory/go-btrfs/internal/config"
)

// Context holds application-wide configuration and state
type Context struct {
	context.Context

	// Output preferences
	OutputFormat string
	Verbose      bool
	Quiet        bool

	// Engine settings
	Config *config.Config

	// Logger receives engine diagnostics and verbose messages
	Logger *logrus.Logger

	// Out receives formatted command output
	Out io.Writer
}

// NewContext creates a new application context
func NewContext() *Context {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)

	return &Context{
		Context:      context.Background(),
		OutputFormat: "table",
		Config:       config.Default(),
		Logger:       logger,
		Out:          os.Stdout,
	}
}

// ApplyVerbosity sets the logger level from the configured log level and the
// verbose and quiet flags. Quiet wins over verbose.
func (c *Context) ApplyVerbosity() {
	level := c.Config.Level()
	switch {
	case c.Quiet:
		level = logrus.ErrorLevel
	case c.Verbose && level < logrus.DebugLevel:
		level = logrus.DebugLevel
	}
	c.Logger.SetLevel(level)
}

// Log outputs a message based on verbosity settings
func (c *Context) Log(format string, args ...interface{}) {
	if !c.Quiet && c.Verbose {
		c.Logger.Infof(format, args...)
	}
}

// Error outputs an error message unless quiet
func (c *Context) Error(message string) {
	if !c.Quiet {
		fmt.Fprintln(os.Stderr, "Error:", message)
	}
}
