package app

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestApplyVerbosity(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		verbose  bool
		quiet    bool
		want     logrus.Level
	}{
		{name: "configured level", logLevel: "warning", want: logrus.WarnLevel},
		{name: "verbose raises level", logLevel: "warning", verbose: true, want: logrus.DebugLevel},
		{name: "verbose keeps trace", logLevel: "trace", verbose: true, want: logrus.TraceLevel},
		{name: "quiet wins", logLevel: "debug", verbose: true, quiet: true, want: logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext()
			ctx.Config.LogLevel = tt.logLevel
			ctx.Verbose = tt.verbose
			ctx.Quiet = tt.quiet

			ctx.ApplyVerbosity()
			assert.Equal(t, tt.want, ctx.Logger.GetLevel())
		})
	}
}
