package services

import (
	"github.com/sirupsen/logrus"

	"github.com/deploymenttheory/go-btrfs/internal/config"
)

// Options tunes how a filesystem is mounted and read.
type Options struct {
	// CheckMirrors validates every superblock mirror that fits on the device
	// and uses the one with the highest generation. When false only the
	// primary copy is read.
	CheckMirrors bool
	// VerifyTreeChecksums rejects tree blocks whose checksum does not match.
	VerifyTreeChecksums bool
	// ReadChunkSize bounds every physical read.
	ReadChunkSize int
	// MaxBlockSize is the largest tree block the reader will allocate.
	MaxBlockSize int
	// CacheBlocks is the capacity of the tree block cache; 0 disables it.
	CacheBlocks int
	// Logger receives progress and diagnostics. Defaults to the logrus
	// standard logger.
	Logger logrus.FieldLogger
}

// DefaultOptions returns the options matching config.Default.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig converts loaded configuration into mount options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		CheckMirrors:        cfg.CheckMirrors,
		VerifyTreeChecksums: cfg.VerifyTreeChecksums,
		ReadChunkSize:       cfg.ReadChunkSize,
		MaxBlockSize:        cfg.MaxBlockSize,
		CacheBlocks:         cfg.CacheBlocks,
	}
}

func (o Options) withDefaults() Options {
	if o.ReadChunkSize <= 0 {
		o.ReadChunkSize = config.DefaultReadChunkSize
	}
	if o.MaxBlockSize <= 0 {
		o.MaxBlockSize = config.DefaultMaxBlockSize
	}
	if o.CacheBlocks < 0 {
		o.CacheBlocks = 0
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}
