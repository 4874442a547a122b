// Package config loads engine and CLI settings with viper.
package config

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds settings shared by the engine and the CLI.
type Config struct {
	// Validate every superblock mirror instead of the primary copy only.
	CheckMirrors bool `mapstructure:"check_mirrors"`
	// Verify the checksum of every tree block read.
	VerifyTreeChecksums bool `mapstructure:"verify_tree_checksums"`
	// Largest single physical read issued to the device.
	ReadChunkSize int `mapstructure:"read_chunk_size"`
	// Largest buffer the engine will allocate for one tree block.
	MaxBlockSize int `mapstructure:"max_block_size"`
	// Number of tree blocks kept in the block cache; 0 disables it.
	CacheBlocks int `mapstructure:"cache_blocks"`
	// Byte offset of the filesystem inside the opened file, for whole-disk
	// images with a partition table.
	PartitionOffset int64 `mapstructure:"partition_offset"`
	// logrus level name.
	LogLevel string `mapstructure:"log_level"`
}

// Defaults.
const (
	DefaultReadChunkSize = 64 * 1024
	DefaultMaxBlockSize  = 64 * 1024
	DefaultCacheBlocks   = 256
	DefaultLogLevel      = "warning"
)

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("check_mirrors", true)
	v.SetDefault("verify_tree_checksums", true)
	v.SetDefault("read_chunk_size", DefaultReadChunkSize)
	v.SetDefault("max_block_size", DefaultMaxBlockSize)
	v.SetDefault("cache_blocks", DefaultCacheBlocks)
	v.SetDefault("partition_offset", 0)
	v.SetDefault("log_level", DefaultLogLevel)
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		CheckMirrors:        true,
		VerifyTreeChecksums: true,
		ReadChunkSize:       DefaultReadChunkSize,
		MaxBlockSize:        DefaultMaxBlockSize,
		CacheBlocks:         DefaultCacheBlocks,
		LogLevel:            DefaultLogLevel,
	}
}

// Load reads configuration into v (the global viper instance when nil).
// configFile, when set, is read instead of searching for btrfs-config.yaml.
// Environment variables prefixed BTRFS_ override the file.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("btrfs-config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.btrfs")
		v.AddConfigPath("/etc/btrfs")
	}

	SetDefaults(v)

	v.SetEnvPrefix("BTRFS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.ReadChunkSize <= 0 {
		return fmt.Errorf("read_chunk_size must be positive, got %d", c.ReadChunkSize)
	}
	if c.MaxBlockSize <= 0 {
		return fmt.Errorf("max_block_size must be positive, got %d", c.MaxBlockSize)
	}
	if c.CacheBlocks < 0 {
		return fmt.Errorf("cache_blocks must not be negative, got %d", c.CacheBlocks)
	}
	if c.PartitionOffset < 0 {
		return fmt.Errorf("partition_offset must not be negative, got %d", c.PartitionOffset)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// Level returns the configured logrus level, falling back to warning.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}
