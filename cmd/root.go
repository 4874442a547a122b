package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-btrfs/internal/config"
	"github.com/deploymenttheory/go-btrfs/pkg/app"
)

var (
	// Global output flags
	verbose      bool
	quiet        bool
	outputFormat string

	// Configuration
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "go-btrfs",
	Short: "Read-only BTRFS filesystem inspector",
	Long: `go-btrfs is a cross-platform, read-only command-line tool for inspecting
BTRFS filesystems in raw disks, partitions or image files.

It locates and validates the superblock, bootstraps the chunk map, reads the
chunk and root trees and resolves the default filesystem tree, without
mounting anything.

Commands:
  probe       Check whether a device holds a btrfs filesystem
  uuid        Print the filesystem UUID
  info        Show filesystem attributes and tree locations
  ls          List the root directory
  tree        Dump the blocks and items of a tree`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(viper.GetViper(), cfgFile)
		if err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid configuration", err)
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if ce, ok := err.(*app.CommonError); ok {
			fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", ce.Code, ce)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()

	// Output control
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	flags.StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")

	// Engine settings, also read from btrfs-config.yaml and BTRFS_* variables
	flags.StringVar(&cfgFile, "config", "", "config file (default: btrfs-config.yaml in ., ./config, $HOME/.btrfs, /etc/btrfs)")
	flags.Bool("check-mirrors", true, "validate every superblock mirror and use the newest")
	flags.Bool("verify-checksums", true, "verify the checksum of every tree block")
	flags.Int("cache-blocks", config.DefaultCacheBlocks, "number of tree blocks to cache")
	flags.Int64("partition-offset", 0, "byte offset of the filesystem inside the device")
	flags.String("log-level", config.DefaultLogLevel, "log level (trace, debug, info, warning, error)")

	cobra.CheckErr(viper.BindPFlag("check_mirrors", flags.Lookup("check-mirrors")))
	cobra.CheckErr(viper.BindPFlag("verify_tree_checksums", flags.Lookup("verify-checksums")))
	cobra.CheckErr(viper.BindPFlag("cache_blocks", flags.Lookup("cache-blocks")))
	cobra.CheckErr(viper.BindPFlag("partition_offset", flags.Lookup("partition-offset")))
	cobra.CheckErr(viper.BindPFlag("log_level", flags.Lookup("log-level")))
}

// newAppContext builds the application context from the global flags and the
// loaded configuration
func newAppContext(cmd *cobra.Command) *app.Context {
	ctx := app.NewContext()
	ctx.OutputFormat = outputFormat
	ctx.Verbose = verbose
	ctx.Quiet = quiet
	ctx.Out = cmd.OutOrStdout()
	if cfg != nil {
		ctx.Config = cfg
	}
	ctx.ApplyVerbosity()
	return ctx
}

// deviceTarget returns the target named on the command line
func deviceTarget(path string) app.DeviceTarget {
	target := app.DeviceTarget{Path: path}
	if cfg != nil {
		target.PartitionOffset = cfg.PartitionOffset
	}
	return target
}
