package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-btrfs/pkg/app/probe"
)

var probeCmd = &cobra.Command{
	Use:   "probe [device]",
	Short: "Check whether a device holds a btrfs filesystem",
	Long: `Read the superblock copies of a device and report whether a valid
btrfs superblock was found, with its label, UUID and generation.

A device without a btrfs filesystem is not an error.

Examples:
  # Probe a partition
  go-btrfs probe /dev/sdb1

  # Probe a whole-disk image whose filesystem starts at 1 MiB
  go-btrfs probe disk.img --partition-offset 1048576`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)

		response, err := probe.Handle(ctx, &probe.Request{Target: deviceTarget(args[0])})
		if err != nil {
			return err
		}
		return probe.FormatOutput(ctx.Out, response, ctx.OutputFormat)
	},
}

var uuidCmd = &cobra.Command{
	Use:   "uuid [device]",
	Short: "Print the filesystem UUID",
	Long: `Print the UUID of the btrfs filesystem on a device in canonical form.
Fails when the device does not hold a btrfs filesystem.

Examples:
  go-btrfs uuid /dev/sdb1`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)

		response, err := probe.Handle(ctx, &probe.Request{Target: deviceTarget(args[0])})
		if err != nil {
			return err
		}
		return probe.FormatUUID(ctx.Out, response)
	},
}

func init() {
	rootCmd.AddCommand(probeCmd, uuidCmd)
}
