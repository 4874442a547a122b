package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-btrfs/pkg/app/info"
)

var infoShowChunks bool

var infoCmd = &cobra.Command{
	Use:   "info [device]",
	Short: "Show filesystem attributes and tree locations",
	Long: `Mount a btrfs filesystem read-only and show its label, UUID, sizes,
generation and the logical and physical locations of the chunk, root and
default filesystem trees.

Examples:
  # Show attributes
  go-btrfs info /dev/sdb1

  # Include the chunk map, as JSON
  go-btrfs info backup.img --chunks -o json`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)

		response, err := info.Handle(ctx, &info.Request{
			Target:     deviceTarget(args[0]),
			ShowChunks: infoShowChunks,
		})
		if err != nil {
			return err
		}
		return info.FormatOutput(ctx.Out, response, ctx.OutputFormat)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolVar(&infoShowChunks, "chunks", false, "list the chunk map")
}
