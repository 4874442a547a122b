package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-btrfs/pkg/app/list"
)

var (
	// Filtering (ls command only)
	listNamePattern string
	listTypes       []string
	listMaxResults  int
)

var listCmd = &cobra.Command{
	Use:     "ls [device]",
	Aliases: []string{"list"},
	Short:   "List the root directory",
	Long: `List the root directory of the default subvolume.

Examples:
  # List everything
  go-btrfs ls /dev/sdb1

  # Only directories
  go-btrfs ls backup.img --type dir

  # Names matching a pattern
  go-btrfs ls backup.img --name "*.conf"`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)

		response, err := list.Handle(ctx, &list.Request{
			Target:      deviceTarget(args[0]),
			NamePattern: listNamePattern,
			Types:       listTypes,
			MaxResults:  listMaxResults,
		})
		if err != nil {
			return err
		}
		return list.FormatOutput(ctx.Out, response, ctx.OutputFormat)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listNamePattern, "name", "n", "", "name pattern (wildcards: *, ?)")
	listCmd.Flags().StringSliceVar(&listTypes, "type", nil, "entry types (file,dir,symlink,...)")
	listCmd.Flags().IntVar(&listMaxResults, "limit", 0, "maximum entries (0 for no limit)")
}
