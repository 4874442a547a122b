package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-btrfs/pkg/app/tree"
)

var (
	treeName     string
	treeMaxItems int
)

var treeCmd = &cobra.Command{
	Use:   "tree [device]",
	Short: "Dump the blocks and items of a tree",
	Long: `Walk a tree depth first and print every block header, key pointer and
leaf item key.

Examples:
  # Dump the root tree
  go-btrfs tree /dev/sdb1

  # Dump the chunk tree as YAML
  go-btrfs tree backup.img --tree chunk -o yaml

  # First 50 items of the default filesystem tree
  go-btrfs tree backup.img --tree fs --limit 50`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)

		response, err := tree.Handle(ctx, &tree.Request{
			Target:   deviceTarget(args[0]),
			Tree:     treeName,
			MaxItems: treeMaxItems,
		})
		if err != nil {
			return err
		}
		return tree.FormatOutput(ctx.Out, response, ctx.OutputFormat)
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)

	treeCmd.Flags().StringVarP(&treeName, "tree", "t", tree.TreeRoot, "tree to dump (root, chunk, fs)")
	treeCmd.Flags().IntVar(&treeMaxItems, "limit", 0, "maximum leaf items (0 for no limit)")
}
