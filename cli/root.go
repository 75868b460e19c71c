// Package cli wires configuration, logging and the upstream clients into the
// torrent-finder commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felipemarinho97/torrent-finder/consts"
)

// Execute runs the command tree with the process arguments.
func Execute(ctx context.Context) error {
	return newRootCmd(os.Stdout).ExecuteContext(ctx)
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "torrent-finder",
		Short:        "Search torrents through Jackett and browse what is popular on TMDB",
		Version:      consts.Version(),
		SilenceUsage: true,
	}
	root.SetOut(out)

	info := consts.GetBuildInfo()
	root.SetVersionTemplate(fmt.Sprintf("torrent-finder %s\ncommit: %s\nbuilt: %s\n", info["version"], info["revision"], info["built"]))

	root.AddCommand(newServeCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newDiscoverCmd())
	root.AddCommand(newTagsCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), consts.GetBuildInfo())
		},
	}
}
