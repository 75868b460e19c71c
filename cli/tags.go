package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/felipemarinho97/torrent-finder/tags"
)

func newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags <title>",
		Short: "Print the quality tags found in a release title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), tags.Extract(strings.Join(args, " ")))
		},
	}
}
