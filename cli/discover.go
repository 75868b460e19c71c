package cli

import (
	"github.com/spf13/cobra"

	"github.com/felipemarinho97/torrent-finder/schema"
)

func newDiscoverCmd() *cobra.Command {
	var (
		page int
		kind string
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List popular titles from TMDB as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mediaKind, err := schema.ParseMediaKind(kind)
			if err != nil {
				return err
			}
			_, svc, err := setup(cmd.Context(), cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			items, err := svc.tmdb.Discover(cmd.Context(), page, mediaKind)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), items)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "result page, starting at 1")
	cmd.Flags().StringVar(&kind, "type", string(schema.MediaKindMovie), "media type: movie or tv")
	return cmd
}
