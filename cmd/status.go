package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cloudcleaner/cloudcleaner/internal/status"
)

func newStatusCmd(root *rootOptions) *cobra.Command {
	var (
		jsonOut bool
		watch   bool
		refresh int
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show disk usage",
		Long:  "Capacity, used and free space for each local volume, plus the size of the trash.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Config is loaded only to surface a broken config file early.
			if _, err := newApp(root); err != nil {
				return err
			}
			c := status.NewCollector()

			if watch && !jsonOut && interactive() {
				m := status.NewModel(c, time.Duration(refresh)*time.Second)
				if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
					return fmt.Errorf("run status view: %w", err)
				}
				return nil
			}

			r, err := c.Collect(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), status.Render(r, 80))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep refreshing on a terminal")
	cmd.Flags().IntVar(&refresh, "refresh", 2, "Refresh interval in seconds for --watch")
	return cmd
}
