package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudcleaner/cloudcleaner/internal/discovery"
	"github.com/cloudcleaner/cloudcleaner/internal/selectui"
)

// scanOutput adds the history id to a scan result in JSON output.
type scanOutput struct {
	*discovery.Result
	ScanID string `json:"scan_id,omitempty"`
}

func newScanCmd(root *rootOptions) *cobra.Command {
	var (
		quick   bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find reclaimable disk space",
		Long: `Scan the configured cache, temp and log locations and report how much
space each one holds, largest first. Nothing is deleted. The result is
saved to history so a later clean can refer to it with --scan-id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}

			res, err := a.engine().Scan(cmd.Context(), quick)
			if err != nil {
				return err
			}

			id, err := a.history.RecordScan(res)
			if err != nil {
				a.logger.Warn().Err(err).Msg("Failed to record scan in history")
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, scanOutput{Result: res, ScanID: id})
			}
			if err := selectui.WriteStatic(out, res); err != nil {
				return err
			}
			if id != "" {
				_, err = fmt.Fprintf(out, "  Scan ID: %s\n", id)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&quick, "quick", false, "Scan only the fast, most common locations")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the result as JSON")
	return cmd
}
