package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cloudcleaner/cloudcleaner/internal/core"
	"github.com/cloudcleaner/cloudcleaner/internal/store"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		limit   int
		stats   bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past scans and cleanups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if stats {
				s, err := a.history.Stats()
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(out, s)
				}
				return writeStats(out, s)
			}

			h, err := a.history.Recent(limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(out, h)
			}
			return writeHistory(out, h)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of entries of each kind to show")
	cmd.Flags().BoolVar(&stats, "stats", false, "Show totals instead of entries")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func writeHistory(w io.Writer, h *store.History) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("  Scans\n")
	if len(h.Scans) == 0 {
		printf("    none\n")
	}
	for _, s := range h.Scans {
		printf("    [%s] %s  %-5s  %d items, %s\n",
			s.ID, s.Timestamp.Local().Format("2006-01-02 15:04"), s.ScanType,
			s.TotalItems, core.FormatSize(s.TotalSizeBytes))
	}

	printf("\n  Cleanups\n")
	if len(h.Cleanups) == 0 {
		printf("    none\n")
	}
	for _, c := range h.Cleanups {
		printf("    [%s] %s  deleted %d, failed %d, freed %s\n",
			c.ID, c.Timestamp.Local().Format("2006-01-02 15:04"),
			c.ItemsDeleted, c.ItemsFailed, core.FormatSize(c.BytesFreed))
	}
	return err
}

func writeStats(w io.Writer, s *store.Stats) error {
	_, err := fmt.Fprintf(w,
		"  Scans:          %d\n  Cleanups:       %d\n  Space freed:    %s\n  Items cleaned:  %d\n",
		s.TotalScans, s.TotalCleanups, core.FormatSize(s.TotalBytesFreed), s.TotalItemsCleaned)
	return err
}
