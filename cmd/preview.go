package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cloudcleaner/cloudcleaner/internal/cleanup"
	"github.com/cloudcleaner/cloudcleaner/internal/core"
)

func newPreviewCmd(root *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "preview PATH...",
		Short: "Show what clean would delete",
		Long: `Classify and measure each path as clean would, without deleting
anything. Protected paths are listed as warnings; missing paths are
left out.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}

			plan := a.executor().Preview(cmd.Context(), args)
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), plan)
			}
			return writePlan(cmd.OutOrStdout(), plan)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the plan as JSON")
	return cmd
}

func writePlan(w io.Writer, plan *cleanup.Plan) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("  Would delete %d item(s), about %s\n", plan.ItemCount, core.FormatSize(plan.EstimatedBytes))
	for _, it := range plan.Items {
		printf("    %9s  %-9s %s\n", core.FormatSize(it.SizeBytes), it.Type, it.Path)
	}
	if len(plan.Warnings) > 0 {
		printf("\n  Warnings:\n")
		for _, msg := range plan.Warnings {
			printf("    - %s\n", msg)
		}
	}
	if !plan.TrashAvailable {
		printf("\n  Trash is not available; deletion would be permanent.\n")
	}
	return err
}
