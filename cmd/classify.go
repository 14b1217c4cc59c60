package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudcleaner/cloudcleaner/internal/safety"
)

type classifyOutput struct {
	Path    string         `json:"path"`
	Verdict safety.Verdict `json:"verdict"`
}

func newClassifyCmd(root *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "classify PATH...",
		Short: "Show whether paths may be deleted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}

			results := make([]classifyOutput, 0, len(args))
			for _, p := range args {
				v, err := a.classifier.Classify(p)
				if err != nil {
					return err
				}
				results = append(results, classifyOutput{Path: p, Verdict: v})
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, results)
			}
			for _, r := range results {
				if _, err := fmt.Fprintf(out, "  %-22s %s  (%s)\n", r.Verdict.Kind, r.Path, r.Verdict.Reason); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output verdicts as JSON")
	return cmd
}
