package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExclusionsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exclusions",
		Short: "Manage paths that are never cleaned",
		Long: `Exclusions protect a path and everything below it from scans and
cleanups, in addition to the built-in protected locations.`,
	}

	var jsonOut bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List excluded paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			entries, err := a.exclusions.ListExclusions()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				if entries == nil {
					entries = []string{}
				}
				return writeJSON(out, entries)
			}
			if len(entries) == 0 {
				_, err = fmt.Fprintln(out, "  No exclusions.")
				return err
			}
			for _, e := range entries {
				if _, err := fmt.Fprintf(out, "  %s\n", e); err != nil {
					return err
				}
			}
			return nil
		},
	}
	list.Flags().BoolVar(&jsonOut, "json", false, "Output as a JSON array")

	add := &cobra.Command{
		Use:   "add PATH...",
		Short: "Exclude paths from cleaning",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			for _, p := range args {
				if err := a.exclusions.AddExclusion(p); err != nil {
					return err
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "  Excluded %s\n", p); err != nil {
					return err
				}
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:     "remove PATH...",
		Aliases: []string{"rm"},
		Short:   "Remove exclusions",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			for _, p := range args {
				if err := a.exclusions.RemoveExclusion(p); err != nil {
					return err
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "  Removed %s\n", p); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}
