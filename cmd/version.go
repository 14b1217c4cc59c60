package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cloudcleaner/cloudcleaner/internal/core"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "ccl %s (%s) built %s\n%s/%s, %s\n",
				appVersion, appCommit, appDate,
				runtime.GOOS, runtime.GOARCH, core.Describe(cmd.Context()))
			return err
		},
	}
}
