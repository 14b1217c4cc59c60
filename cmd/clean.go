package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudcleaner/cloudcleaner/internal/cleanup"
	"github.com/cloudcleaner/cloudcleaner/internal/core"
	"github.com/cloudcleaner/cloudcleaner/internal/selectui"
)

// errCleanupIncomplete is returned after output is written when one or
// more items could not be deleted.
var errCleanupIncomplete = errors.New("cleanup finished with failures")

// cleanOutput adds the history id to a cleanup result in JSON output.
type cleanOutput struct {
	*cleanup.Result
	CleanupID string `json:"cleanup_id,omitempty"`
	AuditFile string `json:"audit_file,omitempty"`
}

type cleanOptions struct {
	trash   bool
	noTrash bool
	yes     bool
	jsonOut bool
	scanID  string
}

func newCleanCmd(root *rootOptions) *cobra.Command {
	opts := &cleanOptions{}

	cmd := &cobra.Command{
		Use:   "clean [PATH...]",
		Short: "Delete selected paths",
		Long: `Delete the given paths after re-checking each one against the
protection rules. With --scan-id and no paths, the safe items of that
stored scan are used. With neither, on a terminal, a fresh scan is run
and you pick the items interactively.

Every deletion is recorded in an audit file before it happens.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, root, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.trash, "trash", false, "Move items to the trash instead of deleting them")
	cmd.Flags().BoolVar(&opts.noTrash, "no-trash", false, "Delete permanently even if use_trash is configured")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Output the result as JSON")
	cmd.Flags().StringVar(&opts.scanID, "scan-id", "", "Clean the safe items of a stored scan")
	cmd.MarkFlagsMutuallyExclusive("trash", "no-trash")
	return cmd
}

func runClean(cmd *cobra.Command, root *rootOptions, opts *cleanOptions, args []string) error {
	a, err := newApp(root)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	paths := args
	picked := false
	switch {
	case len(paths) > 0:
	case opts.scanID != "":
		rec, err := a.history.FindScan(opts.scanID)
		if err != nil {
			return err
		}
		if rec.Result == nil {
			return fmt.Errorf("scan %s has no stored items", opts.scanID)
		}
		paths = rec.Result.SafePaths()
	case interactive():
		res, err := a.engine().Scan(ctx, false)
		if err != nil {
			return err
		}
		paths, err = selectui.Pick(res)
		if err != nil {
			return err
		}
		picked = true
	default:
		return errors.New("no paths given; pass paths, --scan-id, or run on a terminal to pick interactively")
	}

	if len(paths) == 0 {
		_, err := fmt.Fprintln(out, "  Nothing to clean.")
		return err
	}

	useTrash := (a.cfg.Settings.UseTrash || opts.trash) && !opts.noTrash
	exec := a.executor()

	if !opts.yes && !picked {
		if !interactive() {
			return errors.New("refusing to delete without confirmation; pass --yes")
		}
		plan := exec.Preview(ctx, paths)
		if err := writePlan(out, plan); err != nil {
			return err
		}
		ok, err := confirm(cmd.InOrStdin(), out, "Proceed?")
		if err != nil || !ok {
			return err
		}
	}

	res := exec.Execute(ctx, paths, useTrash)

	auditFile, err := writeAudit(a, exec, res)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to write audit file")
	}

	id, err := a.history.RecordCleanup(res, opts.scanID)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record cleanup in history")
	}

	if opts.jsonOut {
		err = writeJSON(out, cleanOutput{Result: res, CleanupID: id, AuditFile: auditFile})
	} else {
		err = writeCleanResult(out, res, id, auditFile)
	}
	if err != nil {
		return err
	}
	if !res.Success {
		return errCleanupIncomplete
	}
	return nil
}

// writeAudit exports the executor's audit log to a timestamped file in
// the configured audit directory. Nothing is written for an empty log.
func writeAudit(a *app, exec *cleanup.Executor, res *cleanup.Result) (string, error) {
	if len(exec.AuditLog()) == 0 {
		return "", nil
	}
	dir := a.cfg.Settings.AuditDir
	if err := a.fs.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := filepath.Join(dir, "cleanup-"+res.Timestamp.UTC().Format("20060102T150405.000000000")+".json")
	f, err := a.fs.Create(name)
	if err != nil {
		return "", err
	}
	if err := exec.ExportAuditLog(f); err != nil {
		_ = f.Close()
		return "", err
	}
	return name, f.Close()
}

func writeCleanResult(w io.Writer, res *cleanup.Result, id, auditFile string) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("  Deleted %d item(s), freed %s", res.ItemsDeleted, core.FormatSize(res.FreedBytes))
	if res.TrashUsed {
		printf(" (moved to trash)")
	}
	printf("\n")
	if res.ItemsFailed > 0 {
		printf("  Failed: %d\n", res.ItemsFailed)
		for _, e := range res.Errors {
			printf("    - %s\n", e)
		}
	}
	if res.TrashDowngraded {
		printf("  Trash was not available for every item; those were deleted permanently.\n")
	}
	if id != "" {
		printf("  Cleanup ID: %s\n", id)
	}
	if auditFile != "" {
		printf("  Audit log: %s\n", auditFile)
	}
	return err
}

// confirm asks a yes/no question; anything but y or yes is no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprintf(out, "%s [y/N] ", question); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

