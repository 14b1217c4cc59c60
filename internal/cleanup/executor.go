// Package cleanup previews and executes deletion of selected paths.
//
// Every path is re-classified immediately before removal, sized fresh and
// recorded in the audit log before the removal primitive runs. A failure
// on one path never stops the batch.
package cleanup

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/cloudcleaner/cloudcleaner/internal/analyze"
	"github.com/cloudcleaner/cloudcleaner/internal/config"
	"github.com/cloudcleaner/cloudcleaner/internal/core"
	ccerrors "github.com/cloudcleaner/cloudcleaner/internal/errors"
	"github.com/cloudcleaner/cloudcleaner/internal/logging"
	"github.com/cloudcleaner/cloudcleaner/internal/safety"
)

// Executor deletes paths. It owns its audit log; use one executor per
// session and do not share it between sessions.
type Executor struct {
	classifier *safety.Classifier
	fs         afero.Fs
	remover    Remover
	trash      Trasher
	workers    int
	logger     zerolog.Logger
	now        func() time.Time

	auditMu sync.Mutex
	audit   []Record
}

// Option configures an Executor.
type Option func(*Executor)

// WithFs sets the filesystem used for stat and size. It also becomes the
// default remover.
func WithFs(fs afero.Fs) Option {
	return func(e *Executor) { e.fs = fs }
}

// WithRemover replaces the permanent removal primitive.
func WithRemover(r Remover) Option {
	return func(e *Executor) { e.remover = r }
}

// WithTrash sets the trash used when Execute is asked for it.
func WithTrash(t Trasher) Option {
	return func(e *Executor) { e.trash = t }
}

// WithWorkers bounds how many path families are deleted at once.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithClock sets the time source for records and results.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// NewExecutor creates an executor. Without WithTrash the platform trash
// is used.
func NewExecutor(classifier *safety.Classifier, opts ...Option) *Executor {
	e := &Executor{
		classifier: classifier,
		fs:         afero.NewOsFs(),
		workers:    config.DefaultWorkers(),
		logger:     logging.GetLogger("cleanup"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.remover == nil {
		e.remover = fsRemover{fs: e.fs}
	}
	if e.trash == nil {
		e.trash = DefaultTrash()
	}
	return e
}

// TrashAvailable reports whether Execute can honor a trash request.
func (e *Executor) TrashAvailable() bool {
	return e.trash != nil && e.trash.Available()
}

// Preview reports what Execute would do with paths without changing
// anything. Sizes are measured now, not taken from an earlier scan.
// Protected paths and paths that cannot be inspected are listed in
// Warnings with the reason; missing paths are left out. Duplicates are
// dropped and a path inside another listed path is folded into it, so
// the totals match what Execute would free.
func (e *Executor) Preview(ctx context.Context, paths []string) *Plan {
	plan := &Plan{TrashAvailable: e.TrashAvailable(), Items: []PlanItem{}, Warnings: []string{}}

	type candidate struct {
		path    safety.Path
		fi      os.FileInfo
		verdict safety.Verdict
	}
	var candidates []candidate
	seen := make(map[string]bool, len(paths))
	for _, raw := range paths {
		cp, err := e.classifier.Canonicalize(raw)
		if err != nil {
			plan.Warnings = append(plan.Warnings, raw+": "+err.Error())
			continue
		}
		if seen[cp.Key] {
			continue
		}
		seen[cp.Key] = true

		fi, err := core.Lstat(e.fs, cp.Path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			plan.Warnings = append(plan.Warnings, cp.Path+": "+err.Error())
			continue
		}

		v, err := e.classifier.ClassifyCanonical(cp)
		if err != nil {
			plan.Warnings = append(plan.Warnings, cp.Path+": "+err.Error())
			continue
		}
		switch v.Kind {
		case safety.NotFound:
			continue
		case safety.Protected:
			plan.Warnings = append(plan.Warnings, cp.Path+": "+v.Reason)
			continue
		case safety.Locked:
			plan.Warnings = append(plan.Warnings, cp.Path+": "+v.Reason)
		}
		candidates = append(candidates, candidate{path: cp, fi: fi, verdict: v})
	}

	scanner := e.scanner()
	for _, c := range candidates {
		folded := false
		for _, o := range candidates {
			if o.path.Key != c.path.Key && safety.IsAncestorOrSelf(o.path.Key, c.path.Key) {
				plan.Warnings = append(plan.Warnings, c.path.Path+": included in "+o.path.Path)
				folded = true
				break
			}
		}
		if folded {
			continue
		}
		size := e.measure(ctx, scanner, c.path.Path, c.fi)
		plan.Items = append(plan.Items, PlanItem{
			Path:      c.path.Path,
			SizeBytes: size,
			Type:      core.EntryType(c.fi),
			Verdict:   c.verdict,
		})
		plan.EstimatedBytes += size
	}
	plan.ItemCount = len(plan.Items)
	return plan
}

type outcome struct {
	deleted    bool
	failed     bool
	freed      int64
	err        error
	trashed    bool
	downgraded bool
}

type target struct {
	index int
	path  safety.Path
}

// Execute deletes paths, moving them to the trash when useTrash is set
// and a trash is available. If the trash was requested but cannot be
// used, paths are removed permanently and TrashDowngraded is set.
//
// Paths are deduplicated. A path and its ancestors or descendants in the
// same batch are handled one after another by a single worker; unrelated
// paths run concurrently. Missing paths are skipped without counting.
// Once ctx is cancelled the remaining paths fail without being touched.
func (e *Executor) Execute(ctx context.Context, paths []string, useTrash bool) *Result {
	done := logging.LogOperationStart(e.logger, "execute")
	defer done()

	res := &Result{TrashRequested: useTrash, Errors: []string{}}
	trashOK := useTrash && e.TrashAvailable()
	if useTrash && !trashOK {
		res.TrashDowngraded = true
		e.logger.Warn().Msg("Trash requested but unavailable, deleting permanently")
	}

	outcomes := make([]outcome, len(paths))
	var targets []target
	seen := make(map[string]bool, len(paths))
	for i, raw := range paths {
		cp, err := e.classifier.Canonicalize(raw)
		if err != nil {
			outcomes[i] = outcome{failed: true, err: err}
			continue
		}
		if seen[cp.Key] {
			continue
		}
		seen[cp.Key] = true
		targets = append(targets, target{index: i, path: cp})
	}

	scanner := e.scanner()
	g := new(errgroup.Group)
	g.SetLimit(e.workers)
	for _, family := range families(targets) {
		g.Go(func() error {
			for _, t := range family {
				outcomes[t.index] = e.deleteOne(ctx, scanner, t.path, trashOK)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		switch {
		case o.failed:
			res.ItemsFailed++
			if o.err != nil {
				res.Errors = append(res.Errors, o.err.Error())
			}
		case o.deleted:
			res.ItemsDeleted++
			res.FreedBytes += o.freed
		}
		if o.trashed {
			res.TrashUsed = true
		}
		if o.downgraded {
			res.TrashDowngraded = true
		}
	}
	res.Success = res.ItemsFailed == 0
	res.Timestamp = e.now()

	e.logger.Info().
		Int("deleted", res.ItemsDeleted).
		Int("failed", res.ItemsFailed).
		Int64("freed", res.FreedBytes).
		Bool("trash", res.TrashUsed).
		Msg("Cleanup complete")

	return res
}

func (e *Executor) deleteOne(ctx context.Context, scanner *analyze.Scanner, p safety.Path, useTrash bool) outcome {
	log := e.logger.With().Str("path", p.Path).Logger()

	if err := ctx.Err(); err != nil {
		return outcome{failed: true, err: ccerrors.Wrapf(err, ccerrors.ErrIO, "cancelled before deleting %s", p.Path)}
	}

	fi, err := core.Lstat(e.fs, p.Path)
	if os.IsNotExist(err) {
		log.Debug().Msg("Already gone, skipping")
		return outcome{}
	}
	if err != nil {
		return outcome{failed: true, err: classifyIOError(err, p.Path, "cannot stat")}
	}

	v, err := e.classifier.ClassifyCanonical(p)
	if err != nil {
		return outcome{failed: true, err: ccerrors.Wrapf(err, ccerrors.ErrClassify, "cannot classify %s", p.Path)}
	}
	switch v.Kind {
	case safety.NotFound:
		return outcome{}
	case safety.Protected:
		log.Warn().Str("rule", v.Rule).Msg("Refusing to delete protected path")
		return outcome{failed: true, err: ccerrors.Newf(ccerrors.ErrProtected, "%s is protected: %s", p.Path, v.Reason).
			WithDetail("path", p.Path)}
	case safety.Locked:
		return outcome{failed: true, err: ccerrors.Newf(ccerrors.ErrLocked, "%s is locked: %s", p.Path, v.Reason).
			WithDetail("path", p.Path)}
	}

	size := e.measure(ctx, scanner, p.Path, fi)
	e.appendRecord(Record{
		Path:        p.Path,
		SizeBytes:   size,
		Type:        core.EntryType(fi),
		AttemptedAt: e.now(),
	})

	var o outcome
	if useTrash {
		err = e.trash.Trash(p.Path)
		switch {
		case err == nil:
			o.trashed = true
		case ccerrors.IsErrorCode(err, ccerrors.ErrTrashUnavailable):
			log.Warn().Err(err).Msg("Trash cannot take path, deleting permanently")
			o.downgraded = true
			err = e.remover.RemoveAll(p.Path)
		}
	} else {
		err = e.remover.RemoveAll(p.Path)
	}

	if err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Msg("Removal failed")
		o.failed = true
		o.err = classifyIOError(err, p.Path, "failed to delete")
		return o
	}

	o.deleted = true
	if err == nil {
		o.freed = size
	}
	log.Debug().Int64("bytes", o.freed).Msg("Deleted")
	return o
}

func (e *Executor) scanner() *analyze.Scanner {
	return analyze.NewScanner(
		analyze.WithFs(e.fs),
		analyze.WithCaseInsensitive(e.classifier.CaseInsensitive()),
	)
}

// measure returns the current size of path. Unreadable parts of a tree
// are left out; if the walk fails outright the entry's own size is used.
func (e *Executor) measure(ctx context.Context, scanner *analyze.Scanner, path string, fi os.FileInfo) int64 {
	usage, err := scanner.Measure(ctx, path, nil)
	if err != nil && fi.Mode().IsRegular() {
		return fi.Size()
	}
	return usage.Bytes
}

func classifyIOError(err error, path, msg string) error {
	code := ccerrors.ErrIO
	if os.IsPermission(err) {
		code = ccerrors.ErrPermission
	}
	return ccerrors.Wrapf(err, code, "%s %s", msg, path).WithDetail("path", path)
}

// families groups targets under their top-most ancestor in the batch.
// Within a family targets keep input order.
func families(targets []target) [][]target {
	sorted := append([]target(nil), targets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].path.Key) < len(sorted[j].path.Key)
	})

	var heads []string
	headOf := make(map[string]string, len(targets))
	for _, t := range sorted {
		head := t.path.Key
		for _, h := range heads {
			if safety.IsAncestorOrSelf(h, t.path.Key) {
				head = h
				break
			}
		}
		if head == t.path.Key {
			heads = append(heads, head)
		}
		headOf[t.path.Key] = head
	}

	byHead := make(map[string][]target, len(heads))
	var order []string
	for _, t := range targets {
		h := headOf[t.path.Key]
		if _, ok := byHead[h]; !ok {
			order = append(order, h)
		}
		byHead[h] = append(byHead[h], t)
	}

	out := make([][]target, 0, len(order))
	for _, h := range order {
		out = append(out, byHead[h])
	}
	return out
}
