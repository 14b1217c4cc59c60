// Package discovery finds reclaimable disk space by walking the scan
// groups of a platform profile.
package discovery

import (
	"context"
	"errors"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/cloudcleaner/cloudcleaner/internal/analyze"
	"github.com/cloudcleaner/cloudcleaner/internal/config"
	"github.com/cloudcleaner/cloudcleaner/internal/envutil"
	"github.com/cloudcleaner/cloudcleaner/internal/logging"
	"github.com/cloudcleaner/cloudcleaner/internal/safety"
)

// Engine scans the groups of one profile.
type Engine struct {
	profile    config.Profile
	classifier *safety.Classifier
	fs         afero.Fs
	workers    int
	logger     zerolog.Logger
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithFs sets the filesystem scanned. It should match the classifier's.
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) { e.fs = fs }
}

// WithWorkers bounds the number of roots measured at once.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock sets the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine for profile.
func NewEngine(profile config.Profile, classifier *safety.Classifier, opts ...Option) *Engine {
	e := &Engine{
		profile:    profile,
		classifier: classifier,
		fs:         afero.NewOsFs(),
		workers:    config.DefaultWorkers(),
		logger:     logging.GetLogger("discovery"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type root struct {
	group   config.ScanGroup
	path    safety.Path
	verdict safety.Verdict
}

type measured struct {
	usage analyze.Usage
	ok    bool
}

// Scan walks the profile's groups (only quick ones when quick is set) and
// returns the non-empty candidates. Roots that are missing, protected or
// locked are skipped. Entries that cannot be read are skipped and counted;
// the scan itself fails only when ctx is cancelled.
func (e *Engine) Scan(ctx context.Context, quick bool) (*Result, error) {
	done := logging.LogOperationStart(e.logger, "scan")
	defer done()

	start := time.Now()
	var warnings []string

	roots := e.resolveRoots(quick, &warnings)
	roots = e.classifyRoots(roots, &warnings)

	scanner := analyze.NewScanner(
		analyze.WithFs(e.fs),
		analyze.WithCaseInsensitive(e.classifier.CaseInsensitive()),
	)

	results := make([]measured, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range roots {
		g.Go(func() error {
			r := roots[i]
			usage, err := scanner.Measure(gctx, r.path.Path, nestedRoots(roots, i))
			switch {
			case err == nil:
				results[i] = measured{usage: usage, ok: true}
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return err
			case os.IsNotExist(err):
				e.logger.Debug().Str("path", r.path.Path).Msg("Root vanished during scan")
			default:
				e.logger.Debug().Err(err).Str("path", r.path.Path).Msg("Cannot measure root")
				results[i] = measured{usage: analyze.Usage{Skipped: 1}}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Quick:    quick,
		Platform: e.profile.Platform,
	}
	for i, m := range results {
		res.SkippedEntries += m.usage.Skipped
		if !m.ok || m.usage.Bytes == 0 {
			continue
		}
		res.Items = append(res.Items, newCandidate(roots[i], m.usage))
	}

	sort.SliceStable(res.Items, func(i, j int) bool {
		return res.Items[i].SizeBytes > res.Items[j].SizeBytes
	})
	res.totals()

	warnings = append(warnings, scanner.Warnings()...)
	if len(warnings) > analyze.MaxWarnings {
		warnings = warnings[:analyze.MaxWarnings]
	}
	res.Warnings = warnings
	res.Partial = res.SkippedEntries > 0
	res.ScanDurationSeconds = math.Round(time.Since(start).Seconds()*100) / 100
	res.Timestamp = e.now()

	e.logger.Info().
		Bool("quick", quick).
		Int("items", res.TotalItems).
		Int64("bytes", res.TotalSizeBytes).
		Int64("skipped", res.SkippedEntries).
		Int64("entries", scanner.ScannedCount()).
		Msg("Scan complete")

	return res, nil
}

// resolveRoots expands every group path into concrete roots, in group
// order. Exact duplicates keep their first group.
func (e *Engine) resolveRoots(quick bool, warnings *[]string) []root {
	var roots []root
	seen := make(map[string]bool)

	add := func(g config.ScanGroup, p string) {
		cp, err := e.classifier.Canonicalize(p)
		if err != nil {
			*warnings = append(*warnings, "cannot resolve "+p+": "+err.Error())
			return
		}
		if seen[cp.Key] {
			return
		}
		seen[cp.Key] = true
		roots = append(roots, root{group: g, path: cp})
	}

	for _, g := range e.profile.SelectGroups(quick) {
		for _, raw := range g.Paths {
			expanded, ok := envutil.Expand(raw)
			if !ok {
				e.logger.Debug().Str("group", g.Name).Str("path", raw).Msg("Skipping root with unset variable")
				continue
			}
			if !hasMeta(expanded) {
				add(g, expanded)
				continue
			}
			matches, err := afero.Glob(e.fs, expanded)
			if err != nil {
				*warnings = append(*warnings, "bad pattern "+raw+": "+err.Error())
				continue
			}
			sort.Strings(matches)
			for _, m := range matches {
				add(g, m)
			}
		}
	}
	return roots
}

// classifyRoots keeps the roots that exist and may be deleted, possibly
// after confirmation.
func (e *Engine) classifyRoots(roots []root, warnings *[]string) []root {
	kept := roots[:0]
	for _, r := range roots {
		v, err := e.classifier.ClassifyCanonical(r.path)
		if err != nil {
			*warnings = append(*warnings, "cannot classify "+r.path.Path+": "+err.Error())
			continue
		}
		if !v.Deletable() {
			e.logger.Debug().
				Str("group", r.group.Name).
				Str("path", r.path.Path).
				Str("verdict", v.String()).
				Msg("Skipping root")
			continue
		}
		r.verdict = v
		kept = append(kept, r)
	}
	return kept
}

// nestedRoots returns the other roots strictly inside roots[i]. They are
// measured as their own candidates and must not be counted twice.
func nestedRoots(roots []root, i int) []string {
	var out []string
	outer := roots[i].path.Key
	for j, r := range roots {
		if j != i && r.path.Key != outer && safety.IsAncestorOrSelf(outer, r.path.Key) {
			out = append(out, r.path.Path)
		}
	}
	return out
}

func newCandidate(r root, u analyze.Usage) Candidate {
	c := Candidate{
		Path:           r.path.Path,
		SizeBytes:      u.Bytes,
		Category:       r.group.Category,
		LastModified:   u.ModTime,
		RiskLevel:      r.group.RiskLevel,
		SafeToDelete:   r.verdict.Kind == safety.Safe,
		Reason:         r.group.Reason,
		Group:          r.group.Name,
		SkippedEntries: u.Skipped,
	}
	if r.verdict.Kind == safety.RequiresConfirmation {
		c.RequiresConfirmation = true
		if c.RiskLevel == config.RiskLow {
			c.RiskLevel = config.RiskMedium
		}
	}
	return c
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[")
}
