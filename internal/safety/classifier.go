// Package safety decides whether a path may be deleted.
//
// A Classifier holds the canonicalized never-delete and confirm-required
// rules of one profile. Verdicts are computed fresh on every call from
// the rules, the current user exclusions and the filesystem; nothing is
// cached.
package safety

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/cloudcleaner/cloudcleaner/internal/config"
	"github.com/cloudcleaner/cloudcleaner/internal/core"
	ccerrors "github.com/cloudcleaner/cloudcleaner/internal/errors"
	"github.com/cloudcleaner/cloudcleaner/internal/logging"
)

// ExclusionSource supplies the user's exclusion list. It is consulted on
// every classification so edits take effect immediately.
type ExclusionSource interface {
	ListExclusions() ([]string, error)
}

// Prober reports whether another process holds a file open exclusively.
type Prober interface {
	Locked(path string) bool
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(path string) bool

func (f ProberFunc) Locked(path string) bool { return f(path) }

// NoLockProber never reports a file as locked.
var NoLockProber = ProberFunc(func(string) bool { return false })

type rule struct {
	raw string
	key string
}

// Classifier classifies paths against one rule set.
type Classifier struct {
	fs         afero.Fs
	prober     Prober
	exclusions ExclusionSource
	fold       bool
	logger     zerolog.Logger

	neverDelete []rule
	confirm     []rule
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithFs sets the filesystem used for existence checks.
func WithFs(fs afero.Fs) Option {
	return func(c *Classifier) { c.fs = fs }
}

// WithProber replaces the platform lock probe.
func WithProber(p Prober) Option {
	return func(c *Classifier) { c.prober = p }
}

// NewClassifier canonicalizes rules and returns a classifier. Rules that
// reference an unset environment variable cannot name a real path on
// this host and are dropped. exclusions may be nil.
//
// It fails only when a rule needs the home directory and it cannot be
// resolved.
func NewClassifier(rules config.RuleSet, exclusions ExclusionSource, opts ...Option) (*Classifier, error) {
	c := &Classifier{
		fs:         afero.NewOsFs(),
		prober:     osProber{},
		exclusions: exclusions,
		fold:       rules.CaseInsensitive,
		logger:     logging.GetLogger("safety"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if needsHome(rules.NeverDelete) || needsHome(rules.RequireConfirmation) {
		if home, err := os.UserHomeDir(); err != nil || home == "" {
			if err == nil {
				err = os.ErrNotExist
			}
			return nil, ccerrors.Wrap(err, ccerrors.ErrHomeDir, "cannot resolve home directory for profile rules")
		}
	}

	c.neverDelete = c.compile(rules.NeverDelete)
	c.confirm = c.compile(rules.RequireConfirmation)

	c.logger.Debug().
		Int("neverDelete", len(c.neverDelete)).
		Int("confirm", len(c.confirm)).
		Bool("caseInsensitive", c.fold).
		Msg("Classifier ready")

	return c, nil
}

func needsHome(rules []string) bool {
	for _, r := range rules {
		if r == "~" || strings.HasPrefix(r, "~/") || strings.HasPrefix(r, `~\`) {
			return true
		}
	}
	return false
}

func (c *Classifier) compile(raw []string) []rule {
	out := make([]rule, 0, len(raw))
	for _, r := range raw {
		p, err := canonicalizeRule(r, c.fold)
		if err != nil {
			c.logger.Debug().Str("rule", r).Err(err).Msg("Dropping unresolved rule")
			continue
		}
		out = append(out, rule{raw: r, key: p.Key})
	}
	return out
}

// CaseInsensitive reports whether comparisons fold case.
func (c *Classifier) CaseInsensitive() bool {
	return c.fold
}

// Canonicalize returns the canonical form of path as used for rule
// matching.
func (c *Classifier) Canonicalize(path string) (Path, error) {
	return canonicalize(path, c.fold)
}

// Classify returns the verdict for path. An error is returned, instead of
// a verdict, when path cannot be canonicalized, the exclusion list cannot
// be read, or existence cannot be determined for reasons other than the
// path being absent.
func (c *Classifier) Classify(path string) (Verdict, error) {
	p, err := c.Canonicalize(path)
	if err != nil {
		return Verdict{}, err
	}
	return c.ClassifyCanonical(p)
}

// ClassifyCanonical classifies a path already returned by Canonicalize.
func (c *Classifier) ClassifyCanonical(p Path) (Verdict, error) {
	// Bidirectional: the rule is inside the path, or the path is inside
	// the rule. Deleting an ancestor of a protected path deletes it too.
	for _, r := range c.neverDelete {
		if overlaps(r.key, p.Key, filepath.Separator) {
			return c.trace(p, protectedBy(r.raw)), nil
		}
	}

	pending := safeVerdict
	for _, r := range c.confirm {
		if IsAncestorOrSelf(r.key, p.Key) {
			pending = confirmFor(r.raw)
			break
		}
	}

	// Exclusions apply inside confirm zones too.
	if c.exclusions != nil {
		entries, err := c.exclusions.ListExclusions()
		if err != nil {
			return Verdict{}, ccerrors.Wrap(err, ccerrors.ErrClassify, "cannot read exclusions")
		}
		for _, e := range entries {
			ep, err := canonicalize(e, c.fold)
			if err != nil {
				continue
			}
			if IsAncestorOrSelf(ep.Key, p.Key) {
				return c.trace(p, excludedBy(e)), nil
			}
		}
	}

	fi, err := core.Lstat(c.fs, p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return c.trace(p, notFoundVerdict), nil
		}
		return Verdict{}, ccerrors.Wrapf(err, ccerrors.ErrClassify, "cannot stat %s", p.Path).
			WithDetail("path", p.Path)
	}

	if fi.Mode().IsRegular() && c.prober.Locked(p.Path) {
		return c.trace(p, lockedVerdict), nil
	}

	return c.trace(p, pending), nil
}

func (c *Classifier) trace(p Path, v Verdict) Verdict {
	c.logger.Trace().Str("path", p.Path).Str("verdict", v.Kind.String()).Str("rule", v.Rule).Msg("Classified")
	return v
}
