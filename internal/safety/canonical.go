package safety

import (
	"path/filepath"
	"strings"

	"github.com/cloudcleaner/cloudcleaner/internal/envutil"
	ccerrors "github.com/cloudcleaner/cloudcleaner/internal/errors"
)

// Path is a canonicalized path. Path keeps the original case and is used
// for filesystem access; Key is the comparison form, case-folded on
// case-insensitive rule sets.
type Path struct {
	Path string
	Key  string
}

// canonicalize expands environment and home references, makes the path
// absolute and clean, and folds case when fold is set. Symlinks are not
// resolved. References to unset variables are kept as literal text,
// since a user path may legitimately contain a '$' or '%'.
func canonicalize(raw string, fold bool) (Path, error) {
	return absolute(raw, envutil.ExpandLiteral(raw), fold)
}

// canonicalizeRule is canonicalize for profile rules, which must resolve
// every reference to name a path on this host.
func canonicalizeRule(raw string, fold bool) (Path, error) {
	expanded, ok := envutil.Expand(raw)
	if !ok {
		return Path{}, ccerrors.Newf(ccerrors.ErrClassify, "unresolved environment reference in %q", raw).
			WithDetail("path", raw)
	}
	return absolute(raw, expanded, fold)
}

func absolute(raw, expanded string, fold bool) (Path, error) {
	if strings.TrimSpace(expanded) == "" {
		return Path{}, ccerrors.New(ccerrors.ErrClassify, "empty path")
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return Path{}, ccerrors.Wrapf(err, ccerrors.ErrClassify, "cannot resolve %q", raw)
	}
	p := Path{Path: abs, Key: abs}
	if fold {
		p.Key = strings.ToLower(abs)
	}
	return p, nil
}

// IsAncestorOrSelf reports whether ancestor equals path or contains it,
// comparing whole path components. Both must be clean and absolute.
func IsAncestorOrSelf(ancestor, path string) bool {
	return isAncestorOrSelf(ancestor, path, filepath.Separator)
}

func isAncestorOrSelf(ancestor, path string, sep byte) bool {
	if ancestor == path {
		return true
	}
	if !strings.HasPrefix(path, ancestor) {
		return false
	}
	// Filesystem roots ("/", `C:\`) already end in a separator.
	if ancestor != "" && ancestor[len(ancestor)-1] == sep {
		return true
	}
	return path[len(ancestor)] == sep
}

// overlaps reports whether deleting either path would delete the other.
func overlaps(a, b string, sep byte) bool {
	return isAncestorOrSelf(a, b, sep) || isAncestorOrSelf(b, a, sep)
}
