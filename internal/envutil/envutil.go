// Package envutil expands environment references in configured paths.
// Profiles are written with the native syntax of their platform, so both
// Windows %VAR% and Unix $VAR / ${VAR} forms are accepted, plus a leading ~.
package envutil

import (
	"os"
	"regexp"
	"strings"
)

var (
	percentVar = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_()]*)%`)
	dollarVar  = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// windowsDefaults are used when a well-known Windows variable is unset, so
// profiles keep working on installs where the shell environment is sparse.
var windowsDefaults = map[string]string{
	"WINDIR":            `C:\Windows`,
	"SYSTEMROOT":        `C:\Windows`,
	"SYSTEMDRIVE":       `C:`,
	"PROGRAMDATA":       `C:\ProgramData`,
	"PROGRAMFILES":      `C:\Program Files`,
	"PROGRAMFILES(X86)": `C:\Program Files (x86)`,
}

// Lookup returns the value of an environment variable, falling back to the
// Windows defaults for the handful of system variables that have one.
func Lookup(name string) (string, bool) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v, true
	}
	v, ok := windowsDefaults[strings.ToUpper(name)]
	return v, ok
}

// Expand resolves ~, %VAR%, $VAR and ${VAR} in path. ok is false when any
// referenced variable is unset or the home directory cannot be resolved;
// the returned string then contains empty substitutions and must not be
// used as a filesystem path.
func Expand(path string) (string, bool) {
	return expand(path, false)
}

// ExpandLiteral expands path like Expand but leaves a reference to an
// unset variable as literal text, so user-supplied names such as
// `Outer$Inner.class` or `C:\$Recycle.Bin` survive unchanged.
func ExpandLiteral(path string) string {
	p, _ := expand(path, true)
	return p
}

func expand(path string, keep bool) (string, bool) {
	ok := true

	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		switch {
		case err == nil && home != "":
			path = home + path[1:]
		case !keep:
			ok = false
			path = path[1:]
		}
	}

	resolve := func(m, name string) string {
		if v, found := Lookup(name); found {
			return v
		}
		ok = false
		if keep {
			return m
		}
		return ""
	}

	path = percentVar.ReplaceAllStringFunc(path, func(m string) string {
		return resolve(m, m[1:len(m)-1])
	})
	path = dollarVar.ReplaceAllStringFunc(path, func(m string) string {
		name := strings.TrimPrefix(m, "$")
		name = strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")
		return resolve(m, name)
	})

	return path, ok
}
