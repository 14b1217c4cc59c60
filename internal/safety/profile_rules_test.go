package safety

import (
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcleaner/cloudcleaner/internal/config"
	"github.com/cloudcleaner/cloudcleaner/internal/core"
	"github.com/cloudcleaner/cloudcleaner/internal/envutil"
)

// profileKey expands a profile entry with fixed Windows-style variables and
// returns a slash-separated key, so every profile can be checked on any host.
func profileKey(t *testing.T, raw string, fold bool) string {
	t.Helper()
	expanded, ok := envutil.Expand(raw)
	require.True(t, ok, "unresolved reference in %q", raw)
	key := path.Clean(strings.ReplaceAll(expanded, `\`, "/"))
	if fold {
		key = strings.ToLower(key)
	}
	return key
}

func TestEmbeddedProfilesDoNotProtectTheirOwnGroups(t *testing.T) {
	home := `C:\Users\tester`
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("SYSTEMDRIVE", `C:`)
	t.Setenv("WINDIR", `C:\Windows`)
	t.Setenv("PROGRAMFILES", `C:\Program Files`)
	t.Setenv("PROGRAMFILES(X86)", `C:\Program Files (x86)`)
	t.Setenv("PROGRAMDATA", `C:\ProgramData`)
	t.Setenv("APPDATA", home+`\AppData\Roaming`)
	t.Setenv("LOCALAPPDATA", home+`\AppData\Local`)
	t.Setenv("TEMP", home+`\AppData\Local\Temp`)

	for _, platform := range core.Platforms {
		t.Run(platform.String(), func(t *testing.T) {
			profile, err := config.LoadProfile(platform)
			require.NoError(t, err)
			require.NotEmpty(t, profile.Groups)
			fold := profile.CaseInsensitive

			never := make(map[string]string, len(profile.NeverDelete))
			for _, raw := range profile.NeverDelete {
				never[raw] = profileKey(t, raw, fold)
			}

			for _, g := range profile.Groups {
				for _, raw := range g.Paths {
					root := profileKey(t, raw, fold)
					for rule, key := range never {
						assert.False(t, overlaps(key, root, '/'),
							"group %s root %s is protected by %s", g.Name, raw, rule)
					}
				}
			}

			for _, raw := range profile.RequireConfirmation {
				zone := profileKey(t, raw, fold)
				for rule, key := range never {
					assert.False(t, isAncestorOrSelf(key, zone, '/'),
						"confirm zone %s is unreachable behind %s", raw, rule)
				}
			}
		})
	}
}
