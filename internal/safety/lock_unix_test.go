//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package safety

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/cloudcleaner/cloudcleaner/internal/config"
)

func TestOSProberDetectsHeldLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "busy.db")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	c, err := NewClassifier(config.RuleSet{NeverDelete: []string{"/etc"}}, nil)
	require.NoError(t, err)

	v, err := c.Classify(path)
	require.NoError(t, err)
	assert.Equal(t, Safe, v.Kind)

	holder, err := os.Open(path)
	require.NoError(t, err)
	defer holder.Close()
	require.NoError(t, unix.Flock(int(holder.Fd()), unix.LOCK_EX))

	v, err = c.Classify(path)
	require.NoError(t, err)
	assert.Equal(t, Locked, v.Kind)

	require.NoError(t, unix.Flock(int(holder.Fd()), unix.LOCK_UN))
	v, err = c.Classify(path)
	require.NoError(t, err)
	assert.Equal(t, Safe, v.Kind)
}
