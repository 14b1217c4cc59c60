package store

import (
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcleaner/cloudcleaner/internal/cleanup"
	"github.com/cloudcleaner/cloudcleaner/internal/config"
	"github.com/cloudcleaner/cloudcleaner/internal/discovery"
	ccerrors "github.com/cloudcleaner/cloudcleaner/internal/errors"
	"github.com/cloudcleaner/cloudcleaner/internal/safety"
	"github.com/cloudcleaner/cloudcleaner/internal/testutil"
)

func TestHistoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.jsonl")
	h := NewJSONLHistory(afero.NewOsFs(), path)

	tick := time.Date(2026, 10, 5, 8, 0, 0, 0, time.UTC)
	h.now = func() time.Time { tick = tick.Add(time.Minute); return tick }

	scan := &discovery.Result{
		Items:          []discovery.Candidate{{Path: "/tmp/x", SizeBytes: 10, Category: "temp_files"}},
		TotalItems:     1,
		TotalSizeBytes: 10,
		Quick:          true,
		Partial:        true,
	}
	scanID, err := h.RecordScan(scan)
	require.NoError(t, err)
	assert.NotEmpty(t, scanID)

	_, err = h.RecordScan(&discovery.Result{})
	require.NoError(t, err)

	cleanupID, err := h.RecordCleanup(&cleanup.Result{ItemsDeleted: 2, ItemsFailed: 1, FreedBytes: 300, Errors: []string{"boom"}}, scanID)
	require.NoError(t, err)
	_, err = h.RecordCleanup(&cleanup.Result{ItemsDeleted: 1, FreedBytes: 50}, "")
	require.NoError(t, err)

	hist, err := h.Recent(0)
	require.NoError(t, err)
	require.Len(t, hist.Scans, 2)
	require.Len(t, hist.Cleanups, 2)
	assert.Equal(t, ScanFull, hist.Scans[0].ScanType, "newest first")
	assert.Equal(t, ScanQuick, hist.Scans[1].ScanType)
	assert.Equal(t, "partial", hist.Scans[1].Status)
	assert.Nil(t, hist.Scans[1].Result, "listing omits scan data")
	assert.Equal(t, cleanupID, hist.Cleanups[1].ID)
	assert.Equal(t, scanID, hist.Cleanups[1].ScanID)

	limited, err := h.Recent(1)
	require.NoError(t, err)
	assert.Len(t, limited.Scans, 1)
	assert.Len(t, limited.Cleanups, 1)

	found, err := h.FindScan(scanID)
	require.NoError(t, err)
	require.NotNil(t, found.Result)
	assert.Equal(t, "/tmp/x", found.Result.Items[0].Path)

	_, err = h.FindScan("missing")
	assert.True(t, ccerrors.IsErrorCode(err, ccerrors.ErrNotFound))

	st, err := h.Stats()
	require.NoError(t, err)
	assert.Equal(t, &Stats{TotalScans: 2, TotalCleanups: 2, TotalBytesFreed: 350, TotalItemsCleaned: 3}, st)
}

func TestHistoryMissingAndMalformed(t *testing.T) {
	fs := afero.NewMemMapFs()
	h := NewJSONLHistory(fs, "/state/history.jsonl")

	hist, err := h.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, hist.Scans)

	require.NoError(t, afero.WriteFile(fs, "/state/history.jsonl", []byte("not json\n\n"), 0o644))
	_, err = h.RecordCleanup(&cleanup.Result{ItemsDeleted: 1}, "")
	require.NoError(t, err)

	st, err := h.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalCleanups)
}

func TestFileExclusions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix path separators")
	}
	fs := afero.NewMemMapFs()
	x := NewFileExclusions(fs, "/config/exclusions.json")

	entries, err := x.ListExclusions()
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, x.AddExclusion("/data/keep/"))
	require.NoError(t, x.AddExclusion("/data/keep"))
	require.NoError(t, x.AddExclusion("~/projects"))

	entries, err = x.ListExclusions()
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/keep", "~/projects"}, entries)

	// A second handle on the same file sees the changes.
	other := NewFileExclusions(fs, "/config/exclusions.json")
	entries, err = other.ListExclusions()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, x.RemoveExclusion("/data/keep"))
	err = x.RemoveExclusion("/data/keep")
	assert.True(t, ccerrors.IsErrorCode(err, ccerrors.ErrNotFound))

	err = x.AddExclusion("  ")
	assert.True(t, ccerrors.IsErrorCode(err, ccerrors.ErrConfigInvalid))

	entries, err = x.ListExclusions()
	require.NoError(t, err)
	assert.Equal(t, []string{"~/projects"}, entries)
}

func TestFileExclusionsMalformed(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/x.json", []byte("{"), 0o644))

	_, err := NewFileExclusions(fs, "/x.json").ListExclusions()
	assert.True(t, ccerrors.IsErrorCode(err, ccerrors.ErrConfigInvalid))
}

func TestFileExclusionsFeedClassifier(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "keep")
	testutil.SparseFile(t, filepath.Join(keep, "f"), 1)

	x := NewFileExclusions(afero.NewOsFs(), filepath.Join(dir, "exclusions.json"))
	c, err := safety.NewClassifier(config.RuleSet{NeverDelete: []string{filepath.Join(dir, "never")}}, x)
	require.NoError(t, err)

	v, err := c.Classify(keep)
	require.NoError(t, err)
	assert.Equal(t, safety.Safe, v.Kind)

	require.NoError(t, x.AddExclusion(keep))
	v, err = c.Classify(filepath.Join(keep, "f"))
	require.NoError(t, err)
	assert.Equal(t, safety.Protected, v.Kind)
	assert.Equal(t, "user exclusion", v.Reason)
}
