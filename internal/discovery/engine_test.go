package discovery

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcleaner/cloudcleaner/internal/config"
	"github.com/cloudcleaner/cloudcleaner/internal/safety"
	"github.com/cloudcleaner/cloudcleaner/internal/testutil"
)

const mb = 1 << 20

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses unix absolute paths")
	}
}

func newEngine(t *testing.T, fs afero.Fs, profile config.Profile, excl safety.ExclusionSource) *Engine {
	t.Helper()
	c, err := safety.NewClassifier(profile.Rules(), excl,
		safety.WithFs(fs), safety.WithProber(safety.NoLockProber))
	require.NoError(t, err)
	return NewEngine(profile, c, WithFs(fs), WithWorkers(2))
}

func TestScanOrdersAndTotals(t *testing.T) {
	dir := t.TempDir()
	chrome := filepath.Join(dir, "chrome")
	firefox := filepath.Join(dir, "firefox")
	tmp := filepath.Join(dir, "tmp")
	testutil.SparseFile(t, filepath.Join(firefox, "cache2", "entries.bin"), 50*mb)
	testutil.SparseFile(t, filepath.Join(chrome, "Cache", "data_1"), 60*mb)
	testutil.SparseFile(t, filepath.Join(chrome, "Cache", "data_2"), 40*mb)
	testutil.SparseFile(t, filepath.Join(tmp, "build.log"), 10*mb)

	profile := config.Profile{
		Platform:    "linux",
		NeverDelete: []string{filepath.Join(dir, "never")},
		Groups: []config.ScanGroup{
			{Name: "temp", Paths: []string{tmp}, Category: "temp_files", RiskLevel: config.RiskLow, Quick: true},
			{Name: "firefox", Paths: []string{firefox}, Category: "browser_cache", RiskLevel: config.RiskLow, Quick: true},
			{Name: "chrome", Paths: []string{chrome}, Category: "browser_cache", RiskLevel: config.RiskLow, Quick: true},
		},
	}

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	c, err := safety.NewClassifier(profile.Rules(), nil)
	require.NoError(t, err)
	res, err := NewEngine(profile, c, WithClock(func() time.Time { return now })).Scan(context.Background(), false)
	require.NoError(t, err)

	require.Len(t, res.Items, 3)
	assert.Equal(t, []string{chrome, firefox, tmp}, res.Paths())
	assert.Equal(t, []int64{100 * mb, 50 * mb, 10 * mb},
		[]int64{res.Items[0].SizeBytes, res.Items[1].SizeBytes, res.Items[2].SizeBytes})

	assert.Equal(t, int64(160*mb), res.TotalSizeBytes)
	assert.Equal(t, 3, res.TotalItems)
	assert.Equal(t, map[string]int64{"browser_cache": 150 * mb, "temp_files": 10 * mb}, res.Categories)
	assert.Equal(t, now, res.Timestamp)
	assert.False(t, res.Partial)
	assert.True(t, res.Items[0].SafeToDelete)
	assert.Equal(t, "chrome", res.Items[0].Group)
	assert.False(t, res.Items[0].LastModified.IsZero())
}

func TestScanCategoryTotalsMatchTotal(t *testing.T) {
	skipOnWindows(t)

	fs := afero.NewMemMapFs()
	testutil.WriteFile(t, fs, "/c/a/1", 300)
	testutil.WriteFile(t, fs, "/c/b/1", 200)
	testutil.WriteFile(t, fs, "/c/c/1", 100)
	testutil.WriteFile(t, fs, "/c/d", 50)

	profile := config.Profile{
		NeverDelete: []string{"/etc"},
		Groups: []config.ScanGroup{
			{Name: "a", Paths: []string{"/c/a"}, Category: "x", RiskLevel: config.RiskLow},
			{Name: "b", Paths: []string{"/c/b", "/c/d"}, Category: "y", RiskLevel: config.RiskLow},
			{Name: "c", Paths: []string{"/c/c"}, Category: "x", RiskLevel: config.RiskLow},
		},
	}
	res, err := newEngine(t, fs, profile, nil).Scan(context.Background(), false)
	require.NoError(t, err)

	var sum int64
	for _, v := range res.Categories {
		sum += v
	}
	assert.Equal(t, res.TotalSizeBytes, sum)
	assert.Equal(t, int64(650), sum)
	assert.Equal(t, int64(50), res.Items[3].SizeBytes, "a file root takes its direct size")
}

func TestScanSkipsProtectedMissingAndEmpty(t *testing.T) {
	skipOnWindows(t)

	fs := afero.NewMemMapFs()
	testutil.WriteFile(t, fs, "/home/u/Documents/cache/x", 100)
	testutil.WriteFile(t, fs, "/home/u/.cache/app/y", 100)
	testutil.WriteFile(t, fs, "/srv/excluded/z", 100)
	testutil.Mkdir(t, fs, "/var/empty")

	profile := config.Profile{
		NeverDelete: []string{"/home/u/Documents"},
		Groups: []config.ScanGroup{
			{Name: "docs", Paths: []string{"/home/u/Documents/cache"}, Category: "x", RiskLevel: config.RiskLow},
			{Name: "missing", Paths: []string{"/nowhere"}, Category: "x", RiskLevel: config.RiskLow},
			{Name: "empty", Paths: []string{"/var/empty"}, Category: "x", RiskLevel: config.RiskLow},
			{Name: "excluded", Paths: []string{"/srv/excluded"}, Category: "x", RiskLevel: config.RiskLow},
			{Name: "app", Paths: []string{"/home/u/.cache/app"}, Category: "app_cache", RiskLevel: config.RiskLow},
		},
	}
	res, err := newEngine(t, fs, profile, testutil.NewExclusions("/srv/excluded")).Scan(context.Background(), false)
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	assert.Equal(t, "/home/u/.cache/app", res.Items[0].Path)
}

func TestScanMarksConfirmationRoots(t *testing.T) {
	skipOnWindows(t)

	fs := afero.NewMemMapFs()
	testutil.WriteFile(t, fs, "/tmp/junk", 10)

	profile := config.Profile{
		NeverDelete:         []string{"/etc"},
		RequireConfirmation: []string{"/tmp"},
		Groups: []config.ScanGroup{
			{Name: "temp", Paths: []string{"/tmp"}, Category: "temp_files", RiskLevel: config.RiskLow},
		},
	}
	res, err := newEngine(t, fs, profile, nil).Scan(context.Background(), false)
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	c := res.Items[0]
	assert.True(t, c.RequiresConfirmation)
	assert.False(t, c.SafeToDelete)
	assert.Equal(t, config.RiskMedium, c.RiskLevel)
	assert.Empty(t, res.SafePaths())
}

func TestScanQuickSelectsGroups(t *testing.T) {
	skipOnWindows(t)

	fs := afero.NewMemMapFs()
	testutil.WriteFile(t, fs, "/q/file", 10)
	testutil.WriteFile(t, fs, "/full/file", 10)

	profile := config.Profile{
		NeverDelete: []string{"/etc"},
		Groups: []config.ScanGroup{
			{Name: "quick", Paths: []string{"/q"}, Category: "x", RiskLevel: config.RiskLow, Quick: true},
			{Name: "full", Paths: []string{"/full"}, Category: "x", RiskLevel: config.RiskLow},
		},
	}
	e := newEngine(t, fs, profile, nil)

	res, err := e.Scan(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"/q"}, res.Paths())
	assert.True(t, res.Quick)

	res, err = e.Scan(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
}

func TestScanPartialSubtree(t *testing.T) {
	skipOnWindows(t)

	base := afero.NewMemMapFs()
	testutil.WriteFile(t, base, "/cache/readable/a", 700)
	testutil.WriteFile(t, base, "/cache/denied/b", 900)
	fs := testutil.NewFaultyFs(base)
	fs.SetError("/cache/denied", os.ErrPermission)

	profile := config.Profile{
		NeverDelete: []string{"/etc"},
		Groups: []config.ScanGroup{
			{Name: "cache", Paths: []string{"/cache"}, Category: "app_cache", RiskLevel: config.RiskLow},
		},
	}
	res, err := newEngine(t, fs, profile, nil).Scan(context.Background(), false)
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	assert.Equal(t, int64(700), res.Items[0].SizeBytes)
	assert.Equal(t, int64(1), res.Items[0].SkippedEntries)
	assert.Equal(t, int64(1), res.SkippedEntries)
	assert.True(t, res.Partial)
	assert.NotEmpty(t, res.Warnings)
}

func TestScanOverlappingRootsNotDoubleCounted(t *testing.T) {
	skipOnWindows(t)

	fs := afero.NewMemMapFs()
	testutil.WriteFile(t, fs, "/home/u/.cache/misc", 10)
	testutil.WriteFile(t, fs, "/home/u/.cache/chrome/data", 90)

	profile := config.Profile{
		NeverDelete: []string{"/etc"},
		Groups: []config.ScanGroup{
			{Name: "user_cache", Paths: []string{"/home/u/.cache"}, Category: "app_cache", RiskLevel: config.RiskLow},
			{Name: "chrome", Paths: []string{"/home/u/.cache/chrome"}, Category: "browser_cache", RiskLevel: config.RiskLow},
			{Name: "dup", Paths: []string{"/home/u/.cache/chrome/"}, Category: "dup", RiskLevel: config.RiskLow},
		},
	}
	res, err := newEngine(t, fs, profile, nil).Scan(context.Background(), false)
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	assert.Equal(t, int64(100), res.TotalSizeBytes)
	assert.Equal(t, map[string]int64{"app_cache": 10, "browser_cache": 90}, res.Categories)
}

func TestScanExpandsGlobsAndEnv(t *testing.T) {
	skipOnWindows(t)
	t.Setenv("CC_TEST_CACHE", "/profiles")

	fs := afero.NewMemMapFs()
	testutil.WriteFile(t, fs, "/profiles/abc.default/cache2/x", 10)
	testutil.WriteFile(t, fs, "/profiles/def.work/cache2/y", 20)

	profile := config.Profile{
		NeverDelete: []string{"/etc"},
		Groups: []config.ScanGroup{
			{Name: "firefox", Paths: []string{"$CC_TEST_CACHE/*/cache2", "%CC_TEST_UNSET%/cache"}, Category: "browser_cache", RiskLevel: config.RiskLow},
		},
	}
	res, err := newEngine(t, fs, profile, nil).Scan(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"/profiles/def.work/cache2", "/profiles/abc.default/cache2"}, res.Paths())
}

func TestScanCancelled(t *testing.T) {
	skipOnWindows(t)

	fs := afero.NewMemMapFs()
	testutil.WriteFile(t, fs, "/cache/a/b", 10)

	profile := config.Profile{
		NeverDelete: []string{"/etc"},
		Groups:      []config.ScanGroup{{Name: "c", Paths: []string{"/cache"}, Category: "x", RiskLevel: config.RiskLow}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newEngine(t, fs, profile, nil).Scan(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestResultJSONFields(t *testing.T) {
	res := &Result{Items: []Candidate{{Path: "/tmp/x", SizeBytes: 5, Category: "temp_files"}}}
	res.totals()

	b, err := json.Marshal(res)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &raw))
	for _, key := range []string{"items", "categories", "total_items", "total_size_bytes", "scan_duration_seconds", "timestamp", "skipped_entries", "partial"} {
		assert.Contains(t, raw, key)
	}
	item := raw["items"].([]interface{})[0].(map[string]interface{})
	for _, key := range []string{"path", "size_bytes", "category", "last_modified", "risk_level", "safe_to_delete", "reason"} {
		assert.Contains(t, item, key)
	}
}
