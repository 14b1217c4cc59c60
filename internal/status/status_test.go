package status

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcleaner/cloudcleaner/internal/cleanup"
	ccerrors "github.com/cloudcleaner/cloudcleaner/internal/errors"
)

type sizedTrash struct {
	size int64
	err  error
}

func (sizedTrash) Available() bool { return true }
func (sizedTrash) Trash(string) error { return nil }
func (s sizedTrash) Size(context.Context) (int64, error) {
	return s.size, s.err
}

func fakeUsage(stats map[string]*disk.UsageStat) UsageFunc {
	return func(_ context.Context, path string) (*disk.UsageStat, error) {
		if u, ok := stats[path]; ok {
			return u, nil
		}
		return nil, errors.New("no such volume")
	}
}

func fixedVolumes(vols ...Volume) func(context.Context) ([]Volume, error) {
	return func(context.Context) ([]Volume, error) { return vols, nil }
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestCollector(opts ...Option) *Collector {
	base := []Option{
		WithSystemRoot("/"),
		WithClock(func() time.Time { return fixedNow }),
		WithTrash(cleanup.NoTrash),
	}
	return NewCollector(append(base, opts...)...)
}

func TestCollect(t *testing.T) {
	c := newTestCollector(
		WithVolumeLister(fixedVolumes(
			Volume{Path: "/home", Device: "/dev/sda2"},
			Volume{Path: "/", Device: "/dev/sda1"},
			Volume{Path: "/", Device: "/dev/sda1"},
		)),
		WithUsage(fakeUsage(map[string]*disk.UsageStat{
			"/":     {Path: "/", Fstype: "ext4", Total: 1000, Used: 250, Free: 750, UsedPercent: 25},
			"/home": {Path: "/home", Fstype: "ext4", Total: 4000, Used: 3600, Free: 400, UsedPercent: 90},
		})),
		WithTrash(sizedTrash{size: 42}),
	)

	r, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, fixedNow, r.Timestamp)
	assert.Equal(t, uint64(1000), r.Total)
	assert.Equal(t, uint64(250), r.Used)
	assert.Equal(t, uint64(750), r.Free)
	assert.Equal(t, 25.0, r.Percent)

	require.Len(t, r.Volumes, 2, "duplicate mount listed once")
	assert.Equal(t, "/", r.Volumes[0].Path)
	assert.Equal(t, "ext4", r.Volumes[0].FSType)
	assert.Equal(t, "/home", r.Volumes[1].Path)

	assert.True(t, r.TrashAvailable)
	assert.Equal(t, int64(42), r.TrashBytes)
	assert.Empty(t, r.Warnings)
}

func TestCollectSkipsUnreadableVolume(t *testing.T) {
	c := newTestCollector(
		WithVolumeLister(fixedVolumes(Volume{Path: "/"}, Volume{Path: "/mnt/gone"})),
		WithUsage(fakeUsage(map[string]*disk.UsageStat{
			"/": {Total: 10, Used: 5, Free: 5, UsedPercent: 50},
		})),
	)

	r, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, r.Volumes, 1)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "/mnt/gone")
	assert.False(t, r.TrashAvailable)
}

func TestCollectListingFailureFallsBackToSystemVolume(t *testing.T) {
	c := newTestCollector(
		WithVolumeLister(func(context.Context) ([]Volume, error) {
			return nil, errors.New("permission denied")
		}),
		WithUsage(fakeUsage(map[string]*disk.UsageStat{
			"/": {Total: 10, Used: 1, Free: 9, UsedPercent: 10},
		})),
	)

	r, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, r.Volumes, 1)
	assert.Equal(t, "/", r.Volumes[0].Path)
	assert.Equal(t, uint64(9), r.Free)
	assert.NotEmpty(t, r.Warnings)
}

func TestCollectSystemVolumeUnreadable(t *testing.T) {
	c := newTestCollector(
		WithVolumeLister(fixedVolumes()),
		WithUsage(fakeUsage(nil)),
	)

	_, err := c.Collect(context.Background())
	require.Error(t, err)
	assert.True(t, ccerrors.IsErrorCode(err, ccerrors.ErrIO))
}

func TestCollectTrashSizeError(t *testing.T) {
	c := newTestCollector(
		WithVolumeLister(fixedVolumes(Volume{Path: "/"})),
		WithUsage(fakeUsage(map[string]*disk.UsageStat{"/": {Total: 1}})),
		WithTrash(sizedTrash{err: errors.New("boom")}),
	)

	r, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.True(t, r.TrashAvailable)
	assert.Zero(t, r.TrashBytes)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "trash size")
}

func TestRender(t *testing.T) {
	r := &Report{
		Host: "testhost",
		Volumes: []Volume{
			{Path: "/", Total: 100 << 30, Used: 50 << 30, Free: 50 << 30, UsedPercent: 50},
		},
		TrashAvailable: true,
		TrashBytes:     3 << 20,
		Warnings:       []string{"something odd"},
	}

	out := Render(r, 80)
	assert.Contains(t, out, "Disk usage")
	assert.Contains(t, out, "testhost")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "50 GiB / 100 GiB")
	assert.Contains(t, out, "3.0 MiB")
	assert.Contains(t, out, "something odd")

	r.TrashAvailable = false
	assert.Contains(t, Render(r, 80), "unavailable")
}

func TestModelUpdate(t *testing.T) {
	c := newTestCollector(
		WithVolumeLister(fixedVolumes(Volume{Path: "/"})),
		WithUsage(fakeUsage(map[string]*disk.UsageStat{"/": {Total: 10, Used: 5, Free: 5, UsedPercent: 50}})),
	)
	m := NewModel(c, time.Second)
	assert.Contains(t, m.View(), "Collecting")

	msg := m.Init()()
	next, cmd := m.Update(msg)
	assert.NotNil(t, cmd, "tick scheduled after a report")
	m = next.(Model)
	require.NotNil(t, m.Report)
	assert.Contains(t, m.View(), "50.0%")

	next, _ = m.Update(reportMsg{err: errors.New("transient")})
	m = next.(Model)
	assert.Contains(t, m.View(), "transient")
	assert.NotNil(t, m.Report, "last good report kept")

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestModelManualRefreshKeepsOneLoop(t *testing.T) {
	c := newTestCollector(
		WithVolumeLister(fixedVolumes(Volume{Path: "/"})),
		WithUsage(fakeUsage(map[string]*disk.UsageStat{"/": {Total: 10, Used: 5, Free: 5, UsedPercent: 50}})),
	)
	m := NewModel(c, time.Second)
	refresh := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}

	// The initial collection is still running.
	next, cmd := m.Update(refresh)
	m = next.(Model)
	assert.Nil(t, cmd, "refresh ignored while collecting")

	next, _ = m.Update(m.Init()())
	m = next.(Model)
	staleTick := tickMsg{gen: m.gen}

	next, cmd = m.Update(refresh)
	m = next.(Model)
	require.NotNil(t, cmd)
	next, again := m.Update(refresh)
	m = next.(Model)
	assert.Nil(t, again, "second press while the refresh runs")

	next, cmd = m.Update(cmd())
	m = next.(Model)
	assert.NotNil(t, cmd, "the report re-arms a single tick")

	next, cmd = m.Update(staleTick)
	m = next.(Model)
	assert.Nil(t, cmd, "tick from before the refresh is dropped")

	next, cmd = m.Update(tickMsg{gen: m.gen})
	m = next.(Model)
	assert.NotNil(t, cmd, "current tick collects")
	assert.True(t, m.collecting)
}
