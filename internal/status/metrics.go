// Package status reports disk usage for the volumes cleanup works on:
// capacity, used and free bytes per volume plus the current trash size.
package status

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/cloudcleaner/cloudcleaner/internal/cleanup"
	"github.com/cloudcleaner/cloudcleaner/internal/core"
	ccerrors "github.com/cloudcleaner/cloudcleaner/internal/errors"
	"github.com/cloudcleaner/cloudcleaner/internal/logging"
)

// Volume is the usage of one mounted filesystem.
type Volume struct {
	Path        string  `json:"path"`
	Device      string  `json:"device,omitempty"`
	FSType      string  `json:"fstype,omitempty"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"percent"`
}

// Report is one disk usage snapshot. Total, Used, Free and Percent repeat
// the system volume so callers that only care about it need not search
// Volumes.
type Report struct {
	Host      string    `json:"host"`
	Timestamp time.Time `json:"timestamp"`

	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Free    uint64  `json:"free"`
	Percent float64 `json:"percent"`

	Volumes []Volume `json:"volumes"`

	TrashAvailable bool     `json:"trash_available"`
	TrashBytes     int64    `json:"trash_bytes"`
	Warnings       []string `json:"warnings,omitempty"`
}

// UsageFunc returns usage for the filesystem holding path.
type UsageFunc func(ctx context.Context, path string) (*disk.UsageStat, error)

// Collector gathers Reports. The zero value is not usable; use
// NewCollector.
type Collector struct {
	listVolumes func(ctx context.Context) ([]Volume, error)
	usage       UsageFunc
	trash       cleanup.Trasher
	systemRoot  string
	now         func() time.Time
	logger      zerolog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithVolumeLister replaces the platform volume listing.
func WithVolumeLister(fn func(ctx context.Context) ([]Volume, error)) Option {
	return func(c *Collector) { c.listVolumes = fn }
}

// WithUsage replaces the gopsutil usage call.
func WithUsage(fn UsageFunc) Option {
	return func(c *Collector) { c.usage = fn }
}

// WithTrash sets the trash whose size is reported.
func WithTrash(t cleanup.Trasher) Option {
	return func(c *Collector) { c.trash = t }
}

// WithSystemRoot sets the path of the volume echoed at the top of the
// Report.
func WithSystemRoot(path string) Option {
	return func(c *Collector) { c.systemRoot = path }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// NewCollector returns a Collector using the platform volume listing and
// the platform trash.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		listVolumes: platformVolumes,
		usage:       disk.UsageWithContext,
		systemRoot:  systemRoot(),
		now:         time.Now,
		logger:      logging.GetLogger("status"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.trash == nil {
		c.trash = cleanup.DefaultTrash()
	}
	return c
}

// Collect builds a Report. Volumes whose usage cannot be read are left out
// with a warning; only failing to read the system volume is an error.
func (c *Collector) Collect(ctx context.Context) (*Report, error) {
	defer logging.LogOperationStart(c.logger, "status.collect")()

	r := &Report{
		Host:      core.Describe(ctx),
		Timestamp: c.now().UTC(),
		Volumes:   []Volume{},
	}

	vols, err := c.listVolumes(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("volume listing failed; falling back to system volume")
		r.Warnings = append(r.Warnings, "volume listing failed: "+err.Error())
		vols = nil
	}

	seen := make(map[string]bool)
	var system *Volume
	for _, v := range vols {
		if seen[v.Path] {
			continue
		}
		seen[v.Path] = true
		filled, err := c.fill(ctx, v)
		if err != nil {
			c.logger.Debug().Err(err).Str("path", v.Path).Msg("skipping volume")
			r.Warnings = append(r.Warnings, v.Path+": "+err.Error())
			continue
		}
		r.Volumes = append(r.Volumes, filled)
		if system == nil && samePath(filled.Path, c.systemRoot) {
			sys := filled
			system = &sys
		}
	}

	if system == nil {
		filled, err := c.fill(ctx, Volume{Path: c.systemRoot})
		if err != nil {
			return nil, ccerrors.Wrapf(err, ccerrors.ErrIO, "read usage of %s", c.systemRoot)
		}
		r.Volumes = append(r.Volumes, filled)
		system = &filled
	}
	r.Total, r.Used, r.Free, r.Percent = system.Total, system.Used, system.Free, system.UsedPercent

	sort.SliceStable(r.Volumes, func(i, j int) bool { return r.Volumes[i].Path < r.Volumes[j].Path })

	r.TrashAvailable = c.trash.Available()
	if sizer, ok := c.trash.(cleanup.TrashSizer); ok && r.TrashAvailable {
		size, err := sizer.Size(ctx)
		if err != nil {
			r.Warnings = append(r.Warnings, "trash size: "+err.Error())
		} else {
			r.TrashBytes = size
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Collector) fill(ctx context.Context, v Volume) (Volume, error) {
	u, err := c.usage(ctx, v.Path)
	if err != nil {
		return v, err
	}
	v.Total, v.Used, v.Free, v.UsedPercent = u.Total, u.Used, u.Free, u.UsedPercent
	if v.FSType == "" {
		v.FSType = u.Fstype
	}
	return v, nil
}

func samePath(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if core.DetectPlatform().CaseInsensitive() {
		return strings.EqualFold(a, b)
	}
	return a == b
}
