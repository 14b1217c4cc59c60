// Package store keeps scan and cleanup history and the user's exclusion
// list on disk.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/cloudcleaner/cloudcleaner/internal/cleanup"
	"github.com/cloudcleaner/cloudcleaner/internal/discovery"
	ccerrors "github.com/cloudcleaner/cloudcleaner/internal/errors"
	"github.com/cloudcleaner/cloudcleaner/internal/logging"
)

// HistoryStore records completed scans and cleanups.
type HistoryStore interface {
	RecordScan(res *discovery.Result) (string, error)
	RecordCleanup(res *cleanup.Result, scanID string) (string, error)
}

// Scan types.
const (
	ScanQuick = "quick"
	ScanFull  = "full"
)

// ScanRecord is one recorded scan.
type ScanRecord struct {
	ID              string            `json:"id"`
	Timestamp       time.Time         `json:"timestamp"`
	ScanType        string            `json:"scan_type"`
	TotalItems      int               `json:"total_items"`
	TotalSizeBytes  int64             `json:"total_size_bytes"`
	DurationSeconds float64           `json:"duration_seconds"`
	Status          string            `json:"status"`
	Result          *discovery.Result `json:"scan_data,omitempty"`
}

// CleanupRecord is one recorded cleanup.
type CleanupRecord struct {
	ID           string    `json:"id"`
	ScanID       string    `json:"scan_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	ItemsDeleted int       `json:"items_deleted"`
	ItemsFailed  int       `json:"items_failed"`
	BytesFreed   int64     `json:"bytes_freed"`
	TrashUsed    bool      `json:"trash_used"`
	Errors       []string  `json:"errors,omitempty"`
}

// History is the recent activity, newest first.
type History struct {
	Scans    []ScanRecord    `json:"scans"`
	Cleanups []CleanupRecord `json:"cleanups"`
}

// Stats aggregates the whole history.
type Stats struct {
	TotalScans        int   `json:"total_scans"`
	TotalCleanups     int   `json:"total_cleanups"`
	TotalBytesFreed   int64 `json:"total_bytes_freed"`
	TotalItemsCleaned int   `json:"total_items_cleaned"`
}

type historyLine struct {
	Kind    string         `json:"kind"`
	Scan    *ScanRecord    `json:"scan,omitempty"`
	Cleanup *CleanupRecord `json:"cleanup,omitempty"`
}

// maxLineSize bounds one history line; scan lines embed the full result.
const maxLineSize = 16 << 20

// JSONLHistory appends one JSON object per line to a file.
type JSONLHistory struct {
	fs     afero.Fs
	path   string
	now    func() time.Time
	logger zerolog.Logger

	mu sync.Mutex
}

// NewJSONLHistory returns a history stored at path on fs.
func NewJSONLHistory(fs afero.Fs, path string) *JSONLHistory {
	return &JSONLHistory{
		fs:     fs,
		path:   path,
		now:    time.Now,
		logger: logging.GetLogger("store"),
	}
}

// Path returns the backing file.
func (h *JSONLHistory) Path() string {
	return h.path
}

// RecordScan stores res and returns its id.
func (h *JSONLHistory) RecordScan(res *discovery.Result) (string, error) {
	scanType := ScanFull
	if res.Quick {
		scanType = ScanQuick
	}
	status := "completed"
	if res.Partial {
		status = "partial"
	}
	rec := &ScanRecord{
		ID:              uuid.NewString(),
		Timestamp:       h.now(),
		ScanType:        scanType,
		TotalItems:      res.TotalItems,
		TotalSizeBytes:  res.TotalSizeBytes,
		DurationSeconds: res.ScanDurationSeconds,
		Status:          status,
		Result:          res,
	}
	if err := h.append(historyLine{Kind: "scan", Scan: rec}); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// RecordCleanup stores res, linked to scanID when set, and returns its id.
func (h *JSONLHistory) RecordCleanup(res *cleanup.Result, scanID string) (string, error) {
	rec := &CleanupRecord{
		ID:           uuid.NewString(),
		ScanID:       scanID,
		Timestamp:    h.now(),
		ItemsDeleted: res.ItemsDeleted,
		ItemsFailed:  res.ItemsFailed,
		BytesFreed:   res.FreedBytes,
		TrashUsed:    res.TrashUsed,
		Errors:       res.Errors,
	}
	if err := h.append(historyLine{Kind: "cleanup", Cleanup: rec}); err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (h *JSONLHistory) append(line historyLine) error {
	b, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("failed to encode history entry: %w", err)
	}
	b = append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.fs.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return ccerrors.Wrap(err, ccerrors.ErrIO, "failed to create history directory")
	}
	f, err := h.fs.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return ccerrors.Wrap(err, ccerrors.ErrIO, "failed to open history file")
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return ccerrors.Wrap(err, ccerrors.ErrIO, "failed to write history entry")
	}
	return nil
}

func (h *JSONLHistory) read() ([]historyLine, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := h.fs.Open(h.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, ccerrors.Wrap(err, ccerrors.ErrIO, "failed to open history file")
	}
	defer f.Close()

	var lines []historyLine
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	n := 0
	for sc.Scan() {
		n++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var l historyLine
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			h.logger.Warn().Err(err).Int("line", n).Str("path", h.path).Msg("Skipping malformed history line")
			continue
		}
		lines = append(lines, l)
	}
	if err := sc.Err(); err != nil {
		return lines, ccerrors.Wrap(err, ccerrors.ErrIO, "failed to read history file")
	}
	return lines, nil
}

// Recent returns up to limit scans and limit cleanups, newest first.
// Scan records are returned without their embedded result. A limit of 0
// or less means no limit.
func (h *JSONLHistory) Recent(limit int) (*History, error) {
	lines, err := h.read()
	if err != nil {
		return nil, err
	}

	hist := &History{Scans: []ScanRecord{}, Cleanups: []CleanupRecord{}}
	for _, l := range lines {
		switch {
		case l.Scan != nil:
			s := *l.Scan
			s.Result = nil
			hist.Scans = append(hist.Scans, s)
		case l.Cleanup != nil:
			hist.Cleanups = append(hist.Cleanups, *l.Cleanup)
		}
	}

	sort.SliceStable(hist.Scans, func(i, j int) bool { return hist.Scans[i].Timestamp.After(hist.Scans[j].Timestamp) })
	sort.SliceStable(hist.Cleanups, func(i, j int) bool { return hist.Cleanups[i].Timestamp.After(hist.Cleanups[j].Timestamp) })

	if limit > 0 {
		if len(hist.Scans) > limit {
			hist.Scans = hist.Scans[:limit]
		}
		if len(hist.Cleanups) > limit {
			hist.Cleanups = hist.Cleanups[:limit]
		}
	}
	return hist, nil
}

// FindScan returns the scan with id, including its result.
func (h *JSONLHistory) FindScan(id string) (*ScanRecord, error) {
	lines, err := h.read()
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if l.Scan != nil && l.Scan.ID == id {
			return l.Scan, nil
		}
	}
	return nil, ccerrors.Newf(ccerrors.ErrNotFound, "no scan with id %s", id).WithDetail("id", id)
}

// Stats aggregates every recorded scan and cleanup.
func (h *JSONLHistory) Stats() (*Stats, error) {
	lines, err := h.read()
	if err != nil {
		return nil, err
	}
	st := &Stats{}
	for _, l := range lines {
		switch {
		case l.Scan != nil:
			st.TotalScans++
		case l.Cleanup != nil:
			st.TotalCleanups++
			st.TotalBytesFreed += l.Cleanup.BytesFreed
			st.TotalItemsCleaned += l.Cleanup.ItemsDeleted
		}
	}
	return st, nil
}
