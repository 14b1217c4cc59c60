package discovery

import (
	"time"
)

// Candidate is one reclaimable root found by a scan.
type Candidate struct {
	Path                 string    `json:"path"`
	SizeBytes            int64     `json:"size_bytes"`
	Category             string    `json:"category"`
	LastModified         time.Time `json:"last_modified"`
	RiskLevel            string    `json:"risk_level"`
	SafeToDelete         bool      `json:"safe_to_delete"`
	Reason               string    `json:"reason"`
	Group                string    `json:"group"`
	RequiresConfirmation bool      `json:"requires_confirmation"`
	SkippedEntries       int64     `json:"skipped_entries"`
}

// Result is the outcome of one scan. Items are ordered by size, largest
// first; the category totals always sum to TotalSizeBytes.
type Result struct {
	Items               []Candidate      `json:"items"`
	Categories          map[string]int64 `json:"categories"`
	TotalItems          int              `json:"total_items"`
	TotalSizeBytes      int64            `json:"total_size_bytes"`
	ScanDurationSeconds float64          `json:"scan_duration_seconds"`
	Timestamp           time.Time        `json:"timestamp"`
	Quick               bool             `json:"quick"`
	Platform            string           `json:"platform"`
	SkippedEntries      int64            `json:"skipped_entries"`
	Partial             bool             `json:"partial"`
	Warnings            []string         `json:"warnings,omitempty"`
}

// SafePaths returns the paths of candidates that need no confirmation.
func (r *Result) SafePaths() []string {
	var out []string
	for _, c := range r.Items {
		if c.SafeToDelete {
			out = append(out, c.Path)
		}
	}
	return out
}

// Paths returns every candidate path in result order.
func (r *Result) Paths() []string {
	out := make([]string, 0, len(r.Items))
	for _, c := range r.Items {
		out = append(out, c.Path)
	}
	return out
}

// Find returns the candidate with the given path.
func (r *Result) Find(path string) (Candidate, bool) {
	for _, c := range r.Items {
		if c.Path == path {
			return c, true
		}
	}
	return Candidate{}, false
}

func (r *Result) totals() {
	r.Categories = make(map[string]int64)
	r.TotalSizeBytes = 0
	for _, c := range r.Items {
		r.Categories[c.Category] += c.SizeBytes
		r.TotalSizeBytes += c.SizeBytes
	}
	r.TotalItems = len(r.Items)
}
