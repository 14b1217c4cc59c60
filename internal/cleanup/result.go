package cleanup

import (
	"time"

	"github.com/cloudcleaner/cloudcleaner/internal/safety"
)

// Result summarizes one Execute call. Success is true iff nothing failed.
// Errors are in input order, one per failed path.
type Result struct {
	Success         bool      `json:"success"`
	ItemsDeleted    int       `json:"items_deleted"`
	ItemsFailed     int       `json:"items_failed"`
	FreedBytes      int64     `json:"freed_bytes"`
	Errors          []string  `json:"errors"`
	Timestamp       time.Time `json:"timestamp"`
	TrashRequested  bool      `json:"trash_requested"`
	TrashUsed       bool      `json:"trash_used"`
	TrashDowngraded bool      `json:"trash_downgraded"`
}

// PlanItem is one path that Execute would attempt.
type PlanItem struct {
	Path      string         `json:"path"`
	SizeBytes int64          `json:"size_bytes"`
	Type      string         `json:"type"`
	Verdict   safety.Verdict `json:"verdict"`
}

// Plan is the dry-run view of a deletion batch.
type Plan struct {
	ItemCount      int        `json:"item_count"`
	EstimatedBytes int64      `json:"estimated_bytes"`
	Items          []PlanItem `json:"items"`
	Warnings       []string   `json:"warnings"`
	TrashAvailable bool       `json:"trash_available"`
}
