package cleanup

import (
	"encoding/json"
	"io"
	"time"
)

// Record is one deletion attempt. It is appended to the executor's audit
// log before the removal primitive runs, so a crash mid-removal still
// leaves the intent on record.
type Record struct {
	Path        string    `json:"path"`
	SizeBytes   int64     `json:"size_bytes"`
	Type        string    `json:"type"`
	AttemptedAt time.Time `json:"attempted_at"`
}

func (e *Executor) appendRecord(r Record) {
	e.auditMu.Lock()
	defer e.auditMu.Unlock()
	e.audit = append(e.audit, r)
}

// AuditLog returns a copy of every record appended since the executor
// was created.
func (e *Executor) AuditLog() []Record {
	e.auditMu.Lock()
	defer e.auditMu.Unlock()
	return append([]Record(nil), e.audit...)
}

// ExportAuditLog writes the audit log to w as indented JSON.
func (e *Executor) ExportAuditLog(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	records := e.AuditLog()
	if records == nil {
		records = []Record{}
	}
	return enc.Encode(records)
}
