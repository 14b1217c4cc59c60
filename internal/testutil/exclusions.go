package testutil

import "sync"

// Exclusions is an in-memory exclusion list.
type Exclusions struct {
	mu      sync.Mutex
	entries []string
	Err     error
}

// NewExclusions returns a list holding entries.
func NewExclusions(entries ...string) *Exclusions {
	return &Exclusions{entries: entries}
}

func (e *Exclusions) ListExclusions() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return nil, e.Err
	}
	return append([]string(nil), e.entries...), nil
}

func (e *Exclusions) Add(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, path)
}
