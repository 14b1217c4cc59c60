package selectui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cloudcleaner/cloudcleaner/internal/core"
	"github.com/cloudcleaner/cloudcleaner/internal/discovery"
)

// maxPerCategory caps the rows printed under one category.
const maxPerCategory = 20

// WriteStatic prints a plain-text listing of r grouped by category,
// largest category first. Used when stdout is not a terminal. ASCII
// connectors keep the output readable on any console code page.
func WriteStatic(w io.Writer, r *discovery.Result) error {
	p := &printer{w: w}
	if r == nil || len(r.Items) == 0 {
		p.printf("  Nothing to clean.\n")
		return p.err
	}

	kind := "full"
	if r.Quick {
		kind = "quick"
	}
	p.printf("  Scan (%s, %s): %d items, %s in %.2fs\n",
		kind, r.Platform, r.TotalItems, core.FormatSize(r.TotalSizeBytes), r.ScanDurationSeconds)
	p.printf("  %s\n", strings.Repeat("-", 58))

	byCat := make(map[string][]discovery.Candidate)
	for _, c := range r.Items {
		byCat[c.Category] = append(byCat[c.Category], c)
	}
	cats := make([]string, 0, len(byCat))
	for cat := range byCat {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		if r.Categories[cats[i]] != r.Categories[cats[j]] {
			return r.Categories[cats[i]] > r.Categories[cats[j]]
		}
		return cats[i] < cats[j]
	})

	for _, cat := range cats {
		items := byCat[cat]
		p.printf("\n  %s  %s\n", cat, core.FormatSize(r.Categories[cat]))

		shown := items
		if len(shown) > maxPerCategory {
			shown = shown[:maxPerCategory]
		}
		for i, c := range shown {
			connector := "+-- "
			if i == len(shown)-1 && len(items) <= maxPerCategory {
				connector = "\\-- "
			}
			p.printf("  %s%9s  %-6s %s%s\n", connector, core.FormatSize(c.SizeBytes), c.RiskLevel, c.Path, marker(c))
		}
		if rest := len(items) - len(shown); rest > 0 {
			p.printf("  \\-- ... and %d more\n", rest)
		}
	}

	p.printf("\n  %s\n", strings.Repeat("-", 58))
	p.printf("  Total: %s\n", core.FormatSize(r.TotalSizeBytes))
	if r.Partial {
		p.printf("  Note: %d entries could not be read; sizes are lower bounds.\n", r.SkippedEntries)
	}
	return p.err
}

func marker(c discovery.Candidate) string {
	if c.RequiresConfirmation {
		return "  [confirm]"
	}
	return ""
}

// printer remembers the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
