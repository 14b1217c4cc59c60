package config

import (
	"strings"
)

// Risk levels accepted in scan groups.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// ScanGroup is a named unit of discovery: a set of candidate root paths
// that share a category, a default risk level and a reason shown to the
// user. Paths may reference environment variables and contain globs.
type ScanGroup struct {
	// Name is the unique identifier for this group.
	Name string `koanf:"name" json:"name"`

	// Paths is the list of candidate roots, unexpanded.
	Paths []string `koanf:"paths" json:"paths"`

	// Category groups related candidates in scan totals (e.g.
	// "browser_cache", "temp_files").
	Category string `koanf:"category" json:"category"`

	// RiskLevel is one of "low", "medium", "high".
	RiskLevel string `koanf:"risk_level" json:"risk_level"`

	// Reason is a human-readable explanation of why the data is reclaimable.
	Reason string `koanf:"reason" json:"reason"`

	// Quick marks groups included in a quick scan.
	Quick bool `koanf:"quick" json:"quick"`

	// RequiresAdmin indicates whether elevated privileges are usually
	// needed to remove the contents.
	RequiresAdmin bool `koanf:"requires_admin" json:"requires_admin"`
}

// Profile is the per-platform rule table and scan group list. It is
// built once by Load and must be treated as read-only afterwards.
type Profile struct {
	Platform            string      `koanf:"platform" json:"platform"`
	CaseInsensitive     bool        `koanf:"case_insensitive" json:"case_insensitive"`
	NeverDelete         []string    `koanf:"never_delete" json:"never_delete"`
	RequireConfirmation []string    `koanf:"require_confirmation" json:"require_confirmation"`
	Groups              []ScanGroup `koanf:"groups" json:"groups"`
}

// RuleSet is the part of a profile consulted by the path classifier.
type RuleSet struct {
	NeverDelete         []string
	RequireConfirmation []string
	CaseInsensitive     bool
}

// Rules returns a copy of the profile's rule lists.
func (p Profile) Rules() RuleSet {
	return RuleSet{
		NeverDelete:         append([]string(nil), p.NeverDelete...),
		RequireConfirmation: append([]string(nil), p.RequireConfirmation...),
		CaseInsensitive:     p.CaseInsensitive,
	}
}

// SelectGroups returns the groups scanned in the given mode. A full scan
// returns every group; a quick scan only those flagged quick.
func (p Profile) SelectGroups(quick bool) []ScanGroup {
	var out []ScanGroup
	for _, g := range p.Groups {
		if quick && !g.Quick {
			continue
		}
		out = append(out, g)
	}
	return out
}

// GroupsByCategory returns the groups with the given category.
func (p Profile) GroupsByCategory(category string) []ScanGroup {
	var out []ScanGroup
	for _, g := range p.Groups {
		if strings.EqualFold(g.Category, category) {
			out = append(out, g)
		}
	}
	return out
}

// Categories returns the distinct categories in group order.
func (p Profile) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range p.Groups {
		if !seen[g.Category] {
			seen[g.Category] = true
			out = append(out, g.Category)
		}
	}
	return out
}
