package safety

import (
	"fmt"
)

// Kind is the outcome of classifying a path.
type Kind int

const (
	Safe Kind = iota
	RequiresConfirmation
	Protected
	Locked
	NotFound
)

var kindNames = map[Kind]string{
	Safe:                 "safe",
	RequiresConfirmation: "requires_confirmation",
	Protected:            "protected",
	Locked:               "locked",
	NotFound:             "not_found",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown verdict kind %q", string(b))
}

// Verdict is the classification of one path at one point in time. Rule
// holds the profile rule or exclusion entry that decided it, as written.
type Verdict struct {
	Kind   Kind   `json:"kind"`
	Reason string `json:"reason"`
	Rule   string `json:"rule,omitempty"`
}

// Deletable reports whether the path may be removed, possibly after the
// user confirms.
func (v Verdict) Deletable() bool {
	return v.Kind == Safe || v.Kind == RequiresConfirmation
}

func (v Verdict) String() string {
	if v.Reason == "" {
		return v.Kind.String()
	}
	return v.Kind.String() + ": " + v.Reason
}

func protectedBy(rule string) Verdict {
	return Verdict{Kind: Protected, Reason: "Protected system path: " + rule, Rule: rule}
}

func excludedBy(entry string) Verdict {
	return Verdict{Kind: Protected, Reason: "user exclusion", Rule: entry}
}

func confirmFor(rule string) Verdict {
	return Verdict{Kind: RequiresConfirmation, Reason: "Sensitive location: " + rule, Rule: rule}
}

var (
	safeVerdict     = Verdict{Kind: Safe, Reason: "Safe to delete"}
	lockedVerdict   = Verdict{Kind: Locked, Reason: "File is currently in use by another process"}
	notFoundVerdict = Verdict{Kind: NotFound, Reason: "Path does not exist"}
)
