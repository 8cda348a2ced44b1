package policy

import (
	"fmt"
	"strings"
)

// Decision modes.
const (
	ModeAsk  = "ask"  // leave every decision to a human (default)
	ModeAuto = "auto" // approve allowed plans automatically
	ModeDeny = "deny" // reject every plan
)

// Verdict is the outcome of evaluating a plan against a Policy.
type Verdict int

const (
	VerdictAsk Verdict = iota
	VerdictApprove
	VerdictReject
)

func (v Verdict) String() string {
	switch v {
	case VerdictApprove:
		return "approve"
	case VerdictReject:
		return "reject"
	}
	return "ask"
}

// Policy represents the unattended decision settings.
//
//   - Mode controls the high-level behaviour (ask / auto / deny).
//   - AllowList limits auto approval to matching plans (empty => all).
//   - BlockList rejects matching plans in every mode.
//
// A nil *Policy behaves like ModeAsk.
type Policy struct {
	Mode      string
	AllowList []string
	BlockList []string
}

// Config represents the declarative, serialisable form of a Policy.
type Config struct {
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// Validate checks the mode.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch strings.ToLower(c.Mode) {
	case "", ModeAsk, ModeAuto, ModeDeny:
		return nil
	}
	return fmt.Errorf("unsupported policy mode: %q", c.Mode)
}

// FromConfig converts a stored Config to a runtime Policy.
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		Mode:      strings.ToLower(c.Mode),
		AllowList: append([]string(nil), c.AllowList...),
		BlockList: append([]string(nil), c.BlockList...),
	}
}

// Unattended reports whether the policy may settle anything without a human.
func (p *Policy) Unattended() bool {
	if p == nil {
		return false
	}
	return (p.Mode != "" && p.Mode != ModeAsk) || len(p.BlockList) > 0
}

// Evaluate returns the verdict for planID. BlockList has priority over Mode.
func (p *Policy) Evaluate(planID string) Verdict {
	if p == nil {
		return VerdictAsk
	}
	if matchAny(p.BlockList, planID) {
		return VerdictReject
	}
	switch p.Mode {
	case ModeDeny:
		return VerdictReject
	case ModeAuto:
		if len(p.AllowList) == 0 || matchAny(p.AllowList, planID) {
			return VerdictApprove
		}
	}
	return VerdictAsk
}

// matchAny compares case-insensitively; a pattern ending in '*' matches by
// prefix.
func matchAny(patterns []string, id string) bool {
	normalized := strings.ToLower(id)
	for _, pattern := range patterns {
		pattern = strings.ToLower(pattern)
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(normalized, prefix) {
				return true
			}
			continue
		}
		if normalized == pattern {
			return true
		}
	}
	return false
}
