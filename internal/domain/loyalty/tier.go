package loyalty

import (
	"fmt"
	"strings"
)

type Tier string

// Tier constants (single source of truth)
const (
	TierGold Tier = "gold"
	TierBlue Tier = "blue"

	DefaultTier = TierBlue
)

// AllTiers lists every canonical tier, used for class sync and stats.
var AllTiers = []Tier{TierGold, TierBlue}

func (t Tier) String() string { return string(t) }

// matchRule maps a marker found in free text to a canonical tier.
type matchRule struct {
	pattern string
	tier    Tier
}

// tierRules is evaluated top to bottom, first match wins.
// gold must stay ahead of blue so "gold / ex blue" resolves to gold.
var tierRules = []matchRule{
	{pattern: "gold", tier: TierGold},
	{pattern: "blue", tier: TierBlue},
}

type NormalizeOptions struct {
	// Loose matches a marker anywhere in the value ("Gold 15%").
	// Strict mode needs the trimmed value to equal the marker.
	Loose bool
}

// NormalizeTier maps any string to a canonical tier. It never fails:
// empty or unrecognized input falls back to DefaultTier.
func NormalizeTier(raw string, opts NormalizeOptions) Tier {
	clean := strings.ToLower(strings.TrimSpace(raw))
	if clean == "" {
		return DefaultTier
	}

	for _, r := range tierRules {
		if opts.Loose && strings.Contains(clean, r.pattern) {
			return r.tier
		}
		if !opts.Loose && clean == r.pattern {
			return r.tier
		}
	}
	return DefaultTier
}

// IsKnownTier reports whether raw is an exact (trimmed, case-insensitive) tier token.
func IsKnownTier(raw string) bool {
	clean := strings.ToLower(strings.TrimSpace(raw))
	for _, r := range tierRules {
		if clean == r.pattern {
			return true
		}
	}
	return false
}

// WalletClasses composes Google Wallet class ids from the configured issuer namespace.
type WalletClasses struct {
	IssuerID  string
	ClassBase string
}

// ClassIDForTier returns "<issuer>.<base>-<tier>". It does not check that the
// class exists remotely.
func (w WalletClasses) ClassIDForTier(t Tier) string {
	return fmt.Sprintf("%s.%s-%s", w.IssuerID, w.ClassBase, t)
}
