package plans

import "strings"

// Tier constants (single source of truth)
const (
	TierFree     = "free"
	TierPro      = "pro"
	TierBusiness = "business"
)

// Tiers lists every tier from lowest to highest.
var Tiers = []string{TierFree, TierPro, TierBusiness}

// NormalizeTier maps a stored tier to a known one.
// Unknown or empty values fall back to free.
func NormalizeTier(raw string) string {
	tier := strings.ToLower(strings.TrimSpace(raw))
	switch tier {
	case TierFree, TierPro, TierBusiness:
		return tier
	}
	return TierFree
}

// Rank orders tiers so callers can ask "at least pro".
func Rank(tier string) int {
	switch NormalizeTier(tier) {
	case TierBusiness:
		return 2
	case TierPro:
		return 1
	default:
		return 0
	}
}
