package site

import "kashpages/internal/domain/plans"

// Rules are the plan-driven limits applied to a user's pages.
// Zero MaxBlocks means unlimited.
type Rules struct {
	MaxPages             int  `json:"max_pages"`
	MaxBlocks            int  `json:"max_blocks"`
	ShowPlatformBranding bool `json:"show_platform_branding"`
	AnalyticsExport      bool `json:"analytics_export"`
	Reviews              bool `json:"reviews"`
}

func RulesFor(tier string) Rules {
	switch plans.NormalizeTier(tier) {
	case plans.TierBusiness:
		return Rules{MaxPages: 10, MaxBlocks: 0, AnalyticsExport: true, Reviews: true}
	case plans.TierPro:
		return Rules{MaxPages: 3, MaxBlocks: 40, AnalyticsExport: true, Reviews: true}
	default:
		return Rules{MaxPages: 1, MaxBlocks: 12, ShowPlatformBranding: true}
	}
}
