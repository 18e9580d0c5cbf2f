package access

import (
	"kashpages/internal/domain/plans"
	"kashpages/internal/domain/users"
)

const (
	CapEdit            = "edit"
	CapPublish         = "publish"
	CapRemoveBranding  = "remove_branding"
	CapAnalyticsExport = "analytics_export"
	CapReviews         = "reviews"
	CapModerate        = "moderate"
	CapManageTemplates = "manage_templates"
)

func CapabilitiesFor(role, tier string) []string {
	caps := []string{CapEdit, CapPublish}

	switch plans.NormalizeTier(tier) {
	case plans.TierPro, plans.TierBusiness:
		caps = append(caps, CapRemoveBranding, CapAnalyticsExport, CapReviews)
	}

	switch role {
	case users.RoleAdmin:
		caps = append(caps, CapModerate, CapManageTemplates)
	case users.RoleModerator:
		caps = append(caps, CapModerate)
	}
	return caps
}
