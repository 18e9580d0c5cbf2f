package access

import (
	"slices"

	"kashpages/internal/domain/plans"
	"kashpages/internal/domain/site"
)

type Policy struct {
	Tier         string     `json:"tier"`
	PublicMode   PublicMode `json:"public_mode"`
	Capabilities []string   `json:"capabilities"`
	Rules        site.Rules `json:"rules"`
}

func ComputePolicy(p Principal) Policy {
	tier := plans.NormalizeTier(p.Plan)
	rules := site.RulesFor(tier)

	mode := PublicFull
	if rules.ShowPlatformBranding {
		mode = PublicLimited
	}

	return Policy{
		Tier:         tier,
		PublicMode:   mode,
		Capabilities: CapabilitiesFor(p.Role, tier),
		Rules:        rules,
	}
}

func (p Policy) Can(capability string) bool {
	return slices.Contains(p.Capabilities, capability)
}
