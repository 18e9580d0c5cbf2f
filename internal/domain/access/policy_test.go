package access

import (
	"testing"

	"kashpages/internal/domain/users"

	"github.com/stretchr/testify/assert"
)

func TestComputePolicyFree(t *testing.T) {
	p := ComputePolicy(Principal{UserID: "u1", Role: users.RoleUser})

	assert.Equal(t, "free", p.Tier)
	assert.Equal(t, PublicLimited, p.PublicMode)
	assert.True(t, p.Can(CapEdit))
	assert.False(t, p.Can(CapAnalyticsExport))
	assert.False(t, p.Can(CapReviews))
	assert.False(t, p.Can(CapModerate))
	assert.Equal(t, 12, p.Rules.MaxBlocks)
}

func TestComputePolicyProAdmin(t *testing.T) {
	p := ComputePolicy(Principal{UserID: "u1", Role: users.RoleAdmin, Plan: "pro"})

	assert.Equal(t, PublicFull, p.PublicMode)
	assert.True(t, p.Can(CapRemoveBranding))
	assert.True(t, p.Can(CapReviews))
	assert.True(t, p.Can(CapModerate))
	assert.True(t, p.Can(CapManageTemplates))
}

func TestPrincipalOwnership(t *testing.T) {
	owner := Principal{UserID: "a", Role: users.RoleUser}
	other := Principal{UserID: "b", Role: users.RoleUser}
	admin := Principal{UserID: "c", Role: users.RoleAdmin}
	mod := Principal{UserID: "d", Role: users.RoleModerator}

	assert.True(t, owner.Owns("a"))
	assert.False(t, other.Owns("a"))
	assert.True(t, admin.Owns("a"))
	assert.False(t, mod.Owns("a"))
	assert.True(t, mod.CanModerate())
	assert.False(t, Principal{}.Owns(""))
}
