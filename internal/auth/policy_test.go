package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func claimsFor(role Role, level int) *Claims {
	return &Claims{Identity: Identity{UserID: "u", Role: role, RoleLevel: level}}
}

func TestPolicyCheck(t *testing.T) {
	policy := NewPolicy(nil)

	tests := []struct {
		name     string
		claims   *Claims
		required int
		allowed  bool
	}{
		{"SuperAdminPassesEverything", claimsFor(RoleSuperAdmin, 100), 100, true},
		{"EqualLevelAllowed", claimsFor(RoleManager, 70), 70, true},
		{"HigherLevelAllowed", claimsFor(RoleAdmin, 90), 70, true},
		{"LowerLevelDenied", claimsFor(RoleAgent, 30), 50, false},
		{"NilClaimsDenied", nil, 0, false},
		{"UnknownRoleDenied", claimsFor(Role("intern"), 100), 10, false},
		{"ZeroLevelDenied", claimsFor(RoleAgent, 0), 0, false},
		{"NegativeLevelDenied", claimsFor(RoleAgent, -5), -10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := policy.Check(tt.claims, tt.required)
			assert.Equal(t, tt.allowed, decision.Allowed)
			if tt.allowed {
				assert.Equal(t, ReasonOK, decision.Reason)
				assert.NoError(t, decision.Err())
			} else {
				assert.Equal(t, ReasonInsufficientRole, decision.Reason)
				assert.ErrorIs(t, decision.Err(), ErrInsufficientRole)
			}
		})
	}
}

func TestPolicyMonotonic(t *testing.T) {
	policy := NewPolicy(nil)

	for have := 1; have <= 120; have++ {
		for required := 1; required <= 120; required++ {
			allowed := policy.Check(claimsFor(RoleAgent, have), required).Allowed
			if !allowed {
				continue
			}
			// Anything at or above an allowed level is allowed too
			for higher := have; higher <= 120; higher += 7 {
				assert.True(t, policy.Check(claimsFor(RoleAgent, higher), required).Allowed,
					"level %d allowed for %d but %d denied", have, required, higher)
			}
			// and anything at or below an allowed requirement
			assert.True(t, policy.Check(claimsFor(RoleAgent, have), required-1).Allowed)
		}
	}
}

func TestPolicyCheckRole(t *testing.T) {
	policy := NewPolicy(DefaultRankTable())

	assert.True(t, policy.CheckRole(claimsFor(RoleManager, 70), RoleTeamLeader).Allowed)
	assert.True(t, policy.CheckRole(claimsFor(RoleManager, 70), RoleManager).Allowed)
	assert.False(t, policy.CheckRole(claimsFor(RoleManager, 70), RoleAdmin).Allowed)
	assert.False(t, policy.CheckRole(claimsFor(RoleManager, 70), Role("owner")).Allowed)
}

func TestPolicyUsesTokenLevel(t *testing.T) {
	// An agent granted a custom level in the token is judged by that level
	policy := NewPolicy(nil)
	assert.True(t, policy.CheckRole(claimsFor(RoleAgent, 75), RoleManager).Allowed)
}

func TestPolicyLevelFor(t *testing.T) {
	policy := NewPolicy(nil)

	level, ok := policy.LevelFor(RoleSuperAdmin, 0)
	assert.True(t, ok)
	assert.Equal(t, 100, level)

	level, ok = policy.LevelFor(RoleAgent, 45)
	assert.True(t, ok)
	assert.Equal(t, 45, level)

	_, ok = policy.LevelFor(Role("intern"), 10)
	assert.False(t, ok)
}
