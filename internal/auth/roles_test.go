package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Super_Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleSuperAdmin, role)

	_, err = ParseRole("root")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestDefaultRankTable(t *testing.T) {
	table := DefaultRankTable()
	assert.Equal(t, []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleTeamLeader, RoleAgent}, table.Roles())

	level, ok := table.Level(RoleTeamLeader)
	assert.True(t, ok)
	assert.Equal(t, 50, level)
}

func TestRankTableString(t *testing.T) {
	assert.Equal(t, "super_admin=100,admin=90,manager=70,team_leader=50,agent=30", DefaultRankTable().String())
	assert.Equal(t, "agent=30", RankTable{RoleAgent: 30}.String())
}

func TestNewRankTable(t *testing.T) {
	t.Run("PartialOverride", func(t *testing.T) {
		table, err := NewRankTable(map[string]int{"agent": 40})
		require.NoError(t, err)
		assert.Equal(t, 40, table[RoleAgent])
		assert.Equal(t, 100, table[RoleSuperAdmin])
	})

	t.Run("OverrideReorders", func(t *testing.T) {
		table, err := NewRankTable(map[string]int{"team_leader": 80})
		require.NoError(t, err)
		assert.Equal(t, []Role{RoleSuperAdmin, RoleAdmin, RoleTeamLeader, RoleManager, RoleAgent}, table.Roles())
	})

	t.Run("UnknownRole", func(t *testing.T) {
		_, err := NewRankTable(map[string]int{"owner": 110})
		assert.Error(t, err)
	})

	t.Run("NonPositiveLevel", func(t *testing.T) {
		_, err := NewRankTable(map[string]int{"agent": 0})
		assert.Error(t, err)
	})
}

func TestReasonOf(t *testing.T) {
	assert.Equal(t, ReasonOK, ReasonOf(nil))
	assert.Equal(t, ReasonExpired, ReasonOf(newError(ReasonExpired, errors.New("boom"))))
	assert.Equal(t, ReasonMalformedToken, ReasonOf(errors.New("untagged")))

	wrapped := errors.Join(errors.New("context"), ErrBadSignature)
	assert.Equal(t, ReasonBadSignature, ReasonOf(wrapped))
}

func TestErrorIs(t *testing.T) {
	err := newError(ReasonExpired, errors.New("token is expired"))
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.NotErrorIs(t, err, ErrBadSignature)
	assert.Equal(t, "expired: token is expired", err.Error())
	assert.Equal(t, "insufficient_role", ErrInsufficientRole.Error())
}
