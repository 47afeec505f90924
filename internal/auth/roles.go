package auth

import (
	"fmt"
	"sort"
	"strings"
)

// Role is the closed set of CRM roles a token can carry
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleTeamLeader Role = "team_leader"
	RoleAgent      Role = "agent"
)

var knownRoles = []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleTeamLeader, RoleAgent}

// ParseRole converts a stored or configured role name into a Role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleTeamLeader, RoleAgent:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// RankTable maps each role to its role level. Higher is more privileged.
type RankTable map[Role]int

// DefaultRankTable returns the rank table used when configuration does not override it
func DefaultRankTable() RankTable {
	return RankTable{
		RoleSuperAdmin: 100,
		RoleAdmin:      90,
		RoleManager:    70,
		RoleTeamLeader: 50,
		RoleAgent:      30,
	}
}

// NewRankTable builds a rank table from configuration, starting from the
// defaults so a partial override keeps the remaining roles ranked.
func NewRankTable(levels map[string]int) (RankTable, error) {
	table := DefaultRankTable()
	for name, level := range levels {
		role, err := ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("role levels: %w", err)
		}
		if level <= 0 {
			return nil, fmt.Errorf("role levels: level for %s must be positive, got %d", role, level)
		}
		table[role] = level
	}
	return table, nil
}

// Level returns the configured level for a role
func (t RankTable) Level(r Role) (int, bool) {
	level, ok := t[r]
	return level, ok
}

// Roles returns the ranked roles ordered from most to least privileged
func (t RankTable) Roles() []Role {
	roles := make([]Role, 0, len(t))
	for _, r := range knownRoles {
		if _, ok := t[r]; ok {
			roles = append(roles, r)
		}
	}
	sort.SliceStable(roles, func(i, j int) bool { return t[roles[i]] > t[roles[j]] })
	return roles
}

// String renders the table as "role=level" pairs from most to least privileged
func (t RankTable) String() string {
	parts := make([]string, 0, len(t))
	for _, r := range t.Roles() {
		parts = append(parts, fmt.Sprintf("%s=%d", r, t[r]))
	}
	return strings.Join(parts, ",")
}
