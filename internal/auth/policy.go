package auth

// Decision is the result of an access check
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Err returns nil for an allowed decision and the matching *Error otherwise
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &Error{Reason: d.Reason}
}

var (
	allow = Decision{Allowed: true, Reason: ReasonOK}
	deny  = Decision{Allowed: false, Reason: ReasonInsufficientRole}
)

// Policy decides whether verified claims meet a required role level
type Policy struct {
	ranks RankTable
}

// NewPolicy creates a policy over ranks. A nil table falls back to DefaultRankTable.
func NewPolicy(ranks RankTable) *Policy {
	if ranks == nil {
		ranks = DefaultRankTable()
	}
	return &Policy{ranks: ranks}
}

// Ranks returns the policy's rank table
func (p *Policy) Ranks() RankTable {
	return p.ranks
}

// Check allows when claims.RoleLevel >= required. Missing claims, an
// unranked role or a non-positive level always deny.
func (p *Policy) Check(claims *Claims, required int) Decision {
	if claims == nil {
		return deny
	}
	if _, ok := p.ranks.Level(claims.Role); !ok {
		return deny
	}
	if claims.RoleLevel <= 0 {
		return deny
	}
	if claims.RoleLevel >= required {
		return allow
	}
	return deny
}

// CheckRole is Check with the required level looked up for role
func (p *Policy) CheckRole(claims *Claims, role Role) Decision {
	required, ok := p.ranks.Level(role)
	if !ok {
		return deny
	}
	return p.Check(claims, required)
}

// LevelFor resolves the level a freshly issued token should carry. A
// positive stored level wins over the rank table.
func (p *Policy) LevelFor(role Role, stored int) (int, bool) {
	if _, ok := p.ranks.Level(role); !ok {
		return 0, false
	}
	if stored > 0 {
		return stored, true
	}
	return p.ranks.Level(role)
}
