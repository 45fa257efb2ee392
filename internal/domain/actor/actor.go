package actor

import "strings"

type Role string

const (
	RoleInvestor  Role = "investor"
	RoleFundAdmin Role = "fund_admin"
	RoleSystem    Role = "system"
)

// Actor is the caller identity recorded on audit entries. Authentication happens upstream.
type Actor struct {
	ID   string
	Role Role
}

func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleInvestor, RoleFundAdmin, RoleSystem:
		return r, true
	}
	return "", false
}

func System() Actor { return Actor{ID: "system", Role: RoleSystem} }
