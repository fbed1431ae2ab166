package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. Capability checks go through the
// methods below instead of comparing strings at call sites.
type Role string

const (
	RolePatron   Role = "patron"
	RoleMember   Role = "member"
	RoleOperator Role = "operator"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RolePatron, RoleMember, RoleOperator:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}

// CanApproveTopups reports whether the role may approve or reject pending top-ups.
func (r Role) CanApproveTopups() bool {
	return r == RoleOperator
}

// CanManageAnyAccount reports whether the role may act on wallets and ledgers
// owned by other users.
func (r Role) CanManageAnyAccount() bool {
	return r == RoleOperator
}

// MemberPricing reports whether the role may receive member rates at venues
// where the account holds a membership.
func (r Role) MemberPricing() bool {
	return r == RoleMember
}

// Identity is the authenticated caller of a service operation.
type Identity struct {
	UserID int
	Role   Role
}

func (i Identity) Owns(ownerID int) bool {
	return i.UserID == ownerID
}

func (i Identity) IsOperator() bool {
	return i.Role == RoleOperator
}

// CanAccess reports whether the caller may read or mutate a resource owned by ownerID.
func (i Identity) CanAccess(ownerID int) bool {
	return i.Owns(ownerID) || i.Role.CanManageAnyAccount()
}
