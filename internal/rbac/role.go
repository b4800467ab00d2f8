// Package rbac maps application operations to the roles allowed to perform them.
package rbac

import "fmt"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RolePharmacist Role = "pharmacist"
	RoleStaff      Role = "staff"
	RoleCustomer   Role = "customer"
)

var roleRank = map[Role]int{
	RoleCustomer:   0,
	RoleStaff:      1,
	RolePharmacist: 2,
	RoleAdmin:      3,
}

// ParseRole validates a stored role value.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleRank[r]; !ok {
		return "", fmt.Errorf("rbac: unknown role %q", s)
	}
	return r, nil
}

// AtLeast reports whether the role ranks at or above other.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}

// Privileged reports whether the role may read records it does not own.
func (r Role) Privileged() bool {
	return r.AtLeast(RolePharmacist)
}
