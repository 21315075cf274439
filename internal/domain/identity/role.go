package identity

import "strings"

// Role is the single role a user holds
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleAccountant Role = "accountant"
	RoleClerk      Role = "clerk"
	RoleClient     Role = "client"
)

// AllRoles lists every valid role
var AllRoles = []Role{RoleAdmin, RoleManager, RoleAccountant, RoleClerk, RoleClient}

// ParseRole accepts any letter case
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAccountant, RoleClerk, RoleClient:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// IsStaff reports whether the role belongs to company staff
func (r Role) IsStaff() bool {
	return r.IsValid() && r != RoleClient
}

// CanApproveExpenses is limited to admins and accountants
func (r Role) CanApproveExpenses() bool {
	return r == RoleAdmin || r == RoleAccountant
}

// CanManageDispatch covers parcel confirmation and dispatch creation
func (r Role) CanManageDispatch() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanRegisterParcels covers parcel intake
func (r Role) CanRegisterParcels() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleClerk
}

// CanManageFinance covers deposits, collections and invoices
func (r Role) CanManageFinance() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleAccountant
}

// In reports whether r is one of roles
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
