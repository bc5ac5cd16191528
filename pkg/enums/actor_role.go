package enums

import "fmt"

// ActorRole identifies who performed an action against the venue systems.
type ActorRole string

const (
	ActorRoleCEO     ActorRole = "ceo"
	ActorRoleManager ActorRole = "manager"
	ActorRoleStaff   ActorRole = "staff"
)

var validActorRoles = []ActorRole{
	ActorRoleCEO,
	ActorRoleManager,
	ActorRoleStaff,
}

// String implements fmt.Stringer.
func (r ActorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanVerifyPayments reports whether the role may confirm claimed payments.
func (r ActorRole) CanVerifyPayments() bool {
	return r == ActorRoleManager || r == ActorRoleCEO
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
