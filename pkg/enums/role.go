package enums

import (
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/promotion-manager/pkg/errors"
)

// Role is a user's position in the campaign management hierarchy.
type Role string

const (
	RolePromoter           Role = "promoter"
	RoleSupervisor         Role = "supervisor"
	RoleAdministrator      Role = "administrator"
	RoleSuperAdministrator Role = "super_administrator"
)

// roleRank orders roles by increasing privilege.
var roleRank = map[Role]int{
	RolePromoter:           1,
	RoleSupervisor:         2,
	RoleAdministrator:      3,
	RoleSuperAdministrator: 4,
}

var validRoles = []Role{
	RolePromoter,
	RoleSupervisor,
	RoleAdministrator,
	RoleSuperAdministrator,
}

// legacyRoleNames maps names stored by earlier deployments.
var legacyRoleNames = map[string]Role{
	"promotrice":           RolePromoter,
	"promoteur":            RolePromoter,
	"superviseur":          RoleSupervisor,
	"administrateur":       RoleAdministrator,
	"super_administrateur": RoleSuperAdministrator,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries at least the privilege of min.
// Unknown roles never satisfy the comparison.
func (r Role) AtLeast(min Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	want, ok := roleRank[min]
	if !ok {
		return false
	}
	return have >= want
}

// Roles returns every role in ascending privilege order.
func Roles() []Role {
	out := make([]Role, len(validRoles))
	copy(out, validRoles)
	return out
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if role := Role(normalized); role.IsValid() {
		return role, nil
	}
	if role, ok := legacyRoleNames[normalized]; ok {
		return role, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", value))
}
