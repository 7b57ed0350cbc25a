package policy

import (
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/angelmondragon/promotion-manager/pkg/enums"
)

// UserChange describes a write on a user account. Target is nil on create.
// Role is set only when the write assigns a role.
type UserChange struct {
	Target *models.User
	Role   *enums.Role
}

type userPolicy struct{}

func (userPolicy) Can(actor *Actor, action Action, target any) bool {
	switch action {
	case ActionList, ActionViewStats:
		return actor.Role.AtLeast(enums.RoleSupervisor)
	case ActionRead:
		u, ok := target.(*models.User)
		if !ok || u == nil {
			return false
		}
		return actor.is(u.ID) || actor.Role.AtLeast(enums.RoleSupervisor)
	case ActionCreate:
		change, ok := target.(UserChange)
		if !ok {
			return false
		}
		return canCreateUser(actor, change)
	case ActionUpdate:
		change, ok := target.(UserChange)
		if !ok || change.Target == nil {
			return false
		}
		return canUpdateUser(actor, change)
	case ActionDelete:
		u, ok := target.(*models.User)
		if !ok || u == nil {
			return false
		}
		return canDeleteUser(actor, u)
	default:
		return false
	}
}

func canCreateUser(actor *Actor, change UserChange) bool {
	if !actor.Role.AtLeast(enums.RoleAdministrator) {
		return false
	}
	if change.Role != nil && *change.Role == enums.RoleSuperAdministrator {
		return actor.Role == enums.RoleSuperAdministrator
	}
	return true
}

func canUpdateUser(actor *Actor, change UserChange) bool {
	target := change.Target
	if !actor.is(target.ID) && !actor.Role.AtLeast(enums.RoleAdministrator) {
		return false
	}
	if change.Role == nil || *change.Role == target.Role {
		return true
	}
	if !actor.Role.AtLeast(enums.RoleAdministrator) {
		return false
	}
	if *change.Role == enums.RoleSuperAdministrator || target.Role == enums.RoleSuperAdministrator {
		return actor.Role == enums.RoleSuperAdministrator
	}
	return true
}

func canDeleteUser(actor *Actor, target *models.User) bool {
	if actor.is(target.ID) || !actor.Role.AtLeast(enums.RoleAdministrator) {
		return false
	}
	if target.Role == enums.RoleSuperAdministrator {
		return actor.Role == enums.RoleSuperAdministrator
	}
	return true
}

// UserScope is the filter a user listing must apply for an actor.
type UserScope struct {
	Roles []enums.Role
}

// UserListScope limits supervisors to promoter accounts.
func UserListScope(actor *Actor) UserScope {
	if actor.Role.AtLeast(enums.RoleAdministrator) {
		return UserScope{}
	}
	return UserScope{Roles: []enums.Role{enums.RolePromoter}}
}
