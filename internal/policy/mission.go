package policy

import (
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/angelmondragon/promotion-manager/pkg/enums"
	"github.com/google/uuid"
)

type missionPolicy struct{}

func (missionPolicy) Can(actor *Actor, action Action, target any) bool {
	switch action {
	case ActionList, ActionCreate:
		return true
	case ActionRead, ActionUpdate, ActionDelete:
	default:
		return false
	}

	m, ok := target.(*models.MissionRecord)
	if !ok || m == nil {
		return false
	}
	if m.PromoterID != nil && actor.is(*m.PromoterID) {
		return true
	}
	if action == ActionRead {
		return actor.Role.AtLeast(enums.RoleSupervisor)
	}
	return actor.Role.AtLeast(enums.RoleAdministrator)
}

// MissionScope is the filter a mission listing must apply for an actor.
type MissionScope struct {
	AuthorID *uuid.UUID
}

// MissionListScope restricts promoters to the records they authored.
func MissionListScope(actor *Actor) MissionScope {
	if actor.Role.AtLeast(enums.RoleSupervisor) {
		return MissionScope{}
	}
	id := actor.ID
	return MissionScope{AuthorID: &id}
}
