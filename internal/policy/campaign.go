package policy

import (
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/angelmondragon/promotion-manager/pkg/enums"
)

type campaignPolicy struct{}

func (campaignPolicy) Can(actor *Actor, action Action, target any) bool {
	switch action {
	case ActionList:
		return true
	case ActionRead:
		c, ok := target.(*models.Campaign)
		if !ok || c == nil {
			return false
		}
		return c.IsActive || actor.Role.AtLeast(enums.RoleSupervisor)
	case ActionCreate, ActionUpdate, ActionViewStats:
		return actor.Role.AtLeast(enums.RoleSupervisor)
	case ActionDelete:
		return actor.Role.AtLeast(enums.RoleAdministrator)
	default:
		return false
	}
}

// CampaignScope is the filter a campaign listing must apply for an actor.
type CampaignScope struct {
	ActiveOnly bool
}

// CampaignListScope restricts promoters to active campaigns.
func CampaignListScope(actor *Actor) CampaignScope {
	return CampaignScope{ActiveOnly: !actor.Role.AtLeast(enums.RoleSupervisor)}
}
