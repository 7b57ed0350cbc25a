package policy

import (
	"context"
	"testing"

	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/angelmondragon/promotion-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/promotion-manager/pkg/errors"
)

func TestCampaignThresholds(t *testing.T) {
	g := newTestGate()
	campaign := &models.Campaign{IsActive: true}

	cases := []struct {
		action Action
		min    enums.Role
	}{
		{ActionCreate, enums.RoleSupervisor},
		{ActionUpdate, enums.RoleSupervisor},
		{ActionViewStats, enums.RoleSupervisor},
		{ActionDelete, enums.RoleAdministrator},
		{ActionList, enums.RolePromoter},
	}

	for _, tc := range cases {
		for _, role := range enums.Roles() {
			got := g.Can(actor(role), ResourceCampaign, tc.action, campaign)
			if got != role.AtLeast(tc.min) {
				t.Fatalf("%s by %s: got %v", tc.action, role, got)
			}
		}
	}
}

func TestPromoterCannotReadInactiveCampaign(t *testing.T) {
	g := newTestGate()
	inactive := &models.Campaign{IsActive: false}

	err := g.Authorize(context.Background(), actor(enums.RolePromoter), ResourceCampaign, ActionRead, inactive)
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if !g.Can(actor(enums.RolePromoter), ResourceCampaign, ActionRead, &models.Campaign{IsActive: true}) {
		t.Fatalf("promoter should read active campaigns")
	}
	if !g.Can(actor(enums.RoleSupervisor), ResourceCampaign, ActionRead, inactive) {
		t.Fatalf("supervisor should read inactive campaigns")
	}
	if g.Can(actor(enums.RoleSupervisor), ResourceCampaign, ActionRead, nil) {
		t.Fatalf("read without a target should be denied")
	}
}

func TestCampaignListScope(t *testing.T) {
	if !CampaignListScope(actor(enums.RolePromoter)).ActiveOnly {
		t.Fatalf("promoters must be limited to active campaigns")
	}
	for _, role := range []enums.Role{enums.RoleSupervisor, enums.RoleAdministrator, enums.RoleSuperAdministrator} {
		if CampaignListScope(actor(role)).ActiveOnly {
			t.Fatalf("%s should see all campaigns", role)
		}
	}
}
