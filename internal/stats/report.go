package stats

import (
	"sort"

	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/google/uuid"
)

// CampaignBreakdown is one campaign's share of a promoter report.
type CampaignBreakdown struct {
	CampaignID   uuid.UUID `json:"campaign_id"`
	CampaignName string    `json:"campaign_name,omitempty"`
	Summary
}

// PromoterReport aggregates one promoter's records across campaigns.
type PromoterReport struct {
	PromoterID uuid.UUID           `json:"promoter_id"`
	Overall    Summary             `json:"overall"`
	Campaigns  []CampaignBreakdown `json:"campaigns"`
}

// BuildPromoterReport aggregates records authored by promoterID. Campaign
// names are looked up in names; breakdowns are ordered by campaign name then id.
func BuildPromoterReport(promoterID uuid.UUID, records []models.MissionRecord, names map[uuid.UUID]string) PromoterReport {
	var overall Totals
	perCampaign := make(map[uuid.UUID]*Totals)

	for _, r := range records {
		overall.add(r)
		t, ok := perCampaign[r.CampaignID]
		if !ok {
			t = &Totals{}
			perCampaign[r.CampaignID] = t
		}
		t.add(r)
	}

	breakdowns := make([]CampaignBreakdown, 0, len(perCampaign))
	for id, t := range perCampaign {
		breakdowns = append(breakdowns, CampaignBreakdown{
			CampaignID:   id,
			CampaignName: names[id],
			Summary:      t.summary(),
		})
	}
	sort.Slice(breakdowns, func(i, j int) bool {
		if breakdowns[i].CampaignName != breakdowns[j].CampaignName {
			return breakdowns[i].CampaignName < breakdowns[j].CampaignName
		}
		return breakdowns[i].CampaignID.String() < breakdowns[j].CampaignID.String()
	})

	return PromoterReport{
		PromoterID: promoterID,
		Overall:    overall.summary(),
		Campaigns:  breakdowns,
	}
}
