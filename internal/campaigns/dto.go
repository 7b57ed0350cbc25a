package campaigns

import (
	"time"

	"github.com/angelmondragon/promotion-manager/internal/stats"
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/angelmondragon/promotion-manager/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CampaignDTO is the transport shape of a campaign with its phase relative to today.
type CampaignDTO struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Description      *string          `json:"description,omitempty"`
	StartDate        types.Date       `json:"start_date"`
	EndDate          types.Date       `json:"end_date"`
	IsActive         bool             `json:"is_active"`
	CreatedBy        uuid.UUID        `json:"created_by"`
	AvailableGadgets *string          `json:"available_gadgets,omitempty"`
	TargetAudience   *string          `json:"target_audience,omitempty"`
	Budget           *decimal.Decimal `json:"budget,omitempty"`
	IsCurrent        bool             `json:"is_current"`
	IsUpcoming       bool             `json:"is_upcoming"`
	IsPast           bool             `json:"is_past"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// FromModel maps a campaign, deriving the phase flags from today.
func FromModel(c *models.Campaign, today types.Date) *CampaignDTO {
	if c == nil {
		return nil
	}
	current, upcoming, past := c.Phase(today)
	return &CampaignDTO{
		ID:               c.ID,
		Name:             c.Name,
		Description:      c.Description,
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
		IsActive:         c.IsActive,
		CreatedBy:        c.CreatedBy,
		AvailableGadgets: c.Gadgets,
		TargetAudience:   c.TargetAudience,
		Budget:           c.Budget,
		IsCurrent:        current,
		IsUpcoming:       upcoming,
		IsPast:           past,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// CreateCampaignRequest is the payload for a new campaign. IsActive defaults to true.
type CreateCampaignRequest struct {
	Name             string           `json:"name" validate:"required,max=200"`
	Description      *string          `json:"description,omitempty"`
	StartDate        types.Date       `json:"start_date"`
	EndDate          types.Date       `json:"end_date"`
	IsActive         *bool            `json:"is_active,omitempty"`
	AvailableGadgets *string          `json:"available_gadgets,omitempty"`
	TargetAudience   *string          `json:"target_audience,omitempty"`
	Budget           *decimal.Decimal `json:"budget,omitempty"`
}

// UpdateCampaignRequest is a partial update. Empty optional text clears the field.
type UpdateCampaignRequest struct {
	Name             *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Description      *string          `json:"description,omitempty"`
	StartDate        *types.Date      `json:"start_date,omitempty"`
	EndDate          *types.Date      `json:"end_date,omitempty"`
	IsActive         *bool            `json:"is_active,omitempty"`
	AvailableGadgets *string          `json:"available_gadgets,omitempty"`
	TargetAudience   *string          `json:"target_audience,omitempty"`
	Budget           *decimal.Decimal `json:"budget,omitempty"`
}

// CampaignStats is the campaign-scope aggregation report.
type CampaignStats struct {
	CampaignInfo CampaignDTO `json:"campaign_info"`
	stats.Summary
	PromotersPerformance map[string]stats.PromoterPerformance `json:"promoters_performance"`
}
