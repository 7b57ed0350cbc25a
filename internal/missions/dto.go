package missions

import (
	"time"

	"github.com/angelmondragon/promotion-manager/internal/stats"
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/angelmondragon/promotion-manager/pkg/types"
	"github.com/google/uuid"
)

// MissionDTO is the transport shape of a mission record with its per-record rates.
type MissionDTO struct {
	ID                 uuid.UUID        `json:"id"`
	PromoterName       string           `json:"promoter_name"`
	PromoterContact    *string          `json:"promoter_contact,omitempty"`
	StoreName          string           `json:"store_name"`
	MissionDate        types.Date       `json:"mission_date"`
	ArrivalTime        *types.ClockTime `json:"arrival_time"`
	DepartureTime      *types.ClockTime `json:"departure_time"`
	InitialStock       int              `json:"initial_stock"`
	ProductsSold       int              `json:"products_sold"`
	RemainingStock     int              `json:"remaining_stock"`
	PeopleApproached   int              `json:"people_approached"`
	PeoplePurchased    int              `json:"people_purchased"`
	CustomerComments   *string          `json:"customer_comments,omitempty"`
	GadgetsDistributed *string          `json:"gadgets_distributed,omitempty"`
	PromoterID         *uuid.UUID       `json:"promoter_id,omitempty"`
	CampaignID         uuid.UUID        `json:"campaign_id"`
	ConversionRate     float64          `json:"conversion_rate"`
	SalesPercentage    float64          `json:"sales_percentage"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func FromModel(m *models.MissionRecord) *MissionDTO {
	if m == nil {
		return nil
	}
	return &MissionDTO{
		ID:                 m.ID,
		PromoterName:       m.PromoterName,
		PromoterContact:    m.PromoterContact,
		StoreName:          m.StoreName,
		MissionDate:        m.MissionDate,
		ArrivalTime:        m.ArrivalTime,
		DepartureTime:      m.DepartureTime,
		InitialStock:       m.InitialStock,
		ProductsSold:       m.ProductsSold,
		RemainingStock:     m.RemainingStock,
		PeopleApproached:   m.PeopleApproached,
		PeoplePurchased:    m.PeoplePurchased,
		CustomerComments:   m.CustomerComments,
		GadgetsDistributed: m.GadgetsDistributed,
		PromoterID:         m.PromoterID,
		CampaignID:         m.CampaignID,
		ConversionRate:     stats.RecordConversionRate(*m),
		SalesPercentage:    stats.RecordSalesPercentage(*m),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func fromModels(in []models.MissionRecord) []MissionDTO {
	out := make([]MissionDTO, 0, len(in))
	for i := range in {
		out = append(out, *FromModel(&in[i]))
	}
	return out
}

// CreateMissionRequest is the payload for logging a mission. PromoterID is
// accepted for compatibility and ignored; the author is always the caller.
// Times may be omitted, null or blank.
type CreateMissionRequest struct {
	PromoterName       string                  `json:"promoter_name" validate:"required,max=200"`
	PromoterContact    *string                 `json:"promoter_contact,omitempty"`
	StoreName          string                  `json:"store_name" validate:"required,max=200"`
	MissionDate        types.Date              `json:"mission_date"`
	ArrivalTime        types.NullableClockTime `json:"arrival_time"`
	DepartureTime      types.NullableClockTime `json:"departure_time"`
	InitialStock       int                     `json:"initial_stock" validate:"gte=0"`
	ProductsSold       int                     `json:"products_sold" validate:"gte=0"`
	RemainingStock     int                     `json:"remaining_stock"`
	PeopleApproached   int                     `json:"people_approached" validate:"gte=0"`
	PeoplePurchased    int                     `json:"people_purchased" validate:"gte=0"`
	CustomerComments   *string                 `json:"customer_comments,omitempty"`
	GadgetsDistributed *string                 `json:"gadgets_distributed,omitempty"`
	PromoterID         *uuid.UUID              `json:"promoter_id,omitempty"`
	CampaignID         uuid.UUID               `json:"campaign_id"`
}

// UpdateMissionRequest is a partial update. Times distinguish an absent key
// from an explicit null, which clears the stored time.
type UpdateMissionRequest struct {
	PromoterName       *string                 `json:"promoter_name,omitempty" validate:"omitempty,max=200"`
	PromoterContact    *string                 `json:"promoter_contact,omitempty"`
	StoreName          *string                 `json:"store_name,omitempty" validate:"omitempty,max=200"`
	MissionDate        *types.Date             `json:"mission_date,omitempty"`
	ArrivalTime        types.NullableClockTime `json:"arrival_time"`
	DepartureTime      types.NullableClockTime `json:"departure_time"`
	InitialStock       *int                    `json:"initial_stock,omitempty" validate:"omitempty,gte=0"`
	ProductsSold       *int                    `json:"products_sold,omitempty" validate:"omitempty,gte=0"`
	RemainingStock     *int                    `json:"remaining_stock,omitempty"`
	PeopleApproached   *int                    `json:"people_approached,omitempty" validate:"omitempty,gte=0"`
	PeoplePurchased    *int                    `json:"people_purchased,omitempty" validate:"omitempty,gte=0"`
	CustomerComments   *string                 `json:"customer_comments,omitempty"`
	GadgetsDistributed *string                 `json:"gadgets_distributed,omitempty"`
	CampaignID         *uuid.UUID              `json:"campaign_id,omitempty"`
}
