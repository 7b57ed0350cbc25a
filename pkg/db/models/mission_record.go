package models

import (
	"time"

	"github.com/angelmondragon/promotion-manager/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MissionRecord is the logged outcome of one promoter visit to one store.
// RemainingStock is supplied independently of InitialStock and ProductsSold.
type MissionRecord struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey"`
	PromoterName       string           `gorm:"column:promoter_name;type:text;not null"`
	PromoterContact    *string          `gorm:"column:promoter_contact"`
	StoreName          string           `gorm:"column:store_name;type:text;not null"`
	MissionDate        types.Date       `gorm:"column:mission_date;not null"`
	ArrivalTime        *types.ClockTime `gorm:"column:arrival_time"`
	DepartureTime      *types.ClockTime `gorm:"column:departure_time"`
	InitialStock       int              `gorm:"column:initial_stock;not null;default:0"`
	ProductsSold       int              `gorm:"column:products_sold;not null;default:0"`
	RemainingStock     int              `gorm:"column:remaining_stock;not null;default:0"`
	PeopleApproached   int              `gorm:"column:people_approached;not null;default:0"`
	PeoplePurchased    int              `gorm:"column:people_purchased;not null;default:0"`
	CustomerComments   *string          `gorm:"column:customer_comments"`
	GadgetsDistributed *string          `gorm:"column:gadgets_distributed"`
	PromoterID         *uuid.UUID       `gorm:"type:uuid;column:promoter_id;index"`
	CampaignID         uuid.UUID        `gorm:"type:uuid;column:campaign_id;not null;index"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (MissionRecord) TableName() string {
	return "mission_records"
}

func (m *MissionRecord) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// All lists the models managed by auto-migration.
func All() []any {
	return []any{&User{}, &Campaign{}, &MissionRecord{}}
}
