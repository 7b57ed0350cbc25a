package models

import (
	"time"

	"github.com/angelmondragon/promotion-manager/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Campaign groups the mission records of one promotion.
type Campaign struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Name           string           `gorm:"type:text;not null"`
	Description    *string          `gorm:"column:description"`
	StartDate      types.Date       `gorm:"column:start_date;not null"`
	EndDate        types.Date       `gorm:"column:end_date;not null"`
	IsActive       bool             `gorm:"column:is_active;not null"`
	CreatedBy      uuid.UUID        `gorm:"type:uuid;column:created_by;not null"`
	Gadgets        *string          `gorm:"column:gadgets"`
	TargetAudience *string          `gorm:"column:target_audience"`
	Budget         *decimal.Decimal `gorm:"type:numeric(12,2);column:budget"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Campaign) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Phase derives the campaign's position relative to today. Exactly one of
// the returned flags is true when StartDate <= EndDate.
func (c Campaign) Phase(today types.Date) (current, upcoming, past bool) {
	switch {
	case today.Before(c.StartDate):
		return false, true, false
	case today.After(c.EndDate):
		return false, false, true
	default:
		return true, false, false
	}
}
