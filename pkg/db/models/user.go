package models

import (
	"time"

	"github.com/angelmondragon/promotion-manager/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account that acts on campaigns and mission records.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Username     string     `gorm:"type:text;not null;uniqueIndex"`
	Email        *string    `gorm:"column:email"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         enums.Role `gorm:"type:text;not null"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = enums.RolePromoter
	}
	return nil
}
