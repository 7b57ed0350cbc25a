package campaigns

import (
	"context"

	"github.com/angelmondragon/promotion-manager/internal/repo"
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists campaigns.
type Repository struct {
	repo.Base
}

// NewRepository constructs a campaigns repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// List returns campaigns newest start date first. activeOnly drops inactive rows.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Campaign, error) {
	query := r.DB(ctx).Order("start_date DESC").Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var out []models.Campaign
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return repo.FindByID[models.Campaign](ctx, r.Base, id)
}

func (r *Repository) Create(ctx context.Context, campaign *models.Campaign) error {
	return r.DB(ctx).Create(campaign).Error
}

func (r *Repository) Save(ctx context.Context, campaign *models.Campaign) error {
	return r.DB(ctx).Save(campaign).Error
}

// DeleteWithTx removes the campaign and its mission records using tx.
// Returns gorm.ErrRecordNotFound when the campaign does not exist.
func (r *Repository) DeleteWithTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("campaign_id = ?", id).Delete(&models.MissionRecord{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Delete(&models.Campaign{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
