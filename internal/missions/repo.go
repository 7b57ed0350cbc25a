package missions

import (
	"context"

	"github.com/angelmondragon/promotion-manager/internal/repo"
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists mission records.
type Repository struct {
	repo.Base
}

// NewRepository constructs a mission records repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) scoped(ctx context.Context, authorID *uuid.UUID) *gorm.DB {
	query := r.DB(ctx).Order("mission_date DESC").Order("created_at DESC")
	if authorID != nil {
		query = query.Where("promoter_id = ?", *authorID)
	}
	return query
}

// List returns records newest first, limited to authorID when set.
func (r *Repository) List(ctx context.Context, authorID *uuid.UUID) ([]models.MissionRecord, error) {
	var out []models.MissionRecord
	if err := r.scoped(ctx, authorID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByCampaign returns the records of one campaign, limited to authorID when set.
func (r *Repository) ListByCampaign(ctx context.Context, campaignID uuid.UUID, authorID *uuid.UUID) ([]models.MissionRecord, error) {
	var out []models.MissionRecord
	if err := r.scoped(ctx, authorID).Where("campaign_id = ?", campaignID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByPromoter returns every record authored by promoterID.
func (r *Repository) ListByPromoter(ctx context.Context, promoterID uuid.UUID) ([]models.MissionRecord, error) {
	return r.List(ctx, &promoterID)
}

// CampaignNames resolves campaign ids to names. Unknown ids are absent from the result.
func (r *Repository) CampaignNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ID   uuid.UUID
		Name string
	}
	if err := r.DB(ctx).Model(&models.Campaign{}).Select("id, name").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MissionRecord, error) {
	return repo.FindByID[models.MissionRecord](ctx, r.Base, id)
}

func (r *Repository) Create(ctx context.Context, record *models.MissionRecord) error {
	return r.DB(ctx).Create(record).Error
}

// Save persists every column, including cleared times.
func (r *Repository) Save(ctx context.Context, record *models.MissionRecord) error {
	return r.DB(ctx).Save(record).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return repo.DeleteByID[models.MissionRecord](ctx, r.Base, id)
}
