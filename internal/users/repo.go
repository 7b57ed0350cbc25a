package users

import (
	"context"
	"time"

	"github.com/angelmondragon/promotion-manager/internal/repo"
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/angelmondragon/promotion-manager/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.DB(ctx).Create(user).Error
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return repo.FindByID[models.User](ctx, r.Base, id)
}

// FindByUsername retrieves the user matching the provided username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users ordered by username, limited to roles when non-empty.
func (r *Repository) List(ctx context.Context, roles []enums.Role) ([]models.User, error) {
	query := r.DB(ctx).Order("username ASC")
	if len(roles) > 0 {
		query = query.Where("role IN ?", roles)
	}
	var out []models.User
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Save persists every column of user.
func (r *Repository) Save(ctx context.Context, user *models.User) error {
	return r.DB(ctx).Save(user).Error
}

// Delete removes a user by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return repo.DeleteByID[models.User](ctx, r.Base, id)
}

// CountByRole returns the number of users per role.
func (r *Repository) CountByRole(ctx context.Context) (map[enums.Role]int64, error) {
	var rows []struct {
		Role  enums.Role
		Count int64
	}
	if err := r.DB(ctx).Model(&models.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[enums.Role]int64, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}

// CountDependents counts the campaigns and mission records referencing a user.
func (r *Repository) CountDependents(ctx context.Context, id uuid.UUID) (int64, error) {
	var campaigns, missions int64
	if err := r.DB(ctx).Model(&models.Campaign{}).Where("created_by = ?", id).Count(&campaigns).Error; err != nil {
		return 0, err
	}
	if err := r.DB(ctx).Model(&models.MissionRecord{}).Where("promoter_id = ?", id).Count(&missions).Error; err != nil {
		return 0, err
	}
	return campaigns + missions, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}
