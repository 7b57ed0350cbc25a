package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base provides a shared foundation for record store repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection,
// which may be a transaction handle.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// FindByID loads one row of T by primary key.
func FindByID[T any](ctx context.Context, b Base, id any) (*T, error) {
	var out T
	if err := b.DB(ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteByID removes one row of T and reports gorm.ErrRecordNotFound when
// nothing matched.
func DeleteByID[T any](ctx context.Context, b Base, id any) error {
	var model T
	res := b.DB(ctx).Where("id = ?", id).Delete(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
