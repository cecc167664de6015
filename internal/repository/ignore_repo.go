package repository

import (
	"context"

	"TimeLens/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IgnoreRepository 忽略键集合仓储
type IgnoreRepository interface {
	ListIgnoredKeys(ctx context.Context) ([]string, error)
	// AddIgnoredKeys 批量加入忽略集合（集合并集，重复加入幂等）
	AddIgnoredKeys(ctx context.Context, originalKeys []string) error
	// RemoveIgnoredKey 移出忽略集合，不存在时为no-op
	RemoveIgnoredKey(ctx context.Context, originalKey string) error
}

type ignoreRepository struct {
	db *gorm.DB
}

func NewIgnoreRepository(db *gorm.DB) IgnoreRepository {
	return &ignoreRepository{db: db}
}

func (r *ignoreRepository) ListIgnoredKeys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := r.db.WithContext(ctx).Model(&model.IgnoredKey{}).
		Order("id ASC").
		Pluck("original_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *ignoreRepository) AddIgnoredKeys(ctx context.Context, originalKeys []string) error {
	if len(originalKeys) == 0 {
		return nil
	}
	rows := make([]*model.IgnoredKey, 0, len(originalKeys))
	for _, k := range originalKeys {
		rows = append(rows, &model.IgnoredKey{OriginalKey: k})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "original_key"}},
		DoNothing: true,
	}).Create(rows).Error
}

func (r *ignoreRepository) RemoveIgnoredKey(ctx context.Context, originalKey string) error {
	return r.db.WithContext(ctx).Where("original_key = ?", originalKey).Delete(&model.IgnoredKey{}).Error
}
