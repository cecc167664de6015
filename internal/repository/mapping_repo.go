package repository

import (
	"context"
	"time"

	"TimeLens/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MappingRepository 改名/改色映射仓储
// ListMappings 必须按自增id升序返回：聚合阶段的 last-applied 规则依赖插入顺序
type MappingRepository interface {
	ListMappings(ctx context.Context) ([]*model.NameColorMapping, error)
	// UpsertMapping 原始键已有映射则覆盖展示名与颜色（保留原行id，即保留插入位置）
	UpsertMapping(ctx context.Context, originalKey, displayName, color string) error
	// UpdateColorByDisplayName 同展示名的所有映射统一改色（合并一致性规则）
	UpdateColorByDisplayName(ctx context.Context, displayName, color string) error
}

type mappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) MappingRepository {
	return &mappingRepository{db: db}
}

func (r *mappingRepository) ListMappings(ctx context.Context) ([]*model.NameColorMapping, error) {
	var mappings []*model.NameColorMapping
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *mappingRepository) UpsertMapping(ctx context.Context, originalKey, displayName, color string) error {
	m := &model.NameColorMapping{
		OriginalKey: originalKey,
		DisplayName: displayName,
		Color:       color,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "original_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "color", "updated_at"}),
	}).Create(m).Error
}

func (r *mappingRepository) UpdateColorByDisplayName(ctx context.Context, displayName, color string) error {
	return r.db.WithContext(ctx).Model(&model.NameColorMapping{}).
		Where("display_name = ?", displayName).
		Updates(map[string]interface{}{
			"color":      color,
			"updated_at": time.Now(),
		}).Error
}
