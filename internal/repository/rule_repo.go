package repository

import (
	"context"

	"TimeLens/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RuleRepository 关键词归类规则仓储
// ListRules 必须按自增id升序返回：多关键词命中同一标题时的tie-break依赖插入顺序
type RuleRepository interface {
	ListRules(ctx context.Context) ([]*model.KeywordRule, error)
	// UpsertRule 关键词重复时覆盖目标项目名（last-write-wins，保留原插入位置）
	UpsertRule(ctx context.Context, keyword, targetLabel string) error
	// DeleteRule 按关键词删除规则，不存在时为no-op
	DeleteRule(ctx context.Context, keyword string) error
}

type ruleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) ListRules(ctx context.Context) ([]*model.KeywordRule, error) {
	var rules []*model.KeywordRule
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) UpsertRule(ctx context.Context, keyword, targetLabel string) error {
	rule := &model.KeywordRule{
		Keyword:     keyword,
		TargetLabel: targetLabel,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "keyword"}},
		DoUpdates: clause.AssignmentColumns([]string{"target_label", "updated_at"}),
	}).Create(rule).Error
}

func (r *ruleRepository) DeleteRule(ctx context.Context, keyword string) error {
	return r.db.WithContext(ctx).Where("keyword = ?", keyword).Delete(&model.KeywordRule{}).Error
}
