package service

import (
	"context"
	"fmt"
	"strings"

	"TimeLens/internal/model"
	"TimeLens/internal/repository"

	"github.com/sirupsen/logrus"
)

// MappingService 用户覆盖层的变更服务：改名/改色、删除项目（忽略）、关键词规则维护
// 只改写聚合引擎的三类输入，不直接触碰聚合结果
type MappingService struct {
	mappingRepo repository.MappingRepository
	ruleRepo    repository.RuleRepository
	ignoreRepo  repository.IgnoreRepository
	logger      *logrus.Logger
}

func NewMappingService(
	mappingRepo repository.MappingRepository,
	ruleRepo repository.RuleRepository,
	ignoreRepo repository.IgnoreRepository,
	logger *logrus.Logger,
) *MappingService {
	return &MappingService{
		mappingRepo: mappingRepo,
		ruleRepo:    ruleRepo,
		ignoreRepo:  ignoreRepo,
		logger:      logger,
	}
}

// RenameProject 将一组原始聚合键统一改名/改色
// 合并一致性规则：新名与已有展示名相同（纯改色或并入已合并组）时，
// 新颜色传播到所有解析到该展示名的映射条目，避免合并项目出现颜色分裂
func (s *MappingService) RenameProject(ctx context.Context, originalKeys []string, newName, newColor string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("新展示名不能为空")
	}
	if len(originalKeys) == 0 {
		return fmt.Errorf("原始聚合键不能为空")
	}

	for _, key := range originalKeys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		if err := s.mappingRepo.UpsertMapping(ctx, key, newName, newColor); err != nil {
			return fmt.Errorf("更新映射失败: %w, key: %s", err, key)
		}
	}

	// 颜色传播到同展示名的全部条目（含本次未选中的键）
	if err := s.mappingRepo.UpdateColorByDisplayName(ctx, newName, newColor); err != nil {
		return fmt.Errorf("传播颜色失败: %w, display_name: %s", err, newName)
	}

	s.logger.Infof("项目改名完成：%d个原始键 -> %s", len(originalKeys), newName)
	return nil
}

// DeleteProject 将一组原始聚合键加入忽略集合（并集，幂等）
func (s *MappingService) DeleteProject(ctx context.Context, originalKeys []string) error {
	if len(originalKeys) == 0 {
		return fmt.Errorf("原始聚合键不能为空")
	}
	if err := s.ignoreRepo.AddIgnoredKeys(ctx, originalKeys); err != nil {
		return fmt.Errorf("加入忽略集合失败: %w", err)
	}
	s.logger.Infof("项目删除完成：%d个原始键加入忽略集合", len(originalKeys))
	return nil
}

// RestoreProject 将原始聚合键移出忽略集合，不存在时为no-op
func (s *MappingService) RestoreProject(ctx context.Context, originalKey string) error {
	if strings.TrimSpace(originalKey) == "" {
		return fmt.Errorf("原始聚合键不能为空")
	}
	if err := s.ignoreRepo.RemoveIgnoredKey(ctx, originalKey); err != nil {
		return fmt.Errorf("移出忽略集合失败: %w", err)
	}
	return nil
}

// AddRule 新增/覆盖关键词规则（重复关键词last-write-wins）
func (s *MappingService) AddRule(ctx context.Context, keyword, targetLabel string) error {
	keyword = strings.TrimSpace(keyword)
	targetLabel = strings.TrimSpace(targetLabel)
	if keyword == "" || targetLabel == "" {
		return fmt.Errorf("关键词与目标项目名均不能为空")
	}
	if err := s.ruleRepo.UpsertRule(ctx, keyword, targetLabel); err != nil {
		return fmt.Errorf("保存规则失败: %w, keyword: %s", err, keyword)
	}
	return nil
}

// DeleteRule 删除关键词规则，不存在时为no-op
func (s *MappingService) DeleteRule(ctx context.Context, keyword string) error {
	if strings.TrimSpace(keyword) == "" {
		return fmt.Errorf("关键词不能为空")
	}
	return s.ruleRepo.DeleteRule(ctx, keyword)
}

// ListMappings 列出全部改名/改色映射（设置页用）
func (s *MappingService) ListMappings(ctx context.Context) ([]*model.NameColorMapping, error) {
	return s.mappingRepo.ListMappings(ctx)
}

// ListRules 列出全部关键词规则（设置页用）
func (s *MappingService) ListRules(ctx context.Context) ([]*model.KeywordRule, error) {
	return s.ruleRepo.ListRules(ctx)
}

// ListIgnoredKeys 列出忽略集合（设置页用）
func (s *MappingService) ListIgnoredKeys(ctx context.Context) ([]string, error) {
	return s.ignoreRepo.ListIgnoredKeys(ctx)
}
