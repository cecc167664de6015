package service

import (
	"context"
	"testing"

	"TimeLens/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 内存版仓储：保持与数据库实现一致的插入顺序语义（upsert保留原位置）

type memMappingRepo struct {
	rows []*model.NameColorMapping
}

func (r *memMappingRepo) ListMappings(_ context.Context) ([]*model.NameColorMapping, error) {
	out := make([]*model.NameColorMapping, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *memMappingRepo) UpsertMapping(_ context.Context, originalKey, displayName, color string) error {
	for _, m := range r.rows {
		if m.OriginalKey == originalKey {
			m.DisplayName = displayName
			m.Color = color
			return nil
		}
	}
	r.rows = append(r.rows, &model.NameColorMapping{
		OriginalKey: originalKey,
		DisplayName: displayName,
		Color:       color,
	})
	return nil
}

func (r *memMappingRepo) UpdateColorByDisplayName(_ context.Context, displayName, color string) error {
	for _, m := range r.rows {
		if m.DisplayName == displayName {
			m.Color = color
		}
	}
	return nil
}

type memRuleRepo struct {
	rows []*model.KeywordRule
}

func (r *memRuleRepo) ListRules(_ context.Context) ([]*model.KeywordRule, error) {
	out := make([]*model.KeywordRule, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *memRuleRepo) UpsertRule(_ context.Context, keyword, targetLabel string) error {
	for _, rule := range r.rows {
		if rule.Keyword == keyword {
			rule.TargetLabel = targetLabel
			return nil
		}
	}
	r.rows = append(r.rows, &model.KeywordRule{Keyword: keyword, TargetLabel: targetLabel})
	return nil
}

func (r *memRuleRepo) DeleteRule(_ context.Context, keyword string) error {
	for i, rule := range r.rows {
		if rule.Keyword == keyword {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

type memIgnoreRepo struct {
	keys []string
}

func (r *memIgnoreRepo) ListIgnoredKeys(_ context.Context) ([]string, error) {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out, nil
}

func (r *memIgnoreRepo) AddIgnoredKeys(_ context.Context, originalKeys []string) error {
	existing := make(map[string]struct{}, len(r.keys))
	for _, k := range r.keys {
		existing[k] = struct{}{}
	}
	for _, k := range originalKeys {
		if _, ok := existing[k]; ok {
			continue
		}
		existing[k] = struct{}{}
		r.keys = append(r.keys, k)
	}
	return nil
}

func (r *memIgnoreRepo) RemoveIgnoredKey(_ context.Context, originalKey string) error {
	for i, k := range r.keys {
		if k == originalKey {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			return nil
		}
	}
	return nil
}

func newTestMappingService() (*MappingService, *memMappingRepo, *memRuleRepo, *memIgnoreRepo) {
	mappingRepo := &memMappingRepo{}
	ruleRepo := &memRuleRepo{}
	ignoreRepo := &memIgnoreRepo{}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewMappingService(mappingRepo, ruleRepo, ignoreRepo, logger), mappingRepo, ruleRepo, ignoreRepo
}

func TestRenameProject_WritesMappingPerKey(t *testing.T) {
	svc, mappingRepo, _, _ := newTestMappingService()

	err := svc.RenameProject(context.Background(), []string{"A", "B"}, "X", "#112233")

	require.NoError(t, err)
	require.Len(t, mappingRepo.rows, 2)
	for _, m := range mappingRepo.rows {
		assert.Equal(t, "X", m.DisplayName)
		assert.Equal(t, "#112233", m.Color)
	}
}

// 改色传播：只选中合并组中的一个键改色，同展示名的其他条目也要跟着变
func TestRenameProject_ColorPropagatesToMergedGroup(t *testing.T) {
	svc, mappingRepo, _, _ := newTestMappingService()
	require.NoError(t, svc.RenameProject(context.Background(), []string{"A", "B"}, "X", "#111111"))

	err := svc.RenameProject(context.Background(), []string{"A"}, "X", "#222222")

	require.NoError(t, err)
	require.Len(t, mappingRepo.rows, 2)
	for _, m := range mappingRepo.rows {
		assert.Equal(t, "#222222", m.Color, "key %s 未跟随改色", m.OriginalKey)
	}
}

// 改色传播后聚合结果不再出现颜色分裂：合并项目输出单一颜色
func TestRenameProject_MergedProjectSingleColorAfterRecolor(t *testing.T) {
	svc, mappingRepo, _, _ := newTestMappingService()
	require.NoError(t, svc.RenameProject(context.Background(), []string{"A", "B"}, "X", "#111111"))
	require.NoError(t, svc.RenameProject(context.Background(), []string{"B"}, "X", "#222222"))

	events := []*model.RawEvent{
		evt("A", 1.0, model.SentinelColor),
		evt("B", 2.0, model.SentinelColor),
	}
	mappings, err := mappingRepo.ListMappings(context.Background())
	require.NoError(t, err)
	projects := BuildProjects(events, nil, mappings, nil)

	require.Len(t, projects, 1)
	assert.Equal(t, "X", projects[0].Name)
	assert.Equal(t, "#222222", projects[0].Color)
}

// 重复改名覆盖原条目而不新增，保留插入位置
func TestRenameProject_UpsertKeepsPosition(t *testing.T) {
	svc, mappingRepo, _, _ := newTestMappingService()
	require.NoError(t, svc.RenameProject(context.Background(), []string{"A"}, "X", "#111111"))
	require.NoError(t, svc.RenameProject(context.Background(), []string{"B"}, "Y", "#222222"))

	err := svc.RenameProject(context.Background(), []string{"A"}, "Z", "#333333")

	require.NoError(t, err)
	require.Len(t, mappingRepo.rows, 2)
	assert.Equal(t, "A", mappingRepo.rows[0].OriginalKey)
	assert.Equal(t, "Z", mappingRepo.rows[0].DisplayName)
}

func TestRenameProject_RejectsEmptyInput(t *testing.T) {
	svc, _, _, _ := newTestMappingService()

	assert.Error(t, svc.RenameProject(context.Background(), []string{"A"}, "  ", "#111111"))
	assert.Error(t, svc.RenameProject(context.Background(), nil, "X", "#111111"))
}

// 删除项目=加入忽略集合，重复删除幂等
func TestDeleteProject_Idempotent(t *testing.T) {
	svc, _, _, ignoreRepo := newTestMappingService()

	require.NoError(t, svc.DeleteProject(context.Background(), []string{"Gym", "Work"}))
	require.NoError(t, svc.DeleteProject(context.Background(), []string{"Gym"}))

	keys, err := svc.ListIgnoredKeys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Gym", "Work"}, keys)
	assert.Len(t, ignoreRepo.keys, 2)
}

func TestRestoreProject_RemovesFromIgnoreSet(t *testing.T) {
	svc, _, _, _ := newTestMappingService()
	require.NoError(t, svc.DeleteProject(context.Background(), []string{"Gym"}))

	require.NoError(t, svc.RestoreProject(context.Background(), "Gym"))
	// 不存在时no-op
	require.NoError(t, svc.RestoreProject(context.Background(), "Gym"))

	keys, err := svc.ListIgnoredKeys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

// 重复关键词last-write-wins且保留插入位置（tie-break顺序不变）
func TestAddRule_DuplicateKeywordOverwrites(t *testing.T) {
	svc, _, ruleRepo, _ := newTestMappingService()
	require.NoError(t, svc.AddRule(context.Background(), "gym", "Fitness"))
	require.NoError(t, svc.AddRule(context.Background(), "class", "Idiomas"))

	require.NoError(t, svc.AddRule(context.Background(), "gym", "Health"))

	require.Len(t, ruleRepo.rows, 2)
	assert.Equal(t, "gym", ruleRepo.rows[0].Keyword)
	assert.Equal(t, "Health", ruleRepo.rows[0].TargetLabel)
}

func TestAddRule_RejectsBlankFields(t *testing.T) {
	svc, _, _, _ := newTestMappingService()

	assert.Error(t, svc.AddRule(context.Background(), " ", "Fitness"))
	assert.Error(t, svc.AddRule(context.Background(), "gym", ""))
}

func TestDeleteRule_MissingKeywordIsNoop(t *testing.T) {
	svc, _, _, _ := newTestMappingService()

	assert.NoError(t, svc.DeleteRule(context.Background(), "nonexistent"))
}
