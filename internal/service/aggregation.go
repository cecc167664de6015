package service

import (
	"context"
	"strings"

	"TimeLens/internal/model"
	"TimeLens/internal/repository"

	"github.com/sirupsen/logrus"
)

// FallbackPalette 兜底调色板：未映射且识别不到颜色的项目按序取色
// 固定顺序保证同一输入两次重算结果一致
var FallbackPalette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
	"#86bcb6", "#d37295", "#fabfd2", "#8cd17d",
}

// AggregationService 聚合引擎服务：读取四类输入快照，重算项目列表
// 引擎本体是纯函数流水线（BuildProjects），本服务只负责取数与日志
type AggregationService struct {
	imageRepo   repository.ImageRepository
	ruleRepo    repository.RuleRepository
	mappingRepo repository.MappingRepository
	ignoreRepo  repository.IgnoreRepository
	logger      *logrus.Logger
}

func NewAggregationService(
	imageRepo repository.ImageRepository,
	ruleRepo repository.RuleRepository,
	mappingRepo repository.MappingRepository,
	ignoreRepo repository.IgnoreRepository,
	logger *logrus.Logger,
) *AggregationService {
	return &AggregationService{
		imageRepo:   imageRepo,
		ruleRepo:    ruleRepo,
		mappingRepo: mappingRepo,
		ignoreRepo:  ignoreRepo,
		logger:      logger,
	}
}

// ListProjects 读取当前四类输入并重算项目列表
// 任何输入变化后再调用即得到全新结果，两次调用之间不携带隐藏状态
func (s *AggregationService) ListProjects(ctx context.Context) ([]*model.Project, error) {
	events, err := s.imageRepo.ListAllEvents(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := s.ruleRepo.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	mappings, err := s.mappingRepo.ListMappings(ctx)
	if err != nil {
		return nil, err
	}
	ignored, err := s.ignoreRepo.ListIgnoredKeys(ctx)
	if err != nil {
		return nil, err
	}

	projects := BuildProjects(events, rules, mappings, ignored)
	s.logger.Debugf("聚合完成：%d个事件归并为%d个项目", len(events), len(projects))
	return projects, nil
}

// BuildProjects 聚合引擎全流水线：
// 规则归类 → 忽略过滤 → 原始键聚合 → 展示名聚合 → 兜底取色
// 对任何输入都不报错（时长/标题异常由识别边界负责），无副作用
func BuildProjects(
	events []*model.RawEvent,
	rules []*model.KeywordRule,
	mappings []*model.NameColorMapping,
	ignored []string,
) []*model.Project {
	resolved := resolveLabels(events, rules)
	survived := filterIgnored(resolved, ignored)
	groups := groupByOriginalKey(survived)
	projects := groupByDisplayName(groups, mappings)
	assignFallbackColors(projects, mappings)
	return projects
}

// resolvedEvent 规则归类后的事件：Key 即原始聚合键
type resolvedEvent struct {
	Key           string
	DurationHours float64
	Color         string
}

// originalGroup 按原始聚合键聚合后的一组事件
type originalGroup struct {
	Key          string
	Duration     float64
	CarriedColor string // 该键迭代顺序上最后一个事件的颜色（仅在无用户映射时作回退色）
}

// resolveLabels 阶段1：关键词规则归类
// 关键词是标题的大小写不敏感子串即命中；多条规则同时命中时按规则插入顺序先者胜
// 规则匹配的是事件原始标题而非已归类标签，重复应用同一规则集结果不变
func resolveLabels(events []*model.RawEvent, rules []*model.KeywordRule) []resolvedEvent {
	resolved := make([]resolvedEvent, 0, len(events))
	for _, e := range events {
		key := e.Title
		title := strings.ToLower(e.Title)
		for _, r := range rules {
			if strings.Contains(title, strings.ToLower(r.Keyword)) {
				key = r.TargetLabel
				break
			}
		}
		resolved = append(resolved, resolvedEvent{
			Key:           key,
			DurationHours: e.DurationHours,
			Color:         e.Color,
		})
	}
	return resolved
}

// filterIgnored 阶段2：丢弃归类后落在忽略集合中的事件（丢弃发生在时长累加之前）
func filterIgnored(events []resolvedEvent, ignored []string) []resolvedEvent {
	if len(ignored) == 0 {
		return events
	}
	ignoredSet := make(map[string]struct{}, len(ignored))
	for _, k := range ignored {
		ignoredSet[k] = struct{}{}
	}
	survived := make([]resolvedEvent, 0, len(events))
	for _, e := range events {
		if _, ok := ignoredSet[e.Key]; ok {
			continue
		}
		survived = append(survived, e)
	}
	return survived
}

// groupByOriginalKey 阶段3：按原始聚合键分组（首次出现顺序），时长累加
// 携带色取该键最后一个事件的颜色（后者覆盖前者）
func groupByOriginalKey(events []resolvedEvent) []*originalGroup {
	var order []string
	byKey := make(map[string]*originalGroup)
	for _, e := range events {
		g, ok := byKey[e.Key]
		if !ok {
			g = &originalGroup{Key: e.Key}
			byKey[e.Key] = g
			order = append(order, e.Key)
		}
		g.Duration += e.DurationHours
		g.CarriedColor = e.Color
	}
	groups := make([]*originalGroup, 0, len(order))
	for _, k := range order {
		groups = append(groups, byKey[k])
	}
	return groups
}

// groupByDisplayName 阶段4：映射查找+按展示名聚合
// 多个原始键被改成同名时合并为一个项目；颜色上映射色恒优先于携带色，
// 同一类内按迭代顺序后者覆盖前者（last-applied）
func groupByDisplayName(groups []*originalGroup, mappings []*model.NameColorMapping) []*model.Project {
	mapByKey := make(map[string]*model.NameColorMapping, len(mappings))
	for _, m := range mappings {
		mapByKey[m.OriginalKey] = m
	}

	type accum struct {
		project   *model.Project
		hasMapped bool // 已有贡献键带用户映射色
	}
	var order []string
	byName := make(map[string]*accum)

	for _, g := range groups {
		m := mapByKey[g.Key]
		name := g.Key
		if m != nil {
			name = m.DisplayName
		}

		a, ok := byName[name]
		if !ok {
			a = &accum{project: &model.Project{Name: name}}
			byName[name] = a
			order = append(order, name)
		}
		a.project.Duration += g.Duration
		a.project.OriginalNames = append(a.project.OriginalNames, g.Key)
		if m != nil {
			a.project.Color = m.Color
			a.hasMapped = true
		} else if !a.hasMapped {
			a.project.Color = g.CarriedColor
		}
	}

	projects := make([]*model.Project, 0, len(order))
	for _, name := range order {
		projects = append(projects, byName[name].project)
	}
	return projects
}

// assignFallbackColors 阶段5：兜底取色
// 仅当项目的首个贡献键无用户映射、且当前色仍为占位色时，取调色板中
// 未被本次输出任何项目占用的下一个颜色；调色板耗尽则保持占位色
// 项目按展示名首次出现顺序迭代，保证同一输入的取色结果确定
func assignFallbackColors(projects []*model.Project, mappings []*model.NameColorMapping) {
	mappedKeys := make(map[string]struct{}, len(mappings))
	for _, m := range mappings {
		mappedKeys[m.OriginalKey] = struct{}{}
	}

	inUse := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		inUse[p.Color] = struct{}{}
	}

	for _, p := range projects {
		if len(p.OriginalNames) == 0 {
			continue
		}
		if _, mapped := mappedKeys[p.OriginalNames[0]]; mapped {
			continue
		}
		if p.Color != model.SentinelColor {
			continue
		}
		for _, c := range FallbackPalette {
			if _, used := inUse[c]; used {
				continue
			}
			p.Color = c
			inUse[c] = struct{}{}
			break
		}
	}
}
