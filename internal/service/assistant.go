package service

import (
	"context"
	"encoding/json"

	"TimeLens/internal/interfaces"
	"TimeLens/internal/model"

	"github.com/sirupsen/logrus"
)

// FallbackReply 助手服务不可用时的兜底文案（非致命，内联展示）
const FallbackReply = "助手暂时不可用，请稍后再试。你的项目数据不受影响。"

// projectsLister 聚合结果读取接口（AggregationService 实现，测试中可替换）
type projectsLister interface {
	ListProjects(ctx context.Context) ([]*model.Project, error)
}

// AssistantService 对话助手服务：注入当前项目列表作为上下文
// 任何失败都被捕获并降级为兜底文案，不打断应用其余部分
type AssistantService struct {
	projects projectsLister
	adapter  interfaces.AssistantAdapter
	logger   *logrus.Logger
}

func NewAssistantService(projects projectsLister, adapter interfaces.AssistantAdapter, logger *logrus.Logger) *AssistantService {
	return &AssistantService{
		projects: projects,
		adapter:  adapter,
		logger:   logger,
	}
}

// Chat 发起一轮对话；degraded=true 表示返回的是兜底文案
func (s *AssistantService) Chat(ctx context.Context, history []model.ChatTurn, message string) (reply string, degraded bool) {
	// 1. 取当前项目列表并序列化为上下文（失败不致命，以空列表继续）
	projectsJSON := "[]"
	projects, err := s.projects.ListProjects(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("对话前取项目列表失败，以空上下文继续")
	} else if raw, merr := json.Marshal(projects); merr == nil {
		projectsJSON = string(raw)
	}

	// 2. 调用助手服务，失败降级为兜底文案
	answer, err := s.adapter.Chat(ctx, &interfaces.ChatRequest{
		History:      history,
		ProjectsJSON: projectsJSON,
		Message:      message,
	})
	if err != nil {
		s.logger.WithError(err).Warn("助手调用失败，返回兜底文案")
		return FallbackReply, true
	}
	return answer, false
}
