package service

import (
	"context"
	"errors"
	"testing"

	"TimeLens/internal/interfaces"
	"TimeLens/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	projects []*model.Project
	err      error
}

func (s *stubLister) ListProjects(_ context.Context) ([]*model.Project, error) {
	return s.projects, s.err
}

type stubAssistant struct {
	reply   string
	err     error
	lastReq *interfaces.ChatRequest
}

func (s *stubAssistant) GetName() string { return "stub" }

func (s *stubAssistant) Chat(_ context.Context, req *interfaces.ChatRequest) (string, error) {
	s.lastReq = req
	return s.reply, s.err
}

func newTestAssistantService(lister *stubLister, adapter *stubAssistant) *AssistantService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewAssistantService(lister, adapter, logger)
}

// 正常对话：项目列表序列化后作为上下文注入，历史轮次原样透传
func TestAssistantChat_InjectsProjectContext(t *testing.T) {
	lister := &stubLister{projects: []*model.Project{
		{Name: "Gym", Duration: 1.0, Color: "#4e79a7"},
	}}
	adapter := &stubAssistant{reply: "本周健身1小时"}
	svc := newTestAssistantService(lister, adapter)
	history := []model.ChatTurn{{Role: "user", Content: "你好"}}

	reply, degraded := svc.Chat(context.Background(), history, "我健身了多久？")

	assert.False(t, degraded)
	assert.Equal(t, "本周健身1小时", reply)
	require.NotNil(t, adapter.lastReq)
	assert.Contains(t, adapter.lastReq.ProjectsJSON, `"Gym"`)
	assert.Equal(t, history, adapter.lastReq.History)
	assert.Equal(t, "我健身了多久？", adapter.lastReq.Message)
}

// 助手调用失败降级为兜底文案，不向上抛错
func TestAssistantChat_DegradesOnAdapterFailure(t *testing.T) {
	lister := &stubLister{}
	adapter := &stubAssistant{err: errors.New("upstream 503")}
	svc := newTestAssistantService(lister, adapter)

	reply, degraded := svc.Chat(context.Background(), nil, "hi")

	assert.True(t, degraded)
	assert.Equal(t, FallbackReply, reply)
}

// 取项目列表失败不致命：以空列表上下文继续对话
func TestAssistantChat_EmptyContextWhenListFails(t *testing.T) {
	lister := &stubLister{err: errors.New("db down")}
	adapter := &stubAssistant{reply: "ok"}
	svc := newTestAssistantService(lister, adapter)

	reply, degraded := svc.Chat(context.Background(), nil, "hi")

	assert.False(t, degraded)
	assert.Equal(t, "ok", reply)
	require.NotNil(t, adapter.lastReq)
	assert.Equal(t, "[]", adapter.lastReq.ProjectsJSON)
}
