package interfaces

import (
	"context"

	"TimeLens/internal/model"
)

// VisionAdapter 截图识别服务适配器（外部AI边界）
// 失败时整体返回错误，调用方不落库，向用户呈现可重试的错误
type VisionAdapter interface {
	GetName() string // 服务名称
	// ExtractEvents 识别一张日历截图，按截图内出现顺序返回时间块列表
	ExtractEvents(ctx context.Context, payload []byte, mimeType string) ([]*model.ExtractedEvent, error)
}

// ChatRequest 助手对话请求参数
type ChatRequest struct {
	History      []model.ChatTurn // 之前的对话轮次
	ProjectsJSON string           // 当前项目列表序列化结果（作为上下文注入）
	Message      string           // 本轮用户消息
}

// AssistantAdapter 对话助手服务适配器（外部AI边界）
// 失败由上层捕获并替换为兜底文案，不影响其余功能
type AssistantAdapter interface {
	GetName() string // 服务名称
	// Chat 携带项目上下文与历史轮次发起一轮对话，返回自由文本回复
	Chat(ctx context.Context, req *ChatRequest) (string, error)
}
