package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"TimeLens/internal/config"
	"TimeLens/internal/interfaces"
	"TimeLens/internal/model"
	"TimeLens/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// systemPrompt 助手角色设定：基于注入的项目列表回答时间分配问题
const systemPrompt = `You are a time-tracking assistant. The user's current project ` +
	`summary (aggregated from their calendar screenshots) is provided as JSON below. ` +
	`Answer questions about how their time is spent, concisely.`

type Adapter struct {
	cfg        *config.AIServiceConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewAssistantAdapter(cfg *config.AIServiceConfig, logger *logrus.Logger) interfaces.AssistantAdapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// GetName ========== 实现AssistantAdapter接口 ==========
func (a *Adapter) GetName() string {
	return "Assistant"
}

// Chat 携带当前项目列表与历史轮次发起一轮对话
func (a *Adapter) Chat(ctx context.Context, req *interfaces.ChatRequest) (string, error) {
	// 1. 组装消息：system（角色+项目上下文）→ 历史轮次 → 本轮消息
	messages := make([]model.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, model.ChatCompletionMessage{
		Role:    "system",
		Content: systemPrompt + "\n\n" + req.ProjectsJSON,
	})
	for _, turn := range req.History {
		role := turn.Role
		if role != "user" && role != "assistant" {
			role = "user"
		}
		messages = append(messages, model.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, model.ChatCompletionMessage{Role: "user", Content: req.Message})

	reqBody := &model.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Messages:    messages,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	}

	// 2. 调用助手服务（网络/5xx错误按配置重试）
	reply, err := a.complete(ctx, reqBody)
	if err != nil {
		return "", fmt.Errorf("调用助手服务失败: %w", err)
	}
	return reply, nil
}

// complete 发起一次 chat/completions 调用，返回首个choice的文本内容
func (a *Adapter) complete(ctx context.Context, reqBody *model.ChatCompletionRequest) (string, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("序列化请求失败: %w", err)
	}

	url := strings.TrimRight(a.cfg.BaseURL, "/") + "/chat/completions"
	retry := a.cfg.RetryCount
	if retry < 0 {
		retry = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retry; attempt++ {
		if attempt > 0 {
			a.logger.WithError(lastErr).Warnf("助手服务第%d次重试", attempt)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("构造请求失败: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

		resp, err := a.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		reply, retryable, err := decodeCompletion(resp)
		if err != nil {
			lastErr = err
			if retryable {
				continue
			}
			return "", err
		}
		return reply, nil
	}
	return "", lastErr
}

// decodeCompletion 解析响应；5xx视为可重试，4xx与业务error直接失败
func decodeCompletion(resp *http.Response) (content string, retryable bool, err error) {
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", true, fmt.Errorf("助手服务响应%d: %s", resp.StatusCode, string(raw))
	}

	var cr model.ChatCompletionResponse
	if derr := json.NewDecoder(resp.Body).Decode(&cr); derr != nil {
		return "", false, fmt.Errorf("解析响应失败: %w", derr)
	}
	if cr.Error != nil {
		return "", false, fmt.Errorf("助手服务返回错误: %s", cr.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("助手服务响应%d", resp.StatusCode)
	}
	if len(cr.Choices) == 0 {
		return "", false, fmt.Errorf("助手服务未返回choices")
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), false, nil
}
