package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"TimeLens/internal/config"
	"TimeLens/internal/interfaces"
	"TimeLens/internal/model"
	"TimeLens/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// extractPrompt 识别指令：只允许返回JSON数组，时长按小时，颜色无法判断时返回占位色
const extractPrompt = `You are a calendar screenshot analyzer. Identify every labeled time block ` +
	`in the image and return ONLY a JSON array, no prose. Each element: ` +
	`{"title": string, "duration_hours": number, "color": "#rrggbb"}. ` +
	`Use "#808080" when the block color cannot be determined.`

type Adapter struct {
	cfg        *config.AIServiceConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewVisionAdapter(cfg *config.AIServiceConfig, logger *logrus.Logger) interfaces.VisionAdapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// GetName ========== 实现VisionAdapter接口 ==========
func (a *Adapter) GetName() string {
	return "Vision"
}

// ExtractEvents 上传截图到OpenAI兼容接口识别时间块，按返回顺序给出事件列表
func (a *Adapter) ExtractEvents(ctx context.Context, payload []byte, mimeType string) ([]*model.ExtractedEvent, error) {
	// 1. 构造带图片的 chat/completions 请求（图片以 data URL 内联）
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(payload))
	reqBody := &model.ChatCompletionRequest{
		Model: a.cfg.Model,
		Messages: []model.ChatCompletionMessage{
			{
				Role: "user",
				Content: []model.ChatContentPart{
					{Type: "text", Text: extractPrompt},
					{Type: "image_url", ImageURL: &model.ChatContentImage{URL: dataURL}},
				},
			},
		},
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	}

	// 2. 调用识别服务（网络/5xx错误按配置重试）
	content, err := a.complete(ctx, reqBody)
	if err != nil {
		return nil, fmt.Errorf("调用识别服务失败: %w", err)
	}

	// 3. 解析返回内容为事件列表
	events, err := parseEvents(content)
	if err != nil {
		return nil, fmt.Errorf("解析识别结果失败: %w", err)
	}

	a.logger.Infof("截图识别完成，共%d个时间块", len(events))
	return events, nil
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
			a.logger.WithError(lastErr).Warnf("识别服务第%d次重试", attempt)
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

		content, retryable, err := decodeCompletion(resp)
		if err != nil {
			lastErr = err
			if retryable {
				continue
			}
			return "", err
		}
		return content, nil
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
		return "", true, fmt.Errorf("识别服务响应%d: %s", resp.StatusCode, string(raw))
	}

	var cr model.ChatCompletionResponse
	if derr := json.NewDecoder(resp.Body).Decode(&cr); derr != nil {
		return "", false, fmt.Errorf("解析响应失败: %w", derr)
	}
	if cr.Error != nil {
		return "", false, fmt.Errorf("识别服务返回错误: %s", cr.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("识别服务响应%d", resp.StatusCode)
	}
	if len(cr.Choices) == 0 {
		return "", false, fmt.Errorf("识别服务未返回choices")
	}
	return cr.Choices[0].Message.Content, false, nil
}

// parseEvents 将模型返回文本解析为事件列表，并做边界归一化
// 兼容 ```json 围栏与 {"events":[...]} 包装两种偏离格式
func parseEvents(content string) ([]*model.ExtractedEvent, error) {
	content = stripFence(content)

	var wire []model.ExtractedEvent
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		var wrapper struct {
			Events []model.ExtractedEvent `json:"events"`
		}
		if err2 := json.Unmarshal([]byte(content), &wrapper); err2 != nil {
			return nil, err
		}
		wire = wrapper.Events
	}

	events := make([]*model.ExtractedEvent, 0, len(wire))
	for _, w := range wire {
		e := w
		e.Title = strings.TrimSpace(e.Title)
		// 负时长按识别噪声处理归零；时长兜底是识别边界的职责，聚合引擎照单全收
		if e.DurationHours < 0 {
			e.DurationHours = 0
		}
		e.Color = NormalizeColor(e.Color)
		events = append(events, &e)
	}
	return events, nil
}

// stripFence 去掉markdown代码围栏（```json ... ```）
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// NormalizeColor 归一化颜色：合法 #rrggbb 转小写，其余一律回落到占位色
func NormalizeColor(c string) string {
	c = strings.TrimSpace(c)
	if hexColorPattern.MatchString(c) {
		return strings.ToLower(c)
	}
	return model.SentinelColor
}
