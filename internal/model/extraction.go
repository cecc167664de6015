package model

// ExtractedEvent 识别服务返回的单个时间块（适配器解析后的中间结构，入库前转 RawEvent）
type ExtractedEvent struct {
	Title         string  `json:"title"`          // 时间块标题
	DurationHours float64 `json:"duration_hours"` // 时长（小时）
	Color         string  `json:"color"`          // 颜色，无法识别时为空或占位色
}

// ========== OpenAI 兼容 /chat/completions 请求/响应结构 ==========

// ChatCompletionRequest POST /chat/completions 请求体
type ChatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []ChatCompletionMessage `json:"messages"`
	MaxTokens   int                     `json:"max_tokens,omitempty"`
	Temperature float64                 `json:"temperature"`
}

// ChatCompletionMessage 单条消息；Content 为纯文本字符串或多段内容数组（带图片时）
type ChatCompletionMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// ChatContentPart 多段内容中的一段（text / image_url）
type ChatContentPart struct {
	Type     string            `json:"type"`
	Text     string            `json:"text,omitempty"`
	ImageURL *ChatContentImage `json:"image_url,omitempty"`
}

// ChatContentImage 图片段，URL 为 data URL（data:image/png;base64,...）
type ChatContentImage struct {
	URL string `json:"url"`
}

// ChatCompletionResponse POST /chat/completions 响应体
type ChatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}
