package model

// ChatTurn 助手对话中的一轮（role: user/assistant）
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
