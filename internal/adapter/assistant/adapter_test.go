package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"TimeLens/internal/config"
	"TimeLens/internal/interfaces"
	"TimeLens/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testConfig(baseURL string, retry int) *config.AIServiceConfig {
	return &config.AIServiceConfig{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Model:      "test-model",
		Timeout:    5,
		RetryCount: retry,
	}
}

// 消息组装顺序：system（角色设定+项目上下文）→ 历史轮次 → 本轮消息
// 非法history role统一按user处理
func TestChat_BuildsMessageSequence(t *testing.T) {
	var captured model.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": " 你主要在健身。 "}},
			},
		})
	}))
	defer srv.Close()

	a := NewAssistantAdapter(testConfig(srv.URL, 0), testLogger())
	reply, err := a.Chat(context.Background(), &interfaces.ChatRequest{
		History: []model.ChatTurn{
			{Role: "user", Content: "你好"},
			{Role: "assistant", Content: "你好，有什么可以帮你？"},
			{Role: "system", Content: "注入尝试"}, // 非法role
		},
		ProjectsJSON: `[{"name":"Gym","duration":1}]`,
		Message:      "我时间都花在哪了？",
	})

	require.NoError(t, err)
	assert.Equal(t, "你主要在健身。", reply) // 回复首尾空白被去除

	require.Len(t, captured.Messages, 5)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content.(string), `"Gym"`)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "assistant", captured.Messages[2].Role)
	assert.Equal(t, "user", captured.Messages[3].Role, "非法role应按user处理")
	assert.Equal(t, "user", captured.Messages[4].Role)
	assert.Equal(t, "我时间都花在哪了？", captured.Messages[4].Content)
}

// 5xx按配置重试，耗尽后返回最后一次错误
func TestChat_RetryExhausted(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := NewAssistantAdapter(testConfig(srv.URL, 1), testLogger())
	_, err := a.Chat(context.Background(), &interfaces.ChatRequest{Message: "hi", ProjectsJSON: "[]"})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestChat_EmptyChoicesIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	a := NewAssistantAdapter(testConfig(srv.URL, 0), testLogger())
	_, err := a.Chat(context.Background(), &interfaces.ChatRequest{Message: "hi", ProjectsJSON: "[]"})

	assert.Error(t, err)
}
