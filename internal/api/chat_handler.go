package api

import (
	"net/http"

	"TimeLens/internal/adapter"
	"TimeLens/internal/model"
	"TimeLens/internal/repository"
	"TimeLens/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ChatHandler 对话助手接口
type ChatHandler struct {
	assistantService *service.AssistantService
	logger           *logrus.Logger
}

// NewChatHandler 创建 ChatHandler（助手上下文来自聚合服务的实时重算结果）
func NewChatHandler(db *gorm.DB, logger *logrus.Logger, reg *adapter.Registry) (*ChatHandler, error) {
	assistantAdapter, err := reg.Assistant()
	if err != nil {
		return nil, err
	}
	aggregationService := service.NewAggregationService(
		repository.NewImageRepository(db),
		repository.NewRuleRepository(db),
		repository.NewMappingRepository(db),
		repository.NewIgnoreRepository(db),
		logger,
	)
	return &ChatHandler{
		assistantService: service.NewAssistantService(aggregationService, assistantAdapter, logger),
		logger:           logger,
	}, nil
}

// ChatRequest 对话请求 body
type ChatRequest struct {
	Message string           `json:"message" binding:"required"` // 本轮用户消息
	History []model.ChatTurn `json:"history"`                    // 之前的对话轮次（可空）
}

// Chat 发起一轮对话 POST /api/chat
// 助手失败不报错：degraded=true 且 reply 为兜底文案
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	reply, degraded := h.assistantService.Chat(c.Request.Context(), req.History, req.Message)
	c.JSON(http.StatusOK, gin.H{
		"reply":    reply,
		"degraded": degraded,
	})
}
