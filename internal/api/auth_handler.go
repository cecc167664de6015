package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuthHandler 登录接口
// 占位实现：不做真实凭证校验，任何非空账号密码都发放token
// TODO(auth): 接入真实用户体系后替换为凭证校验+会话存储
type AuthHandler struct {
	logger *logrus.Logger
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// LoginRequest 登录请求 body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 占位登录 POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	h.logger.WithField("username", req.Username).Info("用户登录（占位校验）")
	c.JSON(http.StatusOK, gin.H{
		"token":    uuid.NewString(),
		"username": req.Username,
	})
}
