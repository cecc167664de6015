package api

import (
	"net/http"

	"TimeLens/internal/repository"
	"TimeLens/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RuleHandler 关键词归类规则维护接口
type RuleHandler struct {
	mappingService *service.MappingService
	logger         *logrus.Logger
}

// NewRuleHandler 创建 RuleHandler
func NewRuleHandler(db *gorm.DB, logger *logrus.Logger) *RuleHandler {
	mappingRepo := repository.NewMappingRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	ignoreRepo := repository.NewIgnoreRepository(db)
	return &RuleHandler{
		mappingService: service.NewMappingService(mappingRepo, ruleRepo, ignoreRepo, logger),
		logger:         logger,
	}
}

// ListRules 规则列表（按插入顺序，即tie-break顺序） GET /api/rules
func (h *RuleHandler) ListRules(c *gin.Context) {
	rules, err := h.mappingService.ListRules(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ListRules failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// AddRuleRequest 新增规则请求 body
type AddRuleRequest struct {
	Keyword     string `json:"keyword" binding:"required"`      // 大小写不敏感子串关键词
	TargetLabel string `json:"target_label" binding:"required"` // 目标项目名
}

// AddRule 新增/覆盖规则 POST /api/rules
func (h *RuleHandler) AddRule(c *gin.Context) {
	var req AddRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if err := h.mappingService.AddRule(c.Request.Context(), req.Keyword, req.TargetLabel); err != nil {
		h.logger.WithError(err).Error("AddRule failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "规则已保存"})
}

// DeleteRule 删除规则（不存在时同样返回成功） DELETE /api/rules/:keyword
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	keyword := c.Param("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
		return
	}
	if err := h.mappingService.DeleteRule(c.Request.Context(), keyword); err != nil {
		h.logger.WithError(err).Error("DeleteRule failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "规则已删除"})
}
