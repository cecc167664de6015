package api

import (
	"net/http"

	"TimeLens/internal/repository"
	"TimeLens/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProjectHandler 聚合结果查询与项目级变更接口
type ProjectHandler struct {
	aggregationService *service.AggregationService
	mappingService     *service.MappingService
	logger             *logrus.Logger
}

// NewProjectHandler 创建 ProjectHandler
func NewProjectHandler(db *gorm.DB, logger *logrus.Logger) *ProjectHandler {
	imageRepo := repository.NewImageRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	mappingRepo := repository.NewMappingRepository(db)
	ignoreRepo := repository.NewIgnoreRepository(db)
	return &ProjectHandler{
		aggregationService: service.NewAggregationService(imageRepo, ruleRepo, mappingRepo, ignoreRepo, logger),
		mappingService:     service.NewMappingService(mappingRepo, ruleRepo, ignoreRepo, logger),
		logger:             logger,
	}
}

// ListProjects 当前项目汇总（每次请求全量重算） GET /api/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.aggregationService.ListProjects(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ListProjects failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// RenameRequest 项目改名/改色请求 body
type RenameRequest struct {
	OriginalNames []string `json:"original_names" binding:"required"` // 被改名项目折叠的原始聚合键
	NewName       string   `json:"new_name" binding:"required"`       // 新展示名
	Color         string   `json:"color" binding:"required"`          // 新展示颜色
}

// RenameProject 项目改名/改色 POST /api/projects/rename
func (h *ProjectHandler) RenameProject(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if err := h.mappingService.RenameProject(c.Request.Context(), req.OriginalNames, req.NewName, req.Color); err != nil {
		h.logger.WithError(err).Error("RenameProject failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "项目已更新"})
}

// DeleteRequest 项目删除（忽略）请求 body
type DeleteRequest struct {
	OriginalNames []string `json:"original_names" binding:"required"` // 被删除项目折叠的原始聚合键
}

// DeleteProject 删除项目（加入忽略集合） POST /api/projects/delete
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if err := h.mappingService.DeleteProject(c.Request.Context(), req.OriginalNames); err != nil {
		h.logger.WithError(err).Error("DeleteProject failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "项目已删除"})
}

// RestoreRequest 项目恢复请求 body
type RestoreRequest struct {
	OriginalName string `json:"original_name" binding:"required"` // 移出忽略集合的原始聚合键
}

// RestoreProject 恢复被删除的项目 POST /api/projects/restore
func (h *ProjectHandler) RestoreProject(c *gin.Context) {
	var req RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if err := h.mappingService.RestoreProject(c.Request.Context(), req.OriginalName); err != nil {
		h.logger.WithError(err).Error("RestoreProject failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "项目已恢复"})
}

// ListMappings 改名/改色映射列表（设置页） GET /api/mappings
func (h *ProjectHandler) ListMappings(c *gin.Context) {
	mappings, err := h.mappingService.ListMappings(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ListMappings failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mappings": mappings})
}

// ListIgnores 忽略集合（设置页） GET /api/ignores
func (h *ProjectHandler) ListIgnores(c *gin.Context) {
	keys, err := h.mappingService.ListIgnoredKeys(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ListIgnores failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ignored_keys": keys})
}
