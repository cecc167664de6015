package api

import (
	"errors"
	"io"
	"net/http"

	"TimeLens/internal/adapter"
	"TimeLens/internal/config"
	"TimeLens/internal/repository"
	"TimeLens/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ImageHandler 截图上传/查询/删除接口
type ImageHandler struct {
	analysisService *service.AnalysisService
	imageRepo       repository.ImageRepository
	cfg             *config.Config
	logger          *logrus.Logger
}

// NewImageHandler 创建 ImageHandler（内部组装识别适配器与分析服务）
func NewImageHandler(db *gorm.DB, logger *logrus.Logger, reg *adapter.Registry, cfg *config.Config) (*ImageHandler, error) {
	vision, err := reg.Vision()
	if err != nil {
		return nil, err
	}
	imageRepo := repository.NewImageRepository(db)
	return &ImageHandler{
		analysisService: service.NewAnalysisService(imageRepo, vision, logger),
		imageRepo:       imageRepo,
		cfg:             cfg,
		logger:          logger,
	}, nil
}

// Upload 上传并识别一张日历截图 POST /api/images（multipart字段file）
// 识别失败时不落库，返回502提示用户重试
func (h *ImageHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	maxSize := int64(h.cfg.Upload.MaxSizeMB) * 1024 * 1024
	if maxSize > 0 && fileHeader.Size > maxSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "截图超过大小上限"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !h.mimeAllowed(mimeType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的图片类型: " + mimeType})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取上传文件失败"})
		return
	}
	defer f.Close()
	payload, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取上传文件失败"})
		return
	}

	image, err := h.analysisService.AnalyzeAndStore(c.Request.Context(), fileHeader.Filename, mimeType, payload)
	if err != nil {
		h.logger.WithError(err).Error("Upload failed")
		// 识别边界失败：未记录任何数据，提示可重试
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "retryable": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"image_uuid": image.ImageUUID,
		"filename":   image.Filename,
		"events":     image.RawEvents,
	})
}

// ListImages 截图列表（不含图片二进制，含识别事件） GET /api/images
func (h *ImageHandler) ListImages(c *gin.Context) {
	images, err := h.imageRepo.ListImages(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ListImages failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

// GetImageRaw 原始图片二进制 GET /api/images/:image_uuid/raw
func (h *ImageHandler) GetImageRaw(c *gin.Context) {
	imageUUID := c.Param("image_uuid")
	if imageUUID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_uuid is required"})
		return
	}
	image, err := h.imageRepo.GetImageByUUID(c.Request.Context(), imageUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "截图不存在"})
			return
		}
		h.logger.WithError(err).Error("GetImageRaw failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, image.MimeType, image.Payload)
}

// DeleteImage 删除截图及其识别事件 DELETE /api/images/:image_uuid
func (h *ImageHandler) DeleteImage(c *gin.Context) {
	imageUUID := c.Param("image_uuid")
	if imageUUID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_uuid is required"})
		return
	}
	if err := h.imageRepo.DeleteImageByUUID(c.Request.Context(), imageUUID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "截图不存在"})
			return
		}
		h.logger.WithError(err).Error("DeleteImage failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "截图已删除"})
}

func (h *ImageHandler) mimeAllowed(mimeType string) bool {
	if len(h.cfg.Upload.AllowedTypes) == 0 {
		return true
	}
	for _, t := range h.cfg.Upload.AllowedTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}
