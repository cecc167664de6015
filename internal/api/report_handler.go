package api

import (
	"fmt"
	"net/http"
	"time"

	"TimeLens/internal/config"
	"TimeLens/internal/repository"
	"TimeLens/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReportHandler 报表导出接口
type ReportHandler struct {
	reportService *service.ReportService
	logger        *logrus.Logger
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config) *ReportHandler {
	aggregationService := service.NewAggregationService(
		repository.NewImageRepository(db),
		repository.NewRuleRepository(db),
		repository.NewMappingRepository(db),
		repository.NewIgnoreRepository(db),
		logger,
	)
	return &ReportHandler{
		reportService: service.NewReportService(aggregationService, &cfg.Report, logger),
		logger:        logger,
	}
}

// Export 导出项目汇总PDF GET /api/report
// 导出失败返回502，不影响其余功能
func (h *ReportHandler) Export(c *gin.Context) {
	pdf, err := h.reportService.ExportPDF(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Export failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("timelens-report-%s.pdf", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
