package service

import (
	"context"
	"fmt"
	"time"

	"TimeLens/internal/config"
	"TimeLens/internal/report"

	"github.com/sirupsen/logrus"
)

// ReportService 报表导出服务：聚合结果 → HTML → 无头浏览器打印PDF
// 导出失败不影响其余功能，错误上抛由接口层内联呈现
type ReportService struct {
	projects projectsLister
	cfg      *config.ReportConfig
	logger   *logrus.Logger
}

func NewReportService(projects projectsLister, cfg *config.ReportConfig, logger *logrus.Logger) *ReportService {
	return &ReportService{
		projects: projects,
		cfg:      cfg,
		logger:   logger,
	}
}

// ExportPDF 导出当前项目汇总为PDF
func (s *ReportService) ExportPDF(ctx context.Context) ([]byte, error) {
	projects, err := s.projects.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("取项目列表失败: %w", err)
	}

	html, err := report.RenderHTML(projects, time.Now())
	if err != nil {
		return nil, err
	}

	pdf, err := report.PrintPDF(ctx, html, report.PrintOptions{
		Timeout: time.Duration(s.cfg.Timeout) * time.Second,
		Width:   s.cfg.PageWidth,
	})
	if err != nil {
		return nil, fmt.Errorf("导出报表失败: %w", err)
	}

	s.logger.Infof("报表导出完成，%d个项目，PDF %d字节", len(projects), len(pdf))
	return pdf, nil
}
