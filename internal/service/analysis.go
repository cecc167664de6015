package service

import (
	"context"
	"encoding/json"
	"fmt"

	"TimeLens/internal/interfaces"
	"TimeLens/internal/model"
	"TimeLens/internal/repository"

	"github.com/sirupsen/logrus"
)

// AnalysisService 截图分析服务：调用识别适配器提取时间块并与截图同事务入库
// 识别失败时不落库，错误原样上抛（用户侧呈现为可重试）
type AnalysisService struct {
	imageRepo repository.ImageRepository
	vision    interfaces.VisionAdapter
	logger    *logrus.Logger
}

func NewAnalysisService(imageRepo repository.ImageRepository, vision interfaces.VisionAdapter, logger *logrus.Logger) *AnalysisService {
	return &AnalysisService{
		imageRepo: imageRepo,
		vision:    vision,
		logger:    logger,
	}
}

// AnalyzeAndStore 识别一张上传截图并持久化（截图+事件一体）
func (s *AnalysisService) AnalyzeAndStore(ctx context.Context, filename, mimeType string, payload []byte) (*model.CalendarImage, error) {
	// 1. 调用识别服务
	extracted, err := s.vision.ExtractEvents(ctx, payload, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%s识别失败: %w", filename, err)
	}

	// 2. 识别结果存档（读路径不解析，仅留痕排查用）
	archive, err := json.Marshal(extracted)
	if err != nil {
		return nil, fmt.Errorf("序列化识别结果失败: %w", err)
	}

	// 3. 转换为数据库模型
	rawEvents := make([]model.RawEvent, 0, len(extracted))
	for _, e := range extracted {
		rawEvents = append(rawEvents, model.RawEvent{
			Title:         e.Title,
			DurationHours: e.DurationHours,
			Color:         e.Color,
		})
	}
	image := &model.CalendarImage{
		Filename:      filename,
		MimeType:      mimeType,
		Payload:       payload,
		ExtractionRaw: archive,
		RawEvents:     rawEvents,
	}

	// 4. 同事务入库
	if err := s.imageRepo.SaveImageWithEvents(ctx, image); err != nil {
		return nil, fmt.Errorf("%s入库失败: %w", filename, err)
	}

	s.logger.Infof("%s分析完成，共%d个时间块", filename, len(rawEvents))
	return image, nil
}
