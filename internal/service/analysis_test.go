package service

import (
	"context"
	"errors"
	"testing"

	"TimeLens/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVision struct {
	events []*model.ExtractedEvent
	err    error
}

func (s *stubVision) GetName() string { return "stub" }

func (s *stubVision) ExtractEvents(_ context.Context, _ []byte, _ string) ([]*model.ExtractedEvent, error) {
	return s.events, s.err
}

// memImageRepo 只实现分析路径用到的方法，其余直接panic（测试中不应触达）
type memImageRepo struct {
	saved []*model.CalendarImage
}

func (r *memImageRepo) SaveImageWithEvents(_ context.Context, image *model.CalendarImage) error {
	r.saved = append(r.saved, image)
	return nil
}

func (r *memImageRepo) ListImages(_ context.Context) ([]*model.CalendarImage, error) {
	panic("not used")
}

func (r *memImageRepo) GetImageByUUID(_ context.Context, _ string) (*model.CalendarImage, error) {
	panic("not used")
}

func (r *memImageRepo) DeleteImageByUUID(_ context.Context, _ string) error {
	panic("not used")
}

func (r *memImageRepo) ListAllEvents(_ context.Context) ([]*model.RawEvent, error) {
	var events []*model.RawEvent
	for _, img := range r.saved {
		for i := range img.RawEvents {
			events = append(events, &img.RawEvents[i])
		}
	}
	return events, nil
}

func TestAnalyzeAndStore_PersistsImageWithEvents(t *testing.T) {
	repo := &memImageRepo{}
	vision := &stubVision{events: []*model.ExtractedEvent{
		{Title: "Gym", DurationHours: 1.0, Color: "#ff0000"},
		{Title: "Work", DurationHours: 2.0, Color: model.SentinelColor},
	}}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := NewAnalysisService(repo, vision, logger)

	image, err := svc.AnalyzeAndStore(context.Background(), "monday.png", "image/png", []byte("png-bytes"))

	require.NoError(t, err)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "monday.png", image.Filename)
	assert.Equal(t, []byte("png-bytes"), image.Payload)
	require.Len(t, image.RawEvents, 2)
	assert.Equal(t, "Gym", image.RawEvents[0].Title)
	// 识别结果原始JSON留痕
	assert.Contains(t, string(image.ExtractionRaw), `"Gym"`)
}

// 识别失败时错误上抛且不落库
func TestAnalyzeAndStore_NoPersistenceOnExtractionFailure(t *testing.T) {
	repo := &memImageRepo{}
	vision := &stubVision{err: errors.New("vision down")}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := NewAnalysisService(repo, vision, logger)

	_, err := svc.AnalyzeAndStore(context.Background(), "monday.png", "image/png", []byte("x"))

	require.Error(t, err)
	assert.Empty(t, repo.saved)
}
