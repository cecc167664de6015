package repository

import (
	"context"
	"fmt"

	"TimeLens/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImageRepository 截图与识别事件仓储
type ImageRepository interface {
	// SaveImageWithEvents 截图与其识别事件同事务入库（识别失败时不会走到这里）
	SaveImageWithEvents(ctx context.Context, image *model.CalendarImage) error
	// ListImages 按上传顺序列出所有截图（不含图片二进制），事件随查
	ListImages(ctx context.Context) ([]*model.CalendarImage, error)
	// GetImageByUUID 取单张截图（含图片二进制）
	GetImageByUUID(ctx context.Context, imageUUID string) (*model.CalendarImage, error)
	// DeleteImageByUUID 删除截图及其独占的识别事件
	DeleteImageByUUID(ctx context.Context, imageUUID string) error
	// ListAllEvents 聚合引擎输入：全部识别事件，按截图入库顺序+截图内顺序排列
	ListAllEvents(ctx context.Context) ([]*model.RawEvent, error)
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) SaveImageWithEvents(ctx context.Context, image *model.CalendarImage) error {
	if image.ImageUUID == "" {
		image.ImageUUID = uuid.NewString() // 生成全局唯一ID
	}
	// 补齐截图内顺序（按识别返回顺序）
	for i := range image.RawEvents {
		image.RawEvents[i].Position = i
	}

	// 开启事务
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	// Create 会连同关联的RawEvents一并落库
	if err := tx.Create(image).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("保存截图失败: %w, filename: %s", err, image.Filename)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

func (r *imageRepository) ListImages(ctx context.Context) ([]*model.CalendarImage, error) {
	var images []*model.CalendarImage
	if err := r.db.WithContext(ctx).
		Omit("payload").
		Preload("RawEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("id ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (r *imageRepository) GetImageByUUID(ctx context.Context, imageUUID string) (*model.CalendarImage, error) {
	var image model.CalendarImage
	if err := r.db.WithContext(ctx).Where("image_uuid = ?", imageUUID).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) DeleteImageByUUID(ctx context.Context, imageUUID string) error {
	var image model.CalendarImage
	if err := r.db.WithContext(ctx).Select("id").Where("image_uuid = ?", imageUUID).First(&image).Error; err != nil {
		return err
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	// 先删事件再删截图（外键虽有级联，迁移历史库时不一定生效）
	if err := tx.Where("image_id = ?", image.ID).Delete(&model.RawEvent{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("删除识别事件失败: %w", err)
	}
	if err := tx.Delete(&model.CalendarImage{}, image.ID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("删除截图失败: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

func (r *imageRepository) ListAllEvents(ctx context.Context) ([]*model.RawEvent, error) {
	var events []*model.RawEvent
	if err := r.db.WithContext(ctx).
		Order("image_id ASC, position ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
