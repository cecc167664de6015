package model

import (
	"time"

	"gorm.io/datatypes"
)

// SentinelColor 识别服务未检测到色块颜色时的占位色，聚合阶段可被调色板兜底替换
const SentinelColor = "#808080"

// CalendarImage 对应 calendar_images 表，一次成功上传+识别的日历截图
// 独占其 RawEvent（不跨图共享），删除截图时级联删除事件
type CalendarImage struct {
	ID            uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	ImageUUID     string         `gorm:"column:image_uuid;type:varchar(64);uniqueIndex;not null;comment:全局唯一ID"`
	Filename      string         `gorm:"column:filename;type:varchar(256);not null;comment:上传文件名"`
	MimeType      string         `gorm:"column:mime_type;type:varchar(64);not null;comment:图片MIME类型"`
	Payload       []byte         `gorm:"column:payload;type:bytea;not null;comment:原始图片二进制"`
	ExtractionRaw datatypes.JSON `gorm:"column:extraction_raw;type:jsonb;comment:识别结果存档（仅留痕，读路径不解析）"`
	CreatedAt     time.Time      `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	RawEvents     []RawEvent     `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE"`
}

// RawEvent 对应 raw_events 表，截图中识别出的一个带色时间块，入库后不可变
type RawEvent struct {
	ID            uint64  `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	ImageID       uint64  `gorm:"column:image_id;type:bigint;index;not null;comment:关联截图ID"`
	Position      int     `gorm:"column:position;type:int;not null;comment:截图内顺序（识别返回顺序）"`
	Title         string  `gorm:"column:title;type:varchar(256);not null;comment:时间块标题（识别原文）"`
	DurationHours float64 `gorm:"column:duration_hours;type:numeric(8,2);not null;comment:时长（小时）"`
	Color         string  `gorm:"column:color;type:varchar(16);not null;default:#808080;comment:识别到的颜色，无则为占位色"`
}

// NameColorMapping 对应 name_color_mappings 表，用户对原始聚合键的改名/改色覆盖
// 自增 id 即插入顺序，聚合阶段按此顺序迭代（last-applied 规则依赖它）
type NameColorMapping struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	OriginalKey string    `gorm:"column:original_key;type:varchar(256);uniqueIndex;not null;comment:原始聚合键"`
	DisplayName string    `gorm:"column:display_name;type:varchar(256);index;not null;comment:展示名"`
	Color       string    `gorm:"column:color;type:varchar(16);not null;comment:展示颜色"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

// KeywordRule 对应 keyword_rules 表，关键词→目标项目名的归类规则
// keyword 唯一；自增 id 即插入顺序，多关键词同时命中一个标题时先插入者胜
// （upsert 覆盖 target 时保留原行 id，即保留原插入位置）
type KeywordRule struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Keyword     string    `gorm:"column:keyword;type:varchar(128);uniqueIndex;not null;comment:大小写不敏感子串关键词"`
	TargetLabel string    `gorm:"column:target_label;type:varchar(256);not null;comment:目标项目名"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

// IgnoredKey 对应 ignored_keys 表，被排除出聚合结果的原始聚合键集合
type IgnoredKey struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	OriginalKey string    `gorm:"column:original_key;type:varchar(256);uniqueIndex;not null;comment:被忽略的原始聚合键"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
}

func (CalendarImage) TableName() string    { return "calendar_images" }
func (RawEvent) TableName() string         { return "raw_events" }
func (NameColorMapping) TableName() string { return "name_color_mappings" }
func (KeywordRule) TableName() string      { return "keyword_rules" }
func (IgnoredKey) TableName() string       { return "ignored_keys" }
