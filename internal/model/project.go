package model

// Project 聚合输出的单个项目（派生视图，每次重算生成，不落库）
type Project struct {
	Name          string   `json:"name"`           // 展示名
	Duration      float64  `json:"duration"`       // 总时长（小时）
	Color         string   `json:"color"`          // 展示颜色
	OriginalNames []string `json:"original_names"` // 折叠进该项目的原始聚合键（首次出现顺序）
}
