package model

// ContentItem 单个练习题目
type ContentItem struct {
	ItemID   string   `json:"itemId"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer"`
	Skill    string   `json:"skill,omitempty"`
	Topic    string   `json:"topic,omitempty"`
	AudioURL string   `json:"audioUrl,omitempty"`
}

// DayContent 某模态某课程日的题目集，(modality, day_code) 唯一
type DayContent struct {
	BaseModel
	Modality Modality      `gorm:"size:16;uniqueIndex:idx_modality_day;not null" json:"modality"`
	DayCode  string        `gorm:"size:16;uniqueIndex:idx_modality_day;not null" json:"dayCode"`
	Title    string        `gorm:"size:255" json:"title"`
	Items    []ContentItem `gorm:"serializer:json" json:"items"`
}

func (DayContent) TableName() string {
	return "day_contents"
}
