package model

import "time"

// Modality 三种核心练习类型，用于连击与"完美一天"判定
type Modality string

const (
	Reading   Modality = "reading"
	Listening Modality = "listening"
	Grammar   Modality = "grammar"
)

// AllModalities 固定顺序，聚合输出按此遍历保证确定性
var AllModalities = []Modality{Reading, Listening, Grammar}

func (m Modality) Valid() bool {
	return m == Reading || m == Listening || m == Grammar
}

// Session 一次练习会话。创建于开始练习，提交时写入完成字段后即为终态。
// swagger:model Session
type Session struct {
	UUIDBase
	UserID      uint       `gorm:"index;not null" json:"userId"`
	Modality    Modality   `gorm:"size:16;index;not null" json:"modality"`
	DayCode     string     `gorm:"size:16;index;not null" json:"dayCode"`
	StartedAt   time.Time  `gorm:"not null" json:"startedAt"`
	CompletedAt *time.Time `gorm:"index" json:"completedAt,omitempty"`
	DurationSec int        `json:"durationSec"`
	ScorePct    int        `json:"scorePct"`
	XPEarned    int        `json:"xpEarned"`
}

func (Session) TableName() string {
	return "lrg_sessions"
}

func (s *Session) Completed() bool {
	return s.CompletedAt != nil
}

// Answer 会话内单题作答，插入后不可变
// swagger:model Answer
type Answer struct {
	BaseModel
	SessionID     string `gorm:"size:36;uniqueIndex:idx_session_item;not null" json:"sessionId"`
	ItemID        string `gorm:"size:64;uniqueIndex:idx_session_item;not null" json:"itemId"`
	UserAnswer    string `gorm:"size:512" json:"userAnswer"`
	CorrectAnswer string `gorm:"size:512" json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	TimeSpentSec  int    `json:"timeSpentSec"`

	// Skill/Topic 为空表示未打标，聚合时跳过
	Skill string `gorm:"size:64;index" json:"skill,omitempty"`
	Topic string `gorm:"size:64;index" json:"topic,omitempty"`
}

func (Answer) TableName() string {
	return "lrg_answers"
}

// SessionAnalytics 提交后生成的会话分析快照，按 session_id 幂等 upsert
type SessionAnalytics struct {
	BaseModel
	SessionID    string    `gorm:"size:36;uniqueIndex;not null" json:"sessionId"`
	UserID       uint      `gorm:"index;not null" json:"userId"`
	Modality     Modality  `gorm:"size:16;index;not null" json:"modality"`
	DayCode      string    `gorm:"size:16;not null" json:"dayCode"`
	TotalItems   int       `json:"totalItems"`
	CorrectItems int       `json:"correctItems"`
	Accuracy     float64   `json:"accuracy"`
	DurationSec  int       `json:"durationSec"`
	CompletedAt  time.Time `gorm:"index;not null" json:"completedAt"`
}

func (SessionAnalytics) TableName() string {
	return "lrg_analytics_sessions"
}
