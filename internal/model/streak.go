package model

import "time"

// Streak 每用户一行，记录连续活跃天数。
// 不变式：LongestStreak >= CurrentStreak；每个自然日最多变更一次。
type Streak struct {
	BaseModel
	UserID         uint      `gorm:"uniqueIndex;not null" json:"userId"`
	CurrentStreak  int       `gorm:"not null;default:0" json:"currentStreak"`
	LongestStreak  int       `gorm:"not null;default:0" json:"longestStreak"`
	LastActiveDate time.Time `gorm:"not null" json:"lastActiveDate"`
}

func (Streak) TableName() string {
	return "streaks"
}

// StreakStatus 读接口派生状态，不落库
type StreakStatus string

const (
	StreakActive StreakStatus = "active"
	StreakAtRisk StreakStatus = "at_risk"
	StreakBroken StreakStatus = "broken"
)
