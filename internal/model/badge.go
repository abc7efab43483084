package model

import "time"

// UserBadge 已授予的徽章，(user_id, badge_key) 唯一保证幂等
type UserBadge struct {
	BaseModel
	UserID   uint      `gorm:"uniqueIndex:idx_user_badge;not null" json:"userId"`
	BadgeKey string    `gorm:"size:64;uniqueIndex:idx_user_badge;not null" json:"badgeKey"`
	Title    string    `gorm:"size:128" json:"title"`
	EarnedAt time.Time `gorm:"not null" json:"earnedAt"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
