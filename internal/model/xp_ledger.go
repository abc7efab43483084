package model

import "time"

// XPLedgerEntry 只追加的 XP 流水，总 XP = 按用户求和，不修改不删除
type XPLedgerEntry struct {
	BaseModel
	UserID     uint      `gorm:"index:idx_xp_user_time;not null" json:"userId"`
	Amount     int       `gorm:"not null" json:"amount"`
	Source     string    `gorm:"size:64;not null" json:"source"`
	OccurredAt time.Time `gorm:"index:idx_xp_user_time;not null" json:"occurredAt"`
}

func (XPLedgerEntry) TableName() string {
	return "xp_ledger"
}
