package model

import "time"

type User struct {
	BaseModel
	Email    string `gorm:"size:128;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:128;not null" json:"-"`
	Name     string `gorm:"size:64" json:"name"`

	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
}

func (User) TableName() string {
	return "users"
}
