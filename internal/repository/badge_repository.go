package repository

import (
	"lingua_learn_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) KeysByUser(userID uint) (map[string]bool, error) {
	var keys []string
	err := r.DB.Model(&model.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_key", &keys).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out, nil
}

// Create (user_id, badge_key) 冲突时忽略，重复评估不会产生第二行
func (r *BadgeRepository) Create(badge *model.UserBadge) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_key"}},
		DoNothing: true,
	}).Create(badge).Error
}

func (r *BadgeRepository) ListByUser(userID uint) ([]model.UserBadge, error) {
	var badges []model.UserBadge
	err := r.DB.Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&badges).Error
	return badges, err
}
