package repository

import (
	"errors"
	"lingua_learn_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type StreakRepository struct {
	DB *gorm.DB
}

func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{DB: db}
}

// FindByUser 不存在时返回 (nil, nil)，由服务层决定创建
func (r *StreakRepository) FindByUser(userID uint) (*model.Streak, error) {
	var streak model.Streak
	err := r.DB.Where("user_id = ?", userID).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &streak, nil
}

func (r *StreakRepository) Create(streak *model.Streak) error {
	return r.DB.Create(streak).Error
}

// CompareAndSwap 仅当 last_active_date 未被并发写入改变时更新。
// 返回 false 表示行被其他提交抢先推进，调用方需重读重算。
func (r *StreakRepository) CompareAndSwap(userID uint, prevLastActive time.Time, current, longest int, newLastActive time.Time) (bool, error) {
	res := r.DB.Model(&model.Streak{}).
		Where("user_id = ? AND last_active_date = ?", userID, prevLastActive).
		Updates(map[string]interface{}{
			"current_streak":   current,
			"longest_streak":   longest,
			"last_active_date": newLastActive,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
