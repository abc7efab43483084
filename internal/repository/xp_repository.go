package repository

import (
	"lingua_learn_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type XPRepository struct {
	DB *gorm.DB
}

func NewXPRepository(db *gorm.DB) *XPRepository {
	return &XPRepository{DB: db}
}

// Append 追加一条流水，流水只增不改
func (r *XPRepository) Append(entry *model.XPLedgerEntry) error {
	return r.DB.Create(entry).Error
}

func (r *XPRepository) TotalByUser(userID uint) (int, error) {
	var total *int
	err := r.DB.Model(&model.XPLedgerEntry{}).
		Where("user_id = ?", userID).
		Select("SUM(amount)").Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

func (r *XPRepository) SumInRange(userID uint, from, to time.Time) (int, error) {
	var total *int
	err := r.DB.Model(&model.XPLedgerEntry{}).
		Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", userID, from, to).
		Select("SUM(amount)").Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

func (r *XPRepository) EntriesInRange(userID uint, from, to time.Time) ([]model.XPLedgerEntry, error) {
	var entries []model.XPLedgerEntry
	err := r.DB.Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", userID, from, to).
		Order("occurred_at ASC").
		Find(&entries).Error
	return entries, err
}
