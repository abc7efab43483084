package repository

import (
	"lingua_learn_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

// Upsert 按 session_id 幂等写入，重试时覆盖为最新快照
func (r *AnalyticsRepository) Upsert(rec *model.SessionAnalytics) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "modality", "day_code", "total_items",
			"correct_items", "accuracy", "duration_sec", "completed_at",
		}),
	}).Create(rec).Error
}

// RecentAccuracies 按完成时间倒序取最近 limit 次会话的正确率
func (r *AnalyticsRepository) RecentAccuracies(userID uint, limit int) ([]float64, error) {
	var accuracies []float64
	err := r.DB.Model(&model.SessionAnalytics{}).
		Where("user_id = ?", userID).
		Order("completed_at DESC").Limit(limit).
		Pluck("accuracy", &accuracies).Error
	return accuracies, err
}

// TotalItems 用户累计作答题数
func (r *AnalyticsRepository) TotalItems(userID uint) (int, error) {
	var total *int
	err := r.DB.Model(&model.SessionAnalytics{}).
		Where("user_id = ?", userID).
		Select("SUM(total_items)").Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

func (r *AnalyticsRepository) FindByUserSince(userID uint, since time.Time) ([]model.SessionAnalytics, error) {
	var recs []model.SessionAnalytics
	err := r.DB.Where("user_id = ? AND completed_at >= ?", userID, since).
		Order("completed_at ASC").
		Find(&recs).Error
	return recs, err
}

func (r *AnalyticsRepository) FindByUserAndModality(userID uint, modality model.Modality) ([]model.SessionAnalytics, error) {
	var recs []model.SessionAnalytics
	err := r.DB.Where("user_id = ? AND modality = ?", userID, modality).
		Order("completed_at ASC").
		Find(&recs).Error
	return recs, err
}
