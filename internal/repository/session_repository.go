package repository

import (
	"errors"
	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(session *model.Session) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) FindByID(sessionID string) (*model.Session, error) {
	var session model.Session
	err := r.DB.Where("id = ?", sessionID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// MarkCompleted 写入完成字段，会话自此终态
func (r *SessionRepository) MarkCompleted(sessionID string, completedAt time.Time, durationSec, scorePct int) error {
	return r.DB.Model(&model.Session{}).Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"completed_at": completedAt,
			"duration_sec": durationSec,
			"score_pct":    scorePct,
		}).Error
}

func (r *SessionRepository) UpdateXPEarned(sessionID string, xp int) error {
	return r.DB.Model(&model.Session{}).Where("id = ?", sessionID).
		Update("xp_earned", xp).Error
}

func (r *SessionRepository) ListByUser(userID uint, limit, offset int) ([]model.Session, int64, error) {
	var sessions []model.Session
	var total int64

	q := r.DB.Model(&model.Session{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("started_at DESC").Limit(limit).Offset(offset).Find(&sessions).Error
	return sessions, total, err
}

// CompletedInRange 查询 [from, to) 内完成的会话
func (r *SessionRepository) CompletedInRange(userID uint, from, to time.Time) ([]model.Session, error) {
	var sessions []model.Session
	err := r.DB.Where("user_id = ? AND completed_at >= ? AND completed_at < ?", userID, from, to).
		Order("completed_at ASC").
		Find(&sessions).Error
	return sessions, err
}

// ModalitiesCompletedInRange 区间内完成过的模态去重集合
func (r *SessionRepository) ModalitiesCompletedInRange(userID uint, from, to time.Time) (map[model.Modality]bool, error) {
	sessions, err := r.CompletedInRange(userID, from, to)
	if err != nil {
		return nil, err
	}
	out := make(map[model.Modality]bool, len(sessions))
	for _, s := range sessions {
		out[s.Modality] = true
	}
	return out, nil
}

func (r *SessionRepository) CountCompletedInRange(userID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Session{}).
		Where("user_id = ? AND completed_at >= ? AND completed_at < ?", userID, from, to).
		Count(&count).Error
	return count, err
}

func (r *SessionRepository) CompletedByModality(userID uint, modality model.Modality) ([]model.Session, error) {
	var sessions []model.Session
	err := r.DB.Where("user_id = ? AND modality = ? AND completed_at IS NOT NULL", userID, modality).
		Order("completed_at ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) SessionIDsByModality(userID uint, modality model.Modality) ([]string, error) {
	var ids []string
	err := r.DB.Model(&model.Session{}).
		Where("user_id = ? AND modality = ?", userID, modality).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *SessionRepository) SessionIDsByModalityAndDay(userID uint, modality model.Modality, dayCode string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&model.Session{}).
		Where("user_id = ? AND modality = ? AND day_code = ?", userID, modality, dayCode).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *SessionRepository) RecentCompleted(userID uint, limit int) ([]model.Session, error) {
	var sessions []model.Session
	err := r.DB.Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) LastCompletedAt(userID uint) (*time.Time, error) {
	var session model.Session
	err := r.DB.Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session.CompletedAt, nil
}
