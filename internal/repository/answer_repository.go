package repository

import (
	"lingua_learn_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// InsertAll 批量写入作答，(session_id, item_id) 冲突时忽略，保证重试幂等
func (r *AnswerRepository) InsertAll(answers []model.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "item_id"}},
		DoNothing: true,
	}).Create(&answers).Error
}

func (r *AnswerRepository) FindBySession(sessionID string) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.Where("session_id = ?", sessionID).Order("id ASC").Find(&answers).Error
	return answers, err
}

// SkillTaggedBySessions 指定会话集合内带技能标签的作答
func (r *AnswerRepository) SkillTaggedBySessions(sessionIDs []string) ([]model.Answer, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	var answers []model.Answer
	err := r.DB.Where("session_id IN ? AND skill <> ''", sessionIDs).Find(&answers).Error
	return answers, err
}

// TopicTaggedBySessions 指定会话集合内带主题标签的作答
func (r *AnswerRepository) TopicTaggedBySessions(sessionIDs []string) ([]model.Answer, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	var answers []model.Answer
	err := r.DB.Where("session_id IN ? AND topic <> ''", sessionIDs).Find(&answers).Error
	return answers, err
}
