package repository

import (
	"lingua_learn_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SkillRepository struct {
	DB *gorm.DB
}

func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{DB: db}
}

// SaveSessionSkills (session_id, skill) 冲突时覆盖，提交重试得到同一结果
func (r *SkillRepository) SaveSessionSkills(skills []model.SessionSkill) error {
	if len(skills) == 0 {
		return nil
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "skill"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"correct", "total", "mastery_pct", "mastery_level",
		}),
	}).Create(&skills).Error
}

func (r *SkillRepository) SessionSkills(sessionID string) ([]model.SessionSkill, error) {
	var skills []model.SessionSkill
	err := r.DB.Where("session_id = ?", sessionID).Order("skill ASC").Find(&skills).Error
	return skills, err
}

// CountSessionsWithSkill 某技能在多少个会话中出现过
func (r *SkillRepository) CountSessionsWithSkill(sessionIDs []string, skill string) (int, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB.Model(&model.SessionSkill{}).
		Where("session_id IN ? AND skill = ?", sessionIDs, skill).
		Count(&count).Error
	return int(count), err
}

// UpsertMastery 按 (user_id, modality, skill) 整行替换累计掌握度
func (r *SkillRepository) UpsertMastery(records []model.UserSkillMastery) error {
	if len(records) == 0 {
		return nil
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "modality"}, {Name: "skill"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_attempts", "correct_attempts", "mastery_pct", "last_updated",
		}),
	}).Create(&records).Error
}

func (r *SkillRepository) MasteryByUser(userID uint) ([]model.UserSkillMastery, error) {
	var records []model.UserSkillMastery
	err := r.DB.Where("user_id = ?", userID).Order("modality ASC, skill ASC").Find(&records).Error
	return records, err
}

func (r *SkillRepository) MasteryByUserAndModality(userID uint, modality model.Modality) ([]model.UserSkillMastery, error) {
	var records []model.UserSkillMastery
	err := r.DB.Where("user_id = ? AND modality = ?", userID, modality).
		Order("skill ASC").
		Find(&records).Error
	return records, err
}
