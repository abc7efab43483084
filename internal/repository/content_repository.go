package repository

import (
	"errors"

	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) FindByModalityAndDay(modality model.Modality, dayCode string) (*model.DayContent, error) {
	var content model.DayContent
	err := r.DB.Where("modality = ? AND day_code = ?", modality, dayCode).First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *ContentRepository) ListDayCodes(modality model.Modality) ([]string, error) {
	var codes []string
	err := r.DB.Model(&model.DayContent{}).
		Where("modality = ?", modality).
		Order("day_code ASC").
		Pluck("day_code", &codes).Error
	return codes, err
}

// Upsert 内容导入用，(modality, day_code) 冲突时整体替换
func (r *ContentRepository) Upsert(content *model.DayContent) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "modality"}, {Name: "day_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "items"}),
	}).Create(content).Error
}
