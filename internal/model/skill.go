package model

import (
	"math"
	"time"
)

// MasteryLevel 由掌握度百分比派生的定性档位
type MasteryLevel string

const (
	MasteryBeginner   MasteryLevel = "beginner"
	MasteryDeveloping MasteryLevel = "developing"
	MasteryProficient MasteryLevel = "proficient"
	MasteryAdvanced   MasteryLevel = "advanced"
)

// MasteryLevelFor 四档覆盖 [0,100]，边界闭合无重叠
func MasteryLevelFor(pct int) MasteryLevel {
	switch {
	case pct <= 49:
		return MasteryBeginner
	case pct <= 74:
		return MasteryDeveloping
	case pct <= 89:
		return MasteryProficient
	default:
		return MasteryAdvanced
	}
}

// MasteryPct 掌握度百分比 = round(100 * correct/total)，total 为 0 时返回 0
func MasteryPct(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// SessionSkill 单次会话内按技能的作答统计，提交时派生一次
type SessionSkill struct {
	BaseModel
	SessionID    string       `gorm:"size:36;uniqueIndex:idx_session_skill;not null" json:"sessionId"`
	Skill        string       `gorm:"size:64;uniqueIndex:idx_session_skill;not null" json:"skill"`
	Correct      int          `json:"correct"`
	Total        int          `json:"total"`
	MasteryPct   int          `json:"masteryPct"`
	MasteryLevel MasteryLevel `gorm:"size:16" json:"masteryLevel"`
}

func (SessionSkill) TableName() string {
	return "lrg_session_skills"
}

// UserSkillMastery 用户×模态×技能的累计掌握度。
// 每次该模态会话完成后从全部历史作答重新计算并整行替换。
type UserSkillMastery struct {
	BaseModel
	UserID          uint      `gorm:"uniqueIndex:idx_user_modality_skill;not null" json:"userId"`
	Modality        Modality  `gorm:"size:16;uniqueIndex:idx_user_modality_skill;not null" json:"modality"`
	Skill           string    `gorm:"size:64;uniqueIndex:idx_user_modality_skill;not null" json:"skill"`
	TotalAttempts   int       `json:"totalAttempts"`
	CorrectAttempts int       `json:"correctAttempts"`
	MasteryPct      int       `json:"masteryPct"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

func (UserSkillMastery) TableName() string {
	return "lrg_skill_mastery"
}
