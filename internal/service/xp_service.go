package service

import (
	"math"
	"time"

	"lingua_learn_backend/internal/config"
	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/repository"
	"lingua_learn_backend/internal/util"
	"lingua_learn_backend/pkg/monitoring"
)

type XPService struct {
	XPRepo *repository.XPRepository
	Rules  config.GamificationConfig
	Loc    *time.Location
}

func NewXPService(xpRepo *repository.XPRepository, rules config.GamificationConfig, loc *time.Location) *XPService {
	return &XPService{XPRepo: xpRepo, Rules: rules, Loc: loc}
}

// XPBreakdown 单次会话的经验值构成，各分项独立计算后相加
type XPBreakdown struct {
	Base            int `json:"base"`
	AccuracyBonus   int `json:"accuracyBonus"`
	PerfectBonus    int `json:"perfectBonus"`
	SpeedBonus      int `json:"speedBonus"`
	StreakBonus     int `json:"streakBonus"`
	FirstOfDayBonus int `json:"firstOfDayBonus"`
	PerfectDayBonus int `json:"perfectDayBonus"`
	Total           int `json:"total"`
}

type SessionXPInput struct {
	Modality    model.Modality
	Accuracy    float64 // [0,1]
	DurationSec int
	Streak      int  // 本次提交后的连击天数
	FirstOfDay  bool // 当天第一个完成的会话
	PerfectDay  bool // 本次提交凑齐了当天三个模态
}

// CalculateSessionXP 纯函数，只读规则表，不落库
func (s *XPService) CalculateSessionXP(in SessionXPInput) XPBreakdown {
	xp := s.Rules.XP
	b := XPBreakdown{Base: xp.BaseSessionXP}

	if in.Accuracy >= xp.AccuracyBonusThreshold {
		b.AccuracyBonus = xp.AccuracyBonusXP
	}
	if in.Accuracy >= 1.0 {
		b.PerfectBonus = xp.PerfectScoreBonus
	}

	// 用时低于基准时长按节省比例给速度奖励
	if expected, ok := s.Rules.ExpectedDurationSec[string(in.Modality)]; ok &&
		in.DurationSec > 0 && in.DurationSec < expected {
		saved := float64(expected-in.DurationSec) / float64(expected)
		bonus := int(math.Floor(saved * float64(xp.SpeedBonusMax)))
		if bonus > xp.SpeedBonusMax {
			bonus = xp.SpeedBonusMax
		}
		b.SpeedBonus = bonus
	}

	if in.Streak > 0 {
		bonus := in.Streak * xp.StreakBonusPerDay
		if bonus > xp.StreakBonusMax {
			bonus = xp.StreakBonusMax
		}
		b.StreakBonus = bonus
	}

	if in.FirstOfDay {
		b.FirstOfDayBonus = xp.FirstSessionBonus
	}
	if in.PerfectDay {
		b.PerfectDayBonus = xp.PerfectDayBonus
	}

	b.Total = b.Base + b.AccuracyBonus + b.PerfectBonus + b.SpeedBonus +
		b.StreakBonus + b.FirstOfDayBonus + b.PerfectDayBonus
	return b
}

// Award 追加一条经验值流水
func (s *XPService) Award(userID uint, amount int, source string, at time.Time) error {
	if amount <= 0 {
		return nil
	}
	err := s.XPRepo.Append(&model.XPLedgerEntry{
		UserID:     userID,
		Amount:     amount,
		Source:     source,
		OccurredAt: at,
	})
	if err != nil {
		return err
	}
	monitoring.XPAwarded.WithLabelValues(source).Add(float64(amount))
	return nil
}

type LevelInfo struct {
	Level          int    `json:"level"`
	Name           string `json:"name"`
	TotalXP        int    `json:"totalXp"`
	CurrentLevelXP int    `json:"currentLevelXp"`
	NextLevelXP    int    `json:"nextLevelXp"`
	XPToNext       int    `json:"xpToNext"`
	ProgressPct    int    `json:"progressPct"`
}

// xpRequiredForLevel 升到 n 级所需的累计经验值，1 级为 0
func (s *XPService) xpRequiredForLevel(n int) int {
	if n <= 1 {
		return 0
	}
	return int(math.Floor(float64(s.Rules.Level.XPPerLevelBase) *
		math.Pow(s.Rules.Level.XPMultiplier, float64(n-1))))
}

func levelName(level int) string {
	switch {
	case level <= 5:
		return "Beginner"
	case level <= 10:
		return "Intermediate"
	case level <= 20:
		return "Advanced"
	case level <= 35:
		return "Expert"
	default:
		return "Master"
	}
}

// CalculateLevel 取满足门槛的最大等级
func (s *XPService) CalculateLevel(totalXP int) LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}
	level := 1
	for s.xpRequiredForLevel(level+1) <= totalXP {
		level++
	}
	floor := s.xpRequiredForLevel(level)
	ceil := s.xpRequiredForLevel(level + 1)

	progress := 0
	if ceil > floor {
		progress = int(math.Floor(float64(totalXP-floor) / float64(ceil-floor) * 100))
	}
	return LevelInfo{
		Level:          level,
		Name:           levelName(level),
		TotalXP:        totalXP,
		CurrentLevelXP: floor,
		NextLevelXP:    ceil,
		XPToNext:       ceil - totalXP,
		ProgressPct:    progress,
	}
}

func (s *XPService) UserLevel(userID uint) (LevelInfo, error) {
	total, err := s.XPRepo.TotalByUser(userID)
	if err != nil {
		return LevelInfo{}, err
	}
	return s.CalculateLevel(total), nil
}

// UserXP 累计与当日经验值
func (s *XPService) UserXP(userID uint, now time.Time) (total, today int, err error) {
	total, err = s.XPRepo.TotalByUser(userID)
	if err != nil {
		return 0, 0, err
	}
	from, to := util.DayRange(now, s.Loc)
	today, err = s.XPRepo.SumInRange(userID, from, to)
	if err != nil {
		return 0, 0, err
	}
	return total, today, nil
}

type DailyXPResponse struct {
	Date      string `json:"date"`
	EarnedXP  int    `json:"earnedXp"`
	GoalXP    int    `json:"goalXp"`
	Remaining int    `json:"remaining"`
	GoalMet   bool   `json:"goalMet"`
	Pct       int    `json:"pct"`
}

// DailyXP 当天经验值对照每日目标
func (s *XPService) DailyXP(userID uint, now time.Time) (DailyXPResponse, error) {
	from, to := util.DayRange(now, s.Loc)
	earned, err := s.XPRepo.SumInRange(userID, from, to)
	if err != nil {
		return DailyXPResponse{}, err
	}
	goal := s.Rules.XP.DailyXPGoal
	resp := DailyXPResponse{
		Date:     from.Format("2006-01-02"),
		EarnedXP: earned,
		GoalXP:   goal,
		GoalMet:  earned >= goal,
	}
	if earned < goal {
		resp.Remaining = goal - earned
	}
	if goal > 0 {
		pct := earned * 100 / goal
		if pct > 100 {
			pct = 100
		}
		resp.Pct = pct
	}
	return resp, nil
}
