package service

import (
	"fmt"
	"time"

	"lingua_learn_backend/internal/config"
	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/repository"
	"lingua_learn_backend/internal/util"
	"lingua_learn_backend/pkg/logger"
	"lingua_learn_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type BadgeService struct {
	BadgeRepo     *repository.BadgeRepository
	SessionRepo   *repository.SessionRepository
	AnalyticsRepo *repository.AnalyticsRepository
	XPService     *XPService
	Rules         config.BadgeRules
	Loc           *time.Location
}

func NewBadgeService(
	badgeRepo *repository.BadgeRepository,
	sessionRepo *repository.SessionRepository,
	analyticsRepo *repository.AnalyticsRepository,
	xpService *XPService,
	rules config.BadgeRules,
	loc *time.Location,
) *BadgeService {
	return &BadgeService{
		BadgeRepo:     badgeRepo,
		SessionRepo:   sessionRepo,
		AnalyticsRepo: analyticsRepo,
		XPService:     xpService,
		Rules:         rules,
		Loc:           loc,
	}
}

type BadgeAwarded struct {
	BadgeKey string    `json:"badgeKey"`
	Title    string    `json:"title"`
	EarnedAt time.Time `json:"earnedAt"`
}

// EvaluateAfterSubmit 按固定顺序检查全部勋章规则：
// 连击 3/7/30 -> 稳定正确率 -> 全模态日 -> 累计百题。
// (user_id, badge_key) 唯一索引保证重复评估不会二次授予。
func (s *BadgeService) EvaluateAfterSubmit(
	userID uint,
	streak int,
	accuracy float64,
	completedAt time.Time,
) ([]BadgeAwarded, error) {
	existing, err := s.BadgeRepo.KeysByUser(userID)
	if err != nil {
		return nil, err
	}

	var awarded []BadgeAwarded
	grant := func(key, title string) {
		if existing[key] {
			return
		}
		badge := &model.UserBadge{
			UserID:   userID,
			BadgeKey: key,
			Title:    title,
			EarnedAt: completedAt,
		}
		if err := s.BadgeRepo.Create(badge); err != nil {
			logger.Log.Error("badge insert failed",
				zap.Uint("user_id", userID), zap.String("badge_key", key), zap.Error(err))
			return
		}
		// 勋章奖励 XP 丢失只告警，勋章本身已落库
		if err := s.XPService.Award(userID, s.Rules.BonusXP, "badge_"+key, completedAt); err != nil {
			logger.Log.Warn("badge bonus xp failed",
				zap.Uint("user_id", userID), zap.String("badge_key", key), zap.Error(err))
		}
		monitoring.BadgesGranted.WithLabelValues(key).Inc()
		existing[key] = true
		awarded = append(awarded, BadgeAwarded{BadgeKey: key, Title: title, EarnedAt: completedAt})
	}

	for _, threshold := range s.Rules.StreakThresholds {
		if streak >= threshold {
			grant(fmt.Sprintf("streak_%d", threshold), fmt.Sprintf("%d Day Streak", threshold))
		}
	}

	if accuracy >= 0.80 && !existing["accuracy_master_80"] {
		recent, err := s.AnalyticsRepo.RecentAccuracies(userID, s.Rules.ConsistencyRuns)
		if err != nil {
			logger.Log.Warn("recent accuracy lookup failed", zap.Uint("user_id", userID), zap.Error(err))
		} else if len(recent) >= s.Rules.ConsistencyRuns && allAtLeast(recent, 0.80) {
			grant("accuracy_master_80", "Accuracy Master")
		}
	}

	if !existing["perfect_day"] {
		perfect, err := s.isPerfectDay(userID, completedAt)
		if err != nil {
			logger.Log.Warn("perfect day check failed", zap.Uint("user_id", userID), zap.Error(err))
		} else if perfect {
			grant("perfect_day", "Perfect Day")
		}
	}

	if !existing["centurion"] {
		total, err := s.AnalyticsRepo.TotalItems(userID)
		if err != nil {
			logger.Log.Warn("total items lookup failed", zap.Uint("user_id", userID), zap.Error(err))
		} else if total >= s.Rules.CenturionTotal {
			grant("centurion", "Centurion")
		}
	}

	return awarded, nil
}

func allAtLeast(values []float64, min float64) bool {
	for _, v := range values {
		if v < min {
			return false
		}
	}
	return true
}

// isPerfectDay 当天三个模态是否都已完成
func (s *BadgeService) isPerfectDay(userID uint, at time.Time) (bool, error) {
	from, to := util.DayRange(at, s.Loc)
	modalities, err := s.SessionRepo.ModalitiesCompletedInRange(userID, from, to)
	if err != nil {
		return false, err
	}
	return len(modalities) >= len(model.AllModalities), nil
}

// List 用户的全部勋章，新获得的在前
func (s *BadgeService) List(userID uint) ([]model.UserBadge, error) {
	return s.BadgeRepo.ListByUser(userID)
}
