package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/repository"
	"lingua_learn_backend/internal/util"
	"lingua_learn_backend/pkg/logger"
	"lingua_learn_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// 提交的分数与按作答重算的分数允许的最大偏差（百分点）
const scoreTolerancePct = 1

type SessionService struct {
	SessionRepo   *repository.SessionRepository
	AnswerRepo    *repository.AnswerRepository
	AnalyticsRepo *repository.AnalyticsRepository
	XPService     *XPService
	StreakService *StreakService
	BadgeService  *BadgeService
	SkillService  *SkillMasteryService
	Dashboard     *DashboardService
	Loc           *time.Location
}

func NewSessionService(
	sessionRepo *repository.SessionRepository,
	answerRepo *repository.AnswerRepository,
	analyticsRepo *repository.AnalyticsRepository,
	xpService *XPService,
	streakService *StreakService,
	badgeService *BadgeService,
	skillService *SkillMasteryService,
	dashboard *DashboardService,
	loc *time.Location,
) *SessionService {
	return &SessionService{
		SessionRepo:   sessionRepo,
		AnswerRepo:    answerRepo,
		AnalyticsRepo: analyticsRepo,
		XPService:     xpService,
		StreakService: streakService,
		BadgeService:  badgeService,
		SkillService:  skillService,
		Dashboard:     dashboard,
		Loc:           loc,
	}
}

// Start 创建一次新会话，提交前处于进行中状态
func (s *SessionService) Start(userID uint, modality model.Modality, dayCode string) (*model.Session, error) {
	if !modality.Valid() {
		return nil, util.ErrInvalidModality
	}
	session := &model.Session{
		UserID:    userID,
		Modality:  modality,
		DayCode:   dayCode,
		StartedAt: time.Now().In(s.Loc),
	}
	if err := s.SessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) Get(userID uint, sessionID string) (*model.Session, error) {
	session, err := s.SessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		// 不暴露他人会话的存在
		return nil, util.ErrSessionNotFound
	}
	return session, nil
}

type SessionDetail struct {
	Session *model.Session `json:"session"`
	Answers []model.Answer `json:"answers"`
}

// Detail 会话及其作答明细，未提交的会话作答为空
func (s *SessionService) Detail(userID uint, sessionID string) (*SessionDetail, error) {
	session, err := s.Get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	answers, err := s.AnswerRepo.FindBySession(sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionDetail{Session: session, Answers: answers}, nil
}

func (s *SessionService) List(userID uint, limit, offset int) ([]model.Session, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.SessionRepo.ListByUser(userID, limit, offset)
}

type AnswerSubmission struct {
	ItemID        string `json:"itemId" binding:"required"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	TimeSpentSec  int    `json:"timeSpentSec"`
	Skill         string `json:"skill"`
	Topic         string `json:"topic"`
}

type SubmitSessionRequest struct {
	Answers     []AnswerSubmission `json:"answers" binding:"required,min=1,dive"`
	DurationSec int                `json:"durationSec" binding:"required,min=1"`
	ScorePct    int                `json:"scorePct" binding:"min=0,max=100"`
}

type StreakInfo struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
}

type SubmitResult struct {
	Session          *model.Session       `json:"session"`
	Accuracy         float64              `json:"accuracy"`
	XP               XPBreakdown          `json:"xp"`
	Streak           StreakInfo           `json:"streak"`
	Badges           []BadgeAwarded       `json:"badges"`
	Skills           []model.SessionSkill `json:"skills"`
	AlreadyCompleted bool                 `json:"alreadyCompleted,omitempty"`
	Warnings         []string             `json:"-"`
}

// Submit 完成一次会话并驱动整条进度流水线。
// 会话标记完成与作答落库失败即失败；其后各步失败只降级，
// 告警后继续，保证核心成绩不因聚合层故障丢失。
func (s *SessionService) Submit(ctx context.Context, userID uint, sessionID string, req SubmitSessionRequest) (*SubmitResult, error) {
	session, err := s.Get(userID, sessionID)
	if err != nil {
		return nil, err
	}

	// 已是终态则只读返回，不重跑流水线
	if session.Completed() {
		skills, err := s.SkillService.SkillRepo.SessionSkills(sessionID)
		if err != nil {
			return nil, err
		}
		streakInfo, err := s.currentStreak(userID)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{
			Session:          session,
			Accuracy:         float64(session.ScorePct) / 100,
			XP:               XPBreakdown{Total: session.XPEarned},
			Streak:           streakInfo,
			Skills:           skills,
			AlreadyCompleted: true,
		}, nil
	}

	total := len(req.Answers)
	correct := 0
	for _, a := range req.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	accuracy := float64(correct) / float64(total)

	// 分数必须与作答重算结果一致，偏差超限整单拒绝，不落任何数据
	recomputed := int(math.Round(accuracy * 100))
	if diff := recomputed - req.ScorePct; diff > scoreTolerancePct || diff < -scoreTolerancePct {
		return nil, fmt.Errorf("%w: submitted %d%%, recomputed %d%%",
			util.ErrScoreMismatch, req.ScorePct, recomputed)
	}

	now := time.Now().In(s.Loc)
	dayStart, dayEnd := util.DayRange(now, s.Loc)

	// 提交前快照当天状态，用于首会话与全模态判定
	completedToday, err := s.SessionRepo.CountCompletedInRange(userID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	modalitiesToday, err := s.SessionRepo.ModalitiesCompletedInRange(userID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	firstOfDay := completedToday == 0
	wasPerfect := len(modalitiesToday) >= len(model.AllModalities)
	modalitiesToday[session.Modality] = true
	becamePerfect := !wasPerfect && len(modalitiesToday) >= len(model.AllModalities)

	if err := s.SessionRepo.MarkCompleted(sessionID, now, req.DurationSec, req.ScorePct); err != nil {
		return nil, err
	}
	session.CompletedAt = &now
	session.DurationSec = req.DurationSec
	session.ScorePct = req.ScorePct

	answers := make([]model.Answer, 0, total)
	for _, a := range req.Answers {
		answers = append(answers, model.Answer{
			SessionID:     sessionID,
			ItemID:        a.ItemID,
			UserAnswer:    a.UserAnswer,
			CorrectAnswer: a.CorrectAnswer,
			IsCorrect:     a.IsCorrect,
			TimeSpentSec:  a.TimeSpentSec,
			Skill:         a.Skill,
			Topic:         a.Topic,
		})
	}
	if err := s.AnswerRepo.InsertAll(answers); err != nil {
		return nil, &util.PipelineError{Step: "answers", Err: err}
	}

	result := &SubmitResult{Session: session, Accuracy: accuracy}
	degrade := func(step string, err error) {
		monitoring.PipelineStepFailures.WithLabelValues(step).Inc()
		logger.Log.Warn("pipeline step degraded",
			zap.String("step", step), zap.String("session_id", sessionID), zap.Error(err))
		result.Warnings = append(result.Warnings, step)
	}

	if err := s.AnalyticsRepo.Upsert(&model.SessionAnalytics{
		SessionID:    sessionID,
		UserID:       userID,
		Modality:     session.Modality,
		DayCode:      session.DayCode,
		TotalItems:   total,
		CorrectItems: correct,
		Accuracy:     math.Round(accuracy*10000) / 10000,
		DurationSec:  req.DurationSec,
		CompletedAt:  now,
	}); err != nil {
		degrade("analytics", err)
	}

	streakDays := 0
	streak, err := s.StreakService.Apply(userID, now)
	if err != nil {
		degrade("streak", err)
	} else if streak != nil {
		streakDays = streak.CurrentStreak
		result.Streak = StreakInfo{
			CurrentStreak: streak.CurrentStreak,
			LongestStreak: streak.LongestStreak,
		}
	}

	breakdown := s.XPService.CalculateSessionXP(SessionXPInput{
		Modality:    session.Modality,
		Accuracy:    accuracy,
		DurationSec: req.DurationSec,
		Streak:      streakDays,
		FirstOfDay:  firstOfDay,
		PerfectDay:  becamePerfect,
	})
	result.XP = breakdown
	if err := s.XPService.Award(userID, breakdown.Total, string(session.Modality)+"_session", now); err != nil {
		degrade("xp", err)
	} else {
		if err := s.SessionRepo.UpdateXPEarned(sessionID, breakdown.Total); err != nil {
			degrade("xp", err)
		} else {
			session.XPEarned = breakdown.Total
		}
	}

	badges, err := s.BadgeService.EvaluateAfterSubmit(userID, streakDays, accuracy, now)
	if err != nil {
		degrade("badges", err)
	} else {
		result.Badges = badges
	}

	skills, err := s.SkillService.RecordSessionSkills(sessionID, answers)
	if err != nil {
		degrade("skills", err)
	} else {
		result.Skills = skills
		if err := s.SkillService.RecomputeMastery(userID, session.Modality, now); err != nil {
			degrade("mastery", err)
		}
	}

	s.Dashboard.InvalidateCache(ctx, userID)
	monitoring.SessionsSubmitted.WithLabelValues(string(session.Modality)).Inc()

	logger.Log.Info("session submitted",
		zap.String("session_id", sessionID),
		zap.Uint("user_id", userID),
		zap.String("modality", string(session.Modality)),
		zap.Int("score_pct", req.ScorePct),
		zap.Int("xp", breakdown.Total),
		zap.Int("streak", streakDays))

	return result, nil
}

func (s *SessionService) currentStreak(userID uint) (StreakInfo, error) {
	streak, err := s.StreakService.StreakRepo.FindByUser(userID)
	if err != nil {
		return StreakInfo{}, err
	}
	if streak == nil {
		return StreakInfo{}, nil
	}
	return StreakInfo{CurrentStreak: streak.CurrentStreak, LongestStreak: streak.LongestStreak}, nil
}
