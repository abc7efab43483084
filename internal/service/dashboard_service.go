package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"lingua_learn_backend/internal/config"
	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/repository"
	"lingua_learn_backend/internal/util"
	"lingua_learn_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 聚合读多写少，摘要短缓存即可，提交时主动失效
const summaryCacheTTL = 60 * time.Second

type DashboardService struct {
	AnalyticsRepo *repository.AnalyticsRepository
	SessionRepo   *repository.SessionRepository
	AnswerRepo    *repository.AnswerRepository
	XPRepo        *repository.XPRepository
	StreakRepo    *repository.StreakRepository
	BadgeRepo     *repository.BadgeRepository
	XPService     *XPService
	Rules         config.GamificationConfig
	Redis         *redis.Client
	Loc           *time.Location
}

func NewDashboardService(
	analyticsRepo *repository.AnalyticsRepository,
	sessionRepo *repository.SessionRepository,
	answerRepo *repository.AnswerRepository,
	xpRepo *repository.XPRepository,
	streakRepo *repository.StreakRepository,
	badgeRepo *repository.BadgeRepository,
	xpService *XPService,
	rules config.GamificationConfig,
	rdb *redis.Client,
	loc *time.Location,
) *DashboardService {
	return &DashboardService{
		AnalyticsRepo: analyticsRepo,
		SessionRepo:   sessionRepo,
		AnswerRepo:    answerRepo,
		XPRepo:        xpRepo,
		StreakRepo:    streakRepo,
		BadgeRepo:     badgeRepo,
		XPService:     xpService,
		Rules:         rules,
		Redis:         rdb,
		Loc:           loc,
	}
}

type DailyMinutes struct {
	Date         string `json:"date"`
	ListeningMin int    `json:"listeningMin"`
	ReadingMin   int    `json:"readingMin"`
	GrammarMin   int    `json:"grammarMin"`
}

type AccuracyPoint struct {
	Date     string  `json:"date"`
	Accuracy float64 `json:"accuracy"`
}

type HeatmapDay struct {
	Date string `json:"date"`
	L    bool   `json:"L"`
	R    bool   `json:"R"`
	G    bool   `json:"G"`
}

type RecentResult struct {
	SessionID   string         `json:"sessionId"`
	DayCode     string         `json:"dayCode"`
	Modality    model.Modality `json:"modality"`
	ScorePct    int            `json:"scorePct"`
	DurationSec int            `json:"durationSec"`
	CompletedAt time.Time      `json:"completedAt"`
}

type NextReward struct {
	Type    string `json:"type"` // "xp" 或 "streak"
	Target  int    `json:"target"`
	Current int    `json:"current"`
}

type DailyTarget struct {
	Target    int `json:"target"`
	Completed int `json:"completed"`
}

type DashboardSummary struct {
	AsOf              time.Time                  `json:"asOf"`
	StreakDays        int                        `json:"streakDays"`
	XP                LevelInfo                  `json:"xp"`
	DailyTarget       DailyTarget                `json:"dailyTarget"`
	LastActivity      *time.Time                 `json:"lastActivity,omitempty"`
	WeeklyMinutes     []DailyMinutes             `json:"weeklyMinutes"`
	AccuracyTrend     map[string][]AccuracyPoint `json:"accuracyTrend"`
	CompletionHeatmap []HeatmapDay               `json:"completionHeatmap"`
	RecentResults     []RecentResult             `json:"recentResults"`
	Badges            []model.UserBadge          `json:"badges"`
	NextReward        NextReward                 `json:"nextReward"`
}

func summaryCacheKey(userID uint, window string) string {
	return fmt.Sprintf("lingua:dashboard:summary:%d:%s", userID, window)
}

// parseWindow "7d" -> 7，非法输入回退默认值
func parseWindow(window string) int {
	days, err := strconv.Atoi(strings.TrimSuffix(window, "d"))
	if err != nil || days <= 0 || days > 90 {
		return 7
	}
	return days
}

// Summary 仪表盘摘要，窗口为 [今天-N, 今天]
func (s *DashboardService) Summary(ctx context.Context, userID uint, window string) (*DashboardSummary, error) {
	key := summaryCacheKey(userID, window)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var summary DashboardSummary
			if json.Unmarshal([]byte(cached), &summary) == nil {
				return &summary, nil
			}
		}
	}

	summary, err := s.buildSummary(userID, parseWindow(window))
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.Redis.Set(ctx, key, payload, summaryCacheTTL).Err(); err != nil {
				logger.Log.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return summary, nil
}

// InvalidateCache 提交会话后清除该用户的摘要缓存
func (s *DashboardService) InvalidateCache(ctx context.Context, userID uint) {
	if s.Redis == nil {
		return
	}
	pattern := fmt.Sprintf("lingua:dashboard:summary:%d:*", userID)
	keys, err := s.Redis.Keys(ctx, pattern).Result()
	if err != nil {
		logger.Log.Warn("dashboard cache scan failed", zap.Error(err))
		return
	}
	if len(keys) > 0 {
		if err := s.Redis.Del(ctx, keys...).Err(); err != nil {
			logger.Log.Warn("dashboard cache invalidate failed", zap.Error(err))
		}
	}
}

func (s *DashboardService) buildSummary(userID uint, days int) (*DashboardSummary, error) {
	now := time.Now().In(s.Loc)
	today := util.DateOf(now, s.Loc)
	start := today.AddDate(0, 0, -days)

	streak, err := s.StreakRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	streakDays := 0
	if streak != nil {
		streakDays = streak.CurrentStreak
	}

	xpInfo, err := s.XPService.UserLevel(userID)
	if err != nil {
		return nil, err
	}

	todayStart, todayEnd := util.DayRange(now, s.Loc)
	todayModalities, err := s.SessionRepo.ModalitiesCompletedInRange(userID, todayStart, todayEnd)
	if err != nil {
		return nil, err
	}

	records, err := s.AnalyticsRepo.FindByUserSince(userID, start)
	if err != nil {
		return nil, err
	}

	recent, err := s.SessionRepo.RecentCompleted(userID, 10)
	if err != nil {
		return nil, err
	}
	recentResults := make([]RecentResult, 0, len(recent))
	for _, sess := range recent {
		recentResults = append(recentResults, RecentResult{
			SessionID:   sess.ID,
			DayCode:     sess.DayCode,
			Modality:    sess.Modality,
			ScorePct:    sess.ScorePct,
			DurationSec: sess.DurationSec,
			CompletedAt: *sess.CompletedAt,
		})
	}

	badges, err := s.BadgeRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	lastActivity, err := s.SessionRepo.LastCompletedAt(userID)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		AsOf:              now,
		StreakDays:        streakDays,
		XP:                xpInfo,
		DailyTarget:       DailyTarget{Target: len(model.AllModalities), Completed: len(todayModalities)},
		LastActivity:      lastActivity,
		WeeklyMinutes:     s.weeklyMinutes(records, start, today),
		AccuracyTrend:     s.accuracyTrend(records),
		CompletionHeatmap: s.heatmap(records, start, today),
		RecentResults:     recentResults,
		Badges:            badges,
		NextReward:        s.nextReward(xpInfo.TotalXP, streakDays),
	}, nil
}

// weeklyMinutes 窗口内逐日逐模态的练习分钟数，空日补零
func (s *DashboardService) weeklyMinutes(records []model.SessionAnalytics, start, today time.Time) []DailyMinutes {
	byDay := make(map[string]*DailyMinutes)
	for _, rec := range records {
		key := util.DateOf(rec.CompletedAt, s.Loc).Format("2006-01-02")
		day, ok := byDay[key]
		if !ok {
			day = &DailyMinutes{Date: key}
			byDay[key] = day
		}
		minutes := rec.DurationSec / 60
		switch rec.Modality {
		case model.Listening:
			day.ListeningMin += minutes
		case model.Reading:
			day.ReadingMin += minutes
		case model.Grammar:
			day.GrammarMin += minutes
		}
	}

	var result []DailyMinutes
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		if day, ok := byDay[key]; ok {
			result = append(result, *day)
		} else {
			result = append(result, DailyMinutes{Date: key})
		}
	}
	return result
}

// accuracyTrend 逐模态的日均正确率，只含有会话的日期
func (s *DashboardService) accuracyTrend(records []model.SessionAnalytics) map[string][]AccuracyPoint {
	type agg struct {
		sum   float64
		count int
	}
	byModality := make(map[model.Modality]map[string]*agg)
	for _, m := range model.AllModalities {
		byModality[m] = make(map[string]*agg)
	}
	for _, rec := range records {
		days, ok := byModality[rec.Modality]
		if !ok {
			continue
		}
		key := util.DateOf(rec.CompletedAt, s.Loc).Format("2006-01-02")
		a, ok := days[key]
		if !ok {
			a = &agg{}
			days[key] = a
		}
		a.sum += rec.Accuracy
		a.count++
	}

	result := make(map[string][]AccuracyPoint, len(model.AllModalities))
	for _, m := range model.AllModalities {
		points := make([]AccuracyPoint, 0, len(byModality[m]))
		for key, a := range byModality[m] {
			points = append(points, AccuracyPoint{Date: key, Accuracy: a.sum / float64(a.count)})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
		result[string(m)] = points
	}
	return result
}

// heatmap 窗口内逐日的模态完成布尔矩阵，空日补零
func (s *DashboardService) heatmap(records []model.SessionAnalytics, start, today time.Time) []HeatmapDay {
	done := make(map[string]map[model.Modality]bool)
	for _, rec := range records {
		key := util.DateOf(rec.CompletedAt, s.Loc).Format("2006-01-02")
		if done[key] == nil {
			done[key] = make(map[model.Modality]bool)
		}
		done[key][rec.Modality] = true
	}

	var result []HeatmapDay
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		result = append(result, HeatmapDay{
			Date: key,
			L:    done[key][model.Listening],
			R:    done[key][model.Reading],
			G:    done[key][model.Grammar],
		})
	}
	return result
}

// nextReward 下一个奖励目标。临近的连击里程碑优先于经验值里程碑。
func (s *DashboardService) nextReward(totalXP, streak int) NextReward {
	ms := s.Rules.Milestone

	nextXP := ms.XP[len(ms.XP)-1]
	for _, m := range ms.XP {
		if m > totalXP {
			nextXP = m
			break
		}
	}

	for _, m := range ms.Streak {
		if m > streak {
			if m-streak < ms.StreakPreferWithin {
				return NextReward{Type: "streak", Target: m, Current: streak}
			}
			break
		}
	}
	return NextReward{Type: "xp", Target: nextXP, Current: totalXP}
}

type TopicStat struct {
	Topic    string  `json:"topic"`
	Accuracy float64 `json:"accuracy"`
	Attempts int     `json:"attempts"`
}

type LastSession struct {
	DayCode     string    `json:"dayCode"`
	ScorePct    int       `json:"scorePct"`
	DurationSec int       `json:"durationSec"`
	CompletedAt time.Time `json:"completedAt"`
}

type ModalityDetail struct {
	Modality         model.Modality  `json:"modality"`
	AccuracyByDay    []AccuracyPoint `json:"accuracyByDay"`
	MinutesByDay     []DailyMinutes  `json:"minutesByDay"`
	TopicBreakdown   []TopicStat     `json:"topicBreakdown"`
	BestDay          string          `json:"bestDay,omitempty"`
	BestAccuracy     float64         `json:"bestAccuracy"`
	TotalTimeMinutes int             `json:"totalTimeMinutes"`
	TotalQuestions   int             `json:"totalQuestions"`
	LastSession      *LastSession    `json:"lastSession,omitempty"`
}

// Detail 单模态的全量历史视图
func (s *DashboardService) Detail(userID uint, modality model.Modality) (*ModalityDetail, error) {
	records, err := s.AnalyticsRepo.FindByUserAndModality(userID, modality)
	if err != nil {
		return nil, err
	}

	detail := &ModalityDetail{
		Modality:       modality,
		AccuracyByDay:  []AccuracyPoint{},
		MinutesByDay:   []DailyMinutes{},
		TopicBreakdown: []TopicStat{},
	}
	if len(records) == 0 {
		return detail, nil
	}

	type dayAgg struct {
		accuracySum float64
		count       int
		durationSec int
	}
	byDay := make(map[string]*dayAgg)
	totalSec, totalQuestions := 0, 0
	sessionIDs := make([]string, 0, len(records))
	for _, rec := range records {
		key := util.DateOf(rec.CompletedAt, s.Loc).Format("2006-01-02")
		a, ok := byDay[key]
		if !ok {
			a = &dayAgg{}
			byDay[key] = a
		}
		a.accuracySum += rec.Accuracy
		a.count++
		a.durationSec += rec.DurationSec
		totalSec += rec.DurationSec
		totalQuestions += rec.TotalItems
		sessionIDs = append(sessionIDs, rec.SessionID)
	}

	days := make([]string, 0, len(byDay))
	for key := range byDay {
		days = append(days, key)
	}
	sort.Strings(days)

	// 最佳日取平均正确率最高者，并列时日期早者胜
	bestAccuracy := -1.0
	for _, key := range days {
		a := byDay[key]
		mean := a.accuracySum / float64(a.count)
		detail.AccuracyByDay = append(detail.AccuracyByDay, AccuracyPoint{Date: key, Accuracy: mean})
		dm := DailyMinutes{Date: key}
		minutes := a.durationSec / 60
		switch modality {
		case model.Listening:
			dm.ListeningMin = minutes
		case model.Reading:
			dm.ReadingMin = minutes
		case model.Grammar:
			dm.GrammarMin = minutes
		}
		detail.MinutesByDay = append(detail.MinutesByDay, dm)
		if mean > bestAccuracy {
			bestAccuracy = mean
			detail.BestDay = key
		}
	}
	detail.BestAccuracy = math.Round(bestAccuracy*10000) / 10000
	detail.TotalTimeMinutes = totalSec / 60
	detail.TotalQuestions = totalQuestions

	answers, err := s.AnswerRepo.TopicTaggedBySessions(sessionIDs)
	if err != nil {
		return nil, err
	}
	type topicAgg struct{ correct, total int }
	topics := make(map[string]*topicAgg)
	for _, a := range answers {
		t, ok := topics[a.Topic]
		if !ok {
			t = &topicAgg{}
			topics[a.Topic] = t
		}
		t.total++
		if a.IsCorrect {
			t.correct++
		}
	}
	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := topics[name]
		detail.TopicBreakdown = append(detail.TopicBreakdown, TopicStat{
			Topic:    name,
			Accuracy: float64(t.correct) / float64(t.total),
			Attempts: t.total,
		})
	}

	last := records[len(records)-1]
	detail.LastSession = &LastSession{
		DayCode:     last.DayCode,
		ScorePct:    int(math.Round(last.Accuracy * 100)),
		DurationSec: last.DurationSec,
		CompletedAt: last.CompletedAt,
	}
	return detail, nil
}

type DailyGoal struct {
	GoalType    string `json:"goalType"`
	Target      int    `json:"target"`
	Current     int    `json:"current"`
	IsCompleted bool   `json:"isCompleted"`
}

type DailyProgress struct {
	Date                string      `json:"date"`
	XPEarned            int         `json:"xpEarned"`
	XPGoal              int         `json:"xpGoal"`
	SessionsCompleted   int         `json:"sessionsCompleted"`
	SessionGoal         int         `json:"sessionGoal"`
	TimeSpentMinutes    int         `json:"timeSpentMinutes"`
	ModalitiesCompleted []string    `json:"modalitiesCompleted"`
	Goals               []DailyGoal `json:"goals"`
	IsPerfectDay        bool        `json:"isPerfectDay"`
}

// Progress 今日目标完成度
func (s *DashboardService) Progress(userID uint, now time.Time) (*DailyProgress, error) {
	from, to := util.DayRange(now, s.Loc)

	sessions, err := s.SessionRepo.CompletedInRange(userID, from, to)
	if err != nil {
		return nil, err
	}
	xpToday, err := s.XPRepo.SumInRange(userID, from, to)
	if err != nil {
		return nil, err
	}

	seen := make(map[model.Modality]bool)
	timeSec := 0
	for _, sess := range sessions {
		seen[sess.Modality] = true
		timeSec += sess.DurationSec
	}
	modalities := make([]string, 0, len(seen))
	for _, m := range model.AllModalities {
		if seen[m] {
			modalities = append(modalities, string(m))
		}
	}
	perfect := len(seen) == len(model.AllModalities)

	xpGoal := s.Rules.XP.DailyXPGoal
	sessionGoal := s.Rules.XP.DailySessionGoal

	perfectCurrent := 0
	if perfect {
		perfectCurrent = 1
	}
	return &DailyProgress{
		Date:                from.Format("2006-01-02"),
		XPEarned:            xpToday,
		XPGoal:              xpGoal,
		SessionsCompleted:   len(sessions),
		SessionGoal:         sessionGoal,
		TimeSpentMinutes:    timeSec / 60,
		ModalitiesCompleted: modalities,
		Goals: []DailyGoal{
			{GoalType: "xp", Target: xpGoal, Current: xpToday, IsCompleted: xpToday >= xpGoal},
			{GoalType: "sessions", Target: sessionGoal, Current: len(sessions), IsCompleted: len(sessions) >= sessionGoal},
			{GoalType: "perfect_day", Target: 1, Current: perfectCurrent, IsCompleted: perfect},
		},
		IsPerfectDay: perfect,
	}, nil
}
