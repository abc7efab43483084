package service

import (
	"time"

	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/repository"
	"lingua_learn_backend/internal/util"
	"lingua_learn_backend/pkg/logger"

	"go.uber.org/zap"
)

type StreakService struct {
	StreakRepo  *repository.StreakRepository
	SessionRepo *repository.SessionRepository
	XPRepo      *repository.XPRepository
	Loc         *time.Location
}

func NewStreakService(
	streakRepo *repository.StreakRepository,
	sessionRepo *repository.SessionRepository,
	xpRepo *repository.XPRepository,
	loc *time.Location,
) *StreakService {
	return &StreakService{
		StreakRepo:  streakRepo,
		SessionRepo: sessionRepo,
		XPRepo:      xpRepo,
		Loc:         loc,
	}
}

// streakTransition 纯转移函数：(旧状态, 完成日期) -> 新状态。
// changed 为 false 表示同日重复或乱序事件，不应落库。
func streakTransition(prev *model.Streak, day time.Time) (current, longest int, changed bool) {
	if prev == nil {
		return 1, 1, true
	}
	gap := util.DaysBetween(prev.LastActiveDate, day)
	switch {
	case gap <= 0:
		// 同日重复或时钟回拨，幂等忽略
		return prev.CurrentStreak, prev.LongestStreak, false
	case gap == 1:
		current = prev.CurrentStreak + 1
	default:
		current = 1
	}
	longest = prev.LongestStreak
	if current > longest {
		longest = current
	}
	return current, longest, true
}

// Apply 把一次会话完成记入连击。并发提交时靠 last_active_date 的
// 条件更新判定胜负，输掉的一方重读后重试一次。
func (s *StreakService) Apply(userID uint, completedAt time.Time) (*model.Streak, error) {
	day := util.DateOf(completedAt, s.Loc)

	for attempt := 0; attempt < 2; attempt++ {
		prev, err := s.StreakRepo.FindByUser(userID)
		if err != nil {
			return nil, err
		}

		if prev == nil {
			streak := &model.Streak{
				UserID:         userID,
				CurrentStreak:  1,
				LongestStreak:  1,
				LastActiveDate: day,
			}
			if err := s.StreakRepo.Create(streak); err != nil {
				// 并发首次创建撞唯一索引，重读重试
				logger.Log.Warn("streak create raced, retrying",
					zap.Uint("user_id", userID), zap.Error(err))
				continue
			}
			return streak, nil
		}

		current, longest, changed := streakTransition(prev, day)
		if !changed {
			return prev, nil
		}

		swapped, err := s.StreakRepo.CompareAndSwap(userID, prev.LastActiveDate, current, longest, day)
		if err != nil {
			return nil, err
		}
		if swapped {
			prev.CurrentStreak = current
			prev.LongestStreak = longest
			prev.LastActiveDate = day
			return prev, nil
		}
		logger.Log.Warn("streak swap lost race, retrying", zap.Uint("user_id", userID))
	}

	// 两次都输说明同一天的并发提交已推进过，按幂等读返回
	streak, err := s.StreakRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	return streak, nil
}

type StreakResponse struct {
	CurrentStreak  int                `json:"currentStreak"`
	LongestStreak  int                `json:"longestStreak"`
	LastActiveDate string             `json:"lastActiveDate,omitempty"`
	Status         model.StreakStatus `json:"status"`
}

// Status 读接口：今天活跃为 active，昨天为 at_risk，其余 broken
func (s *StreakService) Status(userID uint, now time.Time) (StreakResponse, error) {
	streak, err := s.StreakRepo.FindByUser(userID)
	if err != nil {
		return StreakResponse{}, err
	}
	if streak == nil {
		return StreakResponse{Status: model.StreakBroken}, nil
	}

	today := util.DateOf(now, s.Loc)
	gap := util.DaysBetween(streak.LastActiveDate, today)

	resp := StreakResponse{
		CurrentStreak:  streak.CurrentStreak,
		LongestStreak:  streak.LongestStreak,
		LastActiveDate: streak.LastActiveDate.Format("2006-01-02"),
	}
	switch {
	case gap <= 0:
		resp.Status = model.StreakActive
	case gap == 1:
		resp.Status = model.StreakAtRisk
	default:
		resp.Status = model.StreakBroken
		resp.CurrentStreak = 0
	}
	return resp, nil
}

type CalendarDay struct {
	Date       string   `json:"date"`
	Sessions   int      `json:"sessions"`
	Modalities []string `json:"modalities"`
	XPEarned   int      `json:"xpEarned"`
	PerfectDay bool     `json:"perfectDay"`
}

type StreakCalendarResponse struct {
	Year          int           `json:"year"`
	Month         int           `json:"month"`
	Days          []CalendarDay `json:"days"`
	CurrentStreak int           `json:"currentStreak"`
	LongestStreak int           `json:"longestStreak"`
}

// Calendar 某月逐日的活跃网格，空日也占位
func (s *StreakService) Calendar(userID uint, year int, month time.Month) (StreakCalendarResponse, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, s.Loc)
	to := from.AddDate(0, 1, 0)

	sessions, err := s.SessionRepo.CompletedInRange(userID, from, to)
	if err != nil {
		return StreakCalendarResponse{}, err
	}
	entries, err := s.XPRepo.EntriesInRange(userID, from, to)
	if err != nil {
		return StreakCalendarResponse{}, err
	}

	type dayAgg struct {
		sessions   int
		modalities map[model.Modality]bool
		xp         int
	}
	byDay := make(map[string]*dayAgg)
	agg := func(key string) *dayAgg {
		if a, ok := byDay[key]; ok {
			return a
		}
		a := &dayAgg{modalities: make(map[model.Modality]bool)}
		byDay[key] = a
		return a
	}
	for _, sess := range sessions {
		key := util.DateOf(*sess.CompletedAt, s.Loc).Format("2006-01-02")
		a := agg(key)
		a.sessions++
		a.modalities[sess.Modality] = true
	}
	for _, e := range entries {
		agg(util.DateOf(e.OccurredAt, s.Loc).Format("2006-01-02")).xp += e.Amount
	}

	resp := StreakCalendarResponse{Year: year, Month: int(month)}
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		day := CalendarDay{Date: key, Modalities: []string{}}
		if a, ok := byDay[key]; ok {
			day.Sessions = a.sessions
			day.XPEarned = a.xp
			for _, m := range model.AllModalities {
				if a.modalities[m] {
					day.Modalities = append(day.Modalities, string(m))
				}
			}
			day.PerfectDay = len(a.modalities) == len(model.AllModalities)
		}
		resp.Days = append(resp.Days, day)
	}

	streak, err := s.StreakRepo.FindByUser(userID)
	if err != nil {
		return StreakCalendarResponse{}, err
	}
	if streak != nil {
		resp.CurrentStreak = streak.CurrentStreak
		resp.LongestStreak = streak.LongestStreak
	}
	return resp, nil
}
