package service

import (
	"testing"
	"time"

	"lingua_learn_backend/internal/config"
	"lingua_learn_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xpServiceWithExpected(expected map[string]int) *XPService {
	rules := config.DefaultGamification()
	if expected != nil {
		rules.ExpectedDurationSec = expected
	}
	return NewXPService(nil, rules, time.UTC)
}

func TestCalculateSessionXP_Breakdown(t *testing.T) {
	// 满分、提前完成、1 天连击、当日首个会话
	svc := xpServiceWithExpected(map[string]int{"grammar": 120})

	b := svc.CalculateSessionXP(SessionXPInput{
		Modality:    model.Grammar,
		Accuracy:    1.0,
		DurationSec: 100,
		Streak:      1,
		FirstOfDay:  true,
	})

	assert.Equal(t, 20, b.Base)
	assert.Equal(t, 10, b.AccuracyBonus)
	assert.Equal(t, 25, b.PerfectBonus)
	// 节省 20/120，speed = floor(1/6 * 10) = 1
	assert.Equal(t, 1, b.SpeedBonus)
	assert.Equal(t, 2, b.StreakBonus)
	assert.Equal(t, 15, b.FirstOfDayBonus)
	assert.Equal(t, 0, b.PerfectDayBonus)
	assert.Equal(t, 73, b.Total)
}

func TestCalculateSessionXP_NoBonuses(t *testing.T) {
	svc := xpServiceWithExpected(nil)

	b := svc.CalculateSessionXP(SessionXPInput{
		Modality:    model.Reading,
		Accuracy:    0.5,
		DurationSec: 700, // 超过基准 600s，无速度奖励
		Streak:      0,
	})

	assert.Equal(t, 20, b.Total)
	assert.Equal(t, 20, b.Base)
	assert.Zero(t, b.AccuracyBonus)
	assert.Zero(t, b.SpeedBonus)
	assert.Zero(t, b.StreakBonus)
}

func TestCalculateSessionXP_AccuracyThresholdBoundary(t *testing.T) {
	svc := xpServiceWithExpected(nil)

	atThreshold := svc.CalculateSessionXP(SessionXPInput{Modality: model.Reading, Accuracy: 0.80, DurationSec: 600})
	below := svc.CalculateSessionXP(SessionXPInput{Modality: model.Reading, Accuracy: 0.79, DurationSec: 600})

	assert.Equal(t, 10, atThreshold.AccuracyBonus)
	assert.Zero(t, atThreshold.PerfectBonus)
	assert.Zero(t, below.AccuracyBonus)
}

func TestCalculateSessionXP_StreakBonusCapped(t *testing.T) {
	svc := xpServiceWithExpected(nil)

	b := svc.CalculateSessionXP(SessionXPInput{Modality: model.Reading, Accuracy: 0.5, DurationSec: 600, Streak: 40})
	assert.Equal(t, 30, b.StreakBonus)
}

func TestCalculateSessionXP_SpeedBonusCapped(t *testing.T) {
	svc := xpServiceWithExpected(map[string]int{"reading": 600})

	// 极端提前也不超过上限
	b := svc.CalculateSessionXP(SessionXPInput{Modality: model.Reading, Accuracy: 0.5, DurationSec: 1})
	assert.LessOrEqual(t, b.SpeedBonus, 10)
	assert.Positive(t, b.SpeedBonus)
}

func TestCalculateSessionXP_PerfectDay(t *testing.T) {
	svc := xpServiceWithExpected(nil)

	b := svc.CalculateSessionXP(SessionXPInput{Modality: model.Grammar, Accuracy: 0.9, DurationSec: 420, PerfectDay: true})
	assert.Equal(t, 50, b.PerfectDayBonus)
}

func TestCalculateLevel_ZeroXP(t *testing.T) {
	svc := xpServiceWithExpected(nil)

	info := svc.CalculateLevel(0)
	assert.Equal(t, 1, info.Level)
	assert.Equal(t, "Beginner", info.Name)
	assert.Equal(t, 0, info.CurrentLevelXP)
	assert.Equal(t, 150, info.NextLevelXP) // floor(100*1.5^1)
	assert.Equal(t, 0, info.ProgressPct)
}

func TestCalculateLevel_Thresholds(t *testing.T) {
	svc := xpServiceWithExpected(nil)

	// 等级门槛单调递增
	prev := 0
	for n := 2; n <= 40; n++ {
		cur := svc.xpRequiredForLevel(n)
		require.Greater(t, cur, prev, "level %d", n)
		prev = cur
	}

	// 总经验值落在 [floor, ceil) 区间内
	for _, xp := range []int{0, 149, 150, 151, 1000, 50000} {
		info := svc.CalculateLevel(xp)
		assert.LessOrEqual(t, info.CurrentLevelXP, xp)
		assert.Greater(t, info.NextLevelXP, xp)
		assert.GreaterOrEqual(t, info.ProgressPct, 0)
		assert.LessOrEqual(t, info.ProgressPct, 100)
	}
}

func TestCalculateLevel_Names(t *testing.T) {
	cases := map[int]string{
		1: "Beginner", 5: "Beginner",
		6: "Intermediate", 10: "Intermediate",
		11: "Advanced", 20: "Advanced",
		21: "Expert", 35: "Expert",
		36: "Master", 50: "Master",
	}
	for level, want := range cases {
		assert.Equal(t, want, levelName(level), "level %d", level)
	}
}

func TestCalculateLevel_MonotonicInXP(t *testing.T) {
	svc := xpServiceWithExpected(nil)

	prevLevel := 0
	for xp := 0; xp <= 20000; xp += 97 {
		info := svc.CalculateLevel(xp)
		require.GreaterOrEqual(t, info.Level, prevLevel, "xp %d", xp)
		prevLevel = info.Level
	}
}

func TestAwardAndDailyXP(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)
	now := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

	require.NoError(t, env.xp.Award(user.ID, 60, "reading_session", now))
	require.NoError(t, env.xp.Award(user.ID, 50, "badge_streak_3", now))
	// 昨天的不计入今天
	require.NoError(t, env.xp.Award(user.ID, 30, "reading_session", now.AddDate(0, 0, -1)))

	total, today, err := env.xp.UserXP(user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 140, total)
	assert.Equal(t, 110, today)

	daily, err := env.xp.DailyXP(user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 110, daily.EarnedXP)
	assert.True(t, daily.GoalMet)
	assert.Zero(t, daily.Remaining)
	assert.Equal(t, 100, daily.Pct)
}

func TestAward_IgnoresNonPositive(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)

	require.NoError(t, env.xp.Award(user.ID, 0, "reading_session", time.Now()))
	total, err := env.xpRepo.TotalByUser(user.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}
