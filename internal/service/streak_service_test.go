package service

import (
	"testing"
	"time"

	"lingua_learn_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestStreakApply_FirstCompletion(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)

	streak, err := env.streak.Apply(user.ID, day(2024, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, 1, streak.LongestStreak)
}

func TestStreakApply_SameDayIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)

	_, err := env.streak.Apply(user.ID, day(2024, 1, 5))
	require.NoError(t, err)

	// 同一天晚些时候的第二次提交不改变连击
	streak, err := env.streak.Apply(user.ID, day(2024, 1, 5).Add(8*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, 1, streak.LongestStreak)
}

func TestStreakApply_ConsecutiveDays(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)

	for i := 0; i < 5; i++ {
		_, err := env.streak.Apply(user.ID, day(2024, 1, 5+i))
		require.NoError(t, err)
	}

	streak, err := env.streakRepo.FindByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, streak.CurrentStreak)
	assert.Equal(t, 5, streak.LongestStreak)
}

func TestStreakApply_GapResets(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)

	_, err := env.streak.Apply(user.ID, day(2024, 1, 4))
	require.NoError(t, err)
	_, err = env.streak.Apply(user.ID, day(2024, 1, 5))
	require.NoError(t, err)

	// 1 月 6 日缺席，1 月 7 日重置为 1，最长保留
	streak, err := env.streak.Apply(user.ID, day(2024, 1, 7))
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, 2, streak.LongestStreak)
}

func TestStreakApply_OutOfOrderIgnored(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)

	_, err := env.streak.Apply(user.ID, day(2024, 1, 7))
	require.NoError(t, err)

	// 迟到的历史事件不回退状态
	streak, err := env.streak.Apply(user.ID, day(2024, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, "2024-01-07", streak.LastActiveDate.Format("2006-01-02"))
}

func TestStreakApply_LongestNeverDecreases(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)

	dates := []time.Time{
		day(2024, 1, 1), day(2024, 1, 2), day(2024, 1, 3), // 3 连
		day(2024, 1, 10),                  // 重置
		day(2024, 1, 11), day(2024, 1, 12), // 又 3 连
	}
	longest := 0
	for _, d := range dates {
		streak, err := env.streak.Apply(user.ID, d)
		require.NoError(t, err)
		require.GreaterOrEqual(t, streak.LongestStreak, longest)
		require.GreaterOrEqual(t, streak.LongestStreak, streak.CurrentStreak)
		longest = streak.LongestStreak
	}
	assert.Equal(t, 3, longest)
}

func TestStreakStatus(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)
	now := day(2024, 1, 10)

	// 无记录
	resp, err := env.streak.Status(user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, model.StreakBroken, resp.Status)
	assert.Zero(t, resp.CurrentStreak)

	// 今天活跃
	_, err = env.streak.Apply(user.ID, now)
	require.NoError(t, err)
	resp, err = env.streak.Status(user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, model.StreakActive, resp.Status)
	assert.Equal(t, 1, resp.CurrentStreak)

	// 第二天未活跃为 at_risk
	resp, err = env.streak.Status(user.ID, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, model.StreakAtRisk, resp.Status)
	assert.Equal(t, 1, resp.CurrentStreak)

	// 隔两天即断
	resp, err = env.streak.Status(user.ID, now.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, model.StreakBroken, resp.Status)
	assert.Zero(t, resp.CurrentStreak)
	assert.Equal(t, 1, resp.LongestStreak)
}

func TestStreakCalendar(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)

	// 1 月 5 日完成 reading + grammar + listening（完美一天），1 月 6 日只有 reading
	for _, m := range model.AllModalities {
		s := env.startSession(t, user.ID, m, "day1")
		completed := day(2024, 1, 5)
		require.NoError(t, env.sessions.SessionRepo.MarkCompleted(s.ID, completed, 300, 90))
	}
	s := env.startSession(t, user.ID, model.Reading, "day2")
	require.NoError(t, env.sessions.SessionRepo.MarkCompleted(s.ID, day(2024, 1, 6), 300, 80))

	require.NoError(t, env.xp.Award(user.ID, 73, "reading_session", day(2024, 1, 5)))

	cal, err := env.streak.Calendar(user.ID, 2024, time.January)
	require.NoError(t, err)
	assert.Len(t, cal.Days, 31)

	d5 := cal.Days[4]
	assert.Equal(t, "2024-01-05", d5.Date)
	assert.Equal(t, 3, d5.Sessions)
	assert.True(t, d5.PerfectDay)
	assert.Equal(t, 73, d5.XPEarned)
	assert.ElementsMatch(t, []string{"reading", "listening", "grammar"}, d5.Modalities)

	d6 := cal.Days[5]
	assert.Equal(t, 1, d6.Sessions)
	assert.False(t, d6.PerfectDay)

	// 空日占位
	assert.Zero(t, cal.Days[0].Sessions)
	assert.Empty(t, cal.Days[0].Modalities)
}
