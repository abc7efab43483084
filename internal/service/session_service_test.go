package service

import (
	"context"
	"fmt"
	"testing"

	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readingAnswers(correct, total int) []AnswerSubmission {
	answers := make([]AnswerSubmission, 0, total)
	for i := 0; i < total; i++ {
		answers = append(answers, AnswerSubmission{
			ItemID:        fmt.Sprintf("item-%d", i+1),
			UserAnswer:    "a",
			CorrectAnswer: "a",
			IsCorrect:     i < correct,
			TimeSpentSec:  30,
			Skill:         "inference",
			Topic:         "travel",
		})
	}
	return answers
}

func TestSubmit_FullPipeline(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)
	ctx := context.Background()

	s := env.startSession(t, user.ID, model.Reading, "day1")
	result, err := env.sessions.Submit(ctx, user.ID, s.ID, SubmitSessionRequest{
		Answers:     readingAnswers(4, 5),
		DurationSec: 600,
		ScorePct:    80,
	})
	require.NoError(t, err)
	require.Empty(t, result.Warnings)

	// 会话终态
	assert.True(t, result.Session.Completed())
	assert.Equal(t, 80, result.Session.ScorePct)
	assert.InDelta(t, 0.80, result.Accuracy, 0.001)

	// 经验值构成：20 基础 + 10 正确率 + 2 连击 + 15 当日首个
	assert.Equal(t, 20, result.XP.Base)
	assert.Equal(t, 10, result.XP.AccuracyBonus)
	assert.Zero(t, result.XP.SpeedBonus)
	assert.Equal(t, 2, result.XP.StreakBonus)
	assert.Equal(t, 15, result.XP.FirstOfDayBonus)
	assert.Equal(t, 47, result.XP.Total)
	assert.Equal(t, 47, result.Session.XPEarned)

	// 流水落库
	total, err := env.xpRepo.TotalByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 47, total)

	// 连击开启
	assert.Equal(t, 1, result.Streak.CurrentStreak)
	assert.Equal(t, 1, result.Streak.LongestStreak)

	// 技能明细
	require.Len(t, result.Skills, 1)
	assert.Equal(t, "inference", result.Skills[0].Skill)
	assert.Equal(t, 80, result.Skills[0].MasteryPct)

	// 累计掌握度
	progress, err := env.skill.ModalityProgress(user.ID, model.Reading)
	require.NoError(t, err)
	require.Len(t, progress.Skills, 1)
	assert.Equal(t, 80, progress.Skills[0].OverallMasteryPct)
}

func TestSubmit_ScoreMismatchRejected(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)
	ctx := context.Background()

	s := env.startSession(t, user.ID, model.Reading, "day1")
	_, err := env.sessions.Submit(ctx, user.ID, s.ID, SubmitSessionRequest{
		Answers:     readingAnswers(4, 5), // 重算 80
		DurationSec: 600,
		ScorePct:    70,
	})
	require.ErrorIs(t, err, util.ErrScoreMismatch)

	// 拒绝发生在任何写入之前
	reloaded, err := env.sessions.Get(user.ID, s.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Completed())
	total, err := env.xpRepo.TotalByUser(user.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSubmit_ScoreWithinTolerance(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)
	ctx := context.Background()

	// 重算 round(2/3*100)=67，±1 内的 66 接受
	s := env.startSession(t, user.ID, model.Reading, "day1")
	result, err := env.sessions.Submit(ctx, user.ID, s.ID, SubmitSessionRequest{
		Answers:     readingAnswers(2, 3),
		DurationSec: 600,
		ScorePct:    66,
	})
	require.NoError(t, err)
	assert.True(t, result.Session.Completed())
}

func TestSubmit_ResubmitShortCircuits(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)
	ctx := context.Background()

	s := env.startSession(t, user.ID, model.Reading, "day1")
	req := SubmitSessionRequest{Answers: readingAnswers(4, 5), DurationSec: 600, ScorePct: 80}

	first, err := env.sessions.Submit(ctx, user.ID, s.ID, req)
	require.NoError(t, err)

	second, err := env.sessions.Submit(ctx, user.ID, s.ID, req)
	require.NoError(t, err)
	assert.True(t, second.AlreadyCompleted)
	assert.Equal(t, first.Session.XPEarned, second.Session.XPEarned)
	assert.Equal(t, first.Streak, second.Streak)

	// 经验值不重复入账，连击不重复推进
	total, err := env.xpRepo.TotalByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.XP.Total, total)
	streak, err := env.streakRepo.FindByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentStreak)
}

func TestSubmit_PerfectDay(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)
	ctx := context.Background()

	var last *SubmitResult
	for _, m := range model.AllModalities {
		s := env.startSession(t, user.ID, m, "day1")
		result, err := env.sessions.Submit(ctx, user.ID, s.ID, SubmitSessionRequest{
			Answers:     readingAnswers(5, 5),
			DurationSec: 1200,
			ScorePct:    100,
		})
		require.NoError(t, err)
		last = result
	}

	// 第三个模态提交时凑齐全天
	assert.Equal(t, 50, last.XP.PerfectDayBonus)
	assert.Zero(t, last.XP.FirstOfDayBonus)

	keys := make([]string, 0, len(last.Badges))
	for _, b := range last.Badges {
		keys = append(keys, b.BadgeKey)
	}
	assert.Contains(t, keys, "perfect_day")
}

func TestSubmit_OtherUsersSessionHidden(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t)
	intruder := &model.User{Email: "other@example.com", Password: "hashed", Name: "Other"}
	require.NoError(t, env.users.Create(intruder))

	s := env.startSession(t, owner.ID, model.Reading, "day1")
	_, err := env.sessions.Submit(context.Background(), intruder.ID, s.ID, SubmitSessionRequest{
		Answers:     readingAnswers(1, 1),
		DurationSec: 60,
		ScorePct:    100,
	})
	require.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestSubmit_UnknownSession(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)

	_, err := env.sessions.Submit(context.Background(), user.ID, "no-such-id", SubmitSessionRequest{
		Answers:     readingAnswers(1, 1),
		DurationSec: 60,
		ScorePct:    100,
	})
	require.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestSessionDetail_IncludesAnswers(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)
	ctx := context.Background()

	s := env.startSession(t, user.ID, model.Reading, "day1")
	detail, err := env.sessions.Detail(user.ID, s.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Answers)

	_, err = env.sessions.Submit(ctx, user.ID, s.ID, SubmitSessionRequest{
		Answers:     readingAnswers(3, 4),
		DurationSec: 300,
		ScorePct:    75,
	})
	require.NoError(t, err)

	detail, err = env.sessions.Detail(user.ID, s.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Answers, 4)
	assert.True(t, detail.Session.Completed())
}

func TestStart_InvalidModality(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)

	_, err := env.sessions.Start(user.ID, model.Modality("speaking"), "day1")
	require.ErrorIs(t, err, util.ErrInvalidModality)
}

func TestSessionList_Pagination(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)

	for i := 0; i < 5; i++ {
		env.startSession(t, user.ID, model.Reading, fmt.Sprintf("day%d", i+1))
	}

	sessions, total, err := env.sessions.List(user.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, sessions, 2)
}
