package service

import (
	"testing"

	"lingua_learn_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMasteryLevelBuckets(t *testing.T) {
	// 四档连续覆盖 [0,100]，边界无缝
	cases := map[int]model.MasteryLevel{
		0: model.MasteryBeginner, 49: model.MasteryBeginner,
		50: model.MasteryDeveloping, 74: model.MasteryDeveloping,
		75: model.MasteryProficient, 89: model.MasteryProficient,
		90: model.MasteryAdvanced, 100: model.MasteryAdvanced,
	}
	for pct, want := range cases {
		assert.Equal(t, want, model.MasteryLevelFor(pct), "pct %d", pct)
	}
}

func TestMasteryPct_Bounds(t *testing.T) {
	assert.Equal(t, 0, model.MasteryPct(0, 0))
	assert.Equal(t, 0, model.MasteryPct(0, 10))
	assert.Equal(t, 100, model.MasteryPct(10, 10))
	assert.Equal(t, 67, model.MasteryPct(2, 3)) // round(66.67)
	for correct := 0; correct <= 7; correct++ {
		pct := model.MasteryPct(correct, 7)
		assert.GreaterOrEqual(t, pct, 0)
		assert.LessOrEqual(t, pct, 100)
	}
}

func TestBuildSessionSkills(t *testing.T) {
	answers := []model.Answer{
		{SessionID: "s1", ItemID: "i1", Skill: "inference", IsCorrect: true},
		{SessionID: "s1", ItemID: "i2", Skill: "inference", IsCorrect: false},
		{SessionID: "s1", ItemID: "i3", Skill: "vocabulary", IsCorrect: true},
		{SessionID: "s1", ItemID: "i4", Skill: "", IsCorrect: true}, // 未打标，跳过
	}

	skills := BuildSessionSkills("s1", answers)
	require.Len(t, skills, 2)

	// 按技能名排序，输出确定
	assert.Equal(t, "inference", skills[0].Skill)
	assert.Equal(t, 1, skills[0].Correct)
	assert.Equal(t, 2, skills[0].Total)
	assert.Equal(t, 50, skills[0].MasteryPct)
	assert.Equal(t, model.MasteryDeveloping, skills[0].MasteryLevel)

	assert.Equal(t, "vocabulary", skills[1].Skill)
	assert.Equal(t, 100, skills[1].MasteryPct)
	assert.Equal(t, model.MasteryAdvanced, skills[1].MasteryLevel)
}

func TestRecomputeMastery_CumulativeAcrossSessions(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)
	now := day(2024, 3, 1)

	s1 := env.startSession(t, user.ID, model.Reading, "day1")
	require.NoError(t, env.sessions.AnswerRepo.InsertAll([]model.Answer{
		{SessionID: s1.ID, ItemID: "a1", Skill: "inference", IsCorrect: true},
		{SessionID: s1.ID, ItemID: "a2", Skill: "inference", IsCorrect: true},
	}))

	require.NoError(t, env.skill.RecomputeMastery(user.ID, model.Reading, now))

	s2 := env.startSession(t, user.ID, model.Reading, "day2")
	require.NoError(t, env.sessions.AnswerRepo.InsertAll([]model.Answer{
		{SessionID: s2.ID, ItemID: "b1", Skill: "inference", IsCorrect: false},
		{SessionID: s2.ID, ItemID: "b2", Skill: "inference", IsCorrect: false},
	}))

	require.NoError(t, env.skill.RecomputeMastery(user.ID, model.Reading, now))

	// 全量重算：2/4 = 50%
	progress, err := env.skill.ModalityProgress(user.ID, model.Reading)
	require.NoError(t, err)
	require.Len(t, progress.Skills, 1)
	assert.Equal(t, 4, progress.Skills[0].TotalQuestions)
	assert.Equal(t, 2, progress.Skills[0].CorrectAnswers)
	assert.Equal(t, 50, progress.Skills[0].OverallMasteryPct)
	assert.Equal(t, model.MasteryDeveloping, progress.Skills[0].MasteryLevel)
}

func TestRecomputeMastery_RetryIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)
	now := day(2024, 3, 1)

	s1 := env.startSession(t, user.ID, model.Grammar, "day1")
	require.NoError(t, env.sessions.AnswerRepo.InsertAll([]model.Answer{
		{SessionID: s1.ID, ItemID: "a1", Skill: "tense", IsCorrect: true},
	}))

	// 重复重算结果不变
	require.NoError(t, env.skill.RecomputeMastery(user.ID, model.Grammar, now))
	require.NoError(t, env.skill.RecomputeMastery(user.ID, model.Grammar, now))

	progress, err := env.skill.ModalityProgress(user.ID, model.Grammar)
	require.NoError(t, err)
	require.Len(t, progress.Skills, 1)
	assert.Equal(t, 1, progress.Skills[0].TotalQuestions)
	assert.Equal(t, 100, progress.Skills[0].OverallMasteryPct)
}

func TestMasteryOverview(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)
	now := day(2024, 3, 1)

	s1 := env.startSession(t, user.ID, model.Reading, "day1")
	require.NoError(t, env.sessions.AnswerRepo.InsertAll([]model.Answer{
		// inference 9/10 = 90
		{SessionID: s1.ID, ItemID: "a1", Skill: "inference", IsCorrect: true},
		{SessionID: s1.ID, ItemID: "a2", Skill: "inference", IsCorrect: true},
		{SessionID: s1.ID, ItemID: "a3", Skill: "inference", IsCorrect: true},
		{SessionID: s1.ID, ItemID: "a4", Skill: "inference", IsCorrect: true},
		{SessionID: s1.ID, ItemID: "a5", Skill: "inference", IsCorrect: true},
		{SessionID: s1.ID, ItemID: "a6", Skill: "inference", IsCorrect: true},
		{SessionID: s1.ID, ItemID: "a7", Skill: "inference", IsCorrect: true},
		{SessionID: s1.ID, ItemID: "a8", Skill: "inference", IsCorrect: true},
		{SessionID: s1.ID, ItemID: "a9", Skill: "inference", IsCorrect: true},
		{SessionID: s1.ID, ItemID: "a10", Skill: "inference", IsCorrect: false},
		// vocabulary 2/5 = 40
		{SessionID: s1.ID, ItemID: "b1", Skill: "vocabulary", IsCorrect: true},
		{SessionID: s1.ID, ItemID: "b2", Skill: "vocabulary", IsCorrect: true},
		{SessionID: s1.ID, ItemID: "b3", Skill: "vocabulary", IsCorrect: false},
		{SessionID: s1.ID, ItemID: "b4", Skill: "vocabulary", IsCorrect: false},
		{SessionID: s1.ID, ItemID: "b5", Skill: "vocabulary", IsCorrect: false},
	}))
	require.NoError(t, env.skill.RecomputeMastery(user.ID, model.Reading, now))

	overview, err := env.skill.Overview(user.ID)
	require.NoError(t, err)

	reading := overview["reading"]
	// (90+40)/2 = 65
	assert.Equal(t, 65, reading.OverallMasteryPct)
	assert.Equal(t, 90, reading.Skills["inference"])
	assert.Equal(t, 40, reading.Skills["vocabulary"])

	// 无数据模态保持 0 与空表
	assert.Zero(t, overview["listening"].OverallMasteryPct)
	assert.Empty(t, overview["listening"].Skills)
}

func TestCompetenciesByDay(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)

	s1 := env.startSession(t, user.ID, model.Listening, "day3")
	require.NoError(t, env.sessions.AnswerRepo.InsertAll([]model.Answer{
		{SessionID: s1.ID, ItemID: "a1", Skill: "detail", IsCorrect: true, TimeSpentSec: 20},
		{SessionID: s1.ID, ItemID: "a2", Skill: "detail", IsCorrect: false, TimeSpentSec: 31},
	}))
	// 其他课程日不计入
	s2 := env.startSession(t, user.ID, model.Listening, "day4")
	require.NoError(t, env.sessions.AnswerRepo.InsertAll([]model.Answer{
		{SessionID: s2.ID, ItemID: "c1", Skill: "detail", IsCorrect: true, TimeSpentSec: 5},
	}))

	resp, err := env.skill.CompetenciesByDay(user.ID, model.Listening, "day3")
	require.NoError(t, err)
	require.Len(t, resp.Skills, 1)

	d := resp.Skills[0]
	assert.Equal(t, "detail", d.Skill)
	assert.Equal(t, 2, d.TotalQuestions)
	assert.Equal(t, 1, d.CorrectAnswers)
	assert.Equal(t, 50, d.OverallMasteryPct)
	assert.Equal(t, 1, d.SessionsPracticed)
	assert.InDelta(t, 25.5, d.AvgTimePerItem, 0.01)
}

func TestSessionMastery(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t)

	s := env.startSession(t, user.ID, model.Reading, "day1")
	answers := []model.Answer{
		{SessionID: s.ID, ItemID: "a1", Skill: "inference", IsCorrect: true},
		{SessionID: s.ID, ItemID: "a2", Skill: "vocabulary", IsCorrect: false},
	}
	require.NoError(t, env.sessions.AnswerRepo.InsertAll(answers))
	_, err := env.skill.RecordSessionSkills(s.ID, answers)
	require.NoError(t, err)

	resp, err := env.skill.SessionMastery(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, resp.SessionID)
	assert.Len(t, resp.Skills, 2)
	assert.Equal(t, 1, resp.MasteryLevels["advanced"])
	assert.Equal(t, 1, resp.MasteryLevels["beginner"])
}
